package settings

import (
	"fmt"

	"github.com/charisbit/net-rewire/domain/network/frame"
)

func ResolveMTU(mtu int) int {
	if mtu <= 0 {
		return DefaultEthernetMTU
	}
	return mtu
}

func ValidateMTU(mtu int) error {
	if mtu < MinimumIPv4MTU || mtu > frame.MaxSize {
		return fmt.Errorf("mtu %d out of range (%d..%d)", mtu, MinimumIPv4MTU, frame.MaxSize)
	}
	return nil
}

// ResolveFrameCap returns the frame payload limit. Zero selects the protocol
// maximum; the limit must admit at least one full MTU packet.
func ResolveFrameCap(maxFrameSize, mtu int) (frame.Cap, error) {
	if maxFrameSize == 0 {
		maxFrameSize = frame.MaxSize
	}
	c, err := frame.NewCap(maxFrameSize)
	if err != nil {
		return 0, err
	}
	if c.Int() < ResolveMTU(mtu) {
		return 0, fmt.Errorf("max frame size %d is below mtu %d", c.Int(), ResolveMTU(mtu))
	}
	return c, nil
}
