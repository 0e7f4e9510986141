package settings

import (
	"errors"
	"fmt"
	"net/netip"
)

var ErrInvalidInterface = errors.New("invalid interface settings")

// Interface is the agent capture device.
type Interface struct {
	Name string `json:"Name"`
	MTU  int    `json:"MTU"`
}

func (i Interface) Validate() error {
	if i.Name == "" || len(i.Name) > maxInterfaceNameLength {
		return fmt.Errorf("%w: name %q", ErrInvalidInterface, i.Name)
	}
	if err := ValidateMTU(i.MTU); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInterface, err)
	}
	return nil
}

// RelayInterface describes the per-session interfaces created by the relay.
type RelayInterface struct {
	NamePrefix string       `json:"NamePrefix"`
	Subnet     netip.Prefix `json:"Subnet"`
	MTU        int          `json:"MTU"`
}

func DefaultRelayInterface() RelayInterface {
	return RelayInterface{
		NamePrefix: DefaultRelayNamePrefix,
		Subnet:     netip.MustParsePrefix(DefaultRelaySubnet),
		MTU:        DefaultEthernetMTU,
	}
}

func (r RelayInterface) Validate() error {
	if r.NamePrefix == "" || len(r.NamePrefix)+maxRelayNameIndexDigits > maxInterfaceNameLength {
		return fmt.Errorf("%w: name prefix %q", ErrInvalidInterface, r.NamePrefix)
	}
	if !r.Subnet.IsValid() || !r.Subnet.Addr().Is4() || r.Subnet.Bits() > 30 {
		return fmt.Errorf("%w: subnet %s must be IPv4 and at least /30", ErrInvalidInterface, r.Subnet)
	}
	if err := ValidateMTU(r.MTU); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInterface, err)
	}
	return nil
}

// InterfaceName returns the name of the n-th session interface.
func (r RelayInterface) InterfaceName(n int) string {
	return fmt.Sprintf("%s%d", r.NamePrefix, n)
}
