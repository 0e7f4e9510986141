package framing

import (
	"encoding/binary"
	"fmt"

	"github.com/charisbit/net-rewire/domain/network/frame"
)

// Encode returns packet prefixed with its 4-byte big-endian length.
func Encode(packet []byte) ([]byte, error) {
	return AppendFrame(make([]byte, 0, frame.PrefixSize+len(packet)), packet, frame.MaxSize)
}

// AppendFrame appends one frame to dst. The packet must be non-empty and within limit.
func AppendFrame(dst, packet []byte, limit frame.Cap) ([]byte, error) {
	if err := validatePayloadLen(len(packet), limit); err != nil {
		return dst, err
	}
	var hdr [frame.PrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(packet)))
	dst = append(dst, hdr[:]...)
	return append(dst, packet...), nil
}

func validatePayloadLen(n int, limit frame.Cap) error {
	if n == 0 {
		return ErrZeroLengthFrame
	}
	if err := limit.ValidateLen(n); err != nil {
		return fmt.Errorf("%w: %w", ErrFrameTooLarge, err)
	}
	return nil
}
