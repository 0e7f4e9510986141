package frame

import (
	"errors"
	"fmt"
)

// MaxSize is the largest packet a single frame may carry.
const MaxSize = 65535

// PrefixSize is the length of the big-endian frame length prefix.
const PrefixSize = 4

var (
	ErrInvalidCap  = errors.New("invalid frame cap")
	ErrCapExceeded = errors.New("frame cap exceeded")
)

// Cap is a validated frame payload limit in (0, MaxSize].
type Cap int

func NewCap(n int) (Cap, error) {
	if n <= 0 || n > MaxSize {
		return 0, fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidCap, n, MaxSize)
	}
	return Cap(n), nil
}

func (c Cap) Int() int { return int(c) }

// ValidateLen checks a payload length against the cap.
func (c Cap) ValidateLen(n int) error {
	if n > int(c) {
		return fmt.Errorf("%w: %d > %d", ErrCapExceeded, n, int(c))
	}
	return nil
}
