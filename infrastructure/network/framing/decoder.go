package framing

import (
	"encoding/binary"
	"fmt"

	"github.com/charisbit/net-rewire/domain/network/frame"
)

// Decoder reassembles frames from bytes that arrive in arbitrary chunks.
//
// Feed appends whatever bytes are available; Next returns the next complete
// packet, ErrNeedMoreData, or a protocol violation. After a violation the
// decoder stays failed: no resynchronisation is attempted.
//
// A packet returned by Next is valid until the following Feed call.
type Decoder struct {
	limit frame.Cap
	buf   []byte
	off   int
	err   error
}

func NewDecoder(limit frame.Cap) *Decoder {
	return &Decoder{limit: limit}
}

func (d *Decoder) Feed(p []byte) {
	if d.off > 0 && d.off == len(d.buf) {
		d.buf = d.buf[:0]
		d.off = 0
	} else if d.off > 0 && len(p) > cap(d.buf)-len(d.buf) {
		// compact before growing
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of bytes not yet consumed by Next.
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.off
}

func (d *Decoder) Next() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	pending := d.buf[d.off:]
	if len(pending) < frame.PrefixSize {
		return nil, ErrNeedMoreData
	}
	length := binary.BigEndian.Uint32(pending[:frame.PrefixSize])
	if length == 0 {
		d.err = fmt.Errorf("%w: %w", ErrProtocolViolation, ErrZeroLengthFrame)
		return nil, d.err
	}
	if length > uint32(d.limit.Int()) {
		d.err = fmt.Errorf("%w: %w: %d > %d", ErrProtocolViolation, ErrFrameTooLarge, length, d.limit.Int())
		return nil, d.err
	}
	end := frame.PrefixSize + int(length)
	if len(pending) < end {
		return nil, ErrNeedMoreData
	}
	d.off += end
	return pending[frame.PrefixSize:end], nil
}
