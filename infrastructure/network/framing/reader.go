package framing

import (
	"errors"
	"fmt"
	"io"

	"github.com/charisbit/net-rewire/domain/network/frame"
)

const readChunkSize = 32 * 1024

// Reader yields whole frames from a byte stream that may deliver data in
// arbitrarily small or coalesced pieces.
type Reader struct {
	r     io.Reader
	dec   *Decoder
	chunk []byte
}

func NewReader(r io.Reader, limit frame.Cap) *Reader {
	return &Reader{
		r:     r,
		dec:   NewDecoder(limit),
		chunk: make([]byte, readChunkSize),
	}
}

// ReadFrame blocks until one complete frame is available.
// The returned slice is only valid until the next ReadFrame call.
//
// io.EOF is returned when the stream ends on a frame boundary;
// io.ErrUnexpectedEOF when it ends inside a frame.
func (r *Reader) ReadFrame() ([]byte, error) {
	for {
		pkt, err := r.dec.Next()
		if err == nil {
			return pkt, nil
		}
		if !errors.Is(err, ErrNeedMoreData) {
			return nil, err
		}

		n, readErr := r.r.Read(r.chunk)
		if n > 0 {
			r.dec.Feed(r.chunk[:n])
			continue
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				if r.dec.Buffered() > 0 {
					return nil, io.ErrUnexpectedEOF
				}
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read frame: %w", readErr)
		}
	}
}
