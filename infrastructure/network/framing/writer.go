package framing

import (
	"fmt"
	"io"

	"github.com/charisbit/net-rewire/domain/network/frame"
)

// Writer emits frames onto a byte stream. Each call results in exactly one
// underlying Write (looped only on short writes), so frames from a single
// writer never interleave.
//
// Writer is not safe for concurrent use; callers keep one writer per stream.
type Writer struct {
	w     io.Writer
	limit frame.Cap
	buf   []byte
}

func NewWriter(w io.Writer, limit frame.Cap) *Writer {
	return &Writer{
		w:     w,
		limit: limit,
		buf:   make([]byte, 0, frame.PrefixSize+limit.Int()),
	}
}

func (w *Writer) WriteFrame(packet []byte) error {
	buf, err := AppendFrame(w.buf[:0], packet, w.limit)
	if err != nil {
		return err
	}
	w.buf = buf
	return w.flush()
}

// WriteFrames coalesces several frames into one write. Nothing is written
// when any packet is rejected.
func (w *Writer) WriteFrames(packets ...[]byte) error {
	buf := w.buf[:0]
	for i, p := range packets {
		var err error
		buf, err = AppendFrame(buf, p, w.limit)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	w.buf = buf
	if len(buf) == 0 {
		return nil
	}
	return w.flush()
}

func (w *Writer) flush() error {
	off := 0
	for off < len(w.buf) {
		n, err := w.w.Write(w.buf[off:])
		if err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		off += n
	}
	return nil
}
