package tui

import (
	"io"
	"log"
	"strings"
	"sync"
)

const DefaultLogCapacity = 256

type LogFeed interface {
	Tail(limit int) []string
}

// LogBuffer keeps the last capacity complete lines written to it.
type LogBuffer struct {
	mu       sync.Mutex
	capacity int
	lines    []string // pre-allocated at full capacity
	head     int      // next write position
	count    int
	partial  string
}

var (
	globalLogMu      sync.Mutex
	globalLogBuffer  *LogBuffer
	globalLogRestore func()
)

func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogBuffer{
		capacity: capacity,
		lines:    make([]string, capacity),
	}
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chunk := string(p)
	for len(chunk) > 0 {
		newlineIdx := strings.IndexByte(chunk, '\n')
		if newlineIdx < 0 {
			b.partial += chunk
			break
		}
		b.partial += chunk[:newlineIdx]
		b.appendLineLocked(strings.TrimRight(b.partial, "\r"))
		b.partial = ""
		chunk = chunk[newlineIdx+1:]
	}
	return len(p), nil
}

// Tail returns up to limit of the most recent lines, oldest first.
func (b *LogBuffer) Tail(limit int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || b.count == 0 {
		return nil
	}
	n := min(b.count, limit)
	out := make([]string, n)
	start := (b.head - n + b.capacity) % b.capacity
	if start+n <= b.capacity {
		copy(out, b.lines[start:start+n])
	} else {
		first := b.capacity - start
		copy(out, b.lines[start:])
		copy(out[first:], b.lines[:n-first])
	}
	return out
}

func (b *LogBuffer) appendLineLocked(line string) {
	b.lines[b.head] = line
	b.head = (b.head + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// EnableLogCapture redirects the standard logger into a global LogBuffer so
// log lines do not tear the dashboard. Calling it twice is a no-op.
func EnableLogCapture(capacity int) {
	globalLogMu.Lock()
	defer globalLogMu.Unlock()

	if globalLogBuffer != nil {
		return
	}
	buffer := NewLogBuffer(capacity)
	previousWriter := log.Writer()
	log.SetOutput(io.Writer(buffer))

	globalLogBuffer = buffer
	globalLogRestore = func() {
		log.SetOutput(previousWriter)
	}
}

func DisableLogCapture() {
	globalLogMu.Lock()
	defer globalLogMu.Unlock()

	if globalLogRestore != nil {
		globalLogRestore()
	}
	globalLogRestore = nil
	globalLogBuffer = nil
}

// GlobalLogFeed returns nil while capture is disabled.
func GlobalLogFeed() LogFeed {
	globalLogMu.Lock()
	defer globalLogMu.Unlock()
	if globalLogBuffer == nil {
		return nil
	}
	return globalLogBuffer
}
