package reporter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charisbit/net-rewire/infrastructure/telemetry/counters"
)

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureLogger) Printf(format string, v ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, v...))
}

func (c *captureLogger) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func TestReporter_LogsOnlyChanges(t *testing.T) {
	var relay counters.Relay
	logger := &captureLogger{}
	r := New("relay", 5*time.Millisecond, func() fmt.Stringer { return relay.Snapshot() }, logger)

	ctx, cancel := context.WithCancel(context.Background())
	var stopped atomic.Bool
	go func() {
		r.Run(ctx)
		stopped.Store(true)
	}()

	time.Sleep(40 * time.Millisecond)
	relay.SessionsAccepted.Add(1)
	time.Sleep(40 * time.Millisecond)
	cancel()

	lines := logger.snapshot()
	if len(lines) != 2 {
		t.Fatalf("expected exactly two distinct lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[1], "accepted=1") || !strings.HasPrefix(lines[1], "relay stats:") {
		t.Fatalf("unexpected line %q", lines[1])
	}
}

func TestReporter_DisabledInterval(t *testing.T) {
	r := New("agent", 0, func() fmt.Stringer { return counters.AgentSnapshot{} }, &captureLogger{})
	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run must return immediately when disabled")
	}
}
