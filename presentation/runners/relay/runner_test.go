package relay

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/application/network/tun"
	"github.com/charisbit/net-rewire/domain/app"
	"github.com/charisbit/net-rewire/domain/network/frame"
	relayConfiguration "github.com/charisbit/net-rewire/infrastructure/PAL/configuration/relay"
	"github.com/charisbit/net-rewire/infrastructure/settings"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/counters"
	"github.com/charisbit/net-rewire/infrastructure/tunnel/relay"
	"github.com/charisbit/net-rewire/presentation/ui/tui"
)

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

type idleListener struct {
	once   sync.Once
	closed chan struct{}
}

func newIdleListener() *idleListener { return &idleListener{closed: make(chan struct{})} }

func (l *idleListener) Accept() (connection.Transport, error) {
	<-l.closed
	return nil, net.ErrClosed
}
func (l *idleListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}
func (l *idleListener) Addr() net.Addr { return &net.TCPAddr{Port: 5555} }

type noFactory struct{}

func (noFactory) Create(context.Context) (tun.Interface, error) {
	return nil, errors.New("not used")
}

func newTestRunner(uiMode app.UIMode, ln connection.Listener) *Runner {
	conf := relayConfiguration.NewDefaultConfiguration()
	conf.StatsIntervalMs = 0
	r := NewRunner(uiMode, NewDependencies(conf), nopLogger{})
	r.newFactory = func(settings.RelayInterface, logging.Logger) (tun.Factory, error) {
		return noFactory{}, nil
	}
	r.listen = func(context.Context, settings.Endpoint, int, frame.Cap) (connection.Listener, error) {
		return ln, nil
	}
	return r
}

func TestRunner_CancelClosesListener(t *testing.T) {
	ln := newIdleListener()
	r := newTestRunner(app.CLI, ln)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	select {
	case <-ln.closed:
	default:
		t.Fatal("listener not closed")
	}
}

func TestRunner_ListenFailure(t *testing.T) {
	r := newTestRunner(app.CLI, nil)
	wantErr := errors.New("address already in use")
	r.listen = func(context.Context, settings.Endpoint, int, frame.Cap) (connection.Listener, error) {
		return nil, wantErr
	}
	if err := r.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Run err=%v", err)
	}
}

func TestRunner_FactoryFailure(t *testing.T) {
	r := newTestRunner(app.CLI, newIdleListener())
	wantErr := errors.New("invalid subnet")
	r.newFactory = func(settings.RelayInterface, logging.Logger) (tun.Factory, error) {
		return nil, wantErr
	}
	if err := r.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Run err=%v", err)
	}
}

func TestRunner_DashboardExit(t *testing.T) {
	ln := newIdleListener()
	r := newTestRunner(app.TUI, ln)
	var got tui.Options
	r.runDashboard = func(_ context.Context, options tui.Options) error {
		got = options
		return tui.ErrUserExit
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if got.Mode != "relay" {
		t.Fatalf("mode=%q", got.Mode)
	}
	if !strings.Contains(got.Status(), settings.DefaultListenAddress) {
		t.Fatalf("status=%q", got.Status())
	}
	if lines := got.Details(); len(lines) != 1 || lines[0] != "No active sessions" {
		t.Fatalf("details=%q", lines)
	}
}

func TestSessionLines(t *testing.T) {
	var sessions []*relay.Session
	for i := 0; i < maxListedSessions+2; i++ {
		a, b := net.Pipe()
		t.Cleanup(func() { _ = a.Close(); _ = b.Close() })
		sessions = append(sessions, relay.NewSession(a, frame.MaxSize, &counters.Relay{}, nopLogger{}))
	}
	lines := sessionLines(sessions, time.Now())
	if lines[0] != "Sessions (12):" {
		t.Fatalf("header=%q", lines[0])
	}
	if last := lines[len(lines)-1]; last != "  ... and 2 more" {
		t.Fatalf("last=%q", last)
	}
	if !strings.Contains(lines[1], "accepted") {
		t.Fatalf("state missing: %q", lines[1])
	}
}
