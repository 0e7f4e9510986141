package agent

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/application/network/interception"
	"github.com/charisbit/net-rewire/domain/app"
	"github.com/charisbit/net-rewire/domain/network/frame"
	agentConfiguration "github.com/charisbit/net-rewire/infrastructure/PAL/configuration/agent"
	"github.com/charisbit/net-rewire/infrastructure/settings"
	"github.com/charisbit/net-rewire/infrastructure/tunnel/agent"
	"github.com/charisbit/net-rewire/presentation/ui/tui"
)

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

type blockingInterceptor struct {
	once   sync.Once
	closed chan struct{}
}

func newBlockingInterceptor() *blockingInterceptor {
	return &blockingInterceptor{closed: make(chan struct{})}
}

func (b *blockingInterceptor) ReadPacket([]byte) (int, interception.Family, error) {
	<-b.closed
	return 0, 0, io.ErrClosedPipe
}
func (b *blockingInterceptor) Passthrough([]byte, interception.Family) error { return nil }
func (b *blockingInterceptor) Reinject([]byte) error                        { return nil }
func (b *blockingInterceptor) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

type refusingDialer struct{}

func (refusingDialer) Dial(context.Context) (connection.Transport, error) {
	return nil, errors.New("connection refused")
}

// pipeDialer connects to a relay end that is never read from.
type pipeDialer struct {
	mu    sync.Mutex
	peers []net.Conn
}

func (d *pipeDialer) Dial(context.Context) (connection.Transport, error) {
	local, remote := net.Pipe()
	d.mu.Lock()
	d.peers = append(d.peers, remote)
	d.mu.Unlock()
	return local, nil
}

func (d *pipeDialer) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.peers {
		_ = c.Close()
	}
}

type quietNotifier struct{}

func (quietNotifier) Notify(chan<- os.Signal, ...os.Signal) {}
func (quietNotifier) Stop(chan<- os.Signal)                  {}

type staticManager struct {
	conf *agentConfiguration.Configuration
	path string
}

func (m staticManager) Configuration() (*agentConfiguration.Configuration, error) { return m.conf, nil }
func (m staticManager) Path() string                                              { return m.path }

func newTestRunner(t *testing.T, uiMode app.UIMode, icpt interception.Interceptor) *Runner {
	t.Helper()
	conf := agentConfiguration.NewDefaultConfiguration()
	conf.StatsIntervalMs = 0
	manager := staticManager{conf: conf, path: filepath.Join(t.TempDir(), agentConfiguration.FileName)}
	r := NewRunner(uiMode, NewDependencies(conf, manager), nopLogger{})
	r.openInterceptor = func(settings.Interface, int) (interception.Interceptor, error) { return icpt, nil }
	r.newDialer = func(settings.Endpoint, frame.Cap) (connection.Dialer, error) { return refusingDialer{}, nil }
	r.notifier = quietNotifier{}
	return r
}

func TestRunner_CancelStopsAgent(t *testing.T) {
	icpt := newBlockingInterceptor()
	r := newTestRunner(t, app.CLI, icpt)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	select {
	case <-icpt.closed:
	default:
		t.Fatal("interceptor not closed")
	}
}

func TestRunner_InterceptorFailure(t *testing.T) {
	r := newTestRunner(t, app.CLI, nil)
	wantErr := errors.New("operation not permitted")
	r.openInterceptor = func(settings.Interface, int) (interception.Interceptor, error) { return nil, wantErr }

	if err := r.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Run err=%v, want %v", err, wantErr)
	}
}

func TestRunner_DialerFailure(t *testing.T) {
	r := newTestRunner(t, app.CLI, newBlockingInterceptor())
	r.newDialer = func(settings.Endpoint, frame.Cap) (connection.Dialer, error) {
		return nil, settings.ErrInvalidProtocol
	}
	if err := r.Run(context.Background()); !errors.Is(err, settings.ErrInvalidProtocol) {
		t.Fatalf("Run err=%v", err)
	}
}

func TestRunner_DashboardExitStopsAgent(t *testing.T) {
	icpt := newBlockingInterceptor()
	r := newTestRunner(t, app.TUI, icpt)
	var got tui.Options
	r.runDashboard = func(_ context.Context, options tui.Options) error {
		got = options
		return tui.ErrUserExit
	}

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil on user exit", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after dashboard exit")
	}

	if got.Mode != "agent" || got.Status == nil || got.Counters == nil {
		t.Fatalf("dashboard options incomplete: %+v", got)
	}
	if len(got.Counters()) == 0 {
		t.Fatal("no counters exposed to the dashboard")
	}
	if details := got.Details(); len(details) != 1 || details[0] != "Filter: tcp/25" {
		t.Fatalf("details=%q", details)
	}
}

func TestRunner_DashboardShowsRelayActivity(t *testing.T) {
	r := newTestRunner(t, app.TUI, newBlockingInterceptor())
	dialer := &pipeDialer{}
	t.Cleanup(dialer.close)
	r.newDialer = func(settings.Endpoint, frame.Cap) (connection.Dialer, error) { return dialer, nil }

	var status string
	r.runDashboard = func(ctx context.Context, options tui.Options) error {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			status = options.Status()
			if strings.HasPrefix(status, "Relay: connected") {
				return tui.ErrUserExit
			}
			time.Sleep(5 * time.Millisecond)
		}
		return tui.ErrUserExit
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := "Relay: connected (pipe, last activity 0s ago)"; status != want {
		t.Fatalf("status=%q, want %q", status, want)
	}
}

func TestRelayStatus_Disconnected(t *testing.T) {
	if got := relayStatus(agent.Connecting, nil, time.Now()); got != "Relay: connecting" {
		t.Fatalf("status=%q", got)
	}
}
