package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/application/network/interception"
	"github.com/charisbit/net-rewire/domain/app"
	"github.com/charisbit/net-rewire/domain/network/frame"
	agentConfiguration "github.com/charisbit/net-rewire/infrastructure/PAL/configuration/agent"
	palSignal "github.com/charisbit/net-rewire/infrastructure/PAL/signal"
	"github.com/charisbit/net-rewire/infrastructure/network/transport"
	"github.com/charisbit/net-rewire/infrastructure/settings"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/counters"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/reporter"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/trafficstats"
	"github.com/charisbit/net-rewire/infrastructure/tunnel/agent"
	"github.com/charisbit/net-rewire/presentation/signals"
	"github.com/charisbit/net-rewire/presentation/signals/reload"
	"github.com/charisbit/net-rewire/presentation/ui/tui"

	"golang.org/x/sync/errgroup"
)

// configPollInterval is the fallback re-read period when fsnotify is unavailable.
const configPollInterval = 5 * time.Second

type (
	InterceptorFunc func(iface settings.Interface, mark int) (interception.Interceptor, error)
	DialerFunc      func(endpoint settings.Endpoint, limit frame.Cap) (connection.Dialer, error)
	DashboardFunc   func(ctx context.Context, options tui.Options) error
)

type Runner struct {
	uiMode          app.UIMode
	deps            AppDependencies
	logger          logging.Logger
	openInterceptor InterceptorFunc
	newDialer       DialerFunc
	runDashboard    DashboardFunc
	signalProvider  palSignal.Provider
	notifier        signals.Notifier
}

func NewRunner(uiMode app.UIMode, deps AppDependencies, logger logging.Logger) *Runner {
	return &Runner{
		uiMode:          uiMode,
		deps:            deps,
		logger:          logger,
		openInterceptor: openInterceptor,
		newDialer:       transport.NewDialer,
		runDashboard:    tui.Run,
		signalProvider:  palSignal.NewDefaultProvider(),
		notifier:        signals.NewOSNotifier(),
	}
}

// Run starts the agent and its ambient tasks and blocks until ctx is done,
// the agent fails or the user leaves the dashboard.
func (r *Runner) Run(ctx context.Context) error {
	conf := r.deps.Configuration()
	rule, err := conf.Filter.Rule()
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	limit := conf.FrameCap()

	dialer, err := r.newDialer(conf.Relay, limit)
	if err != nil {
		return fmt.Errorf("failed to create relay dialer: %w", err)
	}
	icpt, err := r.openInterceptor(conf.Interface, conf.PassthroughMark)
	if err != nil {
		return fmt.Errorf("failed to open interceptor: %w", err)
	}

	stats := &counters.Agent{}
	a := agent.New(agent.Config{
		Rule:           rule,
		ReconnectDelay: conf.ReconnectDelayMs.Or(settings.DefaultReconnectDelay),
		FrameCap:       limit,
	}, icpt, dialer, stats, r.logger)

	collector := trafficstats.NewCollector(time.Second, 0.3)
	trafficstats.SetGlobal(collector)
	defer trafficstats.SetGlobal(nil)

	watcher := agentConfiguration.NewWatcher(r.deps.ConfigurationManager(), a, conf, configPollInterval, r.logger)
	statsReporter := reporter.New("agent", conf.StatsIntervalMs.Duration(),
		func() fmt.Stringer { return stats.Snapshot() }, r.logger)

	r.logger.Printf("agent started: filter %s, relay %s %s, capture device %s",
		rule, conf.Relay.Protocol, conf.Relay.Address, conf.Interface.Name)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		collector.Start(gctx)
		return nil
	})
	g.Go(func() error {
		watcher.Watch(gctx)
		return nil
	})
	g.Go(func() error {
		reload.NewHandler(r.signalProvider, r.notifier, watcher.RequestReload, r.logger).Run(gctx)
		return nil
	})
	g.Go(func() error {
		statsReporter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := a.Run(gctx); err != nil {
			return fmt.Errorf("agent stopped: %w", err)
		}
		return gctx.Err()
	})
	if r.uiMode == app.TUI {
		g.Go(func() error {
			return r.runDashboard(gctx, r.dashboardOptions(a, stats))
		})
	}

	err = g.Wait()
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, tui.ErrUserExit):
		return nil
	default:
		return err
	}
}

func (r *Runner) dashboardOptions(a *agent.Agent, stats *counters.Agent) tui.Options {
	return tui.Options{
		Mode: "agent",
		Status: func() string {
			return relayStatus(a.State(), a.Connection(), time.Now())
		},
		Counters: func() []counters.Field {
			return stats.Snapshot().Fields()
		},
		Details: func() []string {
			return []string{"Filter: " + a.Rule().String()}
		},
		LogFeed: tui.GlobalLogFeed(),
	}
}

// relayStatus renders the tunnel state, with the peer and the age of its
// last frame while connected.
func relayStatus(state agent.State, conn *agent.TunnelConnection, now time.Time) string {
	status := "Relay: " + state.String()
	if conn == nil {
		return status
	}
	idle := now.Sub(conn.LastActivity()).Truncate(time.Second)
	if idle < 0 {
		idle = 0
	}
	return fmt.Sprintf("%s (%s, last activity %s ago)", status, conn.RemoteAddr(), idle)
}
