package relay

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/application/network/tun"
	"github.com/charisbit/net-rewire/domain/app"
	"github.com/charisbit/net-rewire/domain/network/frame"
	"github.com/charisbit/net-rewire/infrastructure/network/transport"
	"github.com/charisbit/net-rewire/infrastructure/settings"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/counters"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/reporter"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/trafficstats"
	"github.com/charisbit/net-rewire/infrastructure/tunnel/relay"
	"github.com/charisbit/net-rewire/presentation/ui/tui"

	"golang.org/x/sync/errgroup"
)

// maxListedSessions bounds the session list on the dashboard.
const maxListedSessions = 10

type (
	FactoryFunc   func(cfg settings.RelayInterface, logger logging.Logger) (tun.Factory, error)
	ListenFunc    func(ctx context.Context, endpoint settings.Endpoint, maxConns int, limit frame.Cap) (connection.Listener, error)
	DashboardFunc func(ctx context.Context, options tui.Options) error
)

type Runner struct {
	uiMode       app.UIMode
	deps         AppDependencies
	logger       logging.Logger
	newFactory   FactoryFunc
	listen       ListenFunc
	runDashboard DashboardFunc
}

func NewRunner(uiMode app.UIMode, deps AppDependencies, logger logging.Logger) *Runner {
	return &Runner{
		uiMode:       uiMode,
		deps:         deps,
		logger:       logger,
		newFactory:   newTunFactory,
		listen:       transport.Listen,
		runDashboard: tui.Run,
	}
}

// Run serves agents until ctx is done or the user leaves the dashboard.
// Every session is torn down before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	conf := r.deps.Configuration()
	limit := conf.FrameCap()

	factory, err := r.newFactory(conf.Interface, r.logger)
	if err != nil {
		return fmt.Errorf("failed to prepare interface factory: %w", err)
	}
	listener, err := r.listen(ctx, conf.Listen, conf.MaxSessions, limit)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	stats := &counters.Relay{}
	server := relay.NewServer(relay.Config{
		FrameCap:    limit,
		MaxSessions: conf.MaxSessions,
	}, listener, factory, stats, r.logger)

	collector := trafficstats.NewCollector(time.Second, 0.3)
	trafficstats.SetGlobal(collector)
	defer trafficstats.SetGlobal(nil)

	statsReporter := reporter.New("relay", conf.StatsIntervalMs.Duration(),
		func() fmt.Stringer { return stats.Snapshot() }, r.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		collector.Start(gctx)
		return nil
	})
	g.Go(func() error {
		statsReporter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := server.Serve(gctx); err != nil {
			return fmt.Errorf("relay stopped: %w", err)
		}
		return gctx.Err()
	})
	if r.uiMode == app.TUI {
		g.Go(func() error {
			return r.runDashboard(gctx, r.dashboardOptions(server, stats, conf.Listen))
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

func (r *Runner) dashboardOptions(server *relay.Server, stats *counters.Relay, listen settings.Endpoint) tui.Options {
	return tui.Options{
		Mode: "relay",
		Status: func() string {
			return fmt.Sprintf("Listening: %s %s", listen.Protocol, listen.Address)
		},
		Counters: func() []counters.Field {
			return stats.Snapshot().Fields()
		},
		Details: func() []string {
			return sessionLines(server.Sessions().All(), time.Now())
		},
		LogFeed: tui.GlobalLogFeed(),
	}
}

// sessionLines lists the oldest sessions first.
func sessionLines(sessions []*relay.Session, now time.Time) []string {
	if len(sessions) == 0 {
		return []string{"No active sessions"}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Started().Before(sessions[j].Started())
	})
	lines := []string{fmt.Sprintf("Sessions (%d):", len(sessions))}
	for i, s := range sessions {
		if i == maxListedSessions {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(sessions)-maxListedSessions))
			break
		}
		lines = append(lines, fmt.Sprintf("  %s  %-21s %-8s %-15s %s",
			s.ID().String()[:8], s.RemoteAddr(), s.InterfaceName(), s.State(),
			now.Sub(s.Started()).Truncate(time.Second)))
	}
	return lines
}
