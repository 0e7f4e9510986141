package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/trafficstats"
)

// Reporter logs a counters line together with traffic totals at a fixed
// interval. A line identical to the previous one is skipped so an idle
// process stays quiet.
type Reporter struct {
	name     string
	interval time.Duration
	source   func() fmt.Stringer
	traffic  func() trafficstats.Snapshot
	logger   logging.Logger
}

func New(name string, interval time.Duration, source func() fmt.Stringer, logger logging.Logger) *Reporter {
	return &Reporter{
		name:     name,
		interval: interval,
		source:   source,
		traffic:  trafficstats.SnapshotGlobal,
		logger:   logger,
	}
}

// Run blocks until ctx is done. A non-positive interval disables reporting.
func (r *Reporter) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var prev string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			line := r.line()
			if line == prev {
				continue
			}
			prev = line
			r.logger.Printf("%s", line)
		}
	}
}

func (r *Reporter) line() string {
	return fmt.Sprintf("%s stats: %s; %s", r.name, r.source(), r.traffic().Summary())
}
