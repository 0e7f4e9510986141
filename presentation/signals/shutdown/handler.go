package shutdown

import (
	"context"
	"os"

	"github.com/charisbit/net-rewire/application/logging"
	palSignal "github.com/charisbit/net-rewire/infrastructure/PAL/signal"
	"github.com/charisbit/net-rewire/presentation/signals"
)

// forcedExitCode is used when a second signal arrives during teardown.
const forcedExitCode = 1

// Handler cancels the run context on the first shutdown signal. A second
// signal exits the process for a runner stuck closing its interfaces.
type Handler struct {
	signalProvider palSignal.Provider
	notifier       signals.Notifier
	cancel         context.CancelFunc
	exit           func(code int)
	logger         logging.Logger
}

func NewHandler(
	signalProvider palSignal.Provider,
	notifier signals.Notifier,
	cancel context.CancelFunc,
	logger logging.Logger,
) *Handler {
	return &Handler{
		signalProvider: signalProvider,
		notifier:       notifier,
		cancel:         cancel,
		exit:           os.Exit,
		logger:         logger,
	}
}

// Start subscribes before returning and handles signals until ctx ends.
// ctx must outlive the context that cancel ends, or the second signal is
// never seen.
func (h *Handler) Start(ctx context.Context) {
	// buffered: os/signal never blocks on delivery
	signalChan := make(chan os.Signal, 1)
	h.notifier.Notify(signalChan, h.signalProvider.ShutdownSignals()...)

	go func() {
		defer h.notifier.Stop(signalChan)
		shuttingDown := false
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-signalChan:
				if shuttingDown {
					h.logger.Printf("%s received again, exiting", sig)
					h.exit(forcedExitCode)
					return
				}
				shuttingDown = true
				h.logger.Printf("%s received, shutting down", sig)
				h.cancel()
			}
		}
	}()
}
