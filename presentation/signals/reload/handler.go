package reload

import (
	"context"
	"os"

	"github.com/charisbit/net-rewire/application/logging"
	palSignal "github.com/charisbit/net-rewire/infrastructure/PAL/signal"
	"github.com/charisbit/net-rewire/presentation/signals"
)

// Handler calls onReload for every reload signal until its context ends.
type Handler struct {
	signalProvider palSignal.Provider
	notifier       signals.Notifier
	onReload       func()
	logger         logging.Logger
}

func NewHandler(
	signalProvider palSignal.Provider,
	notifier signals.Notifier,
	onReload func(),
	logger logging.Logger,
) *Handler {
	return &Handler{
		signalProvider: signalProvider,
		notifier:       notifier,
		onReload:       onReload,
		logger:         logger,
	}
}

func (h *Handler) Run(ctx context.Context) {
	sigs := h.signalProvider.ReloadSignals()
	if len(sigs) == 0 {
		<-ctx.Done()
		return
	}

	// buffered: os/signal never blocks on delivery
	signalChan := make(chan os.Signal, 1)
	h.notifier.Notify(signalChan, sigs...)
	defer h.notifier.Stop(signalChan)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signalChan:
			h.logger.Printf("%s received, reloading configuration", sig)
			h.onReload()
		}
	}
}
