package relay

import (
	"errors"
	"fmt"

	"github.com/charisbit/net-rewire/domain/network/frame"
	"github.com/charisbit/net-rewire/infrastructure/settings"
)

type Configuration struct {
	Listen          settings.Endpoint       `json:"Listen"`
	Interface       settings.RelayInterface `json:"Interface"`
	MaxSessions     int                     `json:"MaxSessions"`
	MaxFrameSize    int                     `json:"MaxFrameSize"`
	StatsIntervalMs settings.Milliseconds   `json:"StatsIntervalMs"`
}

func NewDefaultConfiguration() *Configuration {
	return &Configuration{
		Listen: settings.Endpoint{
			Protocol: settings.TCP,
			Address:  settings.DefaultListenAddress,
		},
		Interface:       settings.DefaultRelayInterface(),
		MaxFrameSize:    frame.MaxSize,
		StatsIntervalMs: settings.FromDuration(settings.DefaultStatsInterval),
	}
}

func (c *Configuration) Validate() error {
	var errs []error
	if err := c.Listen.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("listen: %w", err))
	}
	if err := c.Interface.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("interface: %w", err))
	}
	if _, err := settings.ResolveFrameCap(c.MaxFrameSize, c.Interface.MTU); err != nil {
		errs = append(errs, fmt.Errorf("max frame size: %w", err))
	}
	if c.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("max sessions must not be negative"))
	}
	if c.StatsIntervalMs < 0 {
		errs = append(errs, fmt.Errorf("stats interval must not be negative"))
	}
	return errors.Join(errs...)
}

// FrameCap is only meaningful on a validated configuration.
func (c *Configuration) FrameCap() frame.Cap {
	limit, err := settings.ResolveFrameCap(c.MaxFrameSize, c.Interface.MTU)
	if err != nil {
		return frame.MaxSize
	}
	return limit
}
