package agent

import (
	"errors"
	"fmt"

	"github.com/charisbit/net-rewire/domain/network/frame"
	"github.com/charisbit/net-rewire/infrastructure/settings"
)

type Configuration struct {
	Filter           settings.Filter       `json:"Filter"`
	Relay            settings.Endpoint     `json:"Relay"`
	Interface        settings.Interface    `json:"Interface"`
	PassthroughMark  int                   `json:"PassthroughMark"`
	ReconnectDelayMs settings.Milliseconds `json:"ReconnectDelayMs"`
	MaxFrameSize     int                   `json:"MaxFrameSize"`
	StatsIntervalMs  settings.Milliseconds `json:"StatsIntervalMs"`
}

func NewDefaultConfiguration() *Configuration {
	return &Configuration{
		Filter: settings.DefaultFilter(),
		Relay: settings.Endpoint{
			Protocol:      settings.TCP,
			Address:       "127.0.0.1" + settings.DefaultListenAddress,
			DialTimeoutMs: settings.FromDuration(settings.DefaultDialTimeout),
		},
		Interface: settings.Interface{
			Name: settings.DefaultAgentTunName,
			MTU:  settings.DefaultEthernetMTU,
		},
		PassthroughMark:  settings.DefaultPassthroughMark,
		ReconnectDelayMs: settings.FromDuration(settings.DefaultReconnectDelay),
		MaxFrameSize:     frame.MaxSize,
		StatsIntervalMs:  settings.FromDuration(settings.DefaultStatsInterval),
	}
}

func (c *Configuration) Validate() error {
	var errs []error
	if _, err := c.Filter.Rule(); err != nil {
		errs = append(errs, fmt.Errorf("filter: %w", err))
	}
	if err := c.Relay.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("relay: %w", err))
	}
	if err := c.Interface.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("interface: %w", err))
	}
	if _, err := settings.ResolveFrameCap(c.MaxFrameSize, c.Interface.MTU); err != nil {
		errs = append(errs, fmt.Errorf("max frame size: %w", err))
	}
	if c.PassthroughMark < 0 {
		errs = append(errs, fmt.Errorf("passthrough mark must not be negative"))
	}
	if c.ReconnectDelayMs < 0 || c.StatsIntervalMs < 0 {
		errs = append(errs, fmt.Errorf("intervals must not be negative"))
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
