package relay

import (
	"fmt"

	"github.com/charisbit/net-rewire/infrastructure/PAL/configuration"
)

const FileName = "relay.json"

type ConfigurationManager interface {
	Configuration() (*Configuration, error)
}

type Manager struct {
	path string
	stat configuration.Stat
}

func NewManager(resolver configuration.Resolver, stat configuration.Stat) (ConfigurationManager, error) {
	path, err := resolver.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve relay configuration path: %w", err)
	}
	return &Manager{path: path, stat: stat}, nil
}

func (m *Manager) Configuration() (*Configuration, error) {
	return configuration.Load[Configuration](m.stat, m.path, NewDefaultConfiguration)
}
