package agent

import (
	"fmt"

	"github.com/charisbit/net-rewire/infrastructure/PAL/configuration"
)

const FileName = "agent.json"

type ConfigurationManager interface {
	Configuration() (*Configuration, error)
	Path() string
}

type Manager struct {
	path string
	stat configuration.Stat
}

func NewManager(resolver configuration.Resolver, stat configuration.Stat) (ConfigurationManager, error) {
	path, err := resolver.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve agent configuration path: %w", err)
	}
	return &Manager{path: path, stat: stat}, nil
}

// Configuration reads the file on every call so watchers see fresh contents.
func (m *Manager) Configuration() (*Configuration, error) {
	return configuration.Load[Configuration](m.stat, m.path, NewDefaultConfiguration)
}

func (m *Manager) Path() string {
	return m.path
}
