package relay

import (
	relayConfiguration "github.com/charisbit/net-rewire/infrastructure/PAL/configuration/relay"
)

type AppDependencies interface {
	Configuration() *relayConfiguration.Configuration
}

type Dependencies struct {
	configuration *relayConfiguration.Configuration
}

func NewDependencies(configuration *relayConfiguration.Configuration) AppDependencies {
	return &Dependencies{
		configuration: configuration,
	}
}

func (d Dependencies) Configuration() *relayConfiguration.Configuration {
	return d.configuration
}
