package agent

import (
	agentConfiguration "github.com/charisbit/net-rewire/infrastructure/PAL/configuration/agent"
)

type AppDependencies interface {
	Configuration() *agentConfiguration.Configuration
	ConfigurationManager() agentConfiguration.ConfigurationManager
}

type Dependencies struct {
	configuration        *agentConfiguration.Configuration
	configurationManager agentConfiguration.ConfigurationManager
}

func NewDependencies(
	configuration *agentConfiguration.Configuration,
	configurationManager agentConfiguration.ConfigurationManager,
) AppDependencies {
	return &Dependencies{
		configuration:        configuration,
		configurationManager: configurationManager,
	}
}

func (d Dependencies) Configuration() *agentConfiguration.Configuration {
	return d.configuration
}

func (d Dependencies) ConfigurationManager() agentConfiguration.ConfigurationManager {
	return d.configurationManager
}
