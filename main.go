package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/domain/app"
	"github.com/charisbit/net-rewire/domain/mode"
	"github.com/charisbit/net-rewire/infrastructure/PAL/args"
	"github.com/charisbit/net-rewire/infrastructure/PAL/configuration"
	agentConfiguration "github.com/charisbit/net-rewire/infrastructure/PAL/configuration/agent"
	relayConfiguration "github.com/charisbit/net-rewire/infrastructure/PAL/configuration/relay"
	"github.com/charisbit/net-rewire/infrastructure/PAL/platform"
	palSignal "github.com/charisbit/net-rewire/infrastructure/PAL/signal"
	infraLogging "github.com/charisbit/net-rewire/infrastructure/logging"
	"github.com/charisbit/net-rewire/presentation/elevation"
	"github.com/charisbit/net-rewire/presentation/mode_selection"
	agentRunner "github.com/charisbit/net-rewire/presentation/runners/agent"
	relayRunner "github.com/charisbit/net-rewire/presentation/runners/relay"
	"github.com/charisbit/net-rewire/presentation/runners/version"
	"github.com/charisbit/net-rewire/presentation/signals"
	"github.com/charisbit/net-rewire/presentation/signals/shutdown"
	"github.com/charisbit/net-rewire/presentation/ui/tui"
)

const (
	RelayMode = "s"
	AgentMode = "c"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCtx, appCtxCancel := context.WithCancel(context.Background())
	defer appCtxCancel()

	signalCtx, stopSignals := context.WithCancel(context.Background())
	defer stopSignals()

	logger := infraLogging.NewLogLogger()
	shutdown.NewHandler(palSignal.NewDefaultProvider(), signals.NewOSNotifier(), appCtxCancel, logger).Start(signalCtx)

	appMode := mode_selection.NewArgsAppMode(args.NewDefaultProvider().Args())
	selectedMode, selectedModeErr := appMode.Mode()
	if selectedModeErr != nil {
		fmt.Println(selectedModeErr)
		printUsage()
		return 1
	}
	if selectedMode == mode.Version {
		version.NewRunner(os.Stdout).Run(appCtx)
		return 0
	}

	processElevation := elevation.NewProcessElevation()
	if !processElevation.IsElevated() {
		fmt.Printf("Warning: %s must be run with admin privileges. %s\n", app.Name, processElevation.Hint())
		return 1
	}

	uiMode := appMode.UIMode()
	if uiMode == app.TUI && !tui.IsInteractiveTerminal() {
		logger.Printf("no interactive terminal, dashboard disabled")
		uiMode = app.CLI
	}
	if uiMode == app.TUI {
		tui.EnableLogCapture(tui.DefaultLogCapacity)
		defer tui.DisableLogCapture()
	}

	var err error
	caps := platform.Capabilities()
	switch selectedMode {
	case mode.Agent:
		if !caps.AgentSupported() {
			fmt.Printf("%s mode is not supported on this platform\n", selectedMode)
			return 1
		}
		err = startAgent(appCtx, appMode.ConfigPath(), uiMode, logger)
	case mode.Relay:
		if !caps.RelaySupported() {
			fmt.Printf("%s mode is not supported on this platform\n", selectedMode)
			return 1
		}
		err = startRelay(appCtx, appMode.ConfigPath(), uiMode, logger)
	default:
		printUsage()
		return 1
	}
	if err != nil {
		logger.Printf("%s: %v", selectedMode, err)
		return 1
	}
	return 0
}

func startAgent(ctx context.Context, path string, uiMode app.UIMode, logger logging.Logger) error {
	resolver := configuration.NewPathResolver(path, configuration.DefaultPath(agentConfiguration.FileName))
	manager, err := agentConfiguration.NewManager(resolver, configuration.DefaultStat{})
	if err != nil {
		return err
	}
	conf, err := manager.Configuration()
	if err != nil {
		return fmt.Errorf("failed to read configuration from %s: %w", manager.Path(), err)
	}
	logger.Printf("using configuration %s", manager.Path())
	deps := agentRunner.NewDependencies(conf, manager)
	return agentRunner.NewRunner(uiMode, deps, logger).Run(ctx)
}

func startRelay(ctx context.Context, path string, uiMode app.UIMode, logger logging.Logger) error {
	resolver := configuration.NewPathResolver(path, configuration.DefaultPath(relayConfiguration.FileName))
	manager, err := relayConfiguration.NewManager(resolver, configuration.DefaultStat{})
	if err != nil {
		return err
	}
	conf, err := manager.Configuration()
	if err != nil {
		return fmt.Errorf("failed to read relay configuration: %w", err)
	}
	deps := relayRunner.NewDependencies(conf)
	return relayRunner.NewRunner(uiMode, deps, logger).Run(ctx)
}

func printUsage() {
	fmt.Printf(`Usage: %s <mode> [config-path] [-tui]
Modes:
  %s        - Relay
  %s        - Agent
  version  - Print version
`, app.Name, RelayMode, AgentMode)
}
