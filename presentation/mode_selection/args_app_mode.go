package mode_selection

import (
	"strings"

	"github.com/charisbit/net-rewire/domain/app"
	"github.com/charisbit/net-rewire/domain/mode"
)

const tuiFlag = "-tui"

// ArgsAppMode parses "<mode> [config-path] [-tui]". The program name must
// not be part of arguments.
type ArgsAppMode struct {
	positional []string
	uiMode     app.UIMode
}

func NewArgsAppMode(arguments []string) AppMode {
	a := &ArgsAppMode{uiMode: app.CLI}
	for _, arg := range arguments {
		trimmed := strings.TrimSpace(arg)
		if strings.EqualFold(trimmed, tuiFlag) || strings.EqualFold(trimmed, "-"+tuiFlag) {
			a.uiMode = app.TUI
			continue
		}
		a.positional = append(a.positional, trimmed)
	}
	return a
}

func (a *ArgsAppMode) Mode() (mode.Mode, error) {
	if len(a.positional) == 0 {
		return mode.Unknown, mode.NewNoModeProvided()
	}

	modeArgument := strings.ToLower(a.positional[0])
	switch modeArgument {
	case "c", "agent":
		return mode.Agent, nil
	case "s", "relay":
		return mode.Relay, nil
	case "version", "-v", "--version":
		return mode.Version, nil
	default:
		return mode.Unknown, mode.NewInvalidModeProvided(modeArgument)
	}
}

func (a *ArgsAppMode) ConfigPath() string {
	if len(a.positional) < 2 {
		return ""
	}
	return a.positional[1]
}

func (a *ArgsAppMode) UIMode() app.UIMode {
	return a.uiMode
}
