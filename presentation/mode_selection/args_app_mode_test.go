package mode_selection

import (
	"errors"
	"testing"

	"github.com/charisbit/net-rewire/domain/app"
	"github.com/charisbit/net-rewire/domain/mode"
)

func TestArgsAppMode_Mode(t *testing.T) {
	tests := []struct {
		name            string
		arguments       []string
		wantMode        mode.Mode
		wantErr         bool
		expectedErrMsg  string
		expectedErrType error
	}{
		{
			name:            "no mode provided",
			arguments:       []string{},
			wantMode:        mode.Unknown,
			wantErr:         true,
			expectedErrMsg:  "no mode provided",
			expectedErrType: mode.NewNoModeProvided(),
		},
		{
			name:      "agent mode ('c')",
			arguments: []string{"c"},
			wantMode:  mode.Agent,
		},
		{
			name:      "relay mode ('s')",
			arguments: []string{"s"},
			wantMode:  mode.Relay,
		},
		{
			name:      "relay mode by name",
			arguments: []string{"relay", "/tmp/relay.json"},
			wantMode:  mode.Relay,
		},
		{
			name:      "version",
			arguments: []string{"version"},
			wantMode:  mode.Version,
		},
		{
			name:      "agent mode with extra spaces and mixed case",
			arguments: []string{" C "},
			wantMode:  mode.Agent,
		},
		{
			name:      "tui flag before mode",
			arguments: []string{"-tui", "c"},
			wantMode:  mode.Agent,
		},
		{
			name:            "invalid mode",
			arguments:       []string{"x"},
			wantMode:        mode.Unknown,
			wantErr:         true,
			expectedErrMsg:  "x is not a valid mode",
			expectedErrType: mode.NewInvalidModeProvided("x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewArgsAppMode(tt.arguments).Mode()
			if got != tt.wantMode {
				t.Fatalf("mode = %v, want %v", got, tt.wantMode)
			}
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Error() != tt.expectedErrMsg {
				t.Fatalf("error = %q, want %q", err.Error(), tt.expectedErrMsg)
			}
			if !errors.Is(err, tt.expectedErrType) {
				t.Fatalf("error type = %T, want %T", err, tt.expectedErrType)
			}
		})
	}
}

func TestArgsAppMode_Options(t *testing.T) {
	tests := []struct {
		name      string
		arguments []string
		wantPath  string
		wantUI    app.UIMode
	}{
		{"defaults", []string{"c"}, "", app.CLI},
		{"config path", []string{"c", "./agent.json"}, "./agent.json", app.CLI},
		{"tui flag last", []string{"s", "/etc/relay.json", "-tui"}, "/etc/relay.json", app.TUI},
		{"double dash tui", []string{"--tui", "s"}, "", app.TUI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewArgsAppMode(tt.arguments)
			if m.ConfigPath() != tt.wantPath {
				t.Fatalf("ConfigPath = %q, want %q", m.ConfigPath(), tt.wantPath)
			}
			if m.UIMode() != tt.wantUI {
				t.Fatalf("UIMode = %v, want %v", m.UIMode(), tt.wantUI)
			}
		})
	}
}
