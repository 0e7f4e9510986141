package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charisbit/net-rewire/infrastructure/telemetry/counters"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/trafficstats"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultRefreshInterval = 500 * time.Millisecond

// ErrUserExit is returned by Run when the user quits the dashboard.
var ErrUserExit = errors.New("dashboard exit requested")

// Options describe what the dashboard shows. The dashboard is read-only:
// every source is polled on each refresh tick.
type Options struct {
	// Mode is shown in the title, e.g. "agent" or "relay".
	Mode     string
	Status   func() string
	Counters func() []counters.Field
	// Details are extra lines under the counters, e.g. live sessions.
	Details  func() []string
	Traffic  func() trafficstats.Snapshot
	LogFeed  LogFeed
	Interval time.Duration
}

type screen int

const (
	screenStats screen = iota
	screenLogs
)

type tickMsg struct{}

type contextDoneMsg struct{}

type Dashboard struct {
	ctx      context.Context
	options  Options
	keys     keyMap
	screen   screen
	width    int
	height   int
	quit     bool
	status   string
	fields   []counters.Field
	details  []string
	traffic  trafficstats.Snapshot
	logLines []string
}

func NewDashboard(ctx context.Context, options Options) Dashboard {
	if options.Interval <= 0 {
		options.Interval = defaultRefreshInterval
	}
	if options.Traffic == nil {
		options.Traffic = trafficstats.SnapshotGlobal
	}
	m := Dashboard{
		ctx:     ctx,
		options: options,
		keys:    defaultKeyMap(),
	}
	m.refresh()
	return m
}

// Run shows the dashboard until ctx is done or the user quits.
func Run(ctx context.Context, options Options) error {
	program := tea.NewProgram(NewDashboard(ctx, options), tea.WithAltScreen())
	result, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if final, ok := result.(Dashboard); ok && final.quit {
		return ErrUserExit
	}
	return nil
}

func (m Dashboard) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.options.Interval), waitForContextDone(m.ctx))
}

func (m Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.options.Interval)
	case contextDoneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quit = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			if m.screen == screenStats {
				m.screen = screenLogs
			} else {
				m.screen = screenStats
			}
			m.refresh()
		}
	}
	return m, nil
}

func (m Dashboard) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("net-rewire "+m.options.Mode) + "  " + m.tabs())
	b.WriteString("\n\n")
	if m.screen == screenLogs {
		b.WriteString(m.logsView())
	} else {
		b.WriteString(m.statsView())
	}
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render(m.keys.hint()))
	return frameStyle.Render(b.String())
}

func (m *Dashboard) refresh() {
	if m.options.Status != nil {
		m.status = m.options.Status()
	}
	if m.options.Counters != nil {
		m.fields = m.options.Counters()
	}
	if m.options.Details != nil {
		m.details = m.options.Details()
	}
	m.traffic = m.options.Traffic()
	if m.screen == screenLogs && m.options.LogFeed != nil {
		m.logLines = m.options.LogFeed.Tail(m.logRows())
	}
}

func (m Dashboard) tabs() string {
	stats, logs := inactiveTabStyle, inactiveTabStyle
	if m.screen == screenStats {
		stats = activeTabStyle
	} else {
		logs = activeTabStyle
	}
	return stats.Render("Stats") + " " + logs.Render("Logs")
}

func (m Dashboard) statsView() string {
	lines := []string{}
	if m.status != "" {
		lines = append(lines, m.status, "")
	}
	for _, f := range m.fields {
		style := valueStyle
		if f.Value > 0 && isFailureField(f.Name) {
			style = warnValueStyle
		}
		lines = append(lines, labelStyle.Render(f.Name)+style.Render(fmt.Sprintf("%d", f.Value)))
	}
	lines = append(lines, "",
		labelStyle.Render("Upstream")+formatDirection(m.traffic.Up),
		labelStyle.Render("Downstream")+formatDirection(m.traffic.Down),
	)
	if len(m.details) > 0 {
		lines = append(lines, "")
		lines = append(lines, m.details...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Dashboard) logsView() string {
	if m.options.LogFeed == nil {
		return hintStyle.Render("Log capture is disabled.")
	}
	if len(m.logLines) == 0 {
		return hintStyle.Render("No log lines yet.")
	}
	return strings.Join(m.logLines, "\n")
}

// logRows is the log tail that fits under the title and above the hint.
func (m Dashboard) logRows() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-6, 1)
}

func formatDirection(d trafficstats.DirectionSnapshot) string {
	return fmt.Sprintf("%d pkts, %s, %s", d.Packets, trafficstats.FormatTotal(d.Bytes), trafficstats.FormatRate(d.Rate))
}

func isFailureField(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "fail") || strings.Contains(n, "error")
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func waitForContextDone(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return contextDoneMsg{}
	}
}
