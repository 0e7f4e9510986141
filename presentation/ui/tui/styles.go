package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8"))
	labelStyle = lipgloss.NewStyle().
			Width(22).
			Foreground(lipgloss.Color("7"))
	valueStyle = lipgloss.NewStyle().
			Bold(true)
	warnValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
	frameStyle = lipgloss.NewStyle().
			Padding(0, 1)
)
