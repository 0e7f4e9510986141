package app

const Name = "netrewire"

// UIMode selects how a runner presents itself while running.
type UIMode int

const (
	CLI UIMode = iota
	TUI
)
