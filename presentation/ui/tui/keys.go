package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Tab  key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) hint() string {
	return k.Tab.Help().Key + " " + k.Tab.Help().Desc + " | " + k.Quit.Help().Key + " " + k.Quit.Help().Desc
}
