package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the browser keybindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Search   key.Binding
	Tag      key.Binding
	Role     key.Binding
	Projects key.Binding
	Articles key.Binding
	Clear    key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Tag: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "filter by tag"),
		),
		Role: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "cycle role"),
		),
		Projects: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "projects"),
		),
		Articles: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "articles"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh articles"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
