package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keyboard bindings. Some keys mean different
// things on different screens; Update dispatches on the active screen first.
type KeyMap struct {
	Enter      key.Binding
	Next       key.Binding
	Complete   key.Binding
	Options    key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Background key.Binding
	Rubric     key.Binding
	Feedback   key.Binding
	Learning   key.Binding
	Menu       key.Binding
	Reload     key.Binding
	Restart    key.Binding
	Back       key.Binding
	Escape     key.Binding
	Quit       key.Binding
	Debug      key.Binding
	Up         key.Binding
	Down       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit / start"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", " "),
			key.WithHelp("n", "next event"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete scenario"),
		),
		Options: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "choose option"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next part"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev part"),
		),
		Background: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "scenario background"),
		),
		Rubric: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "scoring rubric"),
		),
		Feedback: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "feedback details"),
		),
		Learning: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "learning center"),
		),
		Menu: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "main menu"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload scenarios"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart scenario"),
		),
		Back: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "back to scenario"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close / back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Debug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "debug log"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
	}
}
