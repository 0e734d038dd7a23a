package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the arena.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Place key.Binding

	Next     key.Binding
	End      key.Binding
	Snapshot key.Binding

	Resume  key.Binding
	Abandon key.Binding

	Focus  key.Binding
	Expand key.Binding
	Delete key.Binding
	Submit key.Binding

	Quit      key.Binding
	Interrupt key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Place: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "place")),

		Next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next round")),
		End:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end session")),
		Snapshot: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snapshot")),

		Resume:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		Abandon: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "abandon")),

		Focus:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "focus")),
		Expand: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),

		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// cellForDigit maps "1".."9" to cell 0..8.
func cellForDigit(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}
