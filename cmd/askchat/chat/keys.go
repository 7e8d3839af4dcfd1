package chat

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit      key.Binding
	Press       key.Binding
	Activate    key.Binding
	Next        key.Binding
	Prev        key.Binding
	ModeLeft    key.Binding
	ModeRight   key.Binding
	HistoryPrev key.Binding
	HistoryNext key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Cancel      key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		Press: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "ask"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
		),
		ModeLeft: key.NewBinding(
			key.WithKeys("left"),
		),
		ModeRight: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("←/→", "mode"),
		),
		HistoryPrev: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑/↓", "history"),
		),
		HistoryNext: key.NewBinding(
			key.WithKeys("down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgup/pgdn", "scroll"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer for the given state.
func (k keyMap) ShortHelp(busy bool) []key.Binding {
	if busy {
		return []key.Binding{k.Cancel, k.Next, k.ModeRight, k.PageDown, k.Quit}
	}
	return []key.Binding{k.Submit, k.Next, k.ModeRight, k.HistoryPrev, k.PageDown, k.Quit}
}
