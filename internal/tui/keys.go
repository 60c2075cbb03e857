package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Focus    key.Binding
	Open     key.Binding
	Track    key.Binding
	Concepts key.Binding
	Days     key.Binding
	Refresh  key.Binding
	Clear    key.Binding
	Export   key.Binding
	Copy     key.Binding
	Logout   key.Binding
	Help     key.Binding
	Quit     key.Binding

	// Concept picker
	Check      key.Binding
	SelectAll  key.Binding
	SelectNone key.Binding
	Close      key.Binding

	// Track bar and days input
	Left   key.Binding
	Right  key.Binding
	Choose key.Binding
	Cancel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Open:     key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open")),
		Track:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "track")),
		Concepts: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "concepts")),
		Days:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "days")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export anki")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy csv")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Check:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		SelectAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		SelectNone: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "select none")),
		Close:      key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("enter", "done")),

		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Choose: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// bindings adapts a fixed set of rows to help.KeyMap. The first row is the
// short help.
type bindings [][]key.Binding

func (b bindings) ShortHelp() []key.Binding {
	if len(b) == 0 {
		return nil
	}
	return b[0]
}

func (b bindings) FullHelp() [][]key.Binding { return b }

func (k keyMap) normalHelp() bindings {
	return bindings{
		{k.Concepts, k.Track, k.Days, k.Refresh, k.Export, k.Help, k.Quit},
		{k.Up, k.Down, k.Focus, k.Open},
		{k.Clear, k.Copy, k.Logout},
	}
}

func (k keyMap) popoverHelp() bindings {
	return bindings{
		{k.Up, k.Down, k.Check, k.SelectAll, k.SelectNone, k.Close, k.Cancel},
		{k.Refresh},
	}
}

func (k keyMap) trackHelp() bindings {
	return bindings{{k.Left, k.Right, k.Choose, k.Cancel}}
}

func (k keyMap) daysHelp() bindings {
	return bindings{{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		k.Cancel,
	}}
}
