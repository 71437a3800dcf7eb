package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextPane key.Binding
	PrevPane key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	Edit   key.Binding
	Cancel key.Binding
	AddRow key.Binding
	DelRow key.Binding

	Train  key.Binding
	Stop   key.Binding
	Reset  key.Binding
	Open   key.Binding
	Export key.Binding
	Init   key.Binding

	Help key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		PrevPane: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),

		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up / intercept+")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down / intercept-")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left / slope-")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right / slope+")),

		Edit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		AddRow: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		DelRow: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete row")),

		Train:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "train")),
		Stop:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open dataset")),
		Export: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export png")),
		Init:   key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "init workspace")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPane, k.Edit, k.Train, k.Stop, k.Reset, k.Open, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPane, k.PrevPane, k.Up, k.Down, k.Left, k.Right},
		{k.Edit, k.Cancel, k.AddRow, k.DelRow},
		{k.Train, k.Stop, k.Reset, k.Open, k.Export, k.Init},
		{k.Help, k.Quit},
	}
}
