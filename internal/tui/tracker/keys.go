package tracker

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the tracker bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Start     key.Binding
	Next      key.Binding
	Prev      key.Binding
	EndRound  key.Binding
	Reset     key.Binding
	RollAll   key.Binding
	Sort      key.Binding
	Damage    key.Binding
	Heal      key.Binding
	Condition key.Binding
	Copy      key.Binding
	Remove    key.Binding
	Sync      key.Binding
	Help      key.Binding
	Quit      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Start:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start combat")),
		Next:      key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n", "next turn")),
		Prev:      key.NewBinding(key.WithKeys("p", "shift+tab"), key.WithHelp("p", "previous turn")),
		EndRound:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end round")),
		Reset:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset combat")),
		RollAll:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "roll initiative")),
		Sort:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "toggle sort")),
		Damage:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "damage")),
		Heal:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "heal")),
		Condition: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "condition")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Remove:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Sync:      key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sync now")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:   key.NewBinding(key.WithKeys("enter")),
		Cancel:    key.NewBinding(key.WithKeys("esc")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Damage, k.Heal, k.Sync, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Start, k.Next, k.Prev, k.EndRound, k.Reset},
		{k.RollAll, k.Sort, k.Damage, k.Heal, k.Condition, k.Copy, k.Remove},
		{k.Sync, k.Help, k.Quit},
	}
}
