// Package tracker is the interactive combat tracker: a Bubble Tea view of
// the encounter in turn order with single-key turn and HP controls.
package tracker

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/dmscreen/internal/game"
	dmsync "github.com/marcus/dmscreen/internal/sync"
)

// inputMode is what the prompt line is collecting
type inputMode int

const (
	inputNone inputMode = iota
	inputDamage
	inputHeal
	inputCondition
)

// StatusMsg carries a sync status transition into the program.
type StatusMsg struct {
	Status dmsync.Status
	Err    string
}

// SyncFunc triggers an immediate push.
type SyncFunc func()

// Model is the Bubble Tea model for the tracker
type Model struct {
	store  *game.Store
	syncFn SyncFunc
	keys   keyMap
	help   help.Model
	input  textinput.Model

	mode     inputMode
	cursor   int // position in the sorted view
	width    int
	height   int
	status   dmsync.Status
	syncErr  string
	message  string
	showHelp bool
}

// New creates a tracker over store. syncFn may be nil when sync is off.
func New(store *game.Store, syncFn SyncFunc) Model {
	ti := textinput.New()
	ti.CharLimit = 40
	ti.Width = 30
	return Model{
		store:  store,
		syncFn: syncFn,
		keys:   defaultKeys(),
		help:   help.New(),
		input:  ti,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case StatusMsg:
		m.status = msg.Status
		m.syncErr = msg.Err
		return m, nil

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// selected returns the encounter index under the cursor, or -1.
func (m Model) selected() int {
	view := m.store.SortedView()
	if len(view) == 0 {
		return -1
	}
	if m.cursor >= len(view) {
		return view[len(view)-1].Index
	}
	return view[m.cursor].Index
}

func (m *Model) clampCursor() {
	n := len(m.store.SortedView())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.Start):
		m.store.StartCombat()
	case key.Matches(msg, m.keys.Next):
		m.store.NextTurn()
	case key.Matches(msg, m.keys.Prev):
		m.store.PreviousTurn()
	case key.Matches(msg, m.keys.EndRound):
		m.store.EndRound()
	case key.Matches(msg, m.keys.Reset):
		m.store.ResetCombat()
	case key.Matches(msg, m.keys.RollAll):
		m.store.RollAllInitiative()
	case key.Matches(msg, m.keys.Sort):
		m.store.ToggleSort()
	case key.Matches(msg, m.keys.Copy):
		if i := m.selected(); i >= 0 {
			m.store.CopyEncounter(i)
		}
	case key.Matches(msg, m.keys.Remove):
		if i := m.selected(); i >= 0 {
			m.store.RemoveCharacter(i)
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.Damage):
		return m.startInput(inputDamage, "damage: ")
	case key.Matches(msg, m.keys.Heal):
		return m.startInput(inputHeal, "heal: ")
	case key.Matches(msg, m.keys.Condition):
		return m.startInput(inputCondition, "condition: ")
	case key.Matches(msg, m.keys.Sync):
		if m.syncFn == nil {
			m.message = "sync is not configured"
			return m, nil
		}
		fn := m.syncFn
		return m, func() tea.Msg {
			fn()
			return nil
		}
	}
	return m, nil
}

func (m Model) startInput(mode inputMode, prompt string) (tea.Model, tea.Cmd) {
	if m.selected() < 0 {
		return m, nil
	}
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue("")
	if mode == inputCondition {
		view := m.store.SortedView()
		m.clampCursor()
		m.input.SetValue(view[m.cursor].Character.Status)
	}
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.commitInput()
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) commitInput() {
	i := m.selected()
	if i < 0 {
		return
	}
	value := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case inputCondition:
		m.store.UpdateCondition(i, value)
	case inputDamage, inputHeal:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			m.message = "enter a non-negative number"
			return
		}
		if m.mode == inputDamage {
			n = -n
		}
		m.store.ApplyAdjustment(i, n)
	}
}

// Run starts the tracker full-screen and returns when the user quits. ready
// receives the program's Send so other goroutines can deliver StatusMsg.
func Run(store *game.Store, syncFn SyncFunc, ready func(send func(tea.Msg))) error {
	p := tea.NewProgram(New(store, syncFn), tea.WithAltScreen())
	if ready != nil {
		ready(p.Send)
	}
	_, err := p.Run()
	return err
}
