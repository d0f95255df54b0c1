package tracker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/dmscreen/internal/models"
	dmsync "github.com/marcus/dmscreen/internal/sync"
)

// View implements tea.Model
func (m Model) View() string {
	st := m.store.Snapshot()
	width := m.width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader(st, width))
	sb.WriteString("\n\n")

	view := m.store.SortedView()
	if len(view) == 0 {
		sb.WriteString(subtleStyle.Render("No combatants. Add some with `dmscreen encounter add`."))
		sb.WriteString("\n")
	}
	for pos, e := range view {
		active := st.CurrentRound > 0 && e.Index == st.CurrentTurnIndex
		line := renderRow(e.Index, e.Character, active)
		line = ansi.Truncate(line, width, "…")
		if pos == m.cursor {
			line = cursorStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if m.mode != inputNone {
		sb.WriteString(promptStyle.Render(m.input.View()))
		sb.WriteString("\n")
	} else if m.message != "" {
		sb.WriteString(errorStyle.Render(m.message))
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m Model) renderHeader(st models.GameState, width int) string {
	round := "not in combat"
	if st.CurrentRound > 0 {
		round = fmt.Sprintf("Round %d", st.CurrentRound)
	}
	text := fmt.Sprintf("%s | by %s | day %d | %s", round, st.SortBy, st.CurrentDay, renderStatus(m.status, m.syncErr))
	return headerStyle.Render(ansi.Truncate(text, width-2, "…"))
}

func renderStatus(s dmsync.Status, errMsg string) string {
	switch s {
	case dmsync.StatusSyncing:
		return "syncing…"
	case dmsync.StatusSynced:
		return "synced"
	case dmsync.StatusError:
		if errMsg != "" {
			return "sync error: " + errMsg
		}
		return "sync error"
	}
	return "idle"
}

func renderRow(idx int, c models.Character, active bool) string {
	marker := "  "
	name := c.Name
	if active {
		marker = activeStyle.Render("▶ ")
		name = activeStyle.Render(name)
	}

	hp := fmt.Sprintf("%d/%d", c.HP, c.MaxHP)
	switch {
	case c.HP <= 0:
		hp = downStyle.Render(hp)
	case c.MaxHP > 0 && c.HP*2 <= c.MaxHP:
		hp = bloodiedStyle.Render(hp)
	default:
		hp = okStyle.Render(hp)
	}

	ac := "-"
	if c.AC != nil {
		ac = fmt.Sprintf("%d", *c.AC)
	}
	row := fmt.Sprintf("%s%-3s %-20s %3d  HP %s  AC %s", marker, subtleStyle.Render(fmt.Sprintf("#%d", idx)), name, c.Initiative, hp, ac)
	if c.Status != "" {
		row += "  " + bloodiedStyle.Render("["+c.Status+"]")
	}
	return row
}
