// Package output provides styled terminal output helpers (success, error,
// warning, roster formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/dmscreen/internal/models"
	dmsync "github.com/marcus/dmscreen/internal/sync"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	statusStyles = map[dmsync.Status]lipgloss.Style{
		dmsync.StatusIdle:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		dmsync.StatusSyncing: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		dmsync.StatusSynced:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		dmsync.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// FormatSyncStatus formats a sync status with color
func FormatSyncStatus(s dmsync.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return s.String()
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// FormatOptional renders an optional score, "-" when unset.
func FormatOptional(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// FormatHP renders "hp/max", red at zero and amber at half or below.
func FormatHP(hp, maxHP int) string {
	s := fmt.Sprintf("%d/%d", hp, maxHP)
	switch {
	case hp <= 0:
		return errorStyle.Render(s)
	case maxHP > 0 && hp*2 <= maxHP:
		return warningStyle.Render(s)
	}
	return s
}

// FormatCharacterLine formats one encounter row. idx is the insertion
// index used to address the character on the command line.
func FormatCharacterLine(idx int, c models.Character, active bool) string {
	var parts []string
	marker := "  "
	if active {
		marker = activeStyle.Render("▶ ")
	}
	name := c.Name
	if active {
		name = activeStyle.Render(name)
	} else {
		name = titleStyle.Render(name)
	}
	parts = append(parts, marker+subtleStyle.Render(fmt.Sprintf("#%d", idx)), name)
	parts = append(parts, "HP "+FormatHP(c.HP, c.MaxHP))
	parts = append(parts, "AC "+FormatOptional(c.AC))
	parts = append(parts, fmt.Sprintf("Init %d (%+d)", c.Initiative, c.InitiativeMod))
	if c.Status != "" {
		parts = append(parts, warningStyle.Render("["+c.Status+"]"))
	}
	line := strings.Join(parts, "  ")
	for _, a := range c.Abilities {
		line += "\n" + subtleStyle.Render(fmt.Sprintf("        %s %d/%d", a.Name, a.Used, a.Max))
	}
	return line
}

// FormatPlayerLine formats one party member
func FormatPlayerLine(idx int, p models.Player) string {
	return fmt.Sprintf("%s  %s  PP %s  PI %s  AC %s",
		subtleStyle.Render(fmt.Sprintf("#%d", idx)),
		titleStyle.Render(p.Name),
		FormatOptional(p.PP), FormatOptional(p.PI), FormatOptional(p.AC))
}

// FormatDeathSave renders success and failure pips.
func FormatDeathSave(idx int, d models.DeathSave) string {
	pips := func(n int, on string) string {
		return strings.Repeat(on, n) + strings.Repeat("○", models.MaxDeathSaves-n)
	}
	line := fmt.Sprintf("%s  %s  %s %s",
		subtleStyle.Render(fmt.Sprintf("#%d", idx)),
		titleStyle.Render(d.Name),
		successStyle.Render(pips(d.Successes, "●")),
		errorStyle.Render(pips(d.Failures, "●")))
	switch {
	case d.Stable:
		line += "  " + successStyle.Render("stable")
	case d.Failures >= models.MaxDeathSaves:
		line += "  " + errorStyle.Render("dead")
	case d.Successes >= models.MaxDeathSaves:
		line += "  " + successStyle.Render("stabilized")
	}
	return line
}

// FormatLink formats a bookmarked link
func FormatLink(idx int, l models.Link) string {
	return fmt.Sprintf("%s  %s  %s", subtleStyle.Render(fmt.Sprintf("#%d", idx)), titleStyle.Render(l.Name), l.URL)
}

// FormatBastionLong formats a bastion with its facilities and last event.
func FormatBastionLong(idx int, b models.Bastion, currentDay int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s  %s", subtleStyle.Render(fmt.Sprintf("#%d", idx)), titleStyle.Render(b.Name)))
	if b.Owner != "" {
		sb.WriteString(subtleStyle.Render(" (" + b.Owner + ")"))
	}
	sb.WriteString("\n")

	order := string(b.CurrentOrder)
	if order == "" {
		order = "none"
	}
	sb.WriteString(fmt.Sprintf("    Order: %s | Turn day: %d/%d | Processed through day %d of %d\n",
		order, b.TurnDay, models.BastionTurnDays, b.LastProcessedDay, currentDay))
	if len(b.Facilities) > 0 {
		sb.WriteString("    Facilities: " + strings.Join(b.Facilities, ", ") + "\n")
	}
	if b.LastEvent != "" {
		sb.WriteString("    Last event: " + b.LastEvent + "\n")
	}
	if b.Note != "" {
		sb.WriteString(subtleStyle.Render("    Note: "+b.Note) + "\n")
	}
	return sb.String()
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nPLAYERS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// IndentString indents each line in a string by the specified number of spaces
func IndentString(s string, spaces int) string {
	if s == "" {
		return ""
	}
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
