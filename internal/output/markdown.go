package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/marcus/dmscreen/internal/models"
)

const (
	defaultMarkdownWidth = 80
	minMarkdownWidth     = 20
)

// TerminalWidth returns the current terminal width or a fallback when unavailable.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultMarkdownWidth
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}

	return fallback
}

// RenderMarkdown renders markdown using Glamour with terminal-aware wrapping.
func RenderMarkdown(text string) (string, error) {
	return RenderMarkdownWithWidth(text, TerminalWidth(defaultMarkdownWidth))
}

// RenderMarkdownWithWidth renders markdown using Glamour with explicit wrapping.
func RenderMarkdownWithWidth(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if width < minMarkdownWidth {
		width = minMarkdownWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(rendered, "\n"), nil
}

// SyncSummary describes the sync side of the status report.
type SyncSummary struct {
	UserID   string
	Backend  string
	LastSync time.Time
	Auto     bool
	Interval time.Duration
}

// StatusMarkdown builds the campaign overview printed by `dmscreen status`.
func StatusMarkdown(st models.GameState, sync *SyncSummary) string {
	var sb strings.Builder
	sb.WriteString("# Campaign\n\n")
	sb.WriteString(fmt.Sprintf("- **Day:** %d\n", st.CurrentDay))
	if st.CurrentRound > 0 {
		sb.WriteString(fmt.Sprintf("- **Combat:** round %d\n", st.CurrentRound))
	} else {
		sb.WriteString("- **Combat:** not started\n")
	}
	sb.WriteString(fmt.Sprintf("- **Turn order:** by %s\n", st.SortBy))
	sb.WriteString(fmt.Sprintf("- **Encounter:** %d, **Players:** %d, **Death saves:** %d\n",
		len(st.Encounter), len(st.Players), len(st.DeathSaves)))
	sb.WriteString(fmt.Sprintf("- **Bastions:** %d, **Links:** %d\n", len(st.Bastions), len(st.Links)))

	sb.WriteString("\n## Sync\n\n")
	if sync == nil || sync.UserID == "" {
		sb.WriteString("Not signed in. Run `dmscreen auth login` to enable sync.\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("- **User:** `%s` via %s\n", sync.UserID, sync.Backend))
	sb.WriteString(fmt.Sprintf("- **Last sync:** %s\n", FormatTimeAgo(sync.LastSync)))
	if sync.Auto {
		sb.WriteString(fmt.Sprintf("- **Auto-sync:** every %s\n", sync.Interval))
	} else {
		sb.WriteString("- **Auto-sync:** off\n")
	}
	return sb.String()
}
