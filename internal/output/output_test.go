package output

import (
	"strings"
	"testing"
	"time"

	"github.com/marcus/dmscreen/internal/models"
	dmsync "github.com/marcus/dmscreen/internal/sync"
)

func TestFormatTimeAgo(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{time.Minute, "1m ago"},
		{30 * time.Minute, "30m ago"},
		{time.Hour, "1h ago"},
		{23 * time.Hour, "23h ago"},
		{24 * time.Hour, "1d ago"},
		{6 * 24 * time.Hour, "6d ago"},
	}
	for _, tc := range tests {
		if got := FormatTimeAgo(time.Now().Add(-tc.ago)); got != tc.want {
			t.Errorf("FormatTimeAgo(-%v) = %q, want %q", tc.ago, got, tc.want)
		}
	}

	old := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := FormatTimeAgo(old); got != "2023-01-02" {
		t.Errorf("old date: %q", got)
	}
	if got := FormatTimeAgo(time.Time{}); got != "never" {
		t.Errorf("zero time: %q", got)
	}
}

func TestFormatOptional(t *testing.T) {
	if got := FormatOptional(nil); got != "-" {
		t.Errorf("nil: %q", got)
	}
	if got := FormatOptional(models.IntPtr(14)); got != "14" {
		t.Errorf("14: %q", got)
	}
}

func TestFormatCharacterLine(t *testing.T) {
	c := models.Character{
		Name: "Orc", HP: 3, MaxHP: 15, Initiative: 12, InitiativeMod: 1,
		Status: "prone", AC: models.IntPtr(13),
		Abilities: []models.Ability{{Name: "Rage", Max: 2, Used: 1}},
	}
	line := FormatCharacterLine(2, c, true)
	for _, want := range []string{"#2", "Orc", "3/15", "AC 13", "Init 12 (+1)", "[prone]", "Rage 1/2", "▶"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q:\n%s", want, line)
		}
	}
	if strings.Contains(FormatCharacterLine(0, c, false), "▶") {
		t.Error("inactive line has turn marker")
	}
}

func TestFormatDeathSave(t *testing.T) {
	tests := []struct {
		ds   models.DeathSave
		want string
	}{
		{models.DeathSave{Name: "Ana", Successes: 1, Failures: 2}, "●○○"},
		{models.DeathSave{Name: "Ana", Failures: 3}, "dead"},
		{models.DeathSave{Name: "Ana", Successes: 3}, "stabilized"},
		{models.DeathSave{Name: "Ana", Stable: true, Failures: 3}, "stable"},
	}
	for _, tc := range tests {
		if got := FormatDeathSave(0, tc.ds); !strings.Contains(got, tc.want) {
			t.Errorf("FormatDeathSave(%+v) = %q, want substring %q", tc.ds, got, tc.want)
		}
	}
}

func TestFormatBastionLong(t *testing.T) {
	b := models.Bastion{
		Name: "Keep", Owner: "Ana", Facilities: []string{"Forge", "Library"},
		TurnDay: 3, LastEvent: "All quiet", LastProcessedDay: 7,
	}
	out := FormatBastionLong(1, b, 10)
	for _, want := range []string{"Keep", "(Ana)", "Order: none", "3/7", "day 7 of 10", "Forge, Library", "All quiet"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatSyncStatus(t *testing.T) {
	for _, s := range []dmsync.Status{dmsync.StatusIdle, dmsync.StatusSyncing, dmsync.StatusSynced, dmsync.StatusError} {
		if got := FormatSyncStatus(s); !strings.Contains(got, s.String()) {
			t.Errorf("FormatSyncStatus(%v) = %q", s, got)
		}
	}
}

func TestStatusMarkdown(t *testing.T) {
	st := models.DefaultState()
	st.CurrentDay = 12
	st.CurrentRound = 2
	st.Players = []models.Player{{Name: "Ana"}}

	md := StatusMarkdown(st, nil)
	for _, want := range []string{"**Day:** 12", "round 2", "**Players:** 1", "Not signed in"} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}

	md = StatusMarkdown(st, &SyncSummary{UserID: "u_1", Backend: "http", Auto: true, Interval: 5 * time.Minute})
	for _, want := range []string{"`u_1` via http", "Last sync:** never", "every 5m0s"} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	got, err := RenderMarkdownWithWidth("   ", 40)
	if err != nil || got != "" {
		t.Fatalf("empty render: %q %v", got, err)
	}
}

func TestIndentString(t *testing.T) {
	if got := IndentString("a\nb", 2); got != "  a\n  b" {
		t.Errorf("indent: %q", got)
	}
	if got := IndentString("", 2); got != "" {
		t.Errorf("empty: %q", got)
	}
}
