package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// useOfflineDevice isolates the CLI in temp dirs with no sync identity.
func useOfflineDevice(t *testing.T) {
	t.Helper()
	dataDir = ""
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DMSCREEN_DATA_DIR", t.TempDir())
	t.Setenv("DMSCREEN_USER_ID", "")
	t.Setenv("DMSCREEN_AUTH_KEY", "")
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestExportImportCommands(t *testing.T) {
	useOfflineDevice(t)

	for _, args := range [][]string{
		{"encounter", "add", "Goblin", "--hp", "7", "--ac", "15"},
		{"player", "add", "Ana", "--pp", "14"},
		{"bastion", "add", "Keep", "--owner", "Ana", "--facility", "Armory"},
		{"day", "advance", "3"},
	} {
		if err := run(t, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out := filepath.Join(t.TempDir(), "export.json")
	if err := run(t, "export", "--out", out); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Import into a fresh device.
	useOfflineDevice(t)
	if err := run(t, "import", out); err != nil {
		t.Fatalf("import: %v", err)
	}

	a := openTestApp(t)
	st := a.store.Snapshot()
	if len(st.Encounter) != 1 || st.Encounter[0].Name != "Goblin" || st.Encounter[0].AC == nil || *st.Encounter[0].AC != 15 {
		t.Errorf("encounter = %+v", st.Encounter)
	}
	if len(st.Players) != 1 || st.Players[0].PP == nil || *st.Players[0].PP != 14 {
		t.Errorf("players = %+v", st.Players)
	}
	if len(st.Bastions) != 1 || st.Bastions[0].Owner != "Ana" || len(st.Bastions[0].Facilities) != 1 {
		t.Errorf("bastions = %+v", st.Bastions)
	}
	if st.CurrentDay != 3 {
		t.Errorf("currentDay = %d, want 3", st.CurrentDay)
	}
}

func TestImportMalformedLeavesStateAlone(t *testing.T) {
	useOfflineDevice(t)
	if err := run(t, "encounter", "add", "Orc", "--hp", "15"); err != nil {
		t.Fatalf("add: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"encounter": [`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "import", bad); err == nil {
		t.Fatal("expected import error")
	}

	a := openTestApp(t)
	enc := a.store.Snapshot().Encounter
	if len(enc) != 1 || enc[0].Name != "Orc" {
		t.Errorf("encounter after failed import = %+v", enc)
	}
}

func TestCommandValidation(t *testing.T) {
	useOfflineDevice(t)
	tests := [][]string{
		{"encounter", "damage", "0", "5"},
		{"encounter", "sort", "speed"},
		{"bastion", "order", "0", "Craft"},
		{"link", "add", "SRD", "ftp://example.com"},
		{"day", "advance", "-2"},
	}
	for _, args := range tests {
		if err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}

	a := openTestApp(t)
	if st := a.store.Snapshot(); !st.IsEmpty() {
		t.Errorf("state changed by rejected commands: %+v", st)
	}
}

func TestEncounterUpdateKeepsHPWithinMax(t *testing.T) {
	useOfflineDevice(t)
	steps := []struct {
		args    []string
		hp, max int
	}{
		{[]string{"encounter", "add", "Orc", "--hp", "10", "--max-hp", "10"}, 10, 10},
		{[]string{"encounter", "update", "0", "--hp", "50"}, 10, 10},
		{[]string{"encounter", "update", "0", "--max-hp", "5"}, 5, 5},
	}
	for _, step := range steps {
		if err := run(t, step.args...); err != nil {
			t.Fatalf("%v: %v", step.args, err)
		}
		a, err := openApp()
		if err != nil {
			t.Fatalf("open app: %v", err)
		}
		c := a.store.Snapshot().Encounter[0]
		a.Close()
		if c.HP != step.hp || c.MaxHP != step.max {
			t.Fatalf("%v: hp=%d max=%d, want %d/%d", step.args, c.HP, c.MaxHP, step.hp, step.max)
		}
	}
}
