package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseSortMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SortMode
		wantErr bool
	}{
		{"initiative", SortInitiative, false},
		{"Name", SortName, false},
		{" name ", SortName, false},
		{"hp", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := ParseSortMode(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownSortMode) {
				t.Errorf("ParseSortMode(%q) err = %v, want ErrUnknownSortMode", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseSortMode(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestSortModeToggle(t *testing.T) {
	if SortInitiative.Toggle() != SortName {
		t.Error("initiative should toggle to name")
	}
	if SortName.Toggle() != SortInitiative {
		t.Error("name should toggle to initiative")
	}
}

func TestSortModeUnmarshalRejectsUnknown(t *testing.T) {
	var m SortMode
	if err := json.Unmarshal([]byte(`"speed"`), &m); err == nil {
		t.Fatal("expected error for unknown sort mode")
	}
	if err := json.Unmarshal([]byte(`"name"`), &m); err != nil || m != SortName {
		t.Fatalf("got %q, %v; want name", m, err)
	}
}

func TestParseBastionOrder(t *testing.T) {
	got, err := ParseBastionOrder("maintain")
	if err != nil || got != OrderMaintain {
		t.Fatalf("ParseBastionOrder(maintain) = %q, %v", got, err)
	}
	got, err = ParseBastionOrder("")
	if err != nil || got != OrderNone {
		t.Fatalf("ParseBastionOrder(\"\") = %q, %v", got, err)
	}
	if _, err := ParseBastionOrder("Plunder"); !errors.Is(err, ErrUnknownOrder) {
		t.Fatalf("expected ErrUnknownOrder, got %v", err)
	}
}

func TestBastionOrderUnmarshalIsLenient(t *testing.T) {
	var b Bastion
	if err := json.Unmarshal([]byte(`{"name":"Keep","currentOrder":"Plunder"}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.CurrentOrder != OrderNone {
		t.Errorf("unknown order decoded as %q, want none", b.CurrentOrder)
	}
	if err := json.Unmarshal([]byte(`{"currentOrder":"TRADE"}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.CurrentOrder != OrderTrade {
		t.Errorf("got %q, want Trade", b.CurrentOrder)
	}
}

func TestValidateLinkURL(t *testing.T) {
	valid := []string{"http://example.com", "https://dndbeyond.com/x", "HTTPS://CAPS.example"}
	for _, u := range valid {
		if err := ValidateLinkURL(u); err != nil {
			t.Errorf("ValidateLinkURL(%q) = %v, want nil", u, err)
		}
	}
	invalid := []string{"", "   ", "ftp://example.com", "example.com", "javascript:alert(1)"}
	for _, u := range invalid {
		if err := ValidateLinkURL(u); !errors.Is(err, ErrInvalidLinkURL) {
			t.Errorf("ValidateLinkURL(%q) = %v, want ErrInvalidLinkURL", u, err)
		}
	}
}

func TestCloneSharesNothing(t *testing.T) {
	s := DefaultState()
	s.Encounter = []Character{{Name: "Orc", AC: IntPtr(13), Abilities: []Ability{{Name: "Rage", Max: 2}}}}
	s.Players = []Player{{Name: "Ana", PP: IntPtr(14)}}
	s.Bastions = []Bastion{{Name: "Keep", Facilities: []string{"Smithy"}}}

	c := s.Clone()
	c.Encounter[0].Abilities[0].Used = 2
	*c.Encounter[0].AC = 99
	*c.Players[0].PP = 1
	c.Bastions[0].Facilities[0] = "Library"

	if s.Encounter[0].Abilities[0].Used != 0 {
		t.Error("clone shares abilities")
	}
	if *s.Encounter[0].AC != 13 {
		t.Error("clone shares AC pointer")
	}
	if *s.Players[0].PP != 14 {
		t.Error("clone shares player pointer")
	}
	if s.Bastions[0].Facilities[0] != "Smithy" {
		t.Error("clone shares facilities")
	}
}

func TestIsEmpty(t *testing.T) {
	if !DefaultState().IsEmpty() {
		t.Fatal("default state should be empty")
	}
	var zero GameState
	if !zero.IsEmpty() {
		t.Fatal("zero state should be empty")
	}

	s := DefaultState()
	s.CurrentRound = 3
	s.CurrentTurnIndex = 0
	if !s.IsEmpty() {
		t.Error("turn pointers alone should not count as data")
	}

	s = DefaultState()
	s.DarkMode = true
	if s.IsEmpty() {
		t.Error("dark mode differs from defaults")
	}

	s = DefaultState()
	s.Links = []Link{{Name: "SRD", URL: "https://example.com"}}
	if s.IsEmpty() {
		t.Error("links differ from defaults")
	}
}

func TestSyncRecordHasData(t *testing.T) {
	r := SyncRecord{GameState: DefaultState()}
	r.Links = []Link{{URL: "https://example.com"}}
	r.CurrentDay = 30
	if r.HasData() {
		t.Error("links and day alone are not remote data")
	}
	r.DeathSaves = []DeathSave{{Name: "Ana"}}
	if !r.HasData() {
		t.Error("death saves count as remote data")
	}
}

func TestSyncRecordJSONIsFlat(t *testing.T) {
	r := SyncRecord{GameState: DefaultState()}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"encounter", "sortBy", "currentTurnIndex", "lastSync"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing top-level key %q in %s", k, data)
		}
	}
	if _, ok := m["GameState"]; ok {
		t.Error("state should not be nested")
	}
}

func TestPlayerToCharacterIsIndependent(t *testing.T) {
	p := Player{Name: "Bob", AC: IntPtr(15), PP: IntPtr(12)}
	c := PlayerToCharacter(p)
	if c.Name != "Bob" || c.HP != 0 || c.MaxHP != 0 {
		t.Fatalf("unexpected character %+v", c)
	}
	*c.AC = 1
	if *p.AC != 15 {
		t.Error("character shares AC pointer with player")
	}
}
