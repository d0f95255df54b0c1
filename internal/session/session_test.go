package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcus/dmscreen/internal/game"
	"github.com/marcus/dmscreen/internal/models"
	dsync "github.com/marcus/dmscreen/internal/sync"
	"github.com/marcus/dmscreen/internal/sync/synctest"
)

type harness struct {
	store  *game.Store
	remote *synctest.Remote
	last   *synctest.LastSync
	now    time.Time
	errs   []string

	conflicts chan Conflict
}

func (h *harness) onConflict(c Conflict) {
	select {
	case h.conflicts <- c:
	default:
	}
}

func newHarness(t *testing.T, local models.GameState) *harness {
	t.Helper()
	return &harness{
		store:  game.New(local, game.WithRoller(game.NewSeededRoller(1))),
		remote: synctest.NewRemote(nil),
		last:   synctest.NewLastSync(),
		now:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),

		conflicts: make(chan Conflict, 1),
	}
}

func (h *harness) session(userID string) *Session {
	return New(Config{
		UserID:      userID,
		Store:       h.store,
		Remote:      h.remote,
		LastSync:    h.last,
		SyncOptions:   []dsync.Option{dsync.WithInterval(time.Hour)},
		OnError:       func(msg string) { h.errs = append(h.errs, msg) },
		OnConflict:    h.onConflict,
		RetryInterval: 5 * time.Millisecond,
		Now:           func() time.Time { return h.now },
	})
}

func withEncounter(names ...string) models.GameState {
	s := models.DefaultState()
	for _, n := range names {
		s.Encounter = append(s.Encounter, models.Character{Name: n, Abilities: []models.Ability{}})
	}
	return s
}

func TestBeginWithoutRemoteStartsAutoSync(t *testing.T) {
	h := newHarness(t, withEncounter("Orc"))
	s := h.session("u1")
	defer s.Close()

	if err := s.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.State() != StateNoConflict || !s.Manager().Running() {
		t.Fatalf("state=%v running=%v", s.State(), s.Manager().Running())
	}
}

func TestBeginAdoptsRemoteWithoutConflict(t *testing.T) {
	h := newHarness(t, models.DefaultState())
	stamp := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	h.remote.Put("u1", models.SyncRecord{GameState: withEncounter("Dragon"), LastSync: stamp})
	s := h.session("u1")
	defer s.Close()

	if err := s.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if got := h.store.Snapshot().Encounter; len(got) != 1 || got[0].Name != "Dragon" {
		t.Fatalf("encounter = %+v, want remote", got)
	}
	if ts, ok, _ := h.last.GetLastSync("u1"); !ok || !ts.Equal(stamp) {
		t.Fatalf("last sync = %v %v", ts, ok)
	}
	if !s.Manager().Running() {
		t.Fatal("auto-sync not started")
	}

	// adopting remote must not push it straight back
	if err := s.ManualSync(context.Background()); err != nil {
		t.Fatalf("ManualSync: %v", err)
	}
	if h.remote.Writes() != 0 {
		t.Fatalf("writes = %d", h.remote.Writes())
	}
}

func TestConflictGatesAutoSync(t *testing.T) {
	h := newHarness(t, withEncounter("Goblin"))
	h.remote.Put("u1", models.SyncRecord{GameState: withEncounter("Dragon"), LastSync: time.Now()})
	s := h.session("u1")
	defer s.Close()

	if err := s.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.State() != StatePendingUserDecision {
		t.Fatalf("state = %v", s.State())
	}
	if s.Manager().Running() {
		t.Fatal("auto-sync started before the conflict was resolved")
	}
	c, ok := s.Conflict()
	if !ok || c.Remote.Encounter[0].Name != "Dragon" {
		t.Fatalf("conflict = %+v %v", c, ok)
	}
	if got := h.store.Snapshot().Encounter[0].Name; got != "Goblin" {
		t.Fatalf("local state changed to %q before resolution", got)
	}
}

func TestResolveUseRemote(t *testing.T) {
	h := newHarness(t, withEncounter("Goblin"))
	h.remote.Put("u1", models.SyncRecord{GameState: withEncounter("Dragon"), LastSync: time.Now()})
	s := h.session("u1")
	defer s.Close()
	s.Begin(context.Background())

	if err := s.Resolve(context.Background(), ChoiceUseRemote); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := h.store.Snapshot().Encounter[0].Name; got != "Dragon" {
		t.Fatalf("encounter = %q, want Dragon", got)
	}
	if ts, _, _ := h.last.GetLastSync("u1"); !ts.Equal(h.now) {
		t.Fatalf("last sync = %v, want now", ts)
	}
	if s.State() != StateNoConflict || !s.Manager().Running() {
		t.Fatalf("state=%v running=%v", s.State(), s.Manager().Running())
	}
	if _, ok := s.Conflict(); ok {
		t.Fatal("conflict still reported")
	}
}

func TestResolveKeepLocalPushesLocal(t *testing.T) {
	h := newHarness(t, withEncounter("Goblin"))
	h.remote.Put("u1", models.SyncRecord{GameState: withEncounter("Dragon"), LastSync: time.Now()})
	s := h.session("u1")
	defer s.Close()
	s.Begin(context.Background())

	if err := s.Resolve(context.Background(), ChoiceKeepLocal); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := h.store.Snapshot().Encounter[0].Name; got != "Goblin" {
		t.Fatalf("keep local changed state to %q", got)
	}
	if err := s.ManualSync(context.Background()); err != nil {
		t.Fatalf("ManualSync: %v", err)
	}
	doc, _ := h.remote.Doc("u1")
	if doc.Encounter[0].Name != "Goblin" {
		t.Fatalf("remote = %q, want local pushed over it", doc.Encounter[0].Name)
	}
}

func TestResolveWithoutConflict(t *testing.T) {
	h := newHarness(t, models.DefaultState())
	s := h.session("u1")
	defer s.Close()
	s.Begin(context.Background())

	if err := s.Resolve(context.Background(), ChoiceKeepLocal); !errors.Is(err, ErrNoConflict) {
		t.Fatalf("err = %v, want ErrNoConflict", err)
	}
}

func TestBeginLoadErrorHoldsPushesUntilLoaded(t *testing.T) {
	h := newHarness(t, withEncounter("LocalOrc"))
	h.remote.Put("u1", models.SyncRecord{GameState: withEncounter("OtherDeviceDragon"), LastSync: time.Now()})
	h.remote.FailGets(errors.New("no route to host"))
	s := h.session("u1")
	defer s.Close()

	if err := s.Begin(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if len(h.errs) != 1 {
		t.Fatalf("errors surfaced = %v", h.errs)
	}
	if s.State() != StatePendingLoad || s.Manager().Running() {
		t.Fatalf("state=%v running=%v, want pending load with no auto-sync", s.State(), s.Manager().Running())
	}
	if err := s.ManualSync(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("ManualSync err = %v, want ErrNotLoaded", err)
	}

	h.remote.FailGets(nil)
	select {
	case c := <-h.conflicts:
		if c.Remote.Encounter[0].Name != "OtherDeviceDragon" {
			t.Fatalf("conflict remote = %+v", c.Remote.Encounter)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retry never raised the conflict")
	}

	if s.State() != StatePendingUserDecision || s.Manager().Running() {
		t.Fatalf("state=%v running=%v", s.State(), s.Manager().Running())
	}
	if err := s.ManualSync(context.Background()); !errors.Is(err, ErrConflictPending) {
		t.Fatalf("ManualSync err = %v, want ErrConflictPending", err)
	}
	doc, _ := h.remote.Doc("u1")
	if h.remote.Writes() != 0 || doc.Encounter[0].Name != "OtherDeviceDragon" {
		t.Fatalf("remote overwritten: writes=%d roster=%q", h.remote.Writes(), doc.Encounter[0].Name)
	}
}

func TestManualSyncLoadsFirstAfterFailedBegin(t *testing.T) {
	h := newHarness(t, withEncounter("Orc"))
	h.remote.FailGets(errors.New("offline"))
	s := New(Config{
		UserID:        "u1",
		Store:         h.store,
		Remote:        h.remote,
		LastSync:      h.last,
		SyncOptions:   []dsync.Option{dsync.WithInterval(time.Hour)},
		RetryInterval: time.Hour,
	})
	defer s.Close()

	s.Begin(context.Background())
	h.remote.FailGets(nil)
	if err := s.ManualSync(context.Background()); err != nil {
		t.Fatalf("ManualSync: %v", err)
	}
	if s.State() != StateNoConflict || !s.Manager().Running() {
		t.Fatalf("state=%v running=%v", s.State(), s.Manager().Running())
	}
	if h.remote.Writes() != 1 {
		t.Fatalf("writes = %d, want push after the checked load", h.remote.Writes())
	}
}

func TestBeginKeepsUnpushedLocalEdits(t *testing.T) {
	stamp := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	h := newHarness(t, withEncounter("Orc", "GoblinAddedOffline"))
	h.remote.Put("u1", models.SyncRecord{GameState: withEncounter("Orc"), LastSync: stamp})
	h.last.SetLastSync("u1", stamp)
	s := h.session("u1")
	defer s.Close()

	if err := s.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.State() != StateNoConflict || !s.KeptLocal() {
		t.Fatalf("state=%v keptLocal=%v", s.State(), s.KeptLocal())
	}
	if n := len(h.store.Snapshot().Encounter); n != 2 {
		t.Fatalf("roster size = %d, want local edits kept", n)
	}

	if err := s.ManualSync(context.Background()); err != nil {
		t.Fatalf("ManualSync: %v", err)
	}
	doc, _ := h.remote.Doc("u1")
	if len(doc.Encounter) != 2 {
		t.Fatalf("remote roster = %+v, want local pushed", doc.Encounter)
	}
}

func TestBeginAdoptsMatchingRemote(t *testing.T) {
	stamp := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	h := newHarness(t, withEncounter("Orc"))
	h.remote.Put("u1", models.SyncRecord{GameState: withEncounter("Orc"), LastSync: stamp})
	h.last.SetLastSync("u1", stamp)
	s := h.session("u1")
	defer s.Close()

	if err := s.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.KeptLocal() {
		t.Fatal("matching state reported as kept local")
	}
	if err := s.ManualSync(context.Background()); err != nil {
		t.Fatalf("ManualSync: %v", err)
	}
	if h.remote.Writes() != 0 {
		t.Fatalf("writes = %d, want none for matching state", h.remote.Writes())
	}
}

func TestCloseStopsAutoSync(t *testing.T) {
	h := newHarness(t, models.DefaultState())
	s := h.session("u1")
	s.Begin(context.Background())
	s.Close()
	if s.Manager().Running() {
		t.Fatal("still running after Close")
	}
}
