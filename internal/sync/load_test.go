package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcus/dmscreen/internal/models"
	"github.com/marcus/dmscreen/internal/sync/synctest"
)

func TestLoadConflictMatrix(t *testing.T) {
	t1 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	remoteFull := models.SyncRecord{GameState: stateWith("Orc"), LastSync: t1}
	remoteEmpty := models.SyncRecord{GameState: models.DefaultState(), LastSync: t1}
	localFull := stateWith("Goblin")

	tests := []struct {
		name      string
		remote    *models.SyncRecord
		local     models.GameState
		localTime *time.Time
		wantRem   bool
		wantConf  bool
		wantNewer bool
	}{
		{"no remote", nil, localFull, &t2, false, false, false},
		{"both data, times differ", &remoteFull, localFull, &t2, true, true, true},
		{"both data, local older", &remoteFull, localFull, ptrTime(t1.Add(-time.Hour)), true, true, false},
		{"both data, no local record", &remoteFull, localFull, nil, true, true, false},
		{"both data, same time", &remoteFull, localFull, &t1, true, false, false},
		{"remote empty", &remoteEmpty, localFull, &t2, true, false, true},
		{"local empty", &remoteFull, models.DefaultState(), &t2, true, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			remote := synctest.NewRemote(nil)
			if tc.remote != nil {
				remote.Put("u1", *tc.remote)
			}
			last := synctest.NewLastSync()
			if tc.localTime != nil {
				last.SetLastSync("u1", *tc.localTime)
			}
			m := New("u1", remote, last)

			res, err := m.LoadWithConflictResolution(context.Background(), tc.local)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if res.HasRemote != tc.wantRem || res.HasConflict != tc.wantConf || res.LocalIsNewer != tc.wantNewer {
				t.Fatalf("got remote=%v conflict=%v newer=%v", res.HasRemote, res.HasConflict, res.LocalIsNewer)
			}
			if tc.remote != nil && res.Remote == nil {
				t.Fatal("result missing remote record")
			}
		})
	}
}

func TestLoadComparesInstantsNotRepresentation(t *testing.T) {
	utc := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	remote := synctest.NewRemote(nil)
	remote.Put("u1", models.SyncRecord{GameState: stateWith("Orc"), LastSync: utc})
	last := synctest.NewLastSync()
	last.SetLastSync("u1", utc.In(time.FixedZone("CET", 3600)))

	res, err := New("u1", remote, last).LoadWithConflictResolution(context.Background(), stateWith("Goblin"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.HasConflict {
		t.Fatal("same instant in another zone reported as conflict")
	}
}

func TestLoadPrimesFingerprint(t *testing.T) {
	remote := synctest.NewRemote(nil)
	remote.Put("u1", models.SyncRecord{GameState: stateWith("Orc"), LastSync: time.Now()})
	m := New("u1", remote, synctest.NewLastSync())

	res, err := m.LoadWithConflictResolution(context.Background(), models.DefaultState())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m.ManualSync(context.Background(), fixed(res.Remote.GameState), nil, nil)
	if w := remote.Writes(); w != 0 {
		t.Fatalf("unchanged remote state pushed back: writes = %d", w)
	}
}

func TestLoadErrorIsWrapped(t *testing.T) {
	remote := synctest.NewRemote(nil)
	remote.GetErr = errors.New("dns failure")
	_, err := New("u1", remote, synctest.NewLastSync()).LoadWithConflictResolution(context.Background(), models.DefaultState())
	if !errors.Is(err, remote.GetErr) {
		t.Fatalf("err = %v", err)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
