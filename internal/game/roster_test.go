package game

import (
	"errors"
	"testing"

	"github.com/marcus/dmscreen/internal/models"
)

func TestDeathSavesClamp(t *testing.T) {
	s := newTestStore(t)
	s.AddDeathSave("Ana")

	for i := 0; i < 5; i++ {
		s.AdjustDeathSave(0, models.DeathSaveFailures, 1)
	}
	s.AdjustDeathSave(0, models.DeathSaveSuccesses, -2)
	s.ToggleStable(0)

	d := s.Snapshot().DeathSaves[0]
	if d.Failures != 3 || d.Successes != 0 || !d.Stable {
		t.Fatalf("death save = %+v", d)
	}

	s.ResetDeathSave(0)
	d = s.Snapshot().DeathSaves[0]
	if d.Failures != 0 || d.Successes != 0 || d.Stable {
		t.Fatalf("after reset = %+v", d)
	}

	s.RemoveDeathSave(0)
	if n := len(s.Snapshot().DeathSaves); n != 0 {
		t.Fatalf("death saves = %d", n)
	}
}

func TestLinksValidateURL(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddLink(models.Link{Name: "bad", URL: "ftp://x"}); !errors.Is(err, models.ErrInvalidLinkURL) {
		t.Fatalf("AddLink err = %v", err)
	}
	if err := s.AddLink(models.Link{Name: "SRD", URL: "https://example.com/srd"}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if err := s.UpdateLink(0, models.Link{Name: "SRD", URL: "nope"}); !errors.Is(err, models.ErrInvalidLinkURL) {
		t.Fatalf("UpdateLink err = %v", err)
	}
	links := s.Snapshot().Links
	if len(links) != 1 || links[0].URL != "https://example.com/srd" {
		t.Fatalf("links = %+v", links)
	}
}

func TestPlayersCRUD(t *testing.T) {
	s := newTestStore(t)
	s.AddPlayer(models.Player{Name: "Ana", PP: models.IntPtr(13)})
	s.AddPlayer(models.Player{Name: "Bob"})
	s.UpdatePlayer(1, models.Player{Name: "Bobby", PI: models.IntPtr(11)})
	s.RemovePlayer(0)

	ps := s.Snapshot().Players
	if len(ps) != 1 || ps[0].Name != "Bobby" || ps[0].PI == nil || *ps[0].PI != 11 {
		t.Fatalf("players = %+v", ps)
	}
}
