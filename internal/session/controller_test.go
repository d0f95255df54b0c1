package session

import (
	"context"
	"errors"
	"testing"

	"github.com/marcus/dmscreen/internal/models"
)

func TestControllerLifecycle(t *testing.T) {
	h := newHarness(t, models.DefaultState())
	var created []string
	c := NewController(func(userID string) *Session {
		created = append(created, userID)
		return h.session(userID)
	})
	defer c.Close()
	ctx := context.Background()

	c.Update(ctx, AuthState{Loading: true})
	if c.Current() != nil {
		t.Fatal("session created while auth is loading")
	}

	c.Update(ctx, AuthState{UserID: "u1"})
	first := c.Current()
	if first == nil || first.UserID() != "u1" || !first.Manager().Running() {
		t.Fatal("no running session after login")
	}

	c.Update(ctx, AuthState{UserID: "u1"})
	if c.Current() != first || len(created) != 1 {
		t.Fatal("same user recreated the session")
	}

	c.Update(ctx, AuthState{UserID: "u2"})
	if first.Manager().Running() {
		t.Fatal("old session still running after user change")
	}
	if c.Current().UserID() != "u2" {
		t.Fatalf("current user = %q", c.Current().UserID())
	}

	c.Update(ctx, AuthState{})
	if c.Current() != nil {
		t.Fatal("session survived logout")
	}

	c.Update(ctx, AuthState{UserID: "u3", Err: errors.New("token expired")})
	if c.Current() != nil {
		t.Fatal("session created on auth error")
	}
	if len(created) != 2 {
		t.Fatalf("created = %v", created)
	}
}
