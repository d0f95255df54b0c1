package session

import (
	"context"
	"sync"
)

// AuthState is what the identity provider tells us about login
type AuthState struct {
	UserID  string
	Loading bool
	Err     error
}

// Factory builds an unstarted session for userID
type Factory func(userID string) *Session

// Controller keeps at most one session alive, following auth changes
type Controller struct {
	factory Factory

	mu      sync.Mutex
	current *Session
}

// NewController returns a controller creating sessions with factory
func NewController(factory Factory) *Controller {
	return &Controller{factory: factory}
}

// Update reacts to a new auth state. A settled login for a new user closes
// any previous session and begins a fresh one; loading, errors and logout
// close the current session. The returned error is from Begin.
func (c *Controller) Update(ctx context.Context, auth AuthState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if auth.Loading || auth.Err != nil || auth.UserID == "" {
		c.closeLocked()
		return nil
	}
	if c.current != nil && c.current.UserID() == auth.UserID {
		return nil
	}

	c.closeLocked()
	s := c.factory(auth.UserID)
	c.current = s
	return s.Begin(ctx)
}

// Current returns the active session or nil
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close tears down the active session
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Controller) closeLocked() {
	if c.current != nil {
		c.current.Close()
		c.current = nil
	}
}
