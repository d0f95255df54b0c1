package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marcus/dmscreen/internal/fingerprint"
	"github.com/marcus/dmscreen/internal/models"
)

const (
	DefaultInterval    = 5 * time.Minute
	DefaultSyncedDecay = 2 * time.Second
	DefaultTimeout     = 30 * time.Second
)

// Manager owns the push loop for one user
type Manager struct {
	userID   string
	remote   RemoteStore
	lastSync LastSyncStore

	interval time.Duration
	decay    time.Duration
	timeout  time.Duration
	now      func() time.Time
	log      *slog.Logger

	inFlight atomic.Bool

	mu         sync.Mutex
	lastPushed fingerprint.Fingerprint
	status     Status
	statusGen  uint64
	lastErr    string
	lastPushAt time.Time
	stop       context.CancelFunc
	decayTimer *time.Timer
}

// Option configures a Manager
type Option func(*Manager)

// WithInterval sets the auto-sync tick interval
func WithInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithSyncedDecay sets how long the synced status shows before idle
func WithSyncedDecay(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.decay = d
		}
	}
}

// WithTimeout bounds each remote call
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New creates a manager for userID
func New(userID string, remote RemoteStore, lastSync LastSyncStore, opts ...Option) *Manager {
	m := &Manager{
		userID:   userID,
		remote:   remote,
		lastSync: lastSync,
		interval: DefaultInterval,
		decay:    DefaultSyncedDecay,
		timeout:  DefaultTimeout,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("user", userID)
	return m
}

// UserID returns the user this manager syncs for
func (m *Manager) UserID() string { return m.userID }

// Interval returns the auto-sync tick interval
func (m *Manager) Interval() time.Duration { return m.interval }

// Status returns the current push status
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// LastError returns the message of the most recent failed push, cleared by
// the next success.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// LastPushAt returns when the last successful push finished
func (m *Manager) LastPushAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPushAt
}

// Running reports whether the auto-sync loop is active
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop != nil
}

// StartAutoSync starts the periodic push loop, replacing any running one.
// The first push happens one interval after start.
func (m *Manager) StartAutoSync(state Accessor, onStatus StatusFunc, onError ErrorFunc) {
	m.StopAutoSync()

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.stop = cancel
	m.mu.Unlock()

	go func() {
		t := time.NewTicker(m.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if ctx.Err() != nil {
					return
				}
				// pushes run detached so a stop lets them finish
				m.push(context.Background(), state, onStatus, onError)
			}
		}
	}()
	m.log.Debug("auto-sync started", "interval", m.interval)
}

// StopAutoSync stops the loop without waiting for it. A push in flight
// completes on its own and no further tick fires. A pending synced to idle
// decay still runs. It is safe to call when nothing is running.
func (m *Manager) StopAutoSync() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	m.log.Debug("auto-sync stopped")
}

// ManualSync pushes now. If a push is already in flight it returns nil
// immediately without doing anything.
func (m *Manager) ManualSync(ctx context.Context, state Accessor, onStatus StatusFunc, onError ErrorFunc) error {
	return m.push(ctx, state, onStatus, onError)
}

func (m *Manager) push(ctx context.Context, state Accessor, onStatus StatusFunc, onError ErrorFunc) (err error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer m.inFlight.Store(false)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync panicked: %v", r)
			m.log.Error("sync panicked", "panic", r)
			m.fail(err, onStatus, onError)
		}
	}()

	m.setStatus(StatusSyncing, onStatus)

	snap := state()
	fp := fingerprint.Of(snap)
	if fp == m.lastPushedFingerprint() {
		m.setStatus(StatusIdle, onStatus)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	stamped, err := m.remote.Set(ctx, m.userID, snap)
	if err != nil {
		err = fmt.Errorf("push state: %w", err)
		m.fail(err, onStatus, onError)
		return err
	}

	m.mu.Lock()
	m.lastPushed = fp
	m.lastErr = ""
	m.lastPushAt = m.now()
	m.mu.Unlock()

	if err := m.lastSync.SetLastSync(m.userID, stamped); err != nil {
		m.log.Warn("record last sync", "err", err)
	}
	m.log.Debug("state pushed", "fingerprint", fp, "lastSync", stamped)

	gen := m.setStatus(StatusSynced, onStatus)
	m.scheduleDecay(gen, onStatus)
	return nil
}

func (m *Manager) fail(err error, onStatus StatusFunc, onError ErrorFunc) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
	m.log.Warn("sync failed", "err", err)

	m.setStatus(StatusError, onStatus)
	if onError != nil {
		safeCall(m.log, func() { onError(err.Error()) })
	}
}

// setStatus records s and notifies onStatus. It returns the generation of
// the transition so delayed transitions can tell if they are stale.
func (m *Manager) setStatus(s Status, onStatus StatusFunc) uint64 {
	m.mu.Lock()
	m.status = s
	m.statusGen++
	gen := m.statusGen
	m.mu.Unlock()
	if onStatus != nil {
		safeCall(m.log, func() { onStatus(s) })
	}
	return gen
}

// scheduleDecay flips synced back to idle unless something else happened
// in the meantime.
func (m *Manager) scheduleDecay(gen uint64, onStatus StatusFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decayTimer != nil {
		m.decayTimer.Stop()
	}
	m.decayTimer = time.AfterFunc(m.decay, func() {
		m.mu.Lock()
		if m.statusGen != gen || m.status != StatusSynced {
			m.mu.Unlock()
			return
		}
		m.status = StatusIdle
		m.statusGen++
		m.mu.Unlock()
		if onStatus != nil {
			safeCall(m.log, func() { onStatus(StatusIdle) })
		}
	})
}

func (m *Manager) lastPushedFingerprint() fingerprint.Fingerprint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPushed
}

// Prime marks state as already pushed, so pushing an identical state is
// skipped.
func (m *Manager) Prime(state models.GameState) {
	fp := fingerprint.Of(state)
	m.mu.Lock()
	m.lastPushed = fp
	m.mu.Unlock()
}

func safeCall(log *slog.Logger, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("sync callback panicked", "panic", r)
		}
	}()
	fn()
}
