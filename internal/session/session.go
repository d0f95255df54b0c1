// Package session ties the state store to the sync manager for one
// authenticated user and gates auto-sync behind conflict resolution.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/marcus/dmscreen/internal/fingerprint"
	"github.com/marcus/dmscreen/internal/game"
	"github.com/marcus/dmscreen/internal/models"
	dsync "github.com/marcus/dmscreen/internal/sync"
)

// State is the conflict resolution state
type State int

const (
	StateNoConflict State = iota
	StatePendingUserDecision
	// StatePendingLoad means no checked load has succeeded yet, so nothing
	// may be pushed.
	StatePendingLoad
)

func (s State) String() string {
	switch s {
	case StatePendingUserDecision:
		return "pending user decision"
	case StatePendingLoad:
		return "pending load"
	}
	return "no conflict"
}

// Choice is the user's answer to a conflict
type Choice int

const (
	ChoiceUseRemote Choice = iota
	ChoiceKeepLocal
)

var (
	// ErrNoConflict is returned by Resolve when nothing is pending
	ErrNoConflict = errors.New("no pending conflict")
	// ErrConflictPending is returned by ManualSync until Resolve is called
	ErrConflictPending = errors.New("sync conflict pending")
	// ErrNotLoaded is returned by ManualSync while the remote cannot be
	// loaded
	ErrNotLoaded = errors.New("remote state not loaded")
)

// Conflict describes a pending conflict for the UI
type Conflict struct {
	LocalIsNewer   bool
	RemoteLastSync time.Time
	LocalLastSync  time.Time
	Remote         models.SyncRecord
}

// Config holds the collaborators of a Session
type Config struct {
	UserID   string
	Store    *game.Store
	Remote   dsync.RemoteStore
	LastSync dsync.LastSyncStore

	SyncOptions []dsync.Option
	OnStatus    dsync.StatusFunc
	OnError     dsync.ErrorFunc
	// OnConflict is called whenever a load leaves a conflict pending,
	// including loads retried in the background after Begin failed.
	OnConflict func(Conflict)
	// RetryInterval paces load retries after a failed Begin. It defaults
	// to the auto-sync interval.
	RetryInterval time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

// Session is the sync lifecycle of one user
type Session struct {
	userID     string
	store      *game.Store
	lastSync   dsync.LastSyncStore
	mgr        *dsync.Manager
	onStatus   dsync.StatusFunc
	onError    dsync.ErrorFunc
	onConflict func(Conflict)
	retryEvery time.Duration
	now        func() time.Time
	log        *slog.Logger

	loadMu sync.Mutex

	mu        sync.Mutex
	state     State
	conflict  *Conflict
	keptLocal bool
	retryStop chan struct{}
	closed    bool
}

// New builds a session. Nothing talks to the remote until Begin.
func New(cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	opts := append([]dsync.Option{dsync.WithLogger(log)}, cfg.SyncOptions...)
	mgr := dsync.New(cfg.UserID, cfg.Remote, cfg.LastSync, opts...)
	retry := cfg.RetryInterval
	if retry <= 0 {
		retry = mgr.Interval()
	}
	return &Session{
		userID:     cfg.UserID,
		store:      cfg.Store,
		lastSync:   cfg.LastSync,
		mgr:        mgr,
		onStatus:   cfg.OnStatus,
		onError:    cfg.OnError,
		onConflict: cfg.OnConflict,
		retryEvery: retry,
		now:        now,
		log:        log.With("user", cfg.UserID),
		state:      StatePendingLoad,
	}
}

// UserID returns the user of this session
func (s *Session) UserID() string { return s.userID }

// Manager exposes the sync manager for status polling
func (s *Session) Manager() *dsync.Manager { return s.mgr }

// State returns the conflict resolution state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Conflict returns the pending conflict, if any
func (s *Session) Conflict() (Conflict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflict == nil {
		return Conflict{}, false
	}
	return *s.conflict, true
}

// KeptLocal reports whether the last load kept local edits that the remote
// does not have yet. They go out with the next push.
func (s *Session) KeptLocal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keptLocal
}

// Begin loads the remote document. Without a conflict it adopts remote data
// when local has nothing newer and starts auto-sync. With a conflict it
// waits for Resolve. A load failure is reported and the load is retried in
// the background; pushes stay off until one succeeds.
func (s *Session) Begin(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		s.log.Warn("initial load failed, retrying before any push", "err", err)
		if s.onError != nil {
			s.onError(err.Error())
		}
		s.startRetry()
		return err
	}
	return nil
}

// load runs a checked load while none has succeeded yet and applies its
// outcome.
func (s *Session) load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if s.State() != StatePendingLoad {
		return nil
	}

	res, err := s.mgr.LoadWithConflictResolution(ctx, s.store.Snapshot())
	if err != nil {
		return err
	}

	if res.HasConflict {
		c := Conflict{
			LocalIsNewer:   res.LocalIsNewer,
			RemoteLastSync: res.RemoteLastSync,
			LocalLastSync:  res.LocalLastSync,
			Remote:         *res.Remote,
		}
		s.mu.Lock()
		s.state = StatePendingUserDecision
		s.conflict = &c
		s.mu.Unlock()
		s.log.Info("sync conflict pending", "remoteLastSync", res.RemoteLastSync, "localIsNewer", res.LocalIsNewer)
		if s.onConflict != nil {
			s.onConflict(c)
		}
		return nil
	}

	s.adopt(res)
	s.mu.Lock()
	s.state = StateNoConflict
	s.mu.Unlock()
	s.startAutoSync()
	return nil
}

// adopt takes the remote document when local is empty or already matches
// it. Local edits made since the last sync are kept instead.
func (s *Session) adopt(res *dsync.LoadResult) {
	if !res.HasRemote || !res.Remote.HasData() {
		return
	}
	local := s.store.Snapshot()
	if !local.IsEmpty() && fingerprint.Of(local) != fingerprint.Of(res.Remote.GameState) {
		s.mu.Lock()
		s.keptLocal = true
		s.mu.Unlock()
		s.log.Info("keeping unpushed local changes", "remoteLastSync", res.RemoteLastSync)
		return
	}
	s.store.Replace(res.Remote.GameState)
	if err := s.lastSync.SetLastSync(s.userID, res.Remote.LastSync); err != nil {
		s.log.Warn("record last sync", "err", err)
	}
}

func (s *Session) startRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.retryStop != nil {
		return
	}
	stop := make(chan struct{})
	s.retryStop = stop
	go s.retryLoad(stop)
}

func (s *Session) retryLoad(stop chan struct{}) {
	t := time.NewTicker(s.retryEvery)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		if err := s.load(context.Background()); err != nil {
			s.log.Debug("load retry failed", "err", err)
			continue
		}
		s.mu.Lock()
		if s.retryStop == stop {
			s.retryStop = nil
		}
		s.mu.Unlock()
		return
	}
}

// Resolve applies the user's choice to a pending conflict and starts
// auto-sync.
func (s *Session) Resolve(ctx context.Context, choice Choice) error {
	s.mu.Lock()
	if s.state != StatePendingUserDecision || s.conflict == nil {
		s.mu.Unlock()
		return ErrNoConflict
	}
	c := *s.conflict
	s.mu.Unlock()

	switch choice {
	case ChoiceUseRemote:
		s.store.Replace(c.Remote.GameState)
		if err := s.lastSync.SetLastSync(s.userID, s.now()); err != nil {
			return fmt.Errorf("record last sync: %w", err)
		}
		s.log.Info("conflict resolved", "choice", "remote")
	case ChoiceKeepLocal:
		s.log.Info("conflict resolved", "choice", "local")
	default:
		return fmt.Errorf("unknown choice %d", choice)
	}

	s.mu.Lock()
	s.state = StateNoConflict
	s.conflict = nil
	s.mu.Unlock()
	s.startAutoSync()
	return nil
}

// ManualSync pushes the current state now. Until a load has succeeded it
// retries the load first, and it refuses while a conflict waits for
// Resolve.
func (s *Session) ManualSync(ctx context.Context) error {
	if s.State() == StatePendingLoad {
		if err := s.load(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrNotLoaded, err)
		}
	}
	if s.State() == StatePendingUserDecision {
		return ErrConflictPending
	}
	return s.mgr.ManualSync(ctx, s.store.Snapshot, s.onStatus, s.onError)
}

// Close stops auto-sync and any load retry. The session cannot be
// restarted.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.retryStop != nil {
		close(s.retryStop)
		s.retryStop = nil
	}
	s.mu.Unlock()
	s.mgr.StopAutoSync()
}

func (s *Session) startAutoSync() {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.mgr.StartAutoSync(s.store.Snapshot, s.onStatus, s.onError)
}
