// Package synctest provides in-memory sync collaborators for tests.
package synctest

import (
	"context"
	"sync"
	"time"

	"github.com/marcus/dmscreen/internal/models"
)

// Remote is an in-memory remote document store
type Remote struct {
	mu      sync.Mutex
	docs    map[string]models.SyncRecord
	writes  int
	now     func() time.Time
	GetErr  error
	SetErr  error
	SetHook func() // called inside Set before the write, without the lock
}

// NewRemote returns an empty store stamping writes with now
func NewRemote(now func() time.Time) *Remote {
	if now == nil {
		now = time.Now
	}
	return &Remote{docs: map[string]models.SyncRecord{}, now: now}
}

// Get implements sync.RemoteStore
func (r *Remote) Get(ctx context.Context, userID string) (*models.SyncRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	rec, ok := r.docs[userID]
	if !ok {
		return nil, nil
	}
	rec.GameState = rec.GameState.Clone()
	return &rec, nil
}

// Set implements sync.RemoteStore
func (r *Remote) Set(ctx context.Context, userID string, state models.GameState) (time.Time, error) {
	if r.SetHook != nil {
		r.SetHook()
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SetErr != nil {
		return time.Time{}, r.SetErr
	}
	at := r.now().UTC()
	r.docs[userID] = models.SyncRecord{GameState: state.Clone(), LastSync: at}
	r.writes++
	return at, nil
}

// FailGets makes Get return err until called again with nil. It is safe to
// call while other goroutines use the store.
func (r *Remote) FailGets(err error) {
	r.mu.Lock()
	r.GetErr = err
	r.mu.Unlock()
}

// Put seeds a document directly
func (r *Remote) Put(userID string, rec models.SyncRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[userID] = rec
}

// Writes returns how many successful Set calls happened
func (r *Remote) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// Doc returns the stored document for userID
func (r *Remote) Doc(userID string) (models.SyncRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.docs[userID]
	return rec, ok
}

// LastSync is an in-memory last-sync store
type LastSync struct {
	mu sync.Mutex
	m  map[string]time.Time
}

// NewLastSync returns an empty store
func NewLastSync() *LastSync {
	return &LastSync{m: map[string]time.Time{}}
}

// GetLastSync implements sync.LastSyncStore
func (l *LastSync) GetLastSync(userID string) (time.Time, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.m[userID]
	return t, ok, nil
}

// SetLastSync implements sync.LastSyncStore
func (l *LastSync) SetLastSync(userID string, t time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[userID] = t
	return nil
}
