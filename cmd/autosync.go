package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marcus/dmscreen/internal/output"
	dmsync "github.com/marcus/dmscreen/internal/sync"
	"github.com/marcus/dmscreen/internal/syncconfig"
)

// mutatingCommands lists commands that modify local state and should trigger auto-sync.
var mutatingCommands = map[string]bool{
	"encounter add":         true,
	"encounter add-player":  true,
	"encounter rm":          true,
	"encounter update":      true,
	"encounter damage":      true,
	"encounter heal":        true,
	"encounter roll":        true,
	"encounter copy":        true,
	"encounter condition":   true,
	"encounter sort":        true,
	"encounter ability add": true,
	"encounter ability rm":  true,
	"encounter ability use": true,
	"turn start":            true,
	"turn next":             true,
	"turn prev":             true,
	"turn end-round":        true,
	"turn reset":            true,
	"player add":            true,
	"player update":         true,
	"player rm":             true,
	"deathsave add":         true,
	"deathsave success":     true,
	"deathsave fail":        true,
	"deathsave stable":      true,
	"deathsave reset":       true,
	"deathsave rm":          true,
	"link add":              true,
	"link update":           true,
	"link rm":               true,
	"bastion add":           true,
	"bastion rm":            true,
	"bastion facility add":  true,
	"bastion facility rm":   true,
	"bastion order":         true,
	"bastion note":          true,
	"bastion process":       true,
	"day advance":           true,
	"day reset":             true,
	"dark-mode":             true,
	"import":                true,
}

// autoSyncTimeout bounds the post-command push.
const autoSyncTimeout = 5 * time.Second

// errRemoteChanged means the remote document moved on since this device
// last agreed with it, so a push would overwrite someone else's edits.
var errRemoteChanged = errors.New("remote state changed since the last sync")

// errRemoteOnly means local is empty while the remote holds data.
var errRemoteOnly = errors.New("local state is empty but the remote has data")

// isMutatingCommand checks if the given command path triggers auto-sync.
func isMutatingCommand(name string) bool {
	return mutatingCommands[name]
}

// autoSyncAfterMutation runs a quick push after a mutating command completes.
// Errors are logged, not returned. A conflicting remote is left alone.
func autoSyncAfterMutation(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !syncconfig.GetAutoSyncEnabled() {
		return
	}
	userID := syncconfig.GetUserID()
	if userID == "" {
		return
	}

	a, err := openApp()
	if err != nil {
		slog.Debug("autosync: open app", "err", err)
		return
	}
	defer a.Close()

	remote, err := newRemote(ctx, autoSyncTimeout)
	if err != nil {
		slog.Debug("autosync: remote", "err", err)
		return
	}

	pushed, err := pushLocal(ctx, a, userID, remote, autoSyncTimeout)
	switch {
	case errors.Is(err, errRemoteChanged), errors.Is(err, errRemoteOnly):
		output.Warning("not synced: %v; run 'dmscreen sync pull'", err)
	case err != nil:
		slog.Debug("autosync: push", "err", err)
	case pushed:
		slog.Debug("autosync: pushed", "user", userID)
	}
}

// pushLocal checks the remote for a conflict and pushes local state when it
// differs from what the remote holds. It never overwrites a remote document
// that changed since this device last synced.
func pushLocal(ctx context.Context, a *app, userID string, remote dmsync.RemoteStore, timeout time.Duration) (bool, error) {
	mgr := dmsync.New(userID, remote, a.db,
		dmsync.WithTimeout(timeout),
		dmsync.WithLogger(slog.Default()),
	)

	local := a.store.Snapshot()
	res, err := mgr.LoadWithConflictResolution(ctx, local)
	if err != nil {
		return false, err
	}
	if res.HasConflict {
		return false, errRemoteChanged
	}
	if res.HasRemote && res.Remote.HasData() && local.IsEmpty() {
		return false, errRemoteOnly
	}

	if err := mgr.ManualSync(ctx, a.store.Snapshot, nil, nil); err != nil {
		return false, err
	}
	return !mgr.LastPushAt().IsZero(), nil
}
