package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/marcus/dmscreen/internal/db"
	"github.com/marcus/dmscreen/internal/game"
	"github.com/marcus/dmscreen/internal/remote/s3store"
	"github.com/marcus/dmscreen/internal/suggest"
	dmsync "github.com/marcus/dmscreen/internal/sync"
	"github.com/marcus/dmscreen/internal/syncclient"
	"github.com/marcus/dmscreen/internal/syncconfig"
)

// app is the local side of one command: the database and a store that
// mirrors every change into it.
type app struct {
	db    *db.DB
	store *game.Store
}

func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	return syncconfig.DataDir()
}

// openApp opens the local database and loads the stored state.
func openApp() (*app, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	database, err := db.Open(dir)
	if err != nil {
		return nil, err
	}
	state, err := database.LoadState()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	store := game.New(state, game.WithObserver(db.NewMirror(database)))
	return &app{db: database, store: store}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// newRemote builds the configured remote store. The HTTP client gets
// timeout as its per-request deadline.
func newRemote(ctx context.Context, timeout time.Duration) (dmsync.RemoteStore, error) {
	backend, err := syncconfig.GetBackend()
	if err != nil {
		return nil, err
	}
	switch backend {
	case syncconfig.BackendS3:
		s3cfg := syncconfig.GetS3Config()
		return s3store.New(ctx, s3store.Config{
			Bucket:       s3cfg.Bucket,
			Region:       s3cfg.Region,
			Endpoint:     s3cfg.Endpoint,
			Prefix:       s3cfg.Prefix,
			UsePathStyle: s3cfg.UsePathStyle,
		})
	default:
		deviceID, err := syncconfig.GetDeviceID()
		if err != nil {
			return nil, fmt.Errorf("device id: %w", err)
		}
		client := syncclient.New(syncconfig.GetServerURL(), syncconfig.GetAPIKey(), deviceID)
		if timeout > 0 {
			client.HTTP.Timeout = timeout
		}
		return client, nil
	}
}

// parseIndex parses a 0-based list position and checks it against n.
func parseIndex(arg string, n int, what string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s index %q", what, arg)
	}
	if i < 0 || i >= n {
		if n == 0 {
			return 0, fmt.Errorf("no %s entries", what)
		}
		return 0, fmt.Errorf("%s index %d out of range (0-%d)", what, i, n-1)
	}
	return i, nil
}

// withHint appends a "did you mean" suggestion for word to err when one
// of options is close.
func withHint(err error, word string, options []string) error {
	if hint := suggest.Hint(word, options); hint != "" {
		return fmt.Errorf("%w; %s", err, hint)
	}
	return err
}
