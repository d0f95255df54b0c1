package cmd

import (
	"context"
	"time"

	"github.com/marcus/dmscreen/internal/models"
)

// offlineRemote stands in when the configured remote cannot be built, so a
// session still starts and reports the error on every push.
type offlineRemote struct {
	err error
}

func (o offlineRemote) Get(ctx context.Context, userID string) (*models.SyncRecord, error) {
	return nil, o.err
}

func (o offlineRemote) Set(ctx context.Context, userID string, state models.GameState) (time.Time, error) {
	return time.Time{}, o.err
}
