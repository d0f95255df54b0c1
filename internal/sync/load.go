package sync

import (
	"context"
	"fmt"

	"github.com/marcus/dmscreen/internal/models"
)

// LoadWithConflictResolution fetches the remote document and decides
// whether it conflicts with local. A conflict needs data on both sides and
// a remote timestamp that differs from the one recorded locally.
//
// On success the remote document counts as already pushed.
func (m *Manager) LoadWithConflictResolution(ctx context.Context, local models.GameState) (*LoadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	rec, err := m.remote.Get(ctx, m.userID)
	if err != nil {
		return nil, fmt.Errorf("load remote state: %w", err)
	}
	if rec == nil {
		m.log.Debug("no remote state")
		return &LoadResult{}, nil
	}

	localTime, hasLocalTime, err := m.lastSync.GetLastSync(m.userID)
	if err != nil {
		m.log.Debug("read local last sync", "err", err)
		hasLocalTime = false
	}

	res := &LoadResult{
		HasRemote:      true,
		Remote:         rec,
		RemoteLastSync: rec.LastSync,
	}
	if hasLocalTime {
		res.LocalLastSync = localTime
		res.LocalIsNewer = localTime.After(rec.LastSync)
	}
	differ := !hasLocalTime || !localTime.Equal(rec.LastSync)
	res.HasConflict = rec.HasData() && !local.IsEmpty() && differ

	m.Prime(rec.GameState)
	m.log.Debug("remote state loaded", "lastSync", rec.LastSync, "conflict", res.HasConflict)
	return res, nil
}
