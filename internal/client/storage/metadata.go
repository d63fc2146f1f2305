package storage

import (
	"context"

	"github.com/iudanet/zonesync/internal/models"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client metadata.
// Only the latest snapshot per zone is kept; this is not a zone history.
type MetadataStorage interface {
	// SaveZoneSnapshot replaces the stored snapshot of state.ZoneID and
	// advances the last sync timestamp if the snapshot is newer
	SaveZoneSnapshot(ctx context.Context, state models.ZoneSyncState) error

	// GetZoneSnapshot returns ErrSnapshotNotFound for unknown zones
	GetZoneSnapshot(ctx context.Context, zoneID string) (models.ZoneSyncState, error)

	// ListZoneSnapshots returns all snapshots ordered by zone id
	ListZoneSnapshots(ctx context.Context) ([]models.ZoneSyncState, error)

	// SaveLastSyncTimestamp saves the timestamp of the last successful sync
	SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error

	// GetLastSyncTimestamp retrieves the timestamp of the last successful sync
	// Returns 0 if no sync has been performed yet
	GetLastSyncTimestamp(ctx context.Context) (int64, error)
}
