package storage

import "errors"

// Common client storage errors
var (
	// ErrSnapshotNotFound indicates that no snapshot was persisted for the zone
	ErrSnapshotNotFound = errors.New("zone snapshot not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
