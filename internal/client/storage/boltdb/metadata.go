package boltdb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/zonesync/internal/client/storage"
)

const (
	keyLastSyncTimestamp = "last_sync_timestamp"
)

var errMetadataBucket = errors.New("metadata bucket not found")

// SaveLastSyncTimestamp saves the timestamp of the last successful sync
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return putLastSync(tx, timestamp)
	})
}

// GetLastSyncTimestamp retrieves the timestamp of the last successful sync
// Returns 0 if no sync has been performed yet
func (s *Storage) GetLastSyncTimestamp(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var timestamp int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		timestamp, err = getLastSync(tx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}

	return timestamp, nil
}

func getLastSync(tx *bbolt.Tx) (int64, error) {
	bucket := tx.Bucket(bucketMetadata)
	if bucket == nil {
		return 0, errMetadataBucket
	}

	// Если timestamp не найден, возвращаем 0 (первая синхронизация)
	raw := bucket.Get([]byte(keyLastSyncTimestamp))
	if raw == nil {
		return 0, nil
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

func putLastSync(tx *bbolt.Tx, timestamp int64) error {
	bucket := tx.Bucket(bucketMetadata)
	if bucket == nil {
		return errMetadataBucket
	}

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(timestamp))

	if err := bucket.Put([]byte(keyLastSyncTimestamp), raw); err != nil {
		return fmt.Errorf("failed to save last sync timestamp: %w", err)
	}
	return nil
}
