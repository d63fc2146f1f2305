package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/zonesync/internal/client/storage"
	"github.com/iudanet/zonesync/internal/models"
)

var errZonesBucket = errors.New("zones bucket not found")

// SaveZoneSnapshot stores the latest sync state of a zone and advances the
// last sync timestamp (unix ms) when the snapshot is newer.
func (s *Storage) SaveZoneSnapshot(ctx context.Context, state models.ZoneSyncState) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if state.ZoneID == "" {
		return errors.New("zone snapshot without zone id")
	}

	// Сериализуем snapshot в JSON
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal zone snapshot: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketZones)
		if bucket == nil {
			return errZonesBucket
		}
		if err := bucket.Put([]byte(state.ZoneID), data); err != nil {
			return fmt.Errorf("failed to save zone snapshot: %w", err)
		}

		if state.LastSyncTime.IsZero() {
			return nil
		}
		last, err := getLastSync(tx)
		if err != nil {
			return err
		}
		if ts := state.LastSyncTime.UnixMilli(); ts > last {
			return putLastSync(tx, ts)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// GetZoneSnapshot returns the stored snapshot of a zone
func (s *Storage) GetZoneSnapshot(ctx context.Context, zoneID string) (models.ZoneSyncState, error) {
	if s.db == nil {
		return models.ZoneSyncState{}, storage.ErrStorageClosed
	}

	var state models.ZoneSyncState
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketZones)
		if bucket == nil {
			return errZonesBucket
		}

		data := bucket.Get([]byte(zoneID))
		if data == nil {
			return storage.ErrSnapshotNotFound
		}
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("failed to unmarshal zone snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.ZoneSyncState{}, err
	}

	return state, nil
}

// ListZoneSnapshots returns all snapshots ordered by zone id
func (s *Storage) ListZoneSnapshots(ctx context.Context) ([]models.ZoneSyncState, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var states []models.ZoneSyncState
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketZones)
		if bucket == nil {
			return errZonesBucket
		}

		// Ключи bbolt отсортированы, порядок по zone id получаем даром
		return bucket.ForEach(func(k, v []byte) error {
			var state models.ZoneSyncState
			if err := json.Unmarshal(v, &state); err != nil {
				return fmt.Errorf("failed to unmarshal zone snapshot %s: %w", k, err)
			}
			states = append(states, state)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list zone snapshots: %w", err)
	}

	return states, nil
}
