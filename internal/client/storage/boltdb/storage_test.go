package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/zonesync/internal/models"
)

// assertBuckets проверяет наличие всех бакетов клиента
func assertBuckets(t *testing.T, db *bbolt.DB) {
	t.Helper()
	require.NoError(t, db.View(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMetadata, bucketZones} {
			assert.NotNil(t, tx.Bucket(name), "bucket %s", name)
		}
		return nil
	}))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "fresh file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "client.db") },
		},
		{
			name:    "missing directory",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "no", "such", "client.db") },
			wantErr: true,
		},
		{
			name:    "nul in path",
			path:    func(t *testing.T) string { return string([]byte{0}) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(context.Background(), tt.path(t))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, store)
				return
			}

			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			assertBuckets(t, store.db)
		})
	}
}

func TestNew_FileLocked(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "locked.db")

	ctx := context.Background()
	first, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, first.Close())
	}()

	// Второй процесс не должен зависнуть на flock
	start := time.Now()
	second, err := New(ctx, dbPath)
	assert.Error(t, err)
	assert.Nil(t, second)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNew_ReopenKeepsSnapshots(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "client.db")
	synced := time.UnixMilli(1_700_000_000_000)

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveZoneSnapshot(ctx, testSnapshot("z1", models.SyncStatusSynced, synced)))
	require.NoError(t, store.Close())

	// Данные переживают перезапуск клиента
	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	snap, err := store.GetZoneSnapshot(ctx, "z1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, snap.Status)

	ts, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, synced.UnixMilli(), ts)
}

func TestClose_Twice(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Nil(t, store.db)
	assert.NoError(t, store.Close())
}

func TestInitBuckets_Recreates(t *testing.T) {
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "client.db"), 0600, nil)
	require.NoError(t, err)
	defer db.Close()

	store := &Storage{db: db}
	require.NoError(t, store.initBuckets())

	// Бакет потерян, повторная инициализация его возвращает
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketZones)
	}))
	require.NoError(t, store.initBuckets())
	assertBuckets(t, db)
}
