package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.EnableOptimisticUpdates)
	assert.Equal(t, ConflictServerWins, cfg.ConflictResolutionMode)
	assert.Equal(t, 5*time.Second, cfg.AckTimeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 20, cfg.LatencyWindow)
	assert.InDelta(t, 0.2, cfg.LatencyAlpha, 1e-9)
	assert.Equal(t, 10, cfg.ConflictLogSize)
	assert.False(t, cfg.Debug)
	require.NoError(t, cfg.Validate())
}

func TestNew_LayersOverDefaults(t *testing.T) {
	cfg, err := New(Update{
		ConflictResolutionMode: Ptr(ConflictMerge),
		AckTimeout:             Ptr(time.Second),
		Debug:                  Ptr(true),
	})
	require.NoError(t, err)

	assert.Equal(t, ConflictMerge, cfg.ConflictResolutionMode)
	assert.Equal(t, time.Second, cfg.AckTimeout)
	assert.True(t, cfg.Debug)
	// Не заданные поля остаются по умолчанию
	assert.True(t, cfg.EnableOptimisticUpdates)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
}

func TestMerge_DoesNotMutateReceiver(t *testing.T) {
	base := Default()
	merged := base.Merge(Update{EnableOptimisticUpdates: Ptr(false)})

	assert.True(t, base.EnableOptimisticUpdates)
	assert.False(t, merged.EnableOptimisticUpdates)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		update  Update
		wantErr bool
	}{
		{name: "defaults", update: Update{}},
		{name: "unknown mode", update: Update{ConflictResolutionMode: Ptr(ConflictMode("last-writer"))}, wantErr: true},
		{name: "zero timeout", update: Update{AckTimeout: Ptr(time.Duration(0))}, wantErr: true},
		{name: "negative retries", update: Update{MaxRetries: Ptr(-1)}, wantErr: true},
		{name: "zero retries allowed", update: Update{MaxRetries: Ptr(0)}},
		{name: "window too small", update: Update{LatencyWindow: Ptr(1)}, wantErr: true},
		{name: "alpha zero", update: Update{LatencyAlpha: Ptr(0.0)}, wantErr: true},
		{name: "alpha one", update: Update{LatencyAlpha: Ptr(1.0)}},
		{name: "empty conflict log", update: Update{ConflictLogSize: Ptr(0)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.update)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zonesync.yaml")
	content := []byte(`
conflict_resolution_mode: client-wins
ack_timeout: 1500ms
enable_optimistic_updates: false
`)
	require.NoError(t, os.WriteFile(path, content, 0600))

	u, err := Load(path)
	require.NoError(t, err)

	cfg, err := New(u)
	require.NoError(t, err)
	assert.Equal(t, ConflictClientWins, cfg.ConflictResolutionMode)
	assert.Equal(t, 1500*time.Millisecond, cfg.AckTimeout)
	assert.False(t, cfg.EnableOptimisticUpdates)
	assert.Equal(t, DefaultConflictLogSize, cfg.ConflictLogSize)
}

func TestLoad_EmptyPath(t *testing.T) {
	u, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, u.AckTimeout)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ack_timeout: [1, 2"), 0600))
	_, err = Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
