package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/zonesync/internal/client/api"
	"github.com/iudanet/zonesync/internal/client/iocli"
	"github.com/iudanet/zonesync/internal/client/storage/boltdb"
	"github.com/iudanet/zonesync/internal/client/zonesync"
	"github.com/iudanet/zonesync/internal/config"
	"github.com/iudanet/zonesync/internal/models"
	"github.com/iudanet/zonesync/internal/server/handlers"
	"github.com/iudanet/zonesync/internal/server/storage/sqlite"
	"github.com/iudanet/zonesync/internal/server/version"
	wire "github.com/iudanet/zonesync/pkg/api"
)

// safeBuffer собирает вывод, который пишут listener'ы движка
type safeBuffer struct {
	b  strings.Builder
	mu sync.Mutex
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

type authority struct {
	zones *sqlite.Storage
	url   string
}

// startAuthority runs the zone server against an in-memory database seeded
// with one zone.
func startAuthority(t *testing.T) *authority {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	zones, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = zones.Close() })

	zone := models.NewZone("z1", "Alpha", models.ZoneTypeSafe, 10, models.Point{Lat: 59.93, Lng: 30.31}, 150)
	zone.Cells = []string{"c1"}
	require.NoError(t, zones.UpsertZone(ctx, zone))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handlers.NewZoneHub(logger, zones, version.NewClock(0)).ServeWS)
	mux.HandleFunc("/api/v1/health", handlers.NewHealthHandler(logger, zones, "test").Health)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &authority{zones: zones, url: srv.URL}
}

func newSessionCli(t *testing.T, a *authority, out io.Writer) (*Cli, *boltdb.Storage) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Update{AckTimeout: config.Ptr(2 * time.Second)}

	return New(iocli.NewWriter(out), logger, api.NewClient(a.url), store, cfg, "cli-test"), store
}

func TestRunEdit_Confirmed(t *testing.T) {
	a := startAuthority(t)
	var out safeBuffer
	c, store := newSessionCli(t, a, &out)

	err := c.RunEdit(context.Background(), []string{"z1", "--name", "Harbor", "--add-cell", "c9"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "✓ Change confirmed by server")
	assert.Contains(t, out.String(), "z1 (Harbor): synced")

	// Сервер применил изменение
	zone, err := a.zones.GetZone(context.Background(), "z1")
	require.NoError(t, err)
	assert.Equal(t, "Harbor", zone.Name())
	assert.Equal(t, []string{"c1", "c9"}, zone.Cells)

	// Клиент сохранил снимок
	snap, err := store.GetZoneSnapshot(context.Background(), "z1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, snap.Status)
	assert.Equal(t, "Harbor", snap.Zone.Name())
	assert.Empty(t, snap.PendingChanges)
}

// startSilentAuthority answers hello with one zone and never acknowledges
// anything afterwards.
func startSilentAuthority(t *testing.T) *authority {
	t.Helper()

	zone := models.NewZone("z1", "Alpha", models.ZoneTypeSafe, 10, models.Point{Lat: 59.93, Lng: 30.31}, 150)
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		frame, err := wire.Encode(wire.TypeZones, wire.ZoneList{Zones: []wire.Zone{wire.ZoneFromModel(zone)}})
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, frame)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &authority{url: srv.URL}
}

func TestRunEdit_NotConfirmed(t *testing.T) {
	a := startSilentAuthority(t)
	var out safeBuffer

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Update{
		AckTimeout: config.Ptr(100 * time.Millisecond),
		MaxRetries: config.Ptr(0),
	}
	c := New(iocli.NewWriter(&out), logger, api.NewClient(a.url), store, cfg, "cli-test")

	err = c.RunEdit(context.Background(), []string{"z1", "--name", "Harbor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not confirmed within 1.1s")
	assert.Contains(t, err.Error(), "it is not resent")
	assert.NotContains(t, err.Error(), "queued")
	assert.Contains(t, out.String(), "z1 (Harbor): disconnected")
}

func TestRunEdit_UnknownZone(t *testing.T) {
	a := startAuthority(t)
	var out safeBuffer
	c, _ := newSessionCli(t, a, &out)

	err := c.RunEdit(context.Background(), []string{"nope", "--name", "x"})
	assert.ErrorIs(t, err, zonesync.ErrUnknownZone)
}

func TestRunWatch_FollowsRemoteChanges(t *testing.T) {
	a := startAuthority(t)
	var out safeBuffer
	c, store := newSessionCli(t, a, &out)

	done := make(chan error, 1)
	go func() {
		done <- c.RunWatch(context.Background(), []string{"--for", "1500ms"})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "z1 (Alpha): synced")
	}, time.Second, 10*time.Millisecond)

	// Другой клиент меняет зону напрямую через websocket
	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(a.url, "http")+"/ws", nil)
	require.NoError(t, err)
	defer peer.Close()

	frame, err := wire.Encode(wire.TypeHello, wire.Hello{ClientID: "peer"})
	require.NoError(t, err)
	require.NoError(t, peer.WriteMessage(websocket.TextMessage, frame))
	frame, err = wire.Encode(wire.TypeChange, wire.ZoneChange{
		ChangeID: "remote-1",
		ZoneID:   "z1",
		Modified: map[string]any{models.AttrPointValue: 99},
	})
	require.NoError(t, err)
	require.NoError(t, peer.WriteMessage(websocket.TextMessage, frame))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "version=1")
	}, time.Second, 10*time.Millisecond)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, out.String(), "Stopped. 1 zone(s)")

	snap, err := store.GetZoneSnapshot(context.Background(), "z1")
	require.NoError(t, err)
	assert.Equal(t, 99, snap.Zone.PointValue())
	assert.Equal(t, int64(1), snap.LastServerUpdate)
}

func TestRunHealth(t *testing.T) {
	a := startAuthority(t)
	var out safeBuffer
	c, _ := newSessionCli(t, a, &out)

	require.NoError(t, c.RunHealth(context.Background()))

	assert.Contains(t, out.String(), "Server status: ok")
	assert.Contains(t, out.String(), "Server version: test")
	assert.Contains(t, out.String(), "Zone version: 0")
}
