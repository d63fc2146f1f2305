package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/zonesync/internal/client/zonesync"
	"github.com/iudanet/zonesync/internal/config"
	"github.com/iudanet/zonesync/internal/models"
	"github.com/iudanet/zonesync/pkg/api"
)

// feed hands the frames a client received to its engine in arrival order.
func feed(t *testing.T, engine *zonesync.Engine, frames []api.Envelope) {
	t.Helper()
	for _, env := range frames {
		switch env.Type {
		case api.TypeUpdate:
			upd, err := api.DecodePayload[api.ZoneChange](env)
			require.NoError(t, err)
			require.NoError(t, engine.HandleServerUpdate(upd.ZoneID, upd.ToModel(models.OriginServer)))
		case api.TypeAck:
			ack, err := api.DecodePayload[api.Ack](env)
			require.NoError(t, err)
			engine.HandleAck(ack.ZoneID, ack.ChangeID)
		default:
			t.Fatalf("unexpected frame %q", env.Type)
		}
	}
}

// Клиент, чья правка гонится с чужой, сходится к состоянию сервера в любом режиме
func TestZoneHub_RacingClientConverges(t *testing.T) {
	modes := []config.ConflictMode{
		config.ConflictServerWins,
		config.ConflictMerge,
		config.ConflictClientWins,
	}

	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			ctx := context.Background()
			f := setupHub(t)

			a, list := f.connect(t, "client-a")
			b, _ := f.connect(t, "client-b")

			var sent []models.ZoneChangeRecord
			transport := &zonesync.TransportMock{
				SendFunc: func(ctx context.Context, record models.ZoneChangeRecord) error {
					sent = append(sent, record)
					return nil
				},
				ConnectedFunc: func() bool { return true },
			}
			engine, err := zonesync.New(transport, config.Update{ConflictResolutionMode: config.Ptr(mode)},
				zonesync.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
			require.NoError(t, err)
			t.Cleanup(engine.Close)

			for _, z := range list.Zones {
				engine.ReconcileZone(z.ToModel())
			}
			engine.HandleConnected()

			_, err = engine.ApplyZoneChanges(ctx, "z1", models.ChangeSet{
				Modified: map[string]any{models.AttrPointValue: 99},
				Added:    []string{"c9"},
			})
			require.NoError(t, err)
			require.Len(t, sent, 1)

			// B успевает первым
			b.send(api.TypeChange, api.ZoneChange{
				ChangeID: "remote-1",
				ZoneID:   "z1",
				Added:    []string{"c2"},
				Modified: map[string]any{models.AttrName: "Beta", models.AttrPointValue: 1},
			})
			b.readApplied()
			frames := []api.Envelope{a.expect(api.TypeUpdate)}

			a.send(api.TypeChange, api.ChangeFromModel(sent[0]))
			frames = append(frames, a.expect(api.TypeUpdate), a.expect(api.TypeAck))
			assert.Equal(t, api.TypeUpdate, b.read().Type)

			feed(t, engine, frames)

			server, err := f.store.GetZone(ctx, "z1")
			require.NoError(t, err)

			st, ok := engine.SyncState("z1")
			require.True(t, ok)
			assert.Equal(t, models.SyncStatusSynced, st.Status)
			assert.Empty(t, st.PendingChanges)
			assert.Equal(t, server.Name(), st.Zone.Name())
			assert.Equal(t, server.PointValue(), st.Zone.PointValue())
			assert.Equal(t, server.Cells, st.Zone.Cells)
			assert.Equal(t, "Beta", st.Zone.Name())
			assert.Equal(t, 99, st.Zone.PointValue())
			assert.Equal(t, []string{"c1", "c2", "c9"}, st.Zone.Cells)
		})
	}
}
