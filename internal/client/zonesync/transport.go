package zonesync

import (
	"context"

	"github.com/iudanet/zonesync/internal/models"
)

//go:generate moq -out transport_mock.go . Transport

// Transport delivers local changes to the server.
// Send is fire-and-forget with at-least-once semantics; the server
// deduplicates by change id. Deliveries in the other direction arrive through
// the engine's Handle* methods.
type Transport interface {
	// Send queues the record for delivery and returns without waiting for the network
	Send(ctx context.Context, record models.ZoneChangeRecord) error

	// Connected reports whether the link to the server is currently up
	Connected() bool
}
