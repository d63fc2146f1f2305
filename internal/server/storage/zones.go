package storage

import (
	"context"

	"github.com/iudanet/zonesync/internal/models"
)

// ZoneStorage defines the persistence of authoritative zones
type ZoneStorage interface {
	// ListZones returns every zone ordered by id
	ListZones(ctx context.Context) ([]models.Zone, error)

	// GetZone retrieves a single zone by ID
	// Returns ErrZoneNotFound if zone doesn't exist
	GetZone(ctx context.Context, id string) (*models.Zone, error)

	// UpsertZone creates the zone or replaces it entirely
	UpsertZone(ctx context.Context, zone models.Zone) error

	// ApplyChange applies the change to its zone and stamps the zone with
	// change.Timestamp as the new version. Changes are deduplicated by change
	// id: a repeated id is not applied again and the version it was stored
	// with is returned together with applied == false.
	// Returns ErrZoneNotFound if the zone doesn't exist
	ApplyChange(ctx context.Context, change models.ZoneChangeRecord) (applied bool, version int64, err error)

	// MaxVersion returns the highest zone version, 0 for an empty store
	MaxVersion(ctx context.Context) (int64, error)
}
