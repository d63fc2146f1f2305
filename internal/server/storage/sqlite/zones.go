package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/zonesync/internal/models"
	"github.com/iudanet/zonesync/internal/server/storage"
)

var _ storage.ZoneStorage = (*Storage)(nil)

// ListZones returns every zone ordered by id
func (s *Storage) ListZones(ctx context.Context) ([]models.Zone, error) {
	query := `
		SELECT id, attributes, cells, updated_at
		FROM zones
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}

	return zones, nil
}

// GetZone retrieves a single zone by ID
func (s *Storage) GetZone(ctx context.Context, id string) (*models.Zone, error) {
	return getZone(ctx, s.db, id)
}

// UpsertZone creates the zone or replaces it entirely
func (s *Storage) UpsertZone(ctx context.Context, zone models.Zone) error {
	return putZone(ctx, s.db, zone.Clone())
}

// ApplyChange applies the change and stamps the zone version in one transaction
func (s *Storage) ApplyChange(ctx context.Context, change models.ZoneChangeRecord) (bool, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Повторная доставка того же изменения: отвечаем сохраненной версией
	var zoneID string
	var version int64
	err = tx.QueryRowContext(ctx,
		`SELECT zone_id, version FROM applied_changes WHERE change_id = ?`,
		change.ChangeID,
	).Scan(&zoneID, &version)
	switch {
	case err == nil:
		if zoneID != change.ZoneID {
			return false, 0, fmt.Errorf("%w: %s", storage.ErrChangeConflict, change.ChangeID)
		}
		return false, version, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, 0, fmt.Errorf("failed to check applied change: %w", err)
	}

	zone, err := getZone(ctx, tx, change.ZoneID)
	if err != nil {
		return false, 0, err
	}

	change.Origin = models.OriginServer
	updated := zone.Apply(change)
	updated.UpdatedAt = change.Timestamp

	if err := putZone(ctx, tx, updated); err != nil {
		return false, 0, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO applied_changes (change_id, zone_id, version, applied_at) VALUES (?, ?, ?, ?)`,
		change.ChangeID,
		change.ZoneID,
		change.Timestamp,
		time.Now().Unix(),
	)
	if err != nil {
		return false, 0, fmt.Errorf("failed to record applied change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("failed to commit change: %w", err)
	}

	return true, change.Timestamp, nil
}

// MaxVersion returns the highest zone version
func (s *Storage) MaxVersion(ctx context.Context) (int64, error) {
	var version int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(updated_at), 0) FROM zones`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get max version: %w", err)
	}
	return version, nil
}

// querier общий интерфейс *sql.DB и *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getZone(ctx context.Context, q querier, id string) (*models.Zone, error) {
	query := `
		SELECT id, attributes, cells, updated_at
		FROM zones
		WHERE id = ?
	`

	z, err := scanZone(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrZoneNotFound
		}
		return nil, err
	}
	return z, nil
}

func putZone(ctx context.Context, q querier, zone models.Zone) error {
	attrs, err := json.Marshal(zone.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}
	cells := zone.Cells
	if cells == nil {
		cells = []string{}
	}
	cellsJSON, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("failed to encode cells: %w", err)
	}

	query := `
		INSERT INTO zones (id, attributes, cells, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			attributes = excluded.attributes,
			cells = excluded.cells,
			updated_at = excluded.updated_at
	`
	if _, err := q.ExecContext(ctx, query, zone.ID, string(attrs), string(cellsJSON), zone.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save zone: %w", err)
	}
	return nil
}

func scanZone(row scanner) (*models.Zone, error) {
	var z models.Zone
	var attrs, cells string

	if err := row.Scan(&z.ID, &attrs, &cells, &z.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan zone: %w", err)
	}
	if err := json.Unmarshal([]byte(attrs), &z.Attributes); err != nil {
		return nil, fmt.Errorf("failed to decode attributes of zone %s: %w", z.ID, err)
	}
	if err := json.Unmarshal([]byte(cells), &z.Cells); err != nil {
		return nil, fmt.Errorf("failed to decode cells of zone %s: %w", z.ID, err)
	}

	out := z.Clone()
	return &out, nil
}
