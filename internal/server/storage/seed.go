package storage

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iudanet/zonesync/internal/models"
)

// seedFile формат YAML со стартовыми зонами
type seedFile struct {
	Zones []seedZone `yaml:"zones"`
}

type seedZone struct {
	Attributes map[string]any `yaml:"attributes"`
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Cells      []string       `yaml:"cells"`
	Center     models.Point   `yaml:"center"`
	PointValue int            `yaml:"point_value"`
	Radius     float64        `yaml:"radius"`
}

// LoadSeed reads the initial zone set from a YAML file.
func LoadSeed(path string) ([]models.Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zones file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse zones file: %w", err)
	}

	zones := make([]models.Zone, 0, len(f.Zones))
	seen := make(map[string]struct{}, len(f.Zones))
	for i, sz := range f.Zones {
		if sz.ID == "" {
			return nil, fmt.Errorf("zones file: entry %d has no id", i)
		}
		if _, dup := seen[sz.ID]; dup {
			return nil, fmt.Errorf("zones file: duplicate zone id %q", sz.ID)
		}
		seen[sz.ID] = struct{}{}

		zoneType := models.ZoneType(sz.Type)
		if zoneType == "" {
			zoneType = models.ZoneTypeSafe
		}

		z := models.NewZone(sz.ID, sz.Name, zoneType, sz.PointValue, sz.Center, sz.Radius)
		maps.Copy(z.Attributes, sz.Attributes)
		z.Cells = sz.Cells
		zones = append(zones, z.Clone())
	}

	return zones, nil
}

// Seed inserts zones that storage does not have yet. Existing zones keep
// their state so restarts do not roll back applied changes.
func Seed(ctx context.Context, s ZoneStorage, zones []models.Zone) (int, error) {
	added := 0
	for _, z := range zones {
		_, err := s.GetZone(ctx, z.ID)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, ErrZoneNotFound):
			return added, fmt.Errorf("failed to check zone %s: %w", z.ID, err)
		}

		if err := s.UpsertZone(ctx, z); err != nil {
			return added, fmt.Errorf("failed to seed zone %s: %w", z.ID, err)
		}
		added++
	}
	return added, nil
}
