package models

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// ErrInvalidChange indicates a change record that violates its own invariants
var ErrInvalidChange = errors.New("invalid zone change")

// Origin источник изменения зоны
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginServer Origin = "server"
)

// Префиксы ключей, по которым сравниваются изменения при слиянии.
// Ячейки и атрибуты живут в разных пространствах имен.
const (
	cellKeyPrefix = "cell:"
	attrKeyPrefix = "attr:"
)

// ChangeSet описывает правку зоны, запрошенную вызывающим кодом.
type ChangeSet struct {
	Modified map[string]any `json:"modified,omitempty"` // Modified измененные атрибуты с новыми значениями
	Added    []string       `json:"added,omitempty"`    // Added добавленные ячейки
	Removed  []string       `json:"removed,omitempty"`  // Removed удаленные ячейки
}

// ZoneChangeRecord представляет одно изменение зоны (локальное или серверное).
type ZoneChangeRecord struct {
	Modified  map[string]any `json:"modified,omitempty"` // Modified измененные атрибуты
	ChangeID  string         `json:"change_id"`          // ChangeID уникальный идентификатор изменения
	ZoneID    string         `json:"zone_id"`            // ZoneID идентификатор зоны
	Origin    Origin         `json:"origin"`             // Origin local или server
	Added     []string       `json:"added,omitempty"`    // Added добавленные ячейки
	Removed   []string       `json:"removed,omitempty"`  // Removed удаленные ячейки
	Timestamp int64          `json:"timestamp"`          // Timestamp время выпуска (local, unix ms) или версия сервера (server)
}

// NewChangeID returns a fresh change identifier.
func NewChangeID() string {
	return uuid.NewString()
}

// NewLocalRecord builds a local-origin record for the given change set.
func NewLocalRecord(zoneID string, cs ChangeSet, issuedAt int64) ZoneChangeRecord {
	return ZoneChangeRecord{
		ChangeID:  NewChangeID(),
		ZoneID:    zoneID,
		Added:     slices.Clone(cs.Added),
		Removed:   slices.Clone(cs.Removed),
		Modified:  maps.Clone(cs.Modified),
		Timestamp: issuedAt,
		Origin:    OriginLocal,
	}
}

// Validate checks that the record names a zone and that added, removed and
// modified key sets are pairwise disjoint. Empty records are valid: the
// server may send a bare version bump.
func (r ZoneChangeRecord) Validate() error {
	if r.ZoneID == "" {
		return fmt.Errorf("%w: empty zone id", ErrInvalidChange)
	}

	seen := make(map[string]string, len(r.Added)+len(r.Removed)+len(r.Modified))
	check := func(set, key string) error {
		if prev, ok := seen[key]; ok && prev != set {
			return fmt.Errorf("%w: key %q is both %s and %s", ErrInvalidChange, key, prev, set)
		}
		seen[key] = set
		return nil
	}

	for _, k := range r.Added {
		if err := check("added", k); err != nil {
			return err
		}
	}
	for _, k := range r.Removed {
		if err := check("removed", k); err != nil {
			return err
		}
	}
	for k := range r.Modified {
		if err := check("modified", k); err != nil {
			return err
		}
	}

	return nil
}

// IsEmpty reports whether the record touches nothing.
func (r ZoneChangeRecord) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Modified) == 0
}

// Keys returns the set of merge keys touched by the record.
func (r ZoneChangeRecord) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(r.Added)+len(r.Removed)+len(r.Modified))
	for _, c := range r.Added {
		keys[cellKeyPrefix+c] = struct{}{}
	}
	for _, c := range r.Removed {
		keys[cellKeyPrefix+c] = struct{}{}
	}
	for a := range r.Modified {
		keys[attrKeyPrefix+a] = struct{}{}
	}
	return keys
}

// Without returns a copy of the record with every key in drop removed.
func (r ZoneChangeRecord) Without(drop map[string]struct{}) ZoneChangeRecord {
	out := r.Clone()

	dropped := func(prefix string) func(string) bool {
		return func(k string) bool {
			_, found := drop[prefix+k]
			return found
		}
	}
	out.Added = slices.DeleteFunc(out.Added, dropped(cellKeyPrefix))
	out.Removed = slices.DeleteFunc(out.Removed, dropped(cellKeyPrefix))
	maps.DeleteFunc(out.Modified, func(k string, _ any) bool {
		_, found := drop[attrKeyPrefix+k]
		return found
	})

	return out
}

// Clone создает копию записи
func (r ZoneChangeRecord) Clone() ZoneChangeRecord {
	out := r
	out.Added = slices.Clone(r.Added)
	out.Removed = slices.Clone(r.Removed)
	out.Modified = maps.Clone(r.Modified)
	return out
}
