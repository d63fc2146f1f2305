package models

import (
	"maps"
	"slices"
)

// ZoneType тип игровой зоны
type ZoneType string

const (
	ZoneTypeSafe   ZoneType = "safe"
	ZoneTypeDanger ZoneType = "danger"
)

// Ключи атрибутов зоны. Движок синхронизации не интерпретирует значения,
// для него это непрозрачный набор атрибутов.
const (
	AttrName       = "name"
	AttrType       = "type"
	AttrPointValue = "pointValue"
	AttrCenter     = "center"
	AttrRadius     = "radius"
)

// Point географическая точка (центр зоны).
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Zone представляет геозону, общую для Game Manager и игроков.
// Мутабельные поля хранятся как набор атрибутов и множество ячеек,
// чтобы изменения можно было сливать по ключам.
type Zone struct {
	Attributes map[string]any `json:"attributes"`      // Attributes изменяемые атрибуты (name, type, pointValue, ...)
	ID         string         `json:"id"`              // ID идентификатор зоны
	Cells      []string       `json:"cells,omitempty"` // Cells отсортированное множество ячеек сетки
	UpdatedAt  int64          `json:"updated_at"`      // UpdatedAt серверная версия зоны
}

// NewZone creates a zone with the common gameplay attributes set.
func NewZone(id, name string, zoneType ZoneType, pointValue int, center Point, radius float64) Zone {
	return Zone{
		ID: id,
		Attributes: map[string]any{
			AttrName:       name,
			AttrType:       string(zoneType),
			AttrPointValue: pointValue,
			AttrCenter:     center,
			AttrRadius:     radius,
		},
	}
}

// Name returns the zone name attribute or an empty string.
func (z Zone) Name() string {
	s, _ := z.Attributes[AttrName].(string)
	return s
}

// Type returns the zone type attribute.
func (z Zone) Type() ZoneType {
	s, _ := z.Attributes[AttrType].(string)
	return ZoneType(s)
}

// PointValue returns the point value attribute. Values decoded from JSON
// arrive as float64, so both representations are accepted.
func (z Zone) PointValue() int {
	switch v := z.Attributes[AttrPointValue].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// HasCell reports whether the zone contains the given grid cell.
func (z Zone) HasCell(cell string) bool {
	_, found := slices.BinarySearch(z.Cells, cell)
	return found
}

// Clone создает копию зоны. Значения атрибутов копируются поверхностно,
// они считаются неизменяемыми. Ячейки в копии отсортированы и без дублей.
func (z Zone) Clone() Zone {
	out := z
	out.Attributes = maps.Clone(z.Attributes)
	if out.Attributes == nil {
		out.Attributes = make(map[string]any)
	}
	out.Cells = slices.Clone(z.Cells)
	slices.Sort(out.Cells)
	out.Cells = slices.Compact(out.Cells)
	return out
}

// Apply folds a change record into a copy of the zone and returns it.
// The receiver is left untouched.
func (z Zone) Apply(rec ZoneChangeRecord) Zone {
	out := z.Clone()

	for _, cell := range rec.Added {
		if i, found := slices.BinarySearch(out.Cells, cell); !found {
			out.Cells = slices.Insert(out.Cells, i, cell)
		}
	}
	for _, cell := range rec.Removed {
		if i, found := slices.BinarySearch(out.Cells, cell); found {
			out.Cells = slices.Delete(out.Cells, i, i+1)
		}
	}
	for k, v := range rec.Modified {
		out.Attributes[k] = v
	}

	if rec.Origin == OriginServer && rec.Timestamp > out.UpdatedAt {
		out.UpdatedAt = rec.Timestamp
	}

	return out
}
