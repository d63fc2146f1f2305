package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewZone(t *testing.T) {
	z := NewZone("z1", "Alpha", ZoneTypeDanger, 30, Point{Lat: 1, Lng: 2}, 50)

	assert.Equal(t, "z1", z.ID)
	assert.Equal(t, "Alpha", z.Name())
	assert.Equal(t, ZoneTypeDanger, z.Type())
	assert.Equal(t, 30, z.PointValue())
	assert.Equal(t, Point{Lat: 1, Lng: 2}, z.Attributes[AttrCenter])
	assert.Empty(t, z.Cells)
}

func TestZone_PointValue(t *testing.T) {
	tests := []struct {
		value    any
		name     string
		expected int
	}{
		{name: "int", value: 7, expected: 7},
		{name: "int64", value: int64(8), expected: 8},
		{name: "float64 from json", value: float64(9), expected: 9},
		{name: "wrong type", value: "10", expected: 0},
		{name: "missing", value: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := Zone{Attributes: map[string]any{}}
			if tt.value != nil {
				z.Attributes[AttrPointValue] = tt.value
			}
			assert.Equal(t, tt.expected, z.PointValue())
		})
	}
}

func TestZone_Clone(t *testing.T) {
	original := Zone{
		ID:         "z1",
		Attributes: map[string]any{AttrName: "Alpha"},
		Cells:      []string{"c", "a", "b", "a"},
		UpdatedAt:  3,
	}

	clone := original.Clone()
	assert.Equal(t, []string{"a", "b", "c"}, clone.Cells)
	assert.Equal(t, int64(3), clone.UpdatedAt)

	clone.Attributes[AttrName] = "changed"
	clone.Cells[0] = "z"
	assert.Equal(t, "Alpha", original.Name())
	assert.Equal(t, "c", original.Cells[0])

	empty := Zone{ID: "z2"}.Clone()
	assert.NotNil(t, empty.Attributes)
}

func TestZone_Apply(t *testing.T) {
	base := Zone{
		ID:         "z1",
		Attributes: map[string]any{AttrName: "Alpha", AttrPointValue: 10},
		Cells:      []string{"a", "c"},
		UpdatedAt:  5,
	}

	tests := []struct {
		rec       ZoneChangeRecord
		wantAttrs map[string]any
		name      string
		wantCells []string
		wantVer   int64
	}{
		{
			name:      "add keeps order and ignores duplicates",
			rec:       ZoneChangeRecord{Added: []string{"b", "a"}, Origin: OriginLocal},
			wantCells: []string{"a", "b", "c"},
			wantAttrs: map[string]any{AttrName: "Alpha", AttrPointValue: 10},
			wantVer:   5,
		},
		{
			name:      "remove missing cell is a no-op",
			rec:       ZoneChangeRecord{Removed: []string{"c", "x"}, Origin: OriginLocal},
			wantCells: []string{"a"},
			wantAttrs: map[string]any{AttrName: "Alpha", AttrPointValue: 10},
			wantVer:   5,
		},
		{
			name:      "modify attributes",
			rec:       ZoneChangeRecord{Modified: map[string]any{AttrPointValue: 20, AttrRadius: 5.5}, Origin: OriginLocal},
			wantCells: []string{"a", "c"},
			wantAttrs: map[string]any{AttrName: "Alpha", AttrPointValue: 20, AttrRadius: 5.5},
			wantVer:   5,
		},
		{
			name:      "local timestamp does not bump version",
			rec:       ZoneChangeRecord{Timestamp: 1_700_000_000_000, Origin: OriginLocal},
			wantCells: []string{"a", "c"},
			wantAttrs: map[string]any{AttrName: "Alpha", AttrPointValue: 10},
			wantVer:   5,
		},
		{
			name:      "server timestamp bumps version",
			rec:       ZoneChangeRecord{Timestamp: 9, Origin: OriginServer},
			wantCells: []string{"a", "c"},
			wantAttrs: map[string]any{AttrName: "Alpha", AttrPointValue: 10},
			wantVer:   9,
		},
		{
			name:      "older server timestamp keeps version",
			rec:       ZoneChangeRecord{Timestamp: 2, Origin: OriginServer},
			wantCells: []string{"a", "c"},
			wantAttrs: map[string]any{AttrName: "Alpha", AttrPointValue: 10},
			wantVer:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Apply(tt.rec)
			assert.Equal(t, tt.wantCells, got.Cells)
			assert.Equal(t, tt.wantAttrs, got.Attributes)
			assert.Equal(t, tt.wantVer, got.UpdatedAt)
		})
	}

	assert.Equal(t, []string{"a", "c"}, base.Cells, "receiver is untouched")
	assert.Equal(t, 10, base.Attributes[AttrPointValue])
}

func TestZone_HasCell(t *testing.T) {
	z := Zone{Cells: []string{"a", "b"}}
	assert.True(t, z.HasCell("b"))
	assert.False(t, z.HasCell("c"))
}
