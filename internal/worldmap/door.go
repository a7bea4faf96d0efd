package worldmap

import (
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
)

// OpenDoor attempts to open the door at p. Locked doors open only if
// inside is true. Returns whether state actually changed (spec §4.1
// OpenDoor/CloseDoor).
func (b *Bubble) OpenDoor(p geom.Point, inside bool) bool {
	t := b.tileRef(p)
	if t == nil {
		return false
	}
	td, ok := b.cat.TerrainByID(t.Terrain)
	if !ok || !td.Has(catalog.TerrainDoor) {
		return false
	}
	if td.Has(catalog.TerrainDoorLocked) && !inside {
		return false
	}
	if td.ToggleID == 0 {
		return false // no paired "open" terrain variant configured
	}
	t.Terrain = td.ToggleID
	return true
}

// CloseDoor attempts to close the open door at p. Returns whether state
// changed.
func (b *Bubble) CloseDoor(p geom.Point) bool {
	t := b.tileRef(p)
	if t == nil {
		return false
	}
	td, ok := b.cat.TerrainByID(t.Terrain)
	if !ok {
		return false
	}
	if td.Has(catalog.TerrainDoor) && td.Has(catalog.TerrainWalkable) && td.ToggleID != 0 {
		t.Terrain = td.ToggleID
		return true
	}
	return false
}
