// Package worldmap implements the tiled map: the tile grid, the 12x12
// submap, the 3x3 reality-bubble chunk window, A* pathfinding, and line of
// sight. This is the core per spec §4.1.
package worldmap

import (
	"github.com/ashgo/ashfall/internal/catalog"
)

// SubmapSize is the fixed submap edge length (spec §3 Submap).
const SubmapSize = 12

// TilesPerSubmap is SubmapSize*SubmapSize.
const TilesPerSubmap = SubmapSize * SubmapSize

// MaxItemsPerTile bounds the item pile before overflow placement is
// attempted on neighbors (spec §3 Tile, §8 invariant 4).
const MaxItemsPerTile = 24

// Item is the minimal projection of an item needed by the map and field
// simulator. Full item/inventory modeling is a Catalog/crafting concern
// and out of scope (spec §1 Non-goals); this is the surface the core
// actually mutates (overflow placement, fire fuel consumption, acid
// destruction, bash debris).
type Item struct {
	ID       catalog.ItemID
	Count    int32
	Damage   int32 // accumulated damage from fields (acid, fire char)
	Contents []Item
}

// ItemPile is an ordered sequence of items resting on one tile.
type ItemPile struct {
	Items []Item
}

func (p *ItemPile) Len() int { return len(p.Items) }

// Tile is one (x,y,z) cell: terrain, optional furniture, items, trap,
// field, radiation, and scent (spec §3 Tile).
type Tile struct {
	Terrain   catalog.TerrainID
	Furniture catalog.FurnitureID
	Items     ItemPile
	Trap      catalog.TrapID
	Field     FieldCell
	Radiation uint8
	Scent     float32
}

// DoorState is the explicit state machine spec §4.1 requires for doors.
type DoorState int8

const (
	DoorClosed DoorState = iota
	DoorOpen
	DoorLocked
)
