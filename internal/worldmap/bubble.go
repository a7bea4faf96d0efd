package worldmap

import (
	"errors"

	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
)

// BubbleSubmaps is the 3x3 window of loaded submaps (spec §3 Chunk window).
const BubbleSubmaps = 3

// BubbleTiles is the edge length of the bubble in tiles (3*12 = 36).
const BubbleTiles = BubbleSubmaps * SubmapSize

// Store is the disk-backed chunk store the bubble loads from and saves to
// (spec §4.1 Chunking & persistence). Implemented by internal/worldio.
type Store interface {
	Load(coord SubmapCoord) (*Submap, bool, error)
	Save(s *Submap) error
}

// Bubble is the 3x3 reality bubble: the only submaps simulation ever
// touches. It exclusively owns its nine loaded submaps (spec §3
// Ownership) and is centered on an anchor submap coordinate.
type Bubble struct {
	center SubmapCoord // coordinate of the center submap
	subs   [BubbleSubmaps][BubbleSubmaps]*Submap

	store     Store
	generator Generator
	cat       catalog.Provider
}

// NewBubble constructs a bubble with no submaps loaded; call Shift to
// populate it.
func NewBubble(store Store, gen Generator, cat catalog.Provider) *Bubble {
	return &Bubble{store: store, generator: gen, cat: cat}
}

// Catalog returns the catalog provider the bubble was constructed with.
func (b *Bubble) Catalog() catalog.Provider { return b.cat }

// Shift recenters the bubble on newCenter: submaps already loaded that
// remain within the new 3x3 window are kept in place, submaps newly
// entering the window are loaded from the store, and submaps falling
// out of the window are returned as evicted so the caller can flush
// them to disk (spec §4.1: "on bubble shift, save the three leaving
// submaps"). A no-op if newCenter equals the current center and the
// bubble is already populated.
func (b *Bubble) Shift(newCenter SubmapCoord) (evicted []*Submap, err error) {
	if newCenter == b.center && b.subs[1][1] != nil {
		return nil, nil
	}

	keep := make(map[SubmapCoord]*Submap)
	for row := 0; row < BubbleSubmaps; row++ {
		for col := 0; col < BubbleSubmaps; col++ {
			if sub := b.subs[row][col]; sub != nil {
				keep[sub.Coord] = sub
			}
		}
	}

	var newSubs [BubbleSubmaps][BubbleSubmaps]*Submap
	var loadErrs []error
	for row := 0; row < BubbleSubmaps; row++ {
		for col := 0; col < BubbleSubmaps; col++ {
			coord := SubmapCoord{
				X: newCenter.X + int32(col-1),
				Y: newCenter.Y + int32(row-1),
				Z: newCenter.Z,
			}
			if sub, ok := keep[coord]; ok {
				newSubs[row][col] = sub
				delete(keep, coord)
				continue
			}
			sub, _, loadErr := b.store.Load(coord)
			if loadErr != nil {
				loadErrs = append(loadErrs, loadErr)
				continue
			}
			newSubs[row][col] = sub
		}
	}

	for _, sub := range keep {
		evicted = append(evicted, sub)
	}
	b.subs = newSubs
	b.center = newCenter
	return evicted, errors.Join(loadErrs...)
}

// Center returns the coordinate of the bubble's center submap.
func (b *Bubble) Center() SubmapCoord { return b.center }

// submapOffset returns the (col,row) of the submap containing tile p
// relative to the bubble's top-left submap, and whether p falls in the
// bubble at all.
func (b *Bubble) submapOffset(p geom.Point) (col, row int, ok bool) {
	if p.Z != int32(b.center.Z) {
		return 0, 0, false
	}
	topLeftX := (b.center.X - 1) * SubmapSize
	topLeftY := (b.center.Y - 1) * SubmapSize
	dx := p.X - topLeftX
	dy := p.Y - topLeftY
	if dx < 0 || dy < 0 || dx >= BubbleTiles || dy >= BubbleTiles {
		return 0, 0, false
	}
	return int(dx) / SubmapSize, int(dy) / SubmapSize, true
}

// InBubble reports whether p falls within the 36x36 window around the
// bubble's center (spec §3 invariants: "For any (x,y) the bubble holds
// the tile iff (x,y) falls in the 36x36 window around the player").
func (b *Bubble) InBubble(p geom.Point) bool {
	_, _, ok := b.submapOffset(p)
	return ok
}

// tileRef locates the tile for p, if in bubble.
func (b *Bubble) tileRef(p geom.Point) *Tile {
	col, row, ok := b.submapOffset(p)
	if !ok {
		return nil
	}
	sub := b.subs[row][col]
	if sub == nil {
		return nil
	}
	topLeftX := (b.center.X - 1) * SubmapSize
	topLeftY := (b.center.Y - 1) * SubmapSize
	lx := int(p.X-topLeftX) % SubmapSize
	ly := int(p.Y-topLeftY) % SubmapSize
	return sub.TileAt(lx, ly)
}

// LocalCoord returns the local (lx, ly) of tile p within its containing
// submap, and whether p is in bubble at all.
func (b *Bubble) LocalCoord(p geom.Point) (lx, ly int, ok bool) {
	if !b.InBubble(p) {
		return 0, 0, false
	}
	topLeftX := (b.center.X - 1) * SubmapSize
	topLeftY := (b.center.Y - 1) * SubmapSize
	return int(p.X-topLeftX) % SubmapSize, int(p.Y-topLeftY) % SubmapSize, true
}

// SubmapAt returns the loaded submap containing tile p, or nil if p is
// out of bubble or the submap slot hasn't been loaded.
func (b *Bubble) SubmapAt(p geom.Point) *Submap {
	col, row, ok := b.submapOffset(p)
	if !ok {
		return nil
	}
	return b.subs[row][col]
}

// LoadedSubmaps returns every non-nil submap currently resident in the
// bubble, for callers that need to flush the whole window to disk.
func (b *Bubble) LoadedSubmaps() []*Submap {
	out := make([]*Submap, 0, BubbleSubmaps*BubbleSubmaps)
	for row := 0; row < BubbleSubmaps; row++ {
		for col := 0; col < BubbleSubmaps; col++ {
			if sub := b.subs[row][col]; sub != nil {
				out = append(out, sub)
			}
		}
	}
	return out
}

// --- total accessors: out-of-bubble reads return sentinels, writes are
// silent no-ops (spec §4.1 Failure semantics). ---

// TerrainAt returns the terrain id at p, or the null sentinel out of bubble.
func (b *Bubble) TerrainAt(p geom.Point) catalog.TerrainID {
	t := b.tileRef(p)
	if t == nil {
		return catalog.NullTerrain
	}
	return t.Terrain
}

// SetTerrainAt sets the terrain id at p. No-op out of bubble.
func (b *Bubble) SetTerrainAt(p geom.Point, id catalog.TerrainID) {
	if t := b.tileRef(p); t != nil {
		t.Terrain = id
	}
}

// FurnitureAt returns the furniture id at p, or 0 out of bubble.
func (b *Bubble) FurnitureAt(p geom.Point) catalog.FurnitureID {
	t := b.tileRef(p)
	if t == nil {
		return 0
	}
	return t.Furniture
}

var transientPile ItemPile

// ItemsAt returns a pointer to the item pile at p. Out-of-bubble returns
// a transient, shared empty pile — writes to it are silently dropped
// since nothing ever reads it back (spec §4.1).
func (b *Bubble) ItemsAt(p geom.Point) *ItemPile {
	t := b.tileRef(p)
	if t == nil {
		transientPile.Items = nil
		return &transientPile
	}
	return &t.Items
}

// TrapAt returns the trap id at p, or 0 (none) out of bubble.
func (b *Bubble) TrapAt(p geom.Point) catalog.TrapID {
	t := b.tileRef(p)
	if t == nil {
		return 0
	}
	return t.Trap
}

// SetTrapAt sets the trap id at p. No-op out of bubble.
func (b *Bubble) SetTrapAt(p geom.Point, id catalog.TrapID) {
	if t := b.tileRef(p); t != nil {
		t.Trap = id
	}
}

// FieldAt returns the field cell at p, or the none sentinel out of bubble.
func (b *Bubble) FieldAt(p geom.Point) FieldCell {
	t := b.tileRef(p)
	if t == nil {
		return FieldCell{}
	}
	return t.Field
}

// SetFieldAt sets the field cell at p. No-op out of bubble.
func (b *Bubble) SetFieldAt(p geom.Point, c FieldCell) {
	if t := b.tileRef(p); t != nil {
		t.Field = c.Clamp()
	}
}

// RadiationAt returns the radiation scalar at p, or 0 out of bubble.
func (b *Bubble) RadiationAt(p geom.Point) uint8 {
	t := b.tileRef(p)
	if t == nil {
		return 0
	}
	return t.Radiation
}

// AddRadiation adds delta (can be negative) to the radiation scalar at p,
// clamped to [0,255]. No-op out of bubble.
func (b *Bubble) AddRadiation(p geom.Point, delta int) {
	t := b.tileRef(p)
	if t == nil {
		return
	}
	v := int(t.Radiation) + delta
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	t.Radiation = uint8(v)
}

// ScentAt returns the scent scalar at p, or 0 out of bubble (spec §4.3
// Scent map).
func (b *Bubble) ScentAt(p geom.Point) float32 {
	t := b.tileRef(p)
	if t == nil {
		return 0
	}
	return t.Scent
}

// SetScentAt sets the scent scalar at p. No-op out of bubble.
func (b *Bubble) SetScentAt(p geom.Point, v float32) {
	if t := b.tileRef(p); t != nil {
		t.Scent = v
	}
}

// IsWalkable reports whether p can be entered by a normal actor: in
// bubble and terrain walkable. Furniture on the tile is not consulted.
func (b *Bubble) IsWalkable(p geom.Point) bool {
	t := b.tileRef(p)
	if t == nil {
		return false
	}
	td, ok := b.cat.TerrainByID(t.Terrain)
	if !ok {
		return false
	}
	return td.Has(catalog.TerrainWalkable)
}

// IsTransparent reports whether LOS passes through p: terrain
// transparent AND field at this intensity not opaque. Out-of-bubble
// tiles are treated as transparent — the caller must re-check bounds
// (spec §4.1 Line of sight).
func (b *Bubble) IsTransparent(p geom.Point) bool {
	t := b.tileRef(p)
	if t == nil {
		return true
	}
	td, ok := b.cat.TerrainByID(t.Terrain)
	if !ok {
		return false
	}
	if !td.Has(catalog.TerrainTransparent) {
		return false
	}
	return !t.Field.Opaque()
}

// TerrainFlags returns the terrain+furniture flag union at p.
func (b *Bubble) TerrainFlags(p geom.Point) catalog.TerrainFlag {
	t := b.tileRef(p)
	if t == nil {
		return 0
	}
	td, _ := b.cat.TerrainByID(t.Terrain)
	flags := td.Flags
	if t.Furniture != 0 {
		fd, _ := b.cat.FurnitureByID(t.Furniture)
		flags |= fd.Flags
	}
	return flags
}

// ForEachPoint calls fn once for every tile coordinate in the bubble's
// 36x36 window, in row-major order. Used by systems (field simulator,
// scent decay) that need to sweep every loaded tile without reaching
// into bubble internals.
func (b *Bubble) ForEachPoint(fn func(p geom.Point)) {
	topLeftX := (b.center.X - 1) * SubmapSize
	topLeftY := (b.center.Y - 1) * SubmapSize
	for dy := int32(0); dy < BubbleTiles; dy++ {
		for dx := int32(0); dx < BubbleTiles; dx++ {
			fn(geom.Point{X: topLeftX + dx, Y: topLeftY + dy, Z: int32(b.center.Z)})
		}
	}
}

// MoveCost returns the tile's move cost (terrain, or furniture if present
// and nonzero), 0 meaning impassable.
func (b *Bubble) MoveCost(p geom.Point) int {
	t := b.tileRef(p)
	if t == nil {
		return 0
	}
	td, _ := b.cat.TerrainByID(t.Terrain)
	cost := td.MoveCost
	if t.Furniture != 0 {
		if fd, ok := b.cat.FurnitureByID(t.Furniture); ok && fd.MoveCost > 0 {
			cost = fd.MoveCost
		}
	}
	return cost
}
