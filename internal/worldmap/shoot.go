package worldmap

import (
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
	"github.com/ashgo/ashfall/internal/rng"
)

// AmmoFlag describes projectile properties that change how a shot
// interacts with terrain and items in flight (spec §4.4 Shoot).
type AmmoFlag uint8

const (
	AmmoNone AmmoFlag = 0
	// AmmoIncendiary sets an extra field at p on impact with flammable terrain.
	AmmoIncendiary AmmoFlag = 1 << iota
	// AmmoShot disperses and has a better chance of hitting items on the tile.
	AmmoShot
)

// Shoot resolves a projectile passing through or impacting tile p: it may
// shatter glass, bash through thin obstacles, and damage items resting on
// the tile. dam is adjusted downward as the terrain/items absorb the hit
// (spec §4.4 step on each traversed tile). Returns whether the shot is
// stopped at p (an impassable, unbashed obstruction).
func (b *Bubble) Shoot(p geom.Point, dam *int, hitItems bool, flags AmmoFlag, r *rng.Source) (stopped bool) {
	t := b.tileRef(p)
	if t == nil {
		return false
	}
	td, ok := b.cat.TerrainByID(t.Terrain)
	if !ok {
		return false
	}

	if td.Has(catalog.TerrainTransparent) && td.Has(catalog.TerrainWalkable) {
		if flags&AmmoIncendiary != 0 && td.Has(catalog.TerrainFlammable) {
			t.Field = FieldCell{Kind: FieldFire, Intensity: 1}.Clamp()
		}
		if hitItems {
			b.damageItemsAt(p, *dam, r)
		}
		return false
	}

	if td.Has(catalog.TerrainBashable) {
		threshold := r.Rng(td.BashRNGMin, td.BashRNGMax)
		absorbed := threshold / 2
		if absorbed > *dam {
			absorbed = *dam
		}
		*dam -= absorbed
		if *dam <= 0 {
			*dam = 0
			return true
		}
		if td.BashResult != 0 {
			t.Terrain = td.BashResult
		}
		return false
	}

	// Solid, non-bashable obstruction: the shot stops here entirely.
	*dam = 0
	return true
}

// damageItemsAt applies incidental fire damage to the item pile on a tile
// a shot passed through, destroying fragile items outright.
func (b *Bubble) damageItemsAt(p geom.Point, dam int, r *rng.Source) {
	pile := b.ItemsAt(p)
	if pile.Len() == 0 || dam <= 0 {
		return
	}
	kept := pile.Items[:0]
	for _, it := range pile.Items {
		def, ok := b.cat.ItemByID(it.ID)
		if ok && def.Material == catalog.MatGlass && r.OneIn(2) {
			continue // shattered
		}
		kept = append(kept, it)
	}
	pile.Items = kept
}
