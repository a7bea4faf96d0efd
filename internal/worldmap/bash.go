package worldmap

import (
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
	"github.com/ashgo/ashfall/internal/rng"
)

// Bash attempts to break the terrain at p with the given strength. The
// threshold is a stochastic per-terrain-kind check against
// [BashRNGMin, BashRNGMax] (spec §4.1 Bash: "glass <= rng(0,6), wood door
// <= rng(0,40), boarded door <= 3d50, ..."). On success the terrain is
// replaced by its BashResult and debris items from a terrain-specific
// table are spawned on the tile. Returns whether the terrain changed and
// a sound-volume estimate for the bash.
func (b *Bubble) Bash(p geom.Point, strength int, r *rng.Source) (changed bool, sound int) {
	t := b.tileRef(p)
	if t == nil {
		return false, 0
	}
	td, ok := b.cat.TerrainByID(t.Terrain)
	if !ok || !td.Has(catalog.TerrainBashable) {
		return false, 0
	}

	threshold := r.Rng(td.BashRNGMin, td.BashRNGMax)
	if strength < threshold {
		return false, 8 // a failed bash still makes noise
	}

	if td.BashResult != 0 {
		t.Terrain = td.BashResult
	}
	for _, id := range td.DebrisItems {
		if r.OneIn(2) {
			b.AddItem(p, Item{ID: catalog.ItemID(id), Count: 1}, r)
		}
	}
	return true, 16
}
