package worldmap

import (
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
	"github.com/ashgo/ashfall/internal/rng"
)

// AddItem places item on the tile at p. If the tile carries the no-item
// flag or already holds MaxItemsPerTile items, it tries a random walkable
// neighbor within radius 1, then radius 2, giving up silently if no spot
// is found — the caller never sees a failure return (spec §4.1 AddItem,
// §8 invariant 4).
func (b *Bubble) AddItem(p geom.Point, item Item, r *rng.Source) {
	if b.canHoldItem(p) {
		pile := b.ItemsAt(p)
		pile.Items = append(pile.Items, item)
		return
	}
	for _, radius := range []int32{1, 2} {
		candidates := b.walkableWithin(p, radius, r)
		for _, c := range candidates {
			if b.canHoldItem(c) {
				pile := b.ItemsAt(c)
				pile.Items = append(pile.Items, item)
				return
			}
		}
	}
	// No spot found anywhere in range; give up silently.
}

func (b *Bubble) canHoldItem(p geom.Point) bool {
	if !b.InBubble(p) {
		return false
	}
	if b.TerrainFlags(p)&catalog.TerrainNoItem != 0 {
		return false
	}
	return b.ItemsAt(p).Len() < MaxItemsPerTile
}

// walkableWithin returns every in-bubble walkable tile at exactly
// Chebyshev distance radius from center, in a deterministic order
// shuffled by r so repeated calls don't always prefer the same neighbor.
func (b *Bubble) walkableWithin(center geom.Point, radius int32, r *rng.Source) []geom.Point {
	var out []geom.Point
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			p := geom.Point{X: center.X + dx, Y: center.Y + dy, Z: center.Z}
			if geom.Chebyshev(center, p) != radius {
				continue // only the outer ring at this radius
			}
			if b.IsWalkable(p) {
				out = append(out, p)
			}
		}
	}
	shufflePoints(out, r)
	return out
}

// shufflePoints performs an in-place Fisher-Yates shuffle using r.
func shufflePoints(pts []geom.Point, r *rng.Source) {
	for i := len(pts) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		pts[i], pts[j] = pts[j], pts[i]
	}
}
