// Package field evolves the environmental field cells held on worldmap
// tiles: fire, smoke, gas, electricity, blood, acid, fatigue. It is pure
// simulation logic layered on top of worldmap's sentinel-safe accessors —
// it never holds field-cell storage itself (spec §3 Field cell, §4.2).
package field

import (
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
	"github.com/ashgo/ashfall/internal/rng"
	"github.com/ashgo/ashfall/internal/worldmap"
	"go.uber.org/zap"
)

// Tick advances every field cell in the bubble by one world turn, applying
// the per-kind rule first and the universal half-life decay second (spec
// §4.2). Newborn cells (Age == 0) are skipped entirely this tick so a cell
// created mid-sweep is never double-applied.
func Tick(b *worldmap.Bubble, cat catalog.Provider, r *rng.Source, log *zap.Logger) {
	b.ForEachPoint(func(p geom.Point) {
		c := b.FieldAt(p)
		if c.IsNone() || c.Age == 0 {
			return
		}
		switch c.Kind {
		case worldmap.FieldBlood, worldmap.FieldBile:
			tickInert(b, p, c)
		case worldmap.FieldAcid:
			tickAcid(b, p, c, cat, r)
		case worldmap.FieldFire:
			tickFire(b, p, c, cat, r, log)
		case worldmap.FieldSmoke:
			tickSmoke(b, p, c, r)
		case worldmap.FieldTearGas:
			tickTearGas(b, p, c, r)
		case worldmap.FieldNukeGas:
			tickNukeGas(b, p, c, r)
		case worldmap.FieldElectricity:
			tickElectricity(b, p, c, r)
		case worldmap.FieldFatigue:
			tickFatigue(b, p, c, r)
		}
		decayHalfLife(b, p, r)
	})
}

func tickInert(b *worldmap.Bubble, p geom.Point, c worldmap.FieldCell) {
	if b.TerrainFlags(p)&catalog.TerrainSwimmable != 0 {
		c.Age += 250
		b.SetFieldAt(p, c)
	}
}

func tickAcid(b *worldmap.Bubble, p geom.Point, c worldmap.FieldCell, cat catalog.Provider, r *rng.Source) {
	if b.TerrainFlags(p)&catalog.TerrainSwimmable != 0 {
		c.Age += 20
	}
	pile := b.ItemsAt(p)
	kept := pile.Items[:0]
	for _, it := range pile.Items {
		def, ok := cat.ItemByID(it.ID)
		if !ok {
			kept = append(kept, it)
			continue
		}
		num, den, destructible := def.Material.AcidDestructChance()
		if destructible && r.XInY(float64(num), float64(den)) {
			it.Damage++
			const tolerance int32 = 5
			if it.Damage <= tolerance {
				kept = append(kept, it)
				continue
			}
			// destroyed: spill contents back onto the tile, dilute the field.
			kept = append(kept, it.Contents...)
			c.Age += int32(def.Volume)
			continue
		}
		kept = append(kept, it)
	}
	pile.Items = kept
	b.SetFieldAt(p, c)
}

// tickFire implements the fuel-consumption, spread, and ignition rules of
// spec §4.2 Fire. Smoke emission, neighbor ignition, and intensity
// promotion are all gated by RNG draws made in the order the spec lists.
func tickFire(b *worldmap.Bubble, p geom.Point, c worldmap.FieldCell, cat catalog.Provider, r *rng.Source, log *zap.Logger) {
	consumeFuel(b, p, c, cat, r)

	flags := b.TerrainFlags(p)
	if flags&catalog.TerrainExplodes != 0 {
		b.SetTerrainAt(p, catalog.NullTerrain) // crude stand-in for a full explosion system
	}
	if flags&catalog.TerrainFlammable != 0 {
		if td, ok := cat.TerrainByID(b.TerrainAt(p)); ok && td.BurnResult != 0 {
			b.SetTerrainAt(p, td.BurnResult)
		}
	}
	damped := flags&catalog.TerrainSwimmable != 0

	if c.Intensity < 3 && c.Age < 0 {
		if (-c.Age)%300 == 0 {
			c.Intensity++
		}
	} else if c.Intensity == 3 && c.Age < 0 {
		neighbors := geom.Neighbors8(p)
		nb := neighbors[r.Intn(len(neighbors))]
		nc := b.FieldAt(nb)
		if nc.Kind == worldmap.FieldFire && nc.Intensity < 3 {
			pit := b.TerrainFlags(p)&catalog.TerrainPit != 0
			nPit := b.TerrainFlags(nb)&catalog.TerrainPit != 0
			if pit == nPit {
				nc.Intensity++
				b.SetFieldAt(nb, nc)
			}
		}
	}
	if damped && c.Intensity > 1 {
		c.Intensity--
	}
	b.SetFieldAt(p, c)

	for _, n := range geom.Neighbors8(p) {
		nFlags := b.TerrainFlags(n)
		if nFlags&catalog.TerrainExplodes != 0 && r.XInY(1, float64(8-int(c.Intensity))) {
			b.SetTerrainAt(n, catalog.NullTerrain)
			continue
		}
		hasItems := b.ItemsAt(n).Len() > 0
		if hasItems || r.Rng(15, 120) < int(c.Intensity)*10 {
			igniteNeighbor(b, n, nFlags, r, log)
			continue
		}
		if c.Age < 1000 && r.Rng(7, 40) < int(c.Intensity)*10 {
			sc := b.FieldAt(n)
			if sc.IsNone() {
				b.SetFieldAt(n, worldmap.FieldCell{Kind: worldmap.FieldSmoke, Intensity: 1})
			}
		}
	}
}

func igniteNeighbor(b *worldmap.Bubble, n geom.Point, flags catalog.TerrainFlag, r *rng.Source, log *zap.Logger) {
	if flags&catalog.TerrainFlammable == 0 {
		return
	}
	existing := b.FieldAt(n)
	if existing.Kind == worldmap.FieldFire {
		if existing.Intensity < 3 {
			existing.Intensity++
			b.SetFieldAt(n, existing)
		}
		return
	}
	if !existing.IsNone() {
		return
	}
	b.SetFieldAt(n, worldmap.FieldCell{Kind: worldmap.FieldFire, Intensity: 1})
	if log != nil {
		log.Debug("fire spread", zap.Int32("x", n.X), zap.Int32("y", n.Y))
	}
}

// consumeFuel burns the flammable items on the tile: flammable ammo is
// consumed at once; any other flammable item is consumed when intensity*10
// reaches its FuelValue (its Volume when FuelValue is unset) or on a 1-in-3
// roll. Thresholds are per item, not per material class, and no item
// (alcohol included) speeds up the burn.
func consumeFuel(b *worldmap.Bubble, p geom.Point, c worldmap.FieldCell, cat catalog.Provider, r *rng.Source) {
	pile := b.ItemsAt(p)
	if pile.Len() == 0 {
		return
	}
	kept := pile.Items[:0]
	for _, it := range pile.Items {
		def, ok := cat.ItemByID(it.ID)
		if !ok || !def.Flammable {
			kept = append(kept, it)
			continue
		}
		if def.IsAmmo {
			continue // detonates immediately, consumed whole
		}
		threshold := def.FuelValue
		if threshold <= 0 {
			threshold = def.Volume
		}
		if int(c.Intensity)*10 >= threshold || r.OneIn(3) {
			continue // consumed
		}
		kept = append(kept, it)
	}
	pile.Items = kept
}

func tickSmoke(b *worldmap.Bubble, p geom.Point, c worldmap.FieldCell, r *rng.Source) {
	clearScentAround(b, p)
	if b.TerrainFlags(p)&catalog.TerrainSwimmable == 0 {
		c.Age += 1
	}
	if r.OneIn(2) {
		spreadGas(b, p, worldmap.FieldSmoke, r, nil)
	}
	b.SetFieldAt(p, c)
}

func tickTearGas(b *worldmap.Bubble, p geom.Point, c worldmap.FieldCell, r *rng.Source) {
	clearScentAround(b, p)
	if r.OneIn(3) {
		spreadGas(b, p, worldmap.FieldTearGas, r, []worldmap.FieldKind{worldmap.FieldSmoke})
	}
}

func tickNukeGas(b *worldmap.Bubble, p geom.Point, c worldmap.FieldCell, r *rng.Source) {
	clearScentAround(b, p)
	b.AddRadiation(p, r.Rng(0, int(c.Intensity)))
	if r.OneIn(3) {
		spreadGas(b, p, worldmap.FieldNukeGas, r, []worldmap.FieldKind{worldmap.FieldSmoke, worldmap.FieldTearGas})
	}
}

// spreadGas picks one random neighbor that is either null-and-walkable or
// an existing cell of kind (or one of convertKinds) with intensity < 3,
// and grows/converts it, per spec §4.2 Smoke/Tear-gas/Nuke-gas.
func spreadGas(b *worldmap.Bubble, p geom.Point, kind worldmap.FieldKind, r *rng.Source, convertKinds []worldmap.FieldKind) {
	var candidates []geom.Point
	for _, n := range geom.Neighbors8(p) {
		nc := b.FieldAt(n)
		switch {
		case nc.Kind == kind && nc.Intensity < 3:
			candidates = append(candidates, n)
		case nc.IsNone() && b.IsWalkable(n):
			candidates = append(candidates, n)
		default:
			for _, ck := range convertKinds {
				if nc.Kind == ck {
					candidates = append(candidates, n)
					break
				}
			}
		}
	}
	if len(candidates) == 0 {
		return
	}
	target := candidates[r.Intn(len(candidates))]
	nc := b.FieldAt(target)
	if nc.Kind == kind {
		nc.Intensity++
	} else {
		nc = worldmap.FieldCell{Kind: kind, Intensity: 1}
	}
	b.SetFieldAt(target, nc)
}

func clearScentAround(b *worldmap.Bubble, p geom.Point) {
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			b.SetScentAt(geom.Point{X: p.X + dx, Y: p.Y + dy, Z: p.Z}, 0)
		}
	}
}

func tickElectricity(b *worldmap.Bubble, p geom.Point, c worldmap.FieldCell, r *rng.Source) {
	if !r.XInY(4, 5) {
		b.SetFieldAt(p, c)
		return
	}
	grounded := !b.IsWalkable(p) && c.Intensity > 1
	if grounded {
		for i := 0; i < 10 && c.Age < 50; i++ {
			neighbors := geom.Neighbors8(p)
			shufflePointsSlice(neighbors, r)
			for _, n := range neighbors {
				if b.IsWalkable(n) {
					nc := b.FieldAt(n)
					if nc.IsNone() {
						b.SetFieldAt(n, worldmap.FieldCell{Kind: worldmap.FieldElectricity, Intensity: 1})
					}
					c.Intensity--
					break
				}
			}
			c.Age++
		}
		b.SetFieldAt(p, c)
		return
	}
	var impassable, walkable, thicken []geom.Point
	for _, n := range geom.Neighbors8(p) {
		if !b.IsWalkable(n) {
			impassable = append(impassable, n)
			continue
		}
		nc := b.FieldAt(n)
		if nc.Kind == worldmap.FieldElectricity && nc.Intensity < 3 {
			thicken = append(thicken, n)
		} else if nc.IsNone() {
			walkable = append(walkable, n)
		}
	}
	switch {
	case len(impassable) > 0:
		n := impassable[r.Intn(len(impassable))]
		nc := b.FieldAt(n)
		if nc.IsNone() {
			b.SetFieldAt(n, worldmap.FieldCell{Kind: worldmap.FieldElectricity, Intensity: 1})
		}
	case len(thicken) > 0:
		n := thicken[r.Intn(len(thicken))]
		nc := b.FieldAt(n)
		nc.Intensity++
		b.SetFieldAt(n, nc)
	case len(walkable) > 0:
		n := walkable[r.Intn(len(walkable))]
		b.SetFieldAt(n, worldmap.FieldCell{Kind: worldmap.FieldElectricity, Intensity: 1})
	}
	b.SetFieldAt(p, c)
}

func tickFatigue(b *worldmap.Bubble, p geom.Point, c worldmap.FieldCell, r *rng.Source) {
	if c.Intensity < 3 {
		if c.Age%3600 == 0 && r.OneIn(10) {
			c.Intensity++
		}
	} else if r.OneIn(3600) {
		spawnNetherCreature(b, p, r)
	}
	b.SetFieldAt(p, c)
}

// spawnNetherCreature records a pending spawn at a random offset within
// radius 3; internal/engine.World.resolvePendingSpawns turns pending
// spawns into actual monsters at the start of the next actor phase.
func spawnNetherCreature(b *worldmap.Bubble, p geom.Point, r *rng.Source) {
	dx := int32(r.Rng(-3, 3))
	dy := int32(r.Rng(-3, 3))
	at := geom.Point{X: p.X + dx, Y: p.Y + dy, Z: p.Z}
	sub := b.SubmapAt(at)
	lx, ly, ok := b.LocalCoord(at)
	if sub == nil || !ok {
		return
	}
	sub.PendingSpawns = append(sub.PendingSpawns, worldmap.SpawnPoint{
		MonsterID: netherMonsterID,
		Count:     1,
		LocalX:    lx,
		LocalY:    ly,
	})
}

// netherMonsterID is the catalog id fatigue fields spawn into; the
// concrete "nether" monster template is a Catalog authoring concern (spec
// §1 Non-goals) — the engine only guarantees the pending-spawn record.
const netherMonsterID = catalog.MonsterID(-1)

// decayHalfLife applies the universal half-life check common to every
// field kind with a positive half-life entry (spec §4.2, final paragraph).
func decayHalfLife(b *worldmap.Bubble, p geom.Point, r *rng.Source) {
	c := b.FieldAt(p)
	if c.IsNone() {
		return
	}
	d := worldmap.FieldDescriptors[c.Kind]
	if d.HalfLife <= 0 {
		return
	}
	c.Age++
	if r.D3Check(int(c.Age), d.HalfLife) {
		c.Intensity--
	}
	b.SetFieldAt(p, c.Clamp())
}

func shufflePointsSlice(pts []geom.Point, r *rng.Source) {
	for i := len(pts) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		pts[i], pts[j] = pts[j], pts[i]
	}
}
