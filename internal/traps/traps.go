// Package traps implements the uniform trap dispatch of spec §4.5: every
// tile carries at most one trap id, and on actor entry the trap's effect
// routes to a player- or monster-specific handler. Effect kinds are a
// data-driven registry (map[TrapID]Effect), not a type switch, per the
// "big-switch effect dispatch" design note.
package traps

import (
	"github.com/ashgo/ashfall/internal/actorset"
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
	"github.com/ashgo/ashfall/internal/rng"
	"github.com/ashgo/ashfall/internal/worldmap"
)

// World is the seam trap effects need: the bubble for map mutation plus
// occupancy for telepad merge-kill resolution.
type World interface {
	Bubble() *worldmap.Bubble
	Catalog() catalog.Provider
	ActorAt(p geom.Point) (actorset.Actor, bool)
}

// isTiny reports whether m's catalog template is MS_TINY, the size class
// spec §4.5 exempts from most trap effects.
func isTiny(w World, m *actorset.Monster) bool {
	def, ok := w.Catalog().MonsterByID(m.TypeID)
	return ok && def.Size == catalog.SizeTiny
}

// Effect is one trap's behavior, dispatched by trap id (spec §4.5).
// RemoveOnTrigger is a property of the effect, not of the trap id
// (spec §4.5 invariant).
type Effect interface {
	PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source)
	MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source)
	RemoveOnTrigger() bool
}

// Registry is the map[TrapID]Effect the spec §9 design note calls for in
// place of a type switch.
type Registry map[catalog.TrapID]Effect

// NewRegistry builds the full trap table of spec §4.5 and SPEC_FULL.md
// §3.9: one concrete Effect per named trap id.
func NewRegistry() Registry {
	return Registry{
		TrapBubblewrap:  bubblewrapEffect{},
		TrapBearTrap:    bearTrapEffect{},
		TrapSpikedBoard: spikedBoardEffect{},
		TrapTripwire:    tripwireEffect{},
		TrapCrossbow:    crossbowEffect{},
		TrapShotgun1:    shotgunEffect{shots: 1},
		TrapShotgun2:    shotgunEffect{shots: 2},
		TrapBlade:       bladeEffect{},
		TrapPit:         pitEffect{spiked: false},
		TrapSpikedPit:   pitEffect{spiked: true},
		TrapGoo:         gooEffect{},
		TrapDissector:   dissectorEffect{},
		TrapLightSnare:  snareEffect{disease: "lightsnare"},
		TrapHeavySnare:  snareEffect{disease: "heavysnare"},
		TrapLandmine:    landmineEffect{},
		TrapBoobytrap:   landmineEffect{big: true},
		TrapTelepad:     telepadEffect{},
		TrapShadow:      shadowEffect{},
		TrapSnake:       snakeEffect{},
		TrapDrain:       drainEffect{},
		TrapHum:         humEffect{},
		TrapGlow:        glowEffect{},
	}
}

// Trap ids exercised by NewRegistry's table (spec §4.5, SPEC_FULL.md §3.9).
// A full id space is Catalog-data-driven and out of scope (§1 Non-goals);
// these are the stable ids the engine's own logic depends on by name.
const (
	TrapBubblewrap  catalog.TrapID = 1
	TrapBearTrap    catalog.TrapID = 2
	TrapSpikedBoard catalog.TrapID = 3
	TrapTripwire    catalog.TrapID = 4
	TrapPit         catalog.TrapID = 5
	TrapSpikedPit   catalog.TrapID = 6
	TrapGoo         catalog.TrapID = 7
	TrapLightSnare  catalog.TrapID = 8
	TrapHeavySnare  catalog.TrapID = 9
	TrapTelepad     catalog.TrapID = 10
	TrapLandmine    catalog.TrapID = 11
	TrapCrossbow    catalog.TrapID = 12
	TrapShotgun1    catalog.TrapID = 13
	TrapShotgun2    catalog.TrapID = 14
	TrapBlade       catalog.TrapID = 15
	TrapDissector   catalog.TrapID = 16
	TrapBoobytrap   catalog.TrapID = 17
	TrapShadow      catalog.TrapID = 18
	TrapSnake       catalog.TrapID = 19
	TrapDrain       catalog.TrapID = 20
	TrapHum         catalog.TrapID = 21
	TrapGlow        catalog.TrapID = 22
)

// Shadow/shadow-snake trap spawn ids; the concrete monster templates are a
// Catalog authoring concern (§1 Non-goals), mirroring internal/field's
// netherMonsterID sentinel for the fatigue spawn.
const (
	ShadowMonsterID      catalog.MonsterID = -3
	ShadowSnakeMonsterID catalog.MonsterID = -4
)

// Trigger dispatches the trap at `at` against actor, resolving the
// player/monster-specific effect and clearing the trap if the effect
// requests it.
func Trigger(reg Registry, w World, actor actorset.Actor, at geom.Point, r *rng.Source) {
	id := w.Bubble().TrapAt(at)
	if id == 0 {
		return
	}
	eff, ok := reg[id]
	if !ok {
		return
	}
	switch a := actor.(type) {
	case *actorset.Player:
		eff.PlayerEffect(w, a, at, r)
	case *actorset.Monster:
		eff.MonsterEffect(w, a, at, r)
	default:
		return
	}
	if eff.RemoveOnTrigger() {
		w.Bubble().SetTrapAt(at, 0)
	}
}

// Disarm implements spec §4.5's skill check: rng(skill, 4*skill) +
// perception/dex bonuses vs difficulty. Failure at >=0.8 of difficulty
// silently fails; below that triggers the trap.
func Disarm(skill, perception, dex, difficulty int, r *rng.Source) (disarmed bool, triggered bool) {
	roll := r.Rng(skill, 4*skill) + perception/2 + dex/4
	if roll >= difficulty {
		return true, false
	}
	if float64(roll) >= 0.8*float64(difficulty) {
		return false, false
	}
	return false, true
}

func randomBodyDamage(r *rng.Source, lo, hi int) int { return r.Rng(lo, hi) }

// --- representative effects ---

type bubblewrapEffect struct{}

func (bubblewrapEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {}
func (bubblewrapEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	_ = m // tiny monsters ignore the trap entirely; nothing to apply
}
func (bubblewrapEffect) RemoveOnTrigger() bool { return true }

type bearTrapEffect struct{}

func (bearTrapEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	p.HP[4] -= randomBodyDamage(r, 10, 20) // leg
	p.AddStatus(actorset.StatusEffect{Name: "beartrap", Duration: -1})
}
func (bearTrapEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	if isTiny(w, m) {
		return
	}
	m.HP -= 35
	m.AddStatus(actorset.StatusEffect{Name: "beartrap", Duration: -1})
}
func (bearTrapEffect) RemoveOnTrigger() bool { return true }

type spikedBoardEffect struct{}

func (spikedBoardEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	p.HP[4] -= randomBodyDamage(r, 6, 10)
	p.HP[5] -= randomBodyDamage(r, 6, 10)
}
func (spikedBoardEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	if isTiny(w, m) {
		return
	}
	m.HP -= randomBodyDamage(r, 6, 10)
}
func (spikedBoardEffect) RemoveOnTrigger() bool { return false }

type tripwireEffect struct{}

func (tripwireEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	dx, dy := int32(r.Rng(-1, 1)), int32(r.Rng(-1, 1))
	dst := geom.Point{X: at.X + dx, Y: at.Y + dy, Z: at.Z}
	if w.Bubble().IsWalkable(dst) {
		p.Pos = dst
	}
	p.MoveBudget -= 150
	if r.OneIn(2) {
		p.HP[1] -= randomBodyDamage(r, 1, 4)
	}
}
func (tripwireEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	if isTiny(w, m) {
		return
	}
	m.HP -= randomBodyDamage(r, 1, 4)
}
func (tripwireEffect) RemoveOnTrigger() bool { return false }

type pitEffect struct{ spiked bool }

func (e pitEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	p.AddStatus(actorset.StatusEffect{Name: "in_pit", Duration: 10})
	if e.spiked {
		p.HP[r.Intn(6)] -= randomBodyDamage(r, 20, 50)
	}
}
func (e pitEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	if isTiny(w, m) || !e.spiked {
		return
	}
	m.HP -= randomBodyDamage(r, 20, 50)
}
func (e pitEffect) RemoveOnTrigger() bool { return false }

type gooEffect struct{}

func (gooEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	p.AddStatus(actorset.StatusEffect{Name: "slimed", Duration: 30})
	p.HP[4] -= randomBodyDamage(r, 1, 3)
}
func (gooEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	m.TypeID = catalog.MonsterID(-2) // transformed into a blob; Catalog assigns the real blob id
}
func (gooEffect) RemoveOnTrigger() bool { return true }

type snareEffect struct{ disease string }

func (e snareEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	p.AddStatus(actorset.StatusEffect{Name: e.disease, Duration: 20})
}
func (e snareEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	m.AddStatus(actorset.StatusEffect{Name: e.disease, Duration: 20})
}
func (e snareEffect) RemoveOnTrigger() bool { return true }

type telepadEffect struct{}

func (telepadEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	dst := scatterPoint(at, r)
	p.Pos = dst
}
func (telepadEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	dst := scatterPoint(at, r)
	if other, ok := w.ActorAt(dst); ok {
		if om, ok := other.(*actorset.Monster); ok && om != m {
			om.HP = 0 // merge-kill: two monsters landing on the same tile
		}
	}
	m.Pos = dst
}
func (telepadEffect) RemoveOnTrigger() bool { return false }

func scatterPoint(at geom.Point, r *rng.Source) geom.Point {
	dx, dy := int32(r.Rng(-8, 8)), int32(r.Rng(-8, 8))
	return geom.Point{X: at.X + dx, Y: at.Y + dy, Z: at.Z}
}

// landmineEffect implements spec §4.5 landmine (and, with big set,
// boobytrap — original_source/trapfunc.cpp's boobytrap is the same blast
// shape at a higher power, so one Effect parameterizes both ids rather
// than duplicating the struct).
type landmineEffect struct{ big bool }

func (e landmineEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	lo, hi := 10, 30
	if e.big {
		lo, hi = 20, 50
	}
	for i := range p.HP {
		p.HP[i] -= randomBodyDamage(r, lo, hi)
	}
}
func (e landmineEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	if isTiny(w, m) {
		return
	}
	lo, hi := 10, 30
	if e.big {
		lo, hi = 20, 50
	}
	for i := 0; i < 3; i++ {
		m.HP -= randomBodyDamage(r, lo, hi)
	}
}
func (landmineEffect) RemoveOnTrigger() bool { return true }

// weightedLimbSlot maps the original's rng(1,10) feet/legs/torso/head
// table onto the 6-slot HP array (head, torso, arms x2, legs x2), folding
// "feet" into the second leg slot since this engine has no separate foot
// slot (spec §4.5 crossbow/shotgun tables).
func weightedLimbSlot(r *rng.Source) int {
	switch r.Rng(1, 10) {
	case 1:
		return 5
	case 2, 3, 4:
		return 4
	case 10:
		return 0
	default:
		return 1
	}
}

// crossbowEffect implements spec §4.5 crossbow trap: a single dodgeable
// bolt. Bolt/weapon item drops are a Non-goal (full inventory modeling,
// §1); only the damage and removal are modeled.
type crossbowEffect struct{}

func (crossbowEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	if !r.OneIn(4) && r.Rng(8, 20) > p.Dodge {
		p.HP[weightedLimbSlot(r)] -= randomBodyDamage(r, 20, 30)
	}
}
func (crossbowEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	def, _ := w.Catalog().MonsterByID(m.TypeID)
	if r.OneIn(crossbowChance(def.Size)) {
		m.HP -= randomBodyDamage(r, 20, 30)
	}
}
func (crossbowEffect) RemoveOnTrigger() bool { return true }

func crossbowChance(size catalog.MonsterSize) int {
	switch size {
	case catalog.SizeTiny:
		return 50
	case catalog.SizeSmall:
		return 8
	case catalog.SizeMedium:
		return 6
	case catalog.SizeLarge:
		return 4
	default:
		return 1
	}
}

// shotgunEffect implements spec §4.5 shotgun 1/2-barrel traps. shots is
// the barrel count the trap started with; a double-barrel trap can still
// fire both barrels at once on a bad roll, matching
// original_source/trapfunc.cpp's trapfunc::shotgun. The original's
// single-to-spent state transition (tr_shotgun_2 -> tr_shotgun_1 after
// firing one barrel) collapses to one-shot removal here, a simplification
// over threading trap-id mutation back through the registry.
type shotgunEffect struct{ shots int }

func (e shotgunEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	shots := 1
	if e.shots >= 2 && (r.OneIn(8) || r.OneIn(strengthDenom(p.Strength))) {
		shots = 2
	}
	if r.Rng(5, 50) > p.Dodge {
		p.HP[weightedLimbSlot(r)] -= randomBodyDamage(r, 40*shots, 60*shots)
	}
}
func (e shotgunEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	def, _ := w.Catalog().MonsterByID(m.TypeID)
	shots := 1
	if e.shots >= 2 && (r.OneIn(8) || r.OneIn(shotgunChance(def.Size))) {
		shots = 2
	}
	m.HP -= randomBodyDamage(r, 40*shots, 60*shots)
}
func (shotgunEffect) RemoveOnTrigger() bool { return true }

func strengthDenom(strength int) int {
	d := 20 - strength
	if d < 1 {
		d = 1
	}
	return d
}

func shotgunChance(size catalog.MonsterSize) int {
	switch size {
	case catalog.SizeTiny:
		return 100
	case catalog.SizeSmall:
		return 16
	case catalog.SizeMedium:
		return 12
	case catalog.SizeLarge:
		return 8
	default:
		return 2
	}
}

// bladeEffect implements spec §4.5 blade trap: a fixed bash+cut swing to
// the torso. Armor mitigation is a Non-goal (§1); the original's
// armor_cut()/armor_bash() subtraction has nothing to subtract from here.
type bladeEffect struct{}

func (bladeEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	p.HP[1] -= 42 // 12 bash + 30 cut
}
func (bladeEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	m.HP -= 42
}
func (bladeEffect) RemoveOnTrigger() bool { return false }

// dissectorEffect implements spec §4.5 dissector trap: electrical beams
// hit every body part in one trigger.
type dissectorEffect struct{}

func (dissectorEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	p.HP[0] -= 15
	p.HP[1] -= 20
	p.HP[2] -= 12
	p.HP[3] -= 12
	p.HP[4] -= 12
	p.HP[5] -= 12
}
func (dissectorEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	m.HP -= 60
}
func (dissectorEffect) RemoveOnTrigger() bool { return false }

// glowEffect implements spec §4.5 glow trap. Radiation accrual against
// the player is a Non-goal (actorset.Player carries no radiation field,
// §1); the monster HP/speed penalty is modeled since Monster already
// tracks both.
type glowEffect struct{}

func (glowEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {}
func (glowEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	if r.OneIn(3) {
		m.HP -= randomBodyDamage(r, 5, 10)
		m.Speed = int(float64(m.Speed) * 0.9)
	}
}
func (glowEffect) RemoveOnTrigger() bool { return false }

// humEffect implements spec §4.5 hum trap: sound propagation is a
// Non-goal (§1), so only the loud-roll "deaf" status on monsters survives
// here.
type humEffect struct{}

func (humEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {}
func (humEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	volume := r.Rng(1, 200)
	if volume >= 150 {
		m.AddStatus(actorset.StatusEffect{Name: "deaf", Duration: int32(volume - 140)})
	}
}
func (humEffect) RemoveOnTrigger() bool { return false }

// drainEffect implements spec §4.5 drain trap: a small flat HP tax.
type drainEffect struct{}

func (drainEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	for i := range p.HP {
		p.HP[i]--
	}
}
func (drainEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {
	m.HP--
}
func (drainEffect) RemoveOnTrigger() bool { return false }

// recordNearbySpawn places a pending spawn within radius 5 of at, reusing
// the submap PendingSpawns queue internal/engine resolves each actor
// phase — the same mechanism internal/field's fatigue nether-spawn uses,
// supplemented here for the shadow/snake traps (spec §4.5;
// original_source/trapfunc.cpp trapfunc::shadow/snake).
func recordNearbySpawn(w World, at geom.Point, id catalog.MonsterID, r *rng.Source) {
	dx := int32(r.Rng(-5, 5))
	dy := int32(r.Rng(-5, 5))
	target := geom.Point{X: at.X + dx, Y: at.Y + dy, Z: at.Z}
	b := w.Bubble()
	sub := b.SubmapAt(target)
	lx, ly, ok := b.LocalCoord(target)
	if sub == nil || !ok {
		return
	}
	sub.PendingSpawns = append(sub.PendingSpawns, worldmap.SpawnPoint{
		MonsterID: id,
		Count:     1,
		LocalX:    lx,
		LocalY:    ly,
	})
}

// shadowEffect implements spec §4.5 shadow trap: spawns a shadow monster
// nearby and removes itself.
type shadowEffect struct{}

func (shadowEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	recordNearbySpawn(w, at, ShadowMonsterID, r)
}
func (shadowEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {}
func (shadowEffect) RemoveOnTrigger() bool { return true }

// snakeEffect implements spec §4.5 snake trap: a chance to spawn a
// shadow-snake, otherwise just a hiss. The original's 1-in-6 chance of
// self-removal on a non-spawn trigger collapses to "never removed on a
// non-spawn trigger" here, a simplification consistent with RemoveOnTrigger
// reporting a fixed answer rather than one keyed to the roll just taken.
type snakeEffect struct{}

func (snakeEffect) PlayerEffect(w World, p *actorset.Player, at geom.Point, r *rng.Source) {
	if r.OneIn(3) {
		recordNearbySpawn(w, at, ShadowSnakeMonsterID, r)
	}
}
func (snakeEffect) MonsterEffect(w World, m *actorset.Monster, at geom.Point, r *rng.Source) {}
func (snakeEffect) RemoveOnTrigger() bool { return false }
