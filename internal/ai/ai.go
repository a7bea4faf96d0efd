// Package ai implements monster and NPC per-turn planning: target
// acquisition, scent following, wander, melee, and bash (spec §4.3). It
// never touches storage directly — every function takes the world handle,
// catalog, and RNG explicitly (spec §9 Design Notes: "pass a world handle
// explicitly on every call" rather than threading a global pointer).
package ai

import (
	"math"

	"github.com/ashgo/ashfall/internal/actorset"
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
	"github.com/ashgo/ashfall/internal/rng"
	"github.com/ashgo/ashfall/internal/worldmap"
)

// MonsterFollowDist is MONSTER_FOLLOW_DIST from spec §4.3 step 7.
const MonsterFollowDist = 8

// MonsterSightRange bounds target acquisition (spec §4.3 step 8a, "Monster
// AI driver"). Neither spec.md nor the catalog defines an explicit
// monster vision-range constant, since a full lighting/vision model is a
// Non-goal (§1); this Chebyshev radius is a stand-in chosen to comfortably
// cover the loaded reality bubble, the same way ranged.longRange stands in
// for an absent weapon-range catalog value.
const MonsterSightRange = 20

// World is the seam internal/ai needs into live actor state: occupancy
// checks and the player's position. internal/engine implements this over
// its actor registry.
type World interface {
	Bubble() *worldmap.Bubble
	Catalog() catalog.Provider
	PlayerPos() geom.Point
	ActorAt(p geom.Point) (actorset.Actor, bool)
}

// ActionKind classifies the single action Plan resolves a turn to.
type ActionKind int8

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionAttack
	ActionBash
	ActionSpecial
	ActionStumble
)

// Action is the outcome of one call to Plan: what the monster should do
// and, for Move/Attack/Bash, where.
type Action struct {
	Kind   ActionKind
	Target geom.Point
}

// Plan implements the full per-turn sequence of spec §4.3 steps 1-10 for
// one monster. It mutates the monster's own bookkeeping fields (wander
// timers, footstep flag, special timeout) as a side effect of planning.
func Plan(m *actorset.Monster, w World, r *rng.Source) Action {
	def, _ := w.Catalog().MonsterByID(m.TypeID)
	m.MadeFootstep = false

	// 1. wander timer decrement
	if m.WanderTurns > 0 {
		m.WanderTurns--
	}

	// 2. hallucination vanish roll
	if m.Hallucination && r.OneIn(25) {
		m.HP = 0 // removed by the engine's cleanup phase
		m.MoveBudget = -1
		return Action{Kind: ActionNone}
	}

	// 3. special attack cooldown
	if m.SpTimeout > 0 {
		m.SpTimeout--
		if m.SpTimeout == 0 && (m.Friendly < 0 || def.Flags.Has(catalog.FlagFriendlySpecial)) {
			return Action{Kind: ActionSpecial}
		}
	}

	// 4. status filters
	if m.HasStatus("IMMOBILE") {
		m.MoveBudget = 0
		return Action{Kind: ActionNone}
	}
	if m.HasStatus("STUNNED") {
		m.MoveBudget = 0
		return stumbleAction(m, w, r)
	}
	if m.HasStatus("DOWNED") {
		m.MoveBudget = 0
		return Action{Kind: ActionNone}
	}
	if m.HasStatus("BOULDERING") {
		m.MoveBudget -= 20
		if m.MoveBudget <= 0 {
			return Action{Kind: ActionNone}
		}
	}
	if m.HasStatus("BEARTRAP") {
		m.MoveBudget = 0
		return Action{Kind: ActionNone}
	}

	// 5. friendly-follow short circuit
	if m.Friendly > 0 {
		m.Friendly--
		return friendlyMove(m, w, r)
	}

	// 6. current attitude
	attitude := currentAttitude(m, w)

	// 7. ignore / follow-too-far
	if attitude == actorset.AttitudeIgnore || (attitude == actorset.AttitudeFollow && len(m.Plans) < MonsterFollowDist) {
		m.MoveBudget -= 100
		return stumbleAction(m, w, r)
	}

	// 8. action selection
	next, ok := selectTarget(m, w, r, def)
	var act Action
	if ok {
		act = dispatchAt(m, w, r, def, next)
	}
	if !ok || act.Kind == ActionNone {
		m.MoveBudget -= 100
	}

	// 10. STUMBLES post-check
	if def.Flags.Has(catalog.FlagStumbles) && (len(m.Plans) > 3 || len(m.Plans) == 0) {
		return stumbleAction(m, w, r)
	}
	return act
}

// currentAttitude implements step 6: default-vs-world with no plan, else
// attitude toward whoever occupies the last waypoint.
func currentAttitude(m *actorset.Monster, w World) actorset.Attitude {
	if len(m.Plans) == 0 {
		return defaultAttitude(m)
	}
	last := m.Plans[len(m.Plans)-1]
	if actor, ok := w.ActorAt(last); ok {
		switch actor.(type) {
		case *actorset.Player:
			return defaultAttitude(m)
		case *actorset.NPC:
			return defaultAttitude(m)
		}
	}
	return defaultAttitude(m)
}

func defaultAttitude(m *actorset.Monster) actorset.Attitude {
	switch {
	case m.Friendly > 0:
		return actorset.AttitudeFollow
	case m.Friendly < 0:
		return actorset.AttitudeKill
	default:
		return actorset.AttitudeIgnore
	}
}

// AcquireTarget implements spec §4.3 step 8a: when a hostile monster has
// no concrete plan, path toward target via A* if it is within sight range
// and has a clear line of sight, populating m.Plans for the subsequent
// selectTarget call to consume. Returns whether a plan was set. Callers
// invoke this once per monster per turn, before Plan, rather than on
// every sub-turn Budget() iteration, so a monster doesn't repath mid-chase
// every time it spends move budget.
func AcquireTarget(m *actorset.Monster, w World, target geom.Point) bool {
	if m.Friendly >= 0 || len(m.Plans) > 0 {
		return false
	}
	if geom.Chebyshev(m.Pos, target) > MonsterSightRange {
		return false
	}
	b := w.Bubble()
	if !b.SightClear(m.Pos, target) {
		return false
	}
	path := b.FindPath(m.Pos, target)
	if len(path) == 0 {
		return false
	}
	m.Plans = path
	return true
}

// selectTarget implements step 8's priority order: concrete plan, scent,
// wander.
func selectTarget(m *actorset.Monster, w World, r *rng.Source, def catalog.MonsterDef) (geom.Point, bool) {
	if len(m.Plans) > 0 {
		next := m.Plans[0]
		b := w.Bubble()
		passable := b.IsWalkable(next)
		bashable := b.TerrainFlags(next)&catalog.TerrainBashable != 0 && def.Flags.Has(catalog.FlagBashes)
		isPlayer := next == w.PlayerPos()
		if passable || bashable || isPlayer {
			m.Plans = m.Plans[1:]
			return next, true
		}
	}

	if def.Flags.Has(catalog.FlagSmells) {
		if p, ok := bestScentNeighbor(m, w, r, def); ok {
			return p, true
		}
	}

	if m.WanderTurns > 0 {
		return wanderStep(m, w), true
	}

	return geom.Point{}, false
}

func bestScentNeighbor(m *actorset.Monster, w World, r *rng.Source, def catalog.MonsterDef) (geom.Point, bool) {
	b := w.Bubble()
	threshold := float32(1)
	if def.Flags.Has(catalog.FlagKeenNose) {
		threshold = 0
	}
	fleeing := m.Friendly < 0 && def.Flags.Has(catalog.FlagHitAndRun)

	var best []geom.Point
	var bestScent float32
	first := true
	for _, n := range geom.Neighbors8(m.Pos) {
		if !b.IsWalkable(n) {
			continue
		}
		s := b.ScentAt(n)
		if s < threshold && !fleeing {
			continue
		}
		if first {
			bestScent = s
			best = []geom.Point{n}
			first = false
			continue
		}
		better := s > bestScent
		if fleeing {
			better = s < bestScent
		}
		if better {
			bestScent = s
			best = []geom.Point{n}
		} else if s == bestScent {
			best = append(best, n)
		}
	}
	if len(best) == 0 {
		return geom.Point{}, false
	}
	return best[r.Intn(len(best))], true
}

// wanderStep implements step 8c: prefer movement along the larger axis
// delta, falling through to alternates.
func wanderStep(m *actorset.Monster, w World) geom.Point {
	dx := m.WanderX - m.Pos.X
	dy := m.WanderY - m.Pos.Y
	candidates := make([]geom.Point, 0, 3)
	if absI(dx) >= absI(dy) {
		candidates = append(candidates,
			geom.Point{X: m.Pos.X + signI(dx), Y: m.Pos.Y, Z: m.Pos.Z},
			geom.Point{X: m.Pos.X + signI(dx), Y: m.Pos.Y + signI(dy), Z: m.Pos.Z},
			geom.Point{X: m.Pos.X, Y: m.Pos.Y + signI(dy), Z: m.Pos.Z},
		)
	} else {
		candidates = append(candidates,
			geom.Point{X: m.Pos.X, Y: m.Pos.Y + signI(dy), Z: m.Pos.Z},
			geom.Point{X: m.Pos.X + signI(dx), Y: m.Pos.Y + signI(dy), Z: m.Pos.Z},
			geom.Point{X: m.Pos.X + signI(dx), Y: m.Pos.Y, Z: m.Pos.Z},
		)
	}
	b := w.Bubble()
	for _, c := range candidates {
		if b.IsWalkable(c) {
			return c
		}
	}
	return m.Pos
}

// dispatchAt implements step 9: attack_at, else bash_at, else move_to.
// Exactly one succeeds; callers deduct the fallback cost if none do.
func dispatchAt(m *actorset.Monster, w World, r *rng.Source, def catalog.MonsterDef, target geom.Point) Action {
	if AttackAt(m, w, r, def, target) {
		return Action{Kind: ActionAttack, Target: target}
	}
	if BashAt(m, w, r, def, target) {
		return Action{Kind: ActionBash, Target: target}
	}
	if MoveTo(m, w, r, def, target) {
		return Action{Kind: ActionMove, Target: target}
	}
	return Action{Kind: ActionNone}
}

func friendlyMove(m *actorset.Monster, w World, r *rng.Source) Action {
	if len(m.Plans) > 0 {
		next := m.Plans[0]
		m.Plans = m.Plans[1:]
		def, _ := w.Catalog().MonsterByID(m.TypeID)
		if MoveTo(m, w, r, def, next) {
			return Action{Kind: ActionMove, Target: next}
		}
	}
	return stumbleAction(m, w, r)
}

func stumbleAction(m *actorset.Monster, w World, r *rng.Source) Action {
	neighbors := geom.Neighbors8(m.Pos)
	b := w.Bubble()
	var walkable []geom.Point
	for _, n := range neighbors {
		if b.IsWalkable(n) {
			walkable = append(walkable, n)
		}
	}
	if len(walkable) == 0 {
		return Action{Kind: ActionNone}
	}
	target := walkable[r.Intn(len(walkable))]
	return Action{Kind: ActionStumble, Target: target}
}

// MoveTo implements spec §4.3 move_to(p): cost, water/terrain side
// effects, trap avoidance roll, DIGS/ACIDTRAIL application. Returns
// whether the move succeeded (false if p is occupied or impassable).
func MoveTo(m *actorset.Monster, w World, r *rng.Source, def catalog.MonsterDef, p geom.Point) bool {
	if _, occupied := w.ActorAt(p); occupied {
		return false
	}
	b := w.Bubble()
	if !b.IsWalkable(p) {
		// A closed door blocks the tile outright; opening it as part of
		// the move matches the +4 "open action" surcharge stepCost already
		// charges a pather for routing through one (spec §4.1 door state
		// machine). Monsters never open locked doors (inside=false).
		if !b.OpenDoor(p, false) {
			return false
		}
	}

	cost := moveCost(m, w, def, p)
	m.MoveBudget -= cost

	if def.Flags.Has(catalog.FlagSludgeTrail) {
		depositSludge(b, p)
	}

	// Crossing-water "leaps/emerges/dives/sinks" messages are a Presenter
	// concern (§1 Non-goals); only the damage/trap side effects live here.
	flags := b.TerrainFlags(p)
	if flags&catalog.TerrainSharp != 0 && def.Size != catalog.SizeTiny && r.XInY(3, 4) {
		m.HP -= r.Rng(2, 3)
	} else if flags&catalog.TerrainRough != 0 && r.OneIn(6) {
		m.HP -= r.Rng(1, 2)
	}

	m.Pos = p
	m.MadeFootstep = true

	if trap := b.TrapAt(p); trap != 0 && !def.Flags.Has(catalog.FlagFlies) && !def.Flags.Has(catalog.FlagDigs) {
		td, _ := w.Catalog().TrapByID(trap)
		dodgeRoll := r.Dice(3, def.DodgeBase+1)
		avoidRoll := r.Dice(3, td.Difficulty+1)
		if dodgeRoll <= avoidRoll {
			m.TrapTriggered = trap // internal/traps/orchestrator resolves MonsterEffect next
		}
	}

	if def.Flags.Has(catalog.FlagDigs) {
		if td, ok := w.Catalog().TerrainByID(b.TerrainAt(p)); ok && td.BurnResult != 0 {
			// dirtmound conversion reuses the terrain's burn-result slot as its
			// "dug" variant; a dedicated DigResult field is unnecessary duplication.
			b.SetTerrainAt(p, td.BurnResult)
		}
	}
	if def.Flags.Has(catalog.FlagAcidTrail) {
		for i := 0; i < 3; i++ {
			c := b.FieldAt(p)
			if c.Kind != worldmap.FieldAcid {
				c = worldmap.FieldCell{Kind: worldmap.FieldAcid, Intensity: 1}
			} else if c.Intensity < 3 {
				c.Intensity++
			}
			b.SetFieldAt(p, c)
		}
	}
	return true
}

func moveCost(m *actorset.Monster, w World, def catalog.MonsterDef, p geom.Point) int {
	b := w.Bubble()
	inWater := b.TerrainFlags(p)&catalog.TerrainSwimmable != 0
	switch {
	case def.Flags.Has(catalog.FlagDigs), def.Flags.Has(catalog.FlagFlies):
		return 100
	case def.Flags.Has(catalog.FlagSwims):
		if inWater {
			return 25
		}
		return 50 * b.MoveCost(p)
	case def.Flags.Has(catalog.FlagSubmerges):
		if inWater {
			return 150
		}
	}
	return b.MoveCost(m.Pos) + b.MoveCost(p)
}

func depositSludge(b *worldmap.Bubble, center geom.Point) {
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			p := geom.Point{X: center.X + dx, Y: center.Y + dy, Z: center.Z}
			c := b.FieldAt(p)
			if c.IsNone() {
				b.SetFieldAt(p, worldmap.FieldCell{Kind: worldmap.FieldBile, Intensity: 1})
			}
		}
	}
}

// AttackAt implements spec §4.3 attack_at(p) dispatch.
func AttackAt(m *actorset.Monster, w World, r *rng.Source, def catalog.MonsterDef, p geom.Point) bool {
	actor, ok := w.ActorAt(p)
	if !ok {
		return false
	}
	switch target := actor.(type) {
	case *actorset.Player:
		HitPlayer(m, target, w, r, def)
		return true
	case *actorset.Monster:
		if target == m {
			return false
		}
		if m.Hallucination {
			target.HP = 0
			return true
		}
		if target.Friendly != m.Friendly || def.Flags.Has(catalog.FlagAttackMon) {
			HitMonster(m, target, r, def)
			return true
		}
		return false
	case *actorset.NPC:
		if target.MeleeDice > 0 {
			HitNPC(m, target, r, def)
			return true
		}
	}
	return false
}

// HitPlayer resolves a melee attack against the player (spec §4.3 Melee).
func HitPlayer(m *actorset.Monster, p *actorset.Player, w World, r *rng.Source, def catalog.MonsterDef) {
	m.MoveBudget -= 100
	m.AddStatus(actorset.StatusEffect{Name: "HIT_BY_PLAYER", Duration: 3})
	if def.Flags.Has(catalog.FlagHitAndRun) {
		m.AddStatus(actorset.StatusEffect{Name: "RUN", Duration: 4})
	}

	pMiss := 11000.0 * math.Exp(-0.3*float64(def.MeleeSkill)) / 10000.0
	if r.Float64() < pMiss {
		return
	}
	dodgeII := p.Dodge - r.Rng(0, def.MeleeSkill)
	if dodgeII < 0 {
		dodgeII = 0
	}
	e := math.Exp(-0.6 * float64(dodgeII))
	dodgeChance := 100 * e / (1 + 99*e)
	if r.Float64()*100 < dodgeChance {
		return
	}

	slot := bodyPartSlot(r, def)
	dmg := r.Dice(def.MeleeDice, def.MeleeSides) + def.CutDamage
	p.HP[slot] -= dmg

	if def.Flags.Has(catalog.FlagVenom) {
		p.AddStatus(actorset.StatusEffect{Name: "poison", Duration: 100})
	}
	if def.Flags.Has(catalog.FlagBadVenom) {
		p.AddStatus(actorset.StatusEffect{Name: "badpoison", Duration: 200})
	}
	if def.Flags.Has(catalog.FlagBleed) {
		p.AddStatus(actorset.StatusEffect{Name: "bleed", Duration: 50})
	}
	if def.Flags.Has(catalog.FlagGrabs) {
		pMissGrab := 11000.0 * math.Exp(-0.3*float64(def.MeleeSkill)) / 10000.0
		if r.Float64() >= pMissGrab {
			HitPlayer(m, p, w, r, def) // bonus attack on a successful grab
		}
	}
}

// HitMonster resolves monster-on-monster melee.
func HitMonster(attacker, target *actorset.Monster, r *rng.Source, def catalog.MonsterDef) {
	dmg := r.Dice(def.MeleeDice, def.MeleeSides)
	target.HP -= dmg
}

// HitNPC resolves monster-on-NPC melee with HitPlayer's body-part table
// and damage roll against the NPC's own HP array; no miss or dodge roll is
// made.
func HitNPC(m *actorset.Monster, n *actorset.NPC, r *rng.Source, def catalog.MonsterDef) {
	m.MoveBudget -= 100
	slot := bodyPartSlot(r, def)
	dmg := r.Dice(def.MeleeDice, def.MeleeSides) + def.CutDamage
	n.HP[slot] -= dmg
}

// bodyPartSlot selects a body part via the 20-slot weighted table
// adjusted by DIGS/FLIES, clamped to [2,20] and mapped down to the 6-slot
// HP array (head, torso, arm x2, leg x2).
func bodyPartSlot(r *rng.Source, def catalog.MonsterDef) int {
	roll := r.Rng(1, 20)
	if def.Flags.Has(catalog.FlagDigs) {
		roll -= 8
	}
	if def.Flags.Has(catalog.FlagFlies) {
		roll += 15
	}
	if roll < 2 {
		roll = 2
	}
	if roll > 20 {
		roll = 20
	}
	switch {
	case roll <= 3:
		return 0 // head
	case roll <= 11:
		return 1 // torso
	case roll <= 14:
		return 2 // arm
	case roll <= 17:
		return 4 // leg
	default:
		return 1
	}
}

// BashAt implements spec §4.3 bash_at(p): only real monsters bash.
func BashAt(m *actorset.Monster, w World, r *rng.Source, def catalog.MonsterDef, p geom.Point) bool {
	if m.Hallucination {
		return false
	}
	b := w.Bubble()
	impassable := !b.IsWalkable(p)
	tryBash := impassable || r.OneIn(3)
	if !tryBash {
		return false
	}
	bashable := b.TerrainFlags(p)&catalog.TerrainBashable != 0 && def.Flags.Has(catalog.FlagBashes)
	if bashable {
		m.MoveBudget -= 100
		strength := def.MeleeDice * def.MeleeSides
		b.Bash(p, strength, r)
		m.MadeFootstep = true
		return true
	}
	if def.Flags.Has(catalog.FlagDestroys) && impassable {
		td, ok := w.Catalog().TerrainByID(b.TerrainAt(p))
		if ok && !td.Has(catalog.TerrainDivable) {
			m.MoveBudget -= 250
			b.SetTerrainAt(p, catalog.NullTerrain)
			return true
		}
	}
	return false
}

// PropagateMorale implements the group morale/anger propagation referenced
// in §4.3 melee ("alter group morale/anger of nearby same-species
// monsters"), grounded on original_source/monster.cpp's group tracking
// fields — supplemented here since the distillation only named the effect.
func PropagateMorale(source *actorset.Monster, nearby []*actorset.Monster, moraleDelta, angerDelta int16) {
	const radius = 6
	for _, other := range nearby {
		if other == source || other.TypeID != source.TypeID {
			continue
		}
		if geom.Chebyshev(source.Pos, other.Pos) > radius {
			continue
		}
		other.Morale += moraleDelta
		other.Anger += angerDelta
	}
}

// ResetSpecialTimeout reseeds sp_timeout with jitter on respawn, matching
// original_source/monster.cpp: a freshly spawned monster gets
// rng(0, max/4) rather than the fixed max, so simultaneously spawned
// monsters don't all attack in lockstep.
func ResetSpecialTimeout(def catalog.MonsterDef, fresh bool, r *rng.Source) int32 {
	if def.SpecialCD <= 0 {
		return 0
	}
	if fresh {
		return int32(r.Rng(0, def.SpecialCD/4))
	}
	return int32(def.SpecialCD)
}

func absI(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func signI(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
