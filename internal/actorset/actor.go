// Package actorset defines the common capability set shared by the
// player, NPCs, and monsters (spec §3 Actor), plus the per-kind extra
// state each carries. A single actor struct per kind keeps the common
// fields embedded so internal/ai and internal/ranged can operate against
// the Actor interface without a type switch on every call.
package actorset

import (
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
)

// EntityID identifies any actor in the bubble, unique for the actor's
// lifetime. The id namespace is shared across players, NPCs, and monsters.
type EntityID uint64

// StatusEffect is a timed condition on an actor (poison, stun, bleed,
// beartrap, ...). Duration -1 means persistent until explicitly cleared.
type StatusEffect struct {
	Name     string
	Duration int32
}

// Base carries the fields common to every actor kind (spec §3 Actor):
// position, move budget, status effects, and wander state.
type Base struct {
	ID         EntityID
	Pos        geom.Point
	MoveBudget int
	Speed      int
	Statuses   []StatusEffect

	WanderX, WanderY int32
	WanderTurns      int32 // wf: remaining wander turns
}

// Actor is the capability set internal/ai and internal/ranged program
// against, implemented by Player, NPC, and Monster.
type Actor interface {
	EntityID() EntityID
	Position() geom.Point
	SetPosition(geom.Point)
	Budget() int
	SpendBudget(n int)
	RefreshBudget()
	HasStatus(name string) bool
	AddStatus(s StatusEffect)
	ClearStatus(name string)
}

func (b *Base) EntityID() EntityID        { return b.ID }
func (b *Base) Position() geom.Point      { return b.Pos }
func (b *Base) SetPosition(p geom.Point)  { b.Pos = p }
func (b *Base) Budget() int               { return b.MoveBudget }
func (b *Base) SpendBudget(n int)         { b.MoveBudget -= n }
func (b *Base) RefreshBudget()            { b.MoveBudget += b.Speed }

func (b *Base) HasStatus(name string) bool {
	for _, s := range b.Statuses {
		if s.Name == name {
			return true
		}
	}
	return false
}

func (b *Base) AddStatus(s StatusEffect) {
	for i, existing := range b.Statuses {
		if existing.Name == s.Name {
			b.Statuses[i] = s
			return
		}
	}
	b.Statuses = append(b.Statuses, s)
}

func (b *Base) ClearStatus(name string) {
	kept := b.Statuses[:0]
	for _, s := range b.Statuses {
		if s.Name != name {
			kept = append(kept, s)
		}
	}
	b.Statuses = kept
}

// Attitude mirrors the NPC attitude enum of spec §3 NPC, and doubles as
// the monster's current-attitude-toward-target classification in §4.3.
type Attitude int8

const (
	AttitudeFollow Attitude = iota
	AttitudeDefend
	AttitudeKill
	AttitudeFlee
	AttitudeWait
	AttitudeTalk
	AttitudeSlave
	AttitudeIgnore
)

// Player is the human-controlled actor. Per-body-part HP and full
// inventory modeling are a Catalog/crafting concern (§1 Non-goals); what
// lives here is the projection the core's combat and map code touches.
type Player struct {
	Base
	HP         [6]int // head, torso, arms x2, legs x2
	Strength   int
	Dexterity  int
	Perception int
	Dodge      int
	Encumbrance [6]int
}

// NPC additionally carries personality, opinion, attitude, and faction
// state (spec §3 NPC).
type NPC struct {
	Base
	HP [6]int

	Aggression int8
	Bravery    int8
	Collector  int8
	Altruism   int8

	Trust int16
	Fear  int16
	Value int16

	CurrentAttitude Attitude
	Faction         string
	MissionState    string // opaque narrative tag; narrative systems are a Non-goal
	MeleeDice       int
	MeleeSides      int
}

// Monster additionally carries type pointer, planned path, friendliness,
// special-attack timeout, and origin-submap coordinates (spec §3 Monster).
type Monster struct {
	Base
	TypeID      catalog.MonsterID
	HP          int
	Plans       []geom.Point
	Friendly    int32 // <0 hostile, 0 neutral, >0 friendly
	SpTimeout   int32
	Origin      geom.Point
	Hallucination bool

	Morale int16
	Anger  int16

	MadeFootstep  bool            // hushes repeated footstep sounds within a turn
	TrapTriggered catalog.TrapID  // set by MoveTo when a move-to trap check fails; consumed by the orchestrator
}
