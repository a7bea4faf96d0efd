// Package engine assembles the map/field/AI/combat/trap packages into the
// single World façade a host process drives: open, advance one turn, save,
// close. It owns the process-wide RNG, the catalog, the bubble, and the
// actor registry, and implements the World seams internal/ai and
// internal/traps need (spec §9 Design Notes: "initialize a Catalog struct
// at startup, pass it by reference alongside the world handle").
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/ashgo/ashfall/internal/actorset"
	"github.com/ashgo/ashfall/internal/ai"
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/config"
	"github.com/ashgo/ashfall/internal/field"
	"github.com/ashgo/ashfall/internal/geom"
	"github.com/ashgo/ashfall/internal/orchestrator"
	"github.com/ashgo/ashfall/internal/ranged"
	"github.com/ashgo/ashfall/internal/rng"
	"github.com/ashgo/ashfall/internal/scripting"
	"github.com/ashgo/ashfall/internal/traps"
	"github.com/ashgo/ashfall/internal/worldio"
	"github.com/ashgo/ashfall/internal/worldmap"
)

const configFileName = "config.toml"

// World is the engine's top-level handle: one per open save directory.
type World struct {
	dir string
	cfg *config.Config
	log *zap.Logger

	cat    catalog.Provider
	store  *worldio.FileStore
	bubble *worldmap.Bubble
	rng    *rng.Source
	script *scripting.Engine
	traps  traps.Registry
	runner *orchestrator.Runner

	actors   map[actorset.EntityID]actorset.Actor
	nextID   actorset.EntityID
	playerID actorset.EntityID
}

// New initializes a fresh world directory at dir, seeded with seed, and
// opens it. Fails with ErrInvalidWorldDir if dir already holds a config.
func New(seed int64, dir string, log *zap.Logger) (*World, error) {
	cfgPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return nil, fmt.Errorf("%w: %s already initialized", ErrInvalidWorldDir, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIoError, dir, err)
	}

	cfg := config.Config{
		World:   config.WorldConfig{Dir: dir, BubbleRadius: 1},
		Rng:     config.RngConfig{Seed: seed},
		Rates:   config.RatesConfig{FieldFastForwardTurns: 8, ScentDecayPerTurn: 1},
		Logging: config.LoggingConfig{Level: "info", Format: "console"},
	}
	f, err := os.Create(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIoError, cfgPath, err)
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	closeErr := f.Close()
	if encErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIoError, cfgPath, encErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIoError, cfgPath, closeErr)
	}

	return Open(dir, log)
}

// Open loads an existing world directory: config, catalog pack, and the
// initial reality bubble centered on the origin submap.
func Open(dir string, log *zap.Logger) (*World, error) {
	cfgPath := filepath.Join(dir, configFileName)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWorldDir, dir, err)
	}

	cat, err := catalog.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWorldDir, dir, err)
	}

	scriptsDir := filepath.Join(dir, "scripts")
	script, err := scripting.NewEngine(scriptsDir, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWorldDir, scriptsDir, err)
	}

	gen := worldmap.GeneratorFunc(func(s *worldmap.Submap) {})
	store := worldio.NewFileStore(dir, gen, cat, log)
	bubble := worldmap.NewBubble(store, gen, cat)
	if _, err := bubble.Shift(worldmap.SubmapCoord{}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}

	w := &World{
		dir:    dir,
		cfg:    cfg,
		log:    log,
		cat:    cat,
		store:  store,
		bubble: bubble,
		rng:    rng.New(cfg.Rng.Seed),
		script: script,
		traps:  traps.NewRegistry(),
		actors: make(map[actorset.EntityID]actorset.Actor),
	}
	w.runner = w.buildRunner()
	return w, nil
}

func (w *World) buildRunner() *orchestrator.Runner {
	r := orchestrator.NewRunner()
	r.Register(orchestrator.SystemFunc{P: orchestrator.PhaseFields, F: func(turn int64) {
		w.tickFields(turn)
	}})
	r.Register(orchestrator.SystemFunc{P: orchestrator.PhaseActors, F: func(turn int64) {
		w.stepActors(turn)
	}})
	r.Register(orchestrator.SystemFunc{P: orchestrator.PhaseCleanup, F: func(turn int64) {
		w.cleanup(turn)
	}})
	return r
}

func (w *World) tickFields(int64) {
	field.Tick(w.bubble, w.cat, w.rng, w.log)
}

func (w *World) stepActors(turn int64) {
	w.resolvePendingSpawns()
	// ids are allocated in increasing order, so ascending id is insertion order
	ids := make([]actorset.EntityID, 0, len(w.actors))
	for id := range w.actors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		m, ok := w.actors[id].(*actorset.Monster)
		if !ok {
			continue
		}
		m.RefreshBudget()
		def, _ := w.cat.MonsterByID(m.TypeID)
		ai.AcquireTarget(m, w, w.PlayerPos())
		for m.Budget() > 0 {
			before := m.MoveBudget
			act := ai.Plan(m, w, w.rng)
			switch act.Kind {
			case ai.ActionStumble:
				if !ai.MoveTo(m, w, w.rng, def, act.Target) {
					m.MoveBudget -= 100
				}
			case ai.ActionSpecial:
				m.SpTimeout = ai.ResetSpecialTimeout(def, false, w.rng)
			}
			if m.TrapTriggered != 0 {
				traps.Trigger(w.traps, w, m, m.Pos, w.rng)
				m.TrapTriggered = 0
			}
			if m.MoveBudget >= before {
				// no progress this iteration (e.g. a reset special-attack
				// cooldown with nothing else to act on): stop rather than
				// spin forever.
				m.MoveBudget = 0
			}
		}
	}
}

// resolvePendingSpawns materializes every loaded submap's PendingSpawns
// into actual actorset.Monster instances and drains the queue (spec §3
// Lifecycle: "Actors are created by spawners (submap pending spawns,
// ...)"). Runs at the start of the actor phase, ahead of the monster
// planning loop, so a spawn recorded during this turn's field phase
// (fatigue nether-spawn) acts this same turn, while one recorded during
// the actor phase (trap effects such as shadow/snake) acts starting next
// turn.
func (w *World) resolvePendingSpawns() {
	for _, sub := range w.bubble.LoadedSubmaps() {
		if len(sub.PendingSpawns) == 0 {
			continue
		}
		for _, sp := range sub.PendingSpawns {
			at := geom.Point{
				X: sub.Coord.X*worldmap.SubmapSize + int32(sp.LocalX),
				Y: sub.Coord.Y*worldmap.SubmapSize + int32(sp.LocalY),
				Z: int32(sub.Coord.Z),
			}
			for i := 0; i < sp.Count; i++ {
				if _, occupied := w.ActorAt(at); occupied {
					continue
				}
				w.SpawnMonster(sp.MonsterID, at)
			}
		}
		sub.PendingSpawns = nil
	}
}

func (w *World) cleanup(int64) {
	for id, a := range w.actors {
		if m, ok := a.(*actorset.Monster); ok && m.HP <= 0 {
			delete(w.actors, id)
		}
	}
}

// Advance runs exactly one world turn: fields, then actors, then cleanup
// (spec §5 Ordering guarantees).
func (w *World) Advance() error {
	w.runner.Advance()
	return nil
}

// Turn returns the current world turn counter.
func (w *World) Turn() int64 { return w.runner.Turn() }

// Hash computes a deterministic digest of every loaded submap's
// byte-stable encoding plus every actor's position and move budget,
// sorted so map iteration order never leaks into the result (spec §8
// invariant 5: "hash(world_state) after N turns is identical across
// runs" for a fixed seed and command sequence).
func (w *World) Hash() ([32]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, err
	}

	subs := w.bubble.LoadedSubmaps()
	sort.Slice(subs, func(i, j int) bool {
		a, b := subs[i].Coord, subs[j].Coord
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	for _, s := range subs {
		h.Write(worldio.Encode(s))
	}

	ids := make([]actorset.EntityID, 0, len(w.actors))
	for id := range w.actors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		a := w.actors[id]
		p := a.Position()
		fmt.Fprintf(h, "%d:%d:%d:%d:%d\n", id, p.X, p.Y, p.Z, a.Budget())
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Save flushes every submap currently loaded in the bubble to disk,
// joining per-submap failures (internal/worldio.FileStore.SaveAll).
func (w *World) Save() error {
	subs := w.bubble.LoadedSubmaps()
	if err := w.store.SaveAll(subs); err != nil {
		return fmt.Errorf("%w: %v", ErrIoError, err)
	}
	return nil
}

// Close saves the world and releases the script engine.
func (w *World) Close() error {
	err := w.Save()
	w.script.Close()
	return err
}

// --- ai.World / traps.World seam ---

func (w *World) Bubble() *worldmap.Bubble  { return w.bubble }
func (w *World) Catalog() catalog.Provider { return w.cat }

func (w *World) PlayerPos() geom.Point {
	if p, ok := w.actors[w.playerID].(*actorset.Player); ok {
		return p.Pos
	}
	return geom.Point{}
}

func (w *World) ActorAt(p geom.Point) (actorset.Actor, bool) {
	for _, a := range w.actors {
		if a.Position() == p {
			return a, true
		}
	}
	return nil, false
}

// --- actor registry ---

func (w *World) allocID() actorset.EntityID {
	w.nextID++
	return w.nextID
}

// SpawnPlayer places the player actor at p, replacing any existing player.
func (w *World) SpawnPlayer(p geom.Point) *actorset.Player {
	pl := &actorset.Player{Base: actorset.Base{ID: w.allocID(), Pos: p, Speed: 100, MoveBudget: 100}}
	delete(w.actors, w.playerID)
	w.actors[pl.ID] = pl
	w.playerID = pl.ID
	return pl
}

// SpawnMonster places a new monster of typeID at p.
func (w *World) SpawnMonster(typeID catalog.MonsterID, p geom.Point) *actorset.Monster {
	def, _ := w.cat.MonsterByID(typeID)
	m := &actorset.Monster{
		Base:   actorset.Base{ID: w.allocID(), Pos: p, Speed: def.Speed, MoveBudget: def.Speed},
		TypeID: typeID,
		HP:     def.HP,
		Origin: p,
	}
	w.actors[m.ID] = m
	return m
}

// StepPlayer attempts to move the player one tile in dir, triggering any
// trap found there (spec scenario S1). Returns ErrInvalidAction if the
// destination is occupied or impassable.
func (w *World) StepPlayer(dir geom.Dir) error {
	pl, ok := w.actors[w.playerID].(*actorset.Player)
	if !ok {
		return fmt.Errorf("%w: no player in world", ErrInvalidAction)
	}
	target := dir.Neighbor(pl.Pos)
	if _, occupied := w.ActorAt(target); occupied {
		return fmt.Errorf("%w: tile occupied", ErrInvalidAction)
	}
	if !w.bubble.IsWalkable(target) {
		return fmt.Errorf("%w: tile not walkable", ErrInvalidAction)
	}
	pl.SetPosition(target)
	pl.RefreshBudget()
	pl.SpendBudget(pl.Speed)

	if trapID := w.bubble.TrapAt(target); trapID != 0 {
		traps.Trigger(w.traps, w, pl, target, w.rng)
	}
	w.recenter(target)
	return nil
}

// defaultWeapon/defaultAmmo stand in for the item/weapon/ammo catalog
// modeling spec §1 scopes out (no inventory system): a fixed sidearm
// profile is enough to exercise the Ranged Combat Resolver end to end
// from the CLI (spec §4.4), the same way ranged.longRange stands in for
// an absent weapon-range catalog value.
var defaultWeapon = ranged.Weapon{Recoil: 8, Accuracy: 3, Durability: 3, BurstSize: 1, Volume: 10, CasingID: 1}
var defaultAmmo = ranged.Ammo{Accuracy: 3, Pierce: 2, Charges: 6}

// Fire resolves a single fire action from the player toward target, using
// the engine's default sidearm profile (spec §4.4; CLI verb "fire"). If
// target is occupied by a monster, that monster's HP and size feed the
// resolver's hit-chance and damage steps.
func (w *World) Fire(target geom.Point) (ranged.FireResult, error) {
	pl, ok := w.actors[w.playerID].(*actorset.Player)
	if !ok {
		return ranged.FireResult{}, fmt.Errorf("%w: no player in world", ErrInvalidAction)
	}

	var targetHP *int
	var targetSize catalog.MonsterSize
	if actor, ok := w.ActorAt(target); ok {
		if m, ok := actor.(*actorset.Monster); ok {
			targetHP = &m.HP
			if def, ok := w.cat.MonsterByID(m.TypeID); ok {
				targetSize = def.Size
			}
		}
	}

	res := ranged.Fire(ranged.FireContext{
		Shooter: ranged.Shooter{
			Strength:   pl.Strength,
			Dexterity:  pl.Dexterity,
			Perception: pl.Perception,
			ArmEncumb:  pl.Encumbrance[2],
			EyeEncumb:  pl.Encumbrance[0],
		},
		Weapon:     defaultWeapon,
		Ammo:       defaultAmmo,
		Origin:     pl.Pos,
		Target:     target,
		Bubble:     w.bubble,
		Catalog:    w.cat,
		Engine:     w.script,
		R:          w.rng,
		TargetHP:   targetHP,
		TargetSize: targetSize,
	})
	pl.RefreshBudget()
	pl.SpendBudget(100)
	return res, nil
}

// Throw resolves a throw action from the player toward target using
// catalog item itemID (spec §4.4 Throw; CLI verb "throw").
func (w *World) Throw(itemID catalog.ItemID, target geom.Point) (ranged.ThrowResult, error) {
	pl, ok := w.actors[w.playerID].(*actorset.Player)
	if !ok {
		return ranged.ThrowResult{}, fmt.Errorf("%w: no player in world", ErrInvalidAction)
	}
	item, ok := w.cat.ItemByID(itemID)
	if !ok {
		return ranged.ThrowResult{}, fmt.Errorf("%w: unknown item %d", ErrInvalidAction, itemID)
	}

	res := ranged.Throw(ranged.ThrowContext{
		Shooter: ranged.Shooter{Strength: pl.Strength, Dexterity: pl.Dexterity},
		Item:    item,
		Origin:  pl.Pos,
		Target:  target,
		Bubble:  w.bubble,
		R:       w.rng,
	})
	pl.RefreshBudget()
	pl.SpendBudget(100)
	return res, nil
}

// OpenDoor opens the door tile adjacent to the player in dir (spec §4.1
// door state machine; CLI verb "open-door"). inside is always true for the
// player, who may open locked doors from either side once they've reached
// them; monsters open doors through ai.MoveTo, which calls Bubble.OpenDoor
// with inside=false, so they never open a locked door.
func (w *World) OpenDoor(dir geom.Dir) error {
	pl, ok := w.actors[w.playerID].(*actorset.Player)
	if !ok {
		return fmt.Errorf("%w: no player in world", ErrInvalidAction)
	}
	target := dir.Neighbor(pl.Pos)
	if !w.bubble.OpenDoor(target, true) {
		return fmt.Errorf("%w: no door to open there", ErrInvalidAction)
	}
	return nil
}

// CloseDoor closes the door tile adjacent to the player in dir (spec §4.1
// door state machine; CLI verb "close-door").
func (w *World) CloseDoor(dir geom.Dir) error {
	pl, ok := w.actors[w.playerID].(*actorset.Player)
	if !ok {
		return fmt.Errorf("%w: no player in world", ErrInvalidAction)
	}
	target := dir.Neighbor(pl.Pos)
	if _, occupied := w.ActorAt(target); occupied {
		return fmt.Errorf("%w: tile occupied", ErrInvalidAction)
	}
	if !w.bubble.CloseDoor(target) {
		return fmt.Errorf("%w: no open door to close there", ErrInvalidAction)
	}
	return nil
}

// recenter shifts the bubble to follow p's submap when it has left the
// current center, batching the leaving submaps' saves (spec §4.1:
// "on bubble shift, save the three leaving submaps").
func (w *World) recenter(p geom.Point) {
	newCenter := worldmap.SubmapCoordOf(p)
	if newCenter == w.bubble.Center() {
		return
	}
	evicted, err := w.bubble.Shift(newCenter)
	if err != nil {
		w.log.Error("bubble shift load error", zap.Error(err))
	}
	if err := w.store.SaveAll(evicted); err != nil {
		w.log.Error("bubble shift flush error", zap.Error(err))
	}
}
