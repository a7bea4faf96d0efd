// Package scripting wraps a single gopher-lua VM that exposes the
// engine's combat formulas (recoil, deviation, hit tier) for mod-pack override,
// grounded on the teacher's Lua bridge: one VM per process, scripts
// loaded once at startup from a directory tree, Go fallbacks used
// whenever a script doesn't define an override (so headless/test runs
// never require Lua).
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for combat-formula overrides.
// Single-goroutine access only, matching the core's cooperative
// single-threaded model (spec §5).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file under
// scriptsDir/combat and scriptsDir/ai. Missing directories are not an
// error — an engine with no scripts loaded falls back to Go formulas
// for every call.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"combat", "ai"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// Close releases the underlying VM.
func (e *Engine) Close() { e.vm.Close() }

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) hasGlobal(name string) bool {
	return e.vm.GetGlobal(name) != lua.LNil
}

// RecoilAddContext packs the inputs to spec §4.4 step 8's recoil_add.
type RecoilAddContext struct {
	Strength int
	GunSkill int
	GunRecoil int
}

// RecoilAdd evaluates `recoil_add(ctx)` if a script defines it, else the
// Go fallback: max(0, gun_recoil - rng(str/2, str) - rng(0, gun_skill/2)).
func (e *Engine) RecoilAdd(ctx RecoilAddContext, rngRange func(lo, hi int) int) int {
	if e == nil || !e.hasGlobal("recoil_add") {
		return recoilAddFallback(ctx, rngRange)
	}
	t := e.vm.NewTable()
	t.RawSetString("strength", lua.LNumber(ctx.Strength))
	t.RawSetString("gun_skill", lua.LNumber(ctx.GunSkill))
	t.RawSetString("gun_recoil", lua.LNumber(ctx.GunRecoil))
	if err := e.vm.CallByParam(lua.P{Fn: e.vm.GetGlobal("recoil_add"), NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua recoil_add error", zap.Error(err))
		return recoilAddFallback(ctx, rngRange)
	}
	v := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(v))
}

func recoilAddFallback(ctx RecoilAddContext, rngRange func(lo, hi int) int) int {
	v := ctx.GunRecoil - rngRange(ctx.Strength/2, ctx.Strength) - rngRange(0, ctx.GunSkill/2)
	if v < 0 {
		return 0
	}
	return v
}

// DeviationContext packs the inputs to spec §4.4 step 10.
type DeviationContext struct {
	GunSkillLevel     int
	GeneralGunLevel   int
	Dexterity         int
	Perception        int
	ArmEncumbrance    int
	EyeEncumbrance    int
	AmmoAccuracy      int
	WeaponAccuracy    int
	Recoil            int
}

// DeviationQuarterDegrees evaluates the Lua override if present, else the
// Go fallback implementing the additive penalty/bonus table of spec §4.4
// step 10 verbatim.
func (e *Engine) DeviationQuarterDegrees(ctx DeviationContext, r func(lo, hi int) int) int {
	if e == nil || !e.hasGlobal("deviation_quarter_degrees") {
		return deviationFallback(ctx, r)
	}
	t := e.vm.NewTable()
	t.RawSetString("gun_skill_level", lua.LNumber(ctx.GunSkillLevel))
	t.RawSetString("general_gun_level", lua.LNumber(ctx.GeneralGunLevel))
	t.RawSetString("dex", lua.LNumber(ctx.Dexterity))
	t.RawSetString("per", lua.LNumber(ctx.Perception))
	t.RawSetString("arm_encumb", lua.LNumber(ctx.ArmEncumbrance))
	t.RawSetString("eye_encumb", lua.LNumber(ctx.EyeEncumbrance))
	t.RawSetString("ammo_accuracy", lua.LNumber(ctx.AmmoAccuracy))
	t.RawSetString("weapon_accuracy", lua.LNumber(ctx.WeaponAccuracy))
	t.RawSetString("recoil", lua.LNumber(ctx.Recoil))
	if err := e.vm.CallByParam(lua.P{Fn: e.vm.GetGlobal("deviation_quarter_degrees"), NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua deviation_quarter_degrees error", zap.Error(err))
		return deviationFallback(ctx, r)
	}
	v := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(v))
}

func deviationFallback(ctx DeviationContext, r func(lo, hi int) int) int {
	total := 0
	if ctx.GunSkillLevel < 4 {
		total += r(0, 6*(4-ctx.GunSkillLevel))
	} else if ctx.GunSkillLevel > 4 {
		total -= r(0, 5*(ctx.GunSkillLevel-4))
	}
	if ctx.GeneralGunLevel < 3 {
		total += r(0, 3*(3-ctx.GeneralGunLevel))
	} else if ctx.GeneralGunLevel > 3 {
		total -= r(0, 2*(ctx.GeneralGunLevel-3))
	}
	total += r(0, (16-ctx.Dexterity)/2)
	total -= ctx.Perception / 2
	total += r(0, 2*ctx.ArmEncumbrance)
	total += r(0, 4*ctx.EyeEncumbrance)
	total += (10 - ctx.AmmoAccuracy)
	total += (10 - ctx.WeaponAccuracy)
	total += r(ctx.Recoil/4, ctx.Recoil)
	if total < 0 {
		total = 0
	}
	return total
}

// GoodHitTier classifies missed_by into the damage-zone tiers of spec
// §4.4 step 12. A script may override the tier thresholds; the Go
// fallback implements the literal table.
type GoodHitTier int8

const (
	TierZero GoodHitTier = iota
	TierGrazing
	TierNormal
	TierCritical
	TierHeadshot
)

// ClassifyHit returns the hit tier for a given missed_by value.
func (e *Engine) ClassifyHit(missedBy float64) GoodHitTier {
	if e != nil && e.hasGlobal("classify_hit") {
		if err := e.vm.CallByParam(lua.P{Fn: e.vm.GetGlobal("classify_hit"), NRet: 1, Protect: true}, lua.LNumber(missedBy)); err == nil {
			v := e.vm.Get(-1)
			e.vm.Pop(1)
			return GoodHitTier(lua.LVAsNumber(v))
		}
		e.log.Debug("lua classify_hit unavailable, using fallback")
	}
	switch {
	case missedBy < 0.1:
		return TierHeadshot
	case missedBy < 0.2:
		return TierCritical
	case missedBy < 0.4:
		return TierNormal
	case missedBy <= 0.7:
		return TierGrazing
	default:
		return TierZero
	}
}
