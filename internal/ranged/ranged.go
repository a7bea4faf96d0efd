// Package ranged resolves fire/throw actions: strength gating, shot count,
// target reacquisition, casing ejection, misfire, recoil, deviation,
// trajectory walk, and per-step damage resolution, in the exact RNG-draw
// order spec §4.4 mandates so a fixed seed reproduces the same outcome.
// The caller supplies the weapon; no weapon selection and no move
// (time-to-fire) cost is computed here.
package ranged

import (
	"math"

	"github.com/ashgo/ashfall/internal/actorset"
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
	"github.com/ashgo/ashfall/internal/rng"
	"github.com/ashgo/ashfall/internal/scripting"
	"github.com/ashgo/ashfall/internal/worldmap"
)

// Shooter is the subset of player/NPC stats the resolver reads.
type Shooter struct {
	Strength    int
	Dexterity   int
	Perception  int
	ArmEncumb   int
	EyeEncumb   int
	GunSkill    int // skill in the weapon's specific class
	GeneralGun  int // general "gun" skill
	TriggerHappy bool
}

// Weapon is the firing item's relevant stats.
type Weapon struct {
	Recoil      int
	Accuracy    int
	Durability  int // misfire chance is 1 in 2^durability
	BurstSize   int
	Volume      int
	IsShotgun   bool
	STR8Draw    bool
	STR10Draw   bool
	CasingID    catalog.ItemID
}

// Ammo is the loaded ammunition's relevant stats.
type Ammo struct {
	Accuracy int
	Pierce   int
	Charges  int
	Flags    AmmoEffectFlags
}

// AmmoEffectFlags are the end-of-flight ammo effects of spec §4.4 step 13.
type AmmoEffectFlags uint16

const (
	AmmoExplosive AmmoEffectFlags = 1 << iota
	AmmoFrag
	AmmoNapalm
	AmmoExplosiveBig
	AmmoTearGas
	AmmoSmoke
	AmmoFlashbang
	AmmoFlame
	AmmoIncendiary
	AmmoVenom
)

// FireContext packs one fire action's inputs.
type FireContext struct {
	Shooter    Shooter
	Weapon     Weapon
	Ammo       Ammo
	Origin     geom.Point
	Target     geom.Point
	Bubble     *worldmap.Bubble
	Catalog    catalog.Provider
	Engine     *scripting.Engine // nil is valid: pure Go-fallback mode
	R          *rng.Source
	TargetHP   *int
	TargetSize catalog.MonsterSize
	TargetHardToShoot bool
	TargetNoHead bool
}

// FireResult reports the outcome of Fire for test assertions (spec §8 S4).
type FireResult struct {
	Aborted    bool
	AbortedWhy string
	ShotsFired int
	RecoilTotal int
	Casings    []geom.Point
	FinalTier  scripting.GoodHitTier
}

const longRange = 40 // LONG_RANGE, a stand-in constant absent a full skill/weapon catalog.

// Fire resolves a single fire action end to end (spec §4.4 steps 1-13).
func Fire(ctx FireContext) FireResult {
	res := FireResult{}

	// 2. strength gating
	if ctx.Weapon.STR10Draw && ctx.Shooter.Strength < 5 {
		res.Aborted, res.AbortedWhy = true, "insufficient strength"
		return res
	}
	if ctx.Weapon.STR8Draw && ctx.Shooter.Strength < 4 {
		res.Aborted, res.AbortedWhy = true, "insufficient strength"
		return res
	}

	// 4. shot count
	shots := 1
	if ctx.Weapon.BurstSize > 1 {
		shots = ctx.Weapon.BurstSize
		if ctx.Ammo.Charges < shots {
			shots = ctx.Ammo.Charges
		}
	}

	recoil := 0
	target := ctx.Target
	for shot := 0; shot < shots; shot++ {
		// 5. target reacquisition after the first shot
		if shot > 0 {
			if ctx.TargetHP != nil && *ctx.TargetHP <= 0 {
				newTarget, found := reacquire(ctx, target)
				if !found {
					if !ctx.Shooter.TriggerHappy && !ctx.R.XInY(float64(ctx.Shooter.GunSkill), 10) {
						break
					}
				} else {
					target = newTarget
				}
			}
		}

		// 6. casing ejection
		if ctx.Weapon.CasingID != 0 {
			res.Casings = append(res.Casings, randomNeighbor(ctx.Origin, ctx.R))
		}

		// 7. misfire
		if ctx.R.OneIn(1 << uint(max(ctx.Weapon.Durability, 0))) {
			continue
		}

		// 8. recoil
		var shotRecoil int
		if shot == 0 {
			shotRecoil = ctx.Engine.RecoilAdd(scripting.RecoilAddContext{
				Strength: ctx.Shooter.Strength, GunSkill: ctx.Shooter.GunSkill, GunRecoil: ctx.Weapon.Recoil,
			}, ctx.R.Rng)
		} else {
			shotRecoil = recoil / 2
		}
		recoil += shotRecoil

		// 9. range adjustment
		trange := adjustRange(ctx, target)

		// 10. deviation
		deviation := ctx.Engine.DeviationQuarterDegrees(scripting.DeviationContext{
			GunSkillLevel:   ctx.Shooter.GunSkill,
			GeneralGunLevel: ctx.Shooter.GeneralGun,
			Dexterity:       ctx.Shooter.Dexterity,
			Perception:      ctx.Shooter.Perception,
			ArmEncumbrance:  ctx.Shooter.ArmEncumb,
			EyeEncumbrance:  ctx.Shooter.EyeEncumb,
			AmmoAccuracy:    ctx.Ammo.Accuracy,
			WeaponAccuracy:  ctx.Weapon.Accuracy,
			Recoil:          recoil,
		}, ctx.R.Rng)
		missedBy := 0.00325 * float64(deviation) * trange

		// 11. trajectory
		aimTrue, tier := walkTrajectory(ctx, target, missedBy)
		res.FinalTier = tier
		_ = aimTrue
		res.ShotsFired++
	}

	res.RecoilTotal = recoil
	return res
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func reacquire(ctx FireContext, prevTarget geom.Point) (geom.Point, bool) {
	maxRadius := 2 + ctx.Shooter.GunSkill
	var candidates []geom.Point
	for radius := 1; radius <= maxRadius; radius++ {
		for dy := int32(-radius); dy <= int32(radius); dy++ {
			for dx := int32(-radius); dx <= int32(radius); dx++ {
				p := geom.Point{X: prevTarget.X + dx, Y: prevTarget.Y + dy, Z: prevTarget.Z}
				if int(geom.Chebyshev(prevTarget, p)) != radius {
					continue
				}
				candidates = append(candidates, p)
			}
		}
		if len(candidates) > 0 {
			break
		}
	}
	if len(candidates) == 0 {
		return geom.Point{}, false
	}
	return candidates[ctx.R.Intn(len(candidates))], true
}

func randomNeighbor(origin geom.Point, r *rng.Source) geom.Point {
	neighbors := geom.Neighbors8(origin)
	return neighbors[r.Intn(len(neighbors))]
}

func adjustRange(ctx FireContext, target geom.Point) float64 {
	trange := geom.Euclidean(ctx.Origin, target)
	minRange := float64(ctx.Weapon.Volume) / 3
	if trange < minRange && !ctx.Weapon.IsShotgun {
		trange = minRange
	}
	if trange > longRange {
		trange = longRange + 0.6*(trange-longRange)
	}
	return trange
}

// walkTrajectory implements step 11-12: perturb the aim point if
// missedBy >= 1, then resolve each traversed tile in Bresenham order.
func walkTrajectory(ctx FireContext, target geom.Point, missedBy float64) (aimedTrue bool, tier scripting.GoodHitTier) {
	aimPoint := target
	if missedBy >= 1 {
		spread := math.Sqrt(missedBy)
		aimPoint.X += int32(ctx.R.Rng(int(-spread), int(spread)))
		aimPoint.Y += int32(ctx.R.Rng(int(-spread), int(spread)))
	}
	line := worldmap.LineTo(ctx.Origin, aimPoint)
	dam := 100 // headless placeholder base damage; weapon/ammo damage tables are a Catalog concern
	for i, step := range line {
		aimedTrue = step == target
		if dam <= 0 {
			applyEndOfFlight(ctx, step)
			return aimedTrue, tier
		}
		if step == target {
			hitChance := aimedTrue || ctx.R.OneIn(5-int(ctx.TargetSize))
			if hitChance {
				tier = shootMonster(ctx, dam, missedBy)
				return aimedTrue, tier
			}
		}
		stopped := ctx.Bubble.Shoot(step, &dam, true, worldmap.AmmoNone, ctx.R)
		if stopped {
			applyEndOfFlight(ctx, step)
			return aimedTrue, tier
		}
		_ = i
	}
	return aimedTrue, tier
}

// shootMonster implements step 12: hard-to-shoot pass-through, armor
// absorption, and damage-zone tiering via the hit-tier classifier.
func shootMonster(ctx FireContext, dam int, missedBy float64) scripting.GoodHitTier {
	if ctx.TargetHardToShoot && ctx.Ammo.Accuracy >= 4 && ctx.R.OneIn(4) {
		return scripting.TierZero // passes through
	}
	armor := 0
	if ctx.Weapon.IsShotgun && ctx.Ammo.Accuracy < 4 {
		armor *= ctx.R.Rng(2, 4)
	}
	dam -= ctx.Ammo.Pierce
	dam -= armor
	if dam < 0 {
		dam = 0
	}

	tier := ctx.Engine.ClassifyHit(missedBy)
	if tier == scripting.TierHeadshot && ctx.TargetNoHead {
		tier = scripting.TierCritical
	}
	mult := hitTierMultiplier(tier, ctx.R)
	total := int(float64(dam) * mult)
	if ctx.TargetHP != nil {
		*ctx.TargetHP -= total
	}
	return tier
}

func hitTierMultiplier(tier scripting.GoodHitTier, r *rng.Source) float64 {
	switch tier {
	case scripting.TierHeadshot:
		return 5 + r.Float64()*3
	case scripting.TierCritical:
		return 2 + r.Float64()
	case scripting.TierNormal:
		return 0.9 + r.Float64()*0.6
	case scripting.TierGrazing:
		return r.Float64()
	default:
		return 0
	}
}

// applyEndOfFlight implements spec §4.4 step 13: ammo effects at the
// trajectory's terminal point.
func applyEndOfFlight(ctx FireContext, at geom.Point) {
	switch {
	case ctx.Ammo.Flags&AmmoFlame != 0:
		ctx.Bubble.SetFieldAt(at, worldmap.FieldCell{Kind: worldmap.FieldFire, Intensity: 2})
	case ctx.Ammo.Flags&AmmoNapalm != 0:
		ctx.Bubble.SetFieldAt(at, worldmap.FieldCell{Kind: worldmap.FieldFire, Intensity: 3})
	case ctx.Ammo.Flags&AmmoTearGas != 0:
		for dy := int32(-2); dy <= 2; dy++ {
			for dx := int32(-2); dx <= 2; dx++ {
				ctx.Bubble.SetFieldAt(geom.Point{X: at.X + dx, Y: at.Y + dy, Z: at.Z}, worldmap.FieldCell{Kind: worldmap.FieldTearGas, Intensity: 1})
			}
		}
	case ctx.Ammo.Flags&AmmoSmoke != 0:
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				ctx.Bubble.SetFieldAt(geom.Point{X: at.X + dx, Y: at.Y + dy, Z: at.Z}, worldmap.FieldCell{Kind: worldmap.FieldSmoke, Intensity: 1})
			}
		}
	}
	// EXPLOSIVE/FRAG/EXPLOSIVE_BIG/FLASHBANG require a blast-radius system
	// that is a Non-goal of the map/field core (spec §1); the field and
	// terrain effects above are the subset this engine owns.
}

// ThrowContext packs a single throw action's inputs (spec §4.4 Throw).
type ThrowContext struct {
	Shooter  Shooter
	Item     catalog.ItemDef
	Origin   geom.Point
	Target   geom.Point
	Bubble   *worldmap.Bubble
	R        *rng.Source
}

// ThrowResult reports a throw's outcome.
type ThrowResult struct {
	LandedAt geom.Point
	Shattered bool
}

// Throw resolves a simplified ranged pipeline: deviation is rng(0, volume)
// minus Strength/2 and Dexterity/4 (throw skill, item weight and
// encumbrance do not enter it); glass shatters on impact; items stop at
// impassable tiles, falling one step back (spec §4.4 Throw).
func Throw(ctx ThrowContext) ThrowResult {
	deviation := ctx.R.Rng(0, ctx.Item.Volume) - ctx.Shooter.Strength/2 - ctx.Shooter.Dexterity/4
	if deviation < 0 {
		deviation = 0
	}
	missedBy := 0.00325 * float64(deviation) * geom.Euclidean(ctx.Origin, ctx.Target)

	aim := ctx.Target
	if missedBy >= 1 {
		spread := math.Sqrt(missedBy)
		aim.X += int32(ctx.R.Rng(int(-spread), int(spread)))
		aim.Y += int32(ctx.R.Rng(int(-spread), int(spread)))
	}

	line := worldmap.LineTo(ctx.Origin, aim)
	landed := ctx.Origin
	for _, step := range line {
		if !ctx.Bubble.IsWalkable(step) {
			break
		}
		landed = step
	}

	res := ThrowResult{LandedAt: landed}
	if ctx.Item.Material == catalog.MatGlass {
		res.Shattered = true
	}
	return res
}
