package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Manifest names the per-kind YAML files a pack directory provides,
// grounded on the teacher's multi-file data directory convention
// (internal/data/npc.go, item.go, drop.go each own one YAML file).
type Manifest struct {
	Terrain   string `toml:"terrain"`
	Furniture string `toml:"furniture"`
	Items     string `toml:"items"`
	Monsters  string `toml:"monsters"`
	Traps     string `toml:"traps"`
}

type terrainFile struct {
	Terrain []terrainYAML `yaml:"terrain"`
}

type terrainYAML struct {
	ID         int32    `yaml:"id"`
	Name       string   `yaml:"name"`
	Symbol     string   `yaml:"symbol"`
	MoveCost   int      `yaml:"move_cost"`
	Flags      []string `yaml:"flags"`
	BashResult int32    `yaml:"bash_result"`
	BurnResult int32    `yaml:"burn_result"`
	Debris     []int32  `yaml:"debris"`
	BashMin    int      `yaml:"bash_rng_min"`
	BashMax    int      `yaml:"bash_rng_max"`
}

type furnitureFile struct {
	Furniture []furnitureYAML `yaml:"furniture"`
}

type furnitureYAML struct {
	ID       int32    `yaml:"id"`
	Name     string   `yaml:"name"`
	MoveCost int      `yaml:"move_cost"`
	Flags    []string `yaml:"flags"`
}

type itemFile struct {
	Items []itemYAML `yaml:"items"`
}

type itemYAML struct {
	ID         int32  `yaml:"id"`
	Name       string `yaml:"name"`
	Material   string `yaml:"material"`
	Volume     int    `yaml:"volume"`
	Weight     int    `yaml:"weight"`
	Stackable  bool   `yaml:"stackable"`
	MaxStack   int    `yaml:"max_stack"`
	Flammable  bool   `yaml:"flammable"`
	FuelValue  int    `yaml:"fuel_value"`
	Explodes   bool   `yaml:"explodes"`
	Incendiary bool   `yaml:"incendiary"`
	IsAmmo     bool   `yaml:"is_ammo"`
	IsArrow    bool   `yaml:"is_arrow"`
	CasingID   int32  `yaml:"casing_id"`
}

type monsterFile struct {
	Monsters []monsterYAML `yaml:"monsters"`
}

type monsterYAML struct {
	ID         int32    `yaml:"id"`
	Name       string   `yaml:"name"`
	Size       string   `yaml:"size"`
	Speed      int      `yaml:"speed"`
	HP         int      `yaml:"hp"`
	MeleeDice  int      `yaml:"melee_dice"`
	MeleeSides int      `yaml:"melee_sides"`
	MeleeSkill int      `yaml:"melee_skill"`
	CutDamage  int      `yaml:"cut_damage"`
	Flags      []string `yaml:"flags"`
	SpecialCD  int      `yaml:"special_cd"`
	DodgeBase  int      `yaml:"dodge_base"`
}

type trapFile struct {
	Traps []trapYAML `yaml:"traps"`
}

type trapYAML struct {
	ID         int32  `yaml:"id"`
	Name       string `yaml:"name"`
	Difficulty int    `yaml:"difficulty"`
	Visible    bool   `yaml:"visible"`
}

// Store is the concrete in-memory Provider implementation.
type Store struct {
	terrain   map[TerrainID]TerrainDef
	furniture map[FurnitureID]FurnitureDef
	items     map[ItemID]ItemDef
	monsters  map[MonsterID]MonsterDef
	traps     map[TrapID]TrapDef
}

var _ Provider = (*Store)(nil)

// Load reads pack.toml from dir and every YAML file it names, building an
// immutable Store. Missing manifest entries are skipped (an empty catalog
// is valid — tests construct worlds without a full data pack).
func Load(dir string) (*Store, error) {
	s := &Store{
		terrain:   map[TerrainID]TerrainDef{NullTerrain: {ID: NullTerrain, Name: "null", Flags: 0}},
		furniture: map[FurnitureID]FurnitureDef{},
		items:     map[ItemID]ItemDef{},
		monsters:  map[MonsterID]MonsterDef{},
		traps:     map[TrapID]TrapDef{0: {ID: 0, Name: "none"}},
	}

	manifestPath := filepath.Join(dir, "pack.toml")
	var m Manifest
	if _, err := os.Stat(manifestPath); err == nil {
		if _, err := toml.DecodeFile(manifestPath, &m); err != nil {
			return nil, fmt.Errorf("parse pack manifest %s: %w", manifestPath, err)
		}
	} else {
		return s, nil
	}

	if m.Terrain != "" {
		if err := s.loadTerrain(filepath.Join(dir, m.Terrain)); err != nil {
			return nil, err
		}
	}
	if m.Furniture != "" {
		if err := s.loadFurniture(filepath.Join(dir, m.Furniture)); err != nil {
			return nil, err
		}
	}
	if m.Items != "" {
		if err := s.loadItems(filepath.Join(dir, m.Items)); err != nil {
			return nil, err
		}
	}
	if m.Monsters != "" {
		if err := s.loadMonsters(filepath.Join(dir, m.Monsters)); err != nil {
			return nil, err
		}
	}
	if m.Traps != "" {
		if err := s.loadTraps(filepath.Join(dir, m.Traps)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func readYAML(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

var terrainFlagNames = map[string]TerrainFlag{
	"walkable":     TerrainWalkable,
	"transparent":  TerrainTransparent,
	"flammable":    TerrainFlammable,
	"explodes":     TerrainExplodes,
	"swimmable":    TerrainSwimmable,
	"sharp":        TerrainSharp,
	"rough":        TerrainRough,
	"bashable":     TerrainBashable,
	"door":         TerrainDoor,
	"door_locked":  TerrainDoorLocked,
	"door_metal":   TerrainDoorMetal,
	"no_item":      TerrainNoItem,
	"divable":      TerrainDivable,
	"pit":          TerrainPit,
}

func parseTerrainFlags(names []string) TerrainFlag {
	var f TerrainFlag
	for _, n := range names {
		f |= terrainFlagNames[n]
	}
	return f
}

var monsterFlagNames = map[string]MonsterFlag{
	"smells":           FlagSmells,
	"keen_nose":        FlagKeenNose,
	"bashes":           FlagBashes,
	"destroys":         FlagDestroys,
	"digs":             FlagDigs,
	"flies":            FlagFlies,
	"swims":            FlagSwims,
	"submerges":        FlagSubmerges,
	"stumbles":         FlagStumbles,
	"sludge_trail":     FlagSludgeTrail,
	"acid_trail":       FlagAcidTrail,
	"hit_and_run":      FlagHitAndRun,
	"grabs":            FlagGrabs,
	"venom":            FlagVenom,
	"bad_venom":        FlagBadVenom,
	"bleed":            FlagBleed,
	"attack_mon":       FlagAttackMon,
	"hard_to_shoot":    FlagHardToShoot,
	"friendly_special": FlagFriendlySpecial,
	"no_head":          FlagNoHead,
}

func parseMonsterFlags(names []string) MonsterFlag {
	var f MonsterFlag
	for _, n := range names {
		f |= monsterFlagNames[n]
	}
	return f
}

func parseSize(s string) MonsterSize {
	switch s {
	case "tiny":
		return SizeTiny
	case "small":
		return SizeSmall
	case "large":
		return SizeLarge
	case "huge":
		return SizeHuge
	default:
		return SizeMedium
	}
}

func (s *Store) loadTerrain(path string) error {
	var f terrainFile
	if err := readYAML(path, &f); err != nil {
		return err
	}
	for _, t := range f.Terrain {
		sym := rune('?')
		if len([]rune(t.Symbol)) > 0 {
			sym = []rune(t.Symbol)[0]
		}
		s.terrain[TerrainID(t.ID)] = TerrainDef{
			ID:          TerrainID(t.ID),
			Name:        t.Name,
			Symbol:      sym,
			MoveCost:    t.MoveCost,
			Flags:       parseTerrainFlags(t.Flags),
			BashResult:  TerrainID(t.BashResult),
			BurnResult:  TerrainID(t.BurnResult),
			DebrisItems: t.Debris,
			BashRNGMin:  t.BashMin,
			BashRNGMax:  t.BashMax,
		}
	}
	return nil
}

func (s *Store) loadFurniture(path string) error {
	var f furnitureFile
	if err := readYAML(path, &f); err != nil {
		return err
	}
	for _, e := range f.Furniture {
		s.furniture[FurnitureID(e.ID)] = FurnitureDef{
			ID:       FurnitureID(e.ID),
			Name:     e.Name,
			MoveCost: e.MoveCost,
			Flags:    parseTerrainFlags(e.Flags),
		}
	}
	return nil
}

func (s *Store) loadItems(path string) error {
	var f itemFile
	if err := readYAML(path, &f); err != nil {
		return err
	}
	for _, e := range f.Items {
		s.items[ItemID(e.ID)] = ItemDef{
			ID:         ItemID(e.ID),
			Name:       e.Name,
			Material:   Material(e.Material),
			Volume:     e.Volume,
			Weight:     e.Weight,
			Stackable:  e.Stackable,
			MaxStack:   e.MaxStack,
			Flammable:  e.Flammable,
			FuelValue:  e.FuelValue,
			Explodes:   e.Explodes,
			Incendiary: e.Incendiary,
			IsAmmo:     e.IsAmmo,
			IsArrow:    e.IsArrow,
			CasingID:   ItemID(e.CasingID),
		}
	}
	return nil
}

func (s *Store) loadMonsters(path string) error {
	var f monsterFile
	if err := readYAML(path, &f); err != nil {
		return err
	}
	for _, e := range f.Monsters {
		s.monsters[MonsterID(e.ID)] = MonsterDef{
			ID:         MonsterID(e.ID),
			Name:       e.Name,
			Size:       parseSize(e.Size),
			Speed:      e.Speed,
			HP:         e.HP,
			MeleeDice:  e.MeleeDice,
			MeleeSides: e.MeleeSides,
			MeleeSkill: e.MeleeSkill,
			CutDamage:  e.CutDamage,
			Flags:      parseMonsterFlags(e.Flags),
			SpecialCD:  e.SpecialCD,
			DodgeBase:  e.DodgeBase,
		}
	}
	return nil
}

func (s *Store) loadTraps(path string) error {
	var f trapFile
	if err := readYAML(path, &f); err != nil {
		return err
	}
	for _, e := range f.Traps {
		s.traps[TrapID(e.ID)] = TrapDef{
			ID:         TrapID(e.ID),
			Name:       e.Name,
			Difficulty: e.Difficulty,
			Visible:    e.Visible,
		}
	}
	return nil
}

func (s *Store) TerrainByID(id TerrainID) (TerrainDef, bool) {
	d, ok := s.terrain[id]
	return d, ok
}

func (s *Store) FurnitureByID(id FurnitureID) (FurnitureDef, bool) {
	d, ok := s.furniture[id]
	return d, ok
}

func (s *Store) ItemByID(id ItemID) (ItemDef, bool) {
	d, ok := s.items[id]
	return d, ok
}

func (s *Store) MonsterByID(id MonsterID) (MonsterDef, bool) {
	d, ok := s.monsters[id]
	return d, ok
}

func (s *Store) TrapByID(id TrapID) (TrapDef, bool) {
	d, ok := s.traps[id]
	return d, ok
}

// Put* allow tests to build a Store programmatically without YAML fixtures.
func (s *Store) PutTerrain(d TerrainDef)   { s.terrain[d.ID] = d }
func (s *Store) PutFurniture(d FurnitureDef) { s.furniture[d.ID] = d }
func (s *Store) PutItem(d ItemDef)         { s.items[d.ID] = d }
func (s *Store) PutMonster(d MonsterDef)   { s.monsters[d.ID] = d }
func (s *Store) PutTrap(d TrapDef)         { s.traps[d.ID] = d }

// New builds an empty Store (no data pack), for unit tests.
func New() *Store {
	return &Store{
		terrain:   map[TerrainID]TerrainDef{NullTerrain: {ID: NullTerrain}},
		furniture: map[FurnitureID]FurnitureDef{},
		items:     map[ItemID]ItemDef{},
		monsters:  map[MonsterID]MonsterDef{},
		traps:     map[TrapID]TrapDef{0: {ID: 0, Name: "none"}},
	}
}
