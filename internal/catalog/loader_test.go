package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ashgo/ashfall/internal/catalog"
)

func TestLoadWithoutManifestReturnsEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	s, err := catalog.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := s.TerrainByID(catalog.NullTerrain); !ok {
		t.Fatal("expected the null terrain sentinel to always be present")
	}
	if _, ok := s.MonsterByID(1); ok {
		t.Fatal("expected no monster definitions without a manifest")
	}
}

func TestLoadParsesManifestAndYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pack.toml", `
terrain = "terrain.yaml"
monsters = "monsters.yaml"
traps = "traps.yaml"
`)
	writeFile(t, dir, "terrain.yaml", `
terrain:
  - id: 1
    name: floor
    symbol: "."
    move_cost: 100
    flags: [walkable, transparent]
  - id: 2
    name: wall
    move_cost: 0
    flags: [bashable]
`)
	writeFile(t, dir, "monsters.yaml", `
monsters:
  - id: 5
    name: zombie
    size: medium
    speed: 100
    hp: 40
    flags: [smells, stumbles]
`)
	writeFile(t, dir, "traps.yaml", `
traps:
  - id: 2
    name: bear_trap
    difficulty: 3
    visible: false
`)

	s, err := catalog.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	floor, ok := s.TerrainByID(1)
	if !ok {
		t.Fatal("expected terrain id 1 to load")
	}
	if !floor.Has(catalog.TerrainWalkable) || !floor.Has(catalog.TerrainTransparent) {
		t.Fatalf("floor flags = %v, missing walkable/transparent", floor.Flags)
	}
	if floor.Symbol != '.' {
		t.Fatalf("floor symbol = %q, want '.'", floor.Symbol)
	}

	wall, ok := s.TerrainByID(2)
	if !ok || !wall.Has(catalog.TerrainBashable) {
		t.Fatal("expected bashable wall terrain")
	}

	zombie, ok := s.MonsterByID(5)
	if !ok {
		t.Fatal("expected monster id 5 to load")
	}
	if zombie.HP != 40 || zombie.Size != catalog.SizeMedium {
		t.Fatalf("zombie = %+v, unexpected fields", zombie)
	}
	if !zombie.Flags.Has(catalog.FlagSmells) || !zombie.Flags.Has(catalog.FlagStumbles) {
		t.Fatalf("zombie flags = %v, missing smells/stumbles", zombie.Flags)
	}

	trap, ok := s.TrapByID(2)
	if !ok || trap.Name != "bear_trap" || trap.Difficulty != 3 {
		t.Fatalf("trap = %+v, unexpected fields", trap)
	}
}

func TestLoadRejectsMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pack.toml", `this is not valid toml +++`)
	if _, err := catalog.Load(dir); err == nil {
		t.Fatal("expected an error for a malformed pack.toml")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
