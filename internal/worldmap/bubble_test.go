package worldmap_test

import (
	"testing"

	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
	"github.com/ashgo/ashfall/internal/worldmap"
)

// memStore is a minimal in-memory worldmap.Store for tests, grounded on
// the same Load/Save contract internal/worldio.FileStore implements.
type memStore struct {
	subs map[worldmap.SubmapCoord]*worldmap.Submap
}

func newMemStore() *memStore {
	return &memStore{subs: make(map[worldmap.SubmapCoord]*worldmap.Submap)}
}

func (m *memStore) Load(coord worldmap.SubmapCoord) (*worldmap.Submap, bool, error) {
	if s, ok := m.subs[coord]; ok {
		return s, true, nil
	}
	s := worldmap.NewSubmap(coord)
	return s, false, nil
}

func (m *memStore) Save(s *worldmap.Submap) error {
	m.subs[s.Coord] = s
	return nil
}

type stubCatalog struct{}

func (stubCatalog) TerrainByID(id catalog.TerrainID) (catalog.TerrainDef, bool) {
	if id == 1 {
		return catalog.TerrainDef{ID: 1, Flags: catalog.TerrainWalkable | catalog.TerrainTransparent, MoveCost: 100}, true
	}
	return catalog.TerrainDef{}, false
}
func (stubCatalog) FurnitureByID(id catalog.FurnitureID) (catalog.FurnitureDef, bool) { return catalog.FurnitureDef{}, false }
func (stubCatalog) ItemByID(id catalog.ItemID) (catalog.ItemDef, bool)                 { return catalog.ItemDef{}, false }
func (stubCatalog) MonsterByID(id catalog.MonsterID) (catalog.MonsterDef, bool)        { return catalog.MonsterDef{}, false }
func (stubCatalog) TrapByID(id catalog.TrapID) (catalog.TrapDef, bool)                 { return catalog.TrapDef{}, false }

func TestBubbleShiftLoadsInitialWindow(t *testing.T) {
	b := worldmap.NewBubble(newMemStore(), worldmap.GeneratorFunc(func(*worldmap.Submap) {}), stubCatalog{})
	evicted, err := b.Shift(worldmap.SubmapCoord{})
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	if len(evicted) != 0 {
		t.Fatalf("initial shift evicted %d submaps, want 0", len(evicted))
	}
	if len(b.LoadedSubmaps()) != 9 {
		t.Fatalf("loaded %d submaps, want 9", len(b.LoadedSubmaps()))
	}
}

func TestBubbleShiftIsNoOpForSameCenter(t *testing.T) {
	b := worldmap.NewBubble(newMemStore(), worldmap.GeneratorFunc(func(*worldmap.Submap) {}), stubCatalog{})
	b.Shift(worldmap.SubmapCoord{})
	before := b.LoadedSubmaps()[0]
	if _, err := b.Shift(worldmap.SubmapCoord{}); err != nil {
		t.Fatalf("Shift: %v", err)
	}
	after := b.LoadedSubmaps()[0]
	if before != after {
		t.Fatal("no-op shift should not reload submaps")
	}
}

func TestBubbleShiftEvictsAndKeeps(t *testing.T) {
	store := newMemStore()
	b := worldmap.NewBubble(store, worldmap.GeneratorFunc(func(*worldmap.Submap) {}), stubCatalog{})
	b.Shift(worldmap.SubmapCoord{})

	evicted, err := b.Shift(worldmap.SubmapCoord{X: 1, Y: 0})
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	// moving one submap east: the three left-column submaps leave the window
	if len(evicted) != 3 {
		t.Fatalf("evicted %d submaps, want 3", len(evicted))
	}
	if len(b.LoadedSubmaps()) != 9 {
		t.Fatalf("window not refilled: loaded %d, want 9", len(b.LoadedSubmaps()))
	}
}

func TestInBubbleAndTotalAccessors(t *testing.T) {
	b := worldmap.NewBubble(newMemStore(), worldmap.GeneratorFunc(func(s *worldmap.Submap) {
		s.TileAt(0, 0).Terrain = 1
	}), stubCatalog{})
	b.Shift(worldmap.SubmapCoord{})

	inside := geom.Point{X: 0, Y: 0, Z: 0}
	if !b.InBubble(inside) {
		t.Fatal("origin tile should be in bubble after centering on origin submap")
	}
	outside := geom.Point{X: 1000, Y: 1000, Z: 0}
	if b.InBubble(outside) {
		t.Fatal("far tile should be out of bubble")
	}
	if got := b.TerrainAt(outside); got != catalog.NullTerrain {
		t.Fatalf("out-of-bubble TerrainAt = %v, want NullTerrain", got)
	}
	// writes out of bubble must not panic and must be no-ops
	b.SetTerrainAt(outside, 1)
	if got := b.TerrainAt(outside); got != catalog.NullTerrain {
		t.Fatalf("out-of-bubble write leaked: TerrainAt = %v", got)
	}
}

func TestIsWalkable(t *testing.T) {
	b := worldmap.NewBubble(newMemStore(), worldmap.GeneratorFunc(func(s *worldmap.Submap) {
		s.TileAt(0, 0).Terrain = 1 // walkable stub terrain
	}), stubCatalog{})
	b.Shift(worldmap.SubmapCoord{})

	walkable := geom.Point{X: 0, Y: 0, Z: 0}
	if !b.IsWalkable(walkable) {
		t.Fatal("expected tile with walkable terrain to be walkable")
	}
	blocked := geom.Point{X: 1, Y: 0, Z: 0} // default terrain 0, undefined in stub catalog
	if b.IsWalkable(blocked) {
		t.Fatal("expected tile with unknown terrain to be non-walkable")
	}
}

func TestSubmapCoordOfFloorDivision(t *testing.T) {
	cases := []struct {
		p    geom.Point
		want worldmap.SubmapCoord
	}{
		{geom.Point{X: 0, Y: 0}, worldmap.SubmapCoord{X: 0, Y: 0}},
		{geom.Point{X: 11, Y: 11}, worldmap.SubmapCoord{X: 0, Y: 0}},
		{geom.Point{X: 12, Y: 0}, worldmap.SubmapCoord{X: 1, Y: 0}},
		{geom.Point{X: -1, Y: 0}, worldmap.SubmapCoord{X: -1, Y: 0}},
		{geom.Point{X: -12, Y: -13}, worldmap.SubmapCoord{X: -1, Y: -2}},
	}
	for _, c := range cases {
		if got := worldmap.SubmapCoordOf(c.p); got != c.want {
			t.Errorf("SubmapCoordOf(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}
