package worldio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/worldio"
	"github.com/ashgo/ashfall/internal/worldmap"
	"go.uber.org/zap"
)

func sampleSubmap() *worldmap.Submap {
	s := worldmap.NewSubmap(worldmap.SubmapCoord{X: 2, Y: -3, Z: 0})
	s.LastVisited = 1234

	t := s.TileAt(1, 1)
	t.Terrain = catalog.TerrainID(5)
	t.Radiation = 7
	t.Trap = catalog.TrapID(2)
	t.Field = worldmap.FieldCell{Kind: worldmap.FieldFire, Intensity: 2, Age: 4}
	t.Items.Items = append(t.Items.Items, worldmap.Item{
		ID:     catalog.ItemID(10),
		Count:  3,
		Damage: 1,
		Contents: []worldmap.Item{
			{ID: catalog.ItemID(11), Count: 1},
		},
	})

	s.PendingSpawns = append(s.PendingSpawns, worldmap.SpawnPoint{
		MonsterID: catalog.MonsterID(4), Count: 2, LocalX: 5, LocalY: 6,
	})
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := sampleSubmap()
	data := worldio.Encode(want)

	got, err := worldio.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.LastVisited != want.LastVisited {
		t.Errorf("LastVisited = %d, want %d", got.LastVisited, want.LastVisited)
	}

	gt := got.TileAt(1, 1)
	wt := want.TileAt(1, 1)
	if gt.Terrain != wt.Terrain || gt.Radiation != wt.Radiation || gt.Trap != wt.Trap {
		t.Fatalf("tile(1,1) = %+v, want %+v", gt, wt)
	}
	if gt.Field != wt.Field {
		t.Fatalf("field = %+v, want %+v", gt.Field, wt.Field)
	}
	if len(gt.Items.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(gt.Items.Items))
	}
	if gt.Items.Items[0].ID != wt.Items.Items[0].ID || gt.Items.Items[0].Count != wt.Items.Items[0].Count {
		t.Fatalf("item = %+v, want %+v", gt.Items.Items[0], wt.Items.Items[0])
	}
	if len(gt.Items.Items[0].Contents) != 1 || gt.Items.Items[0].Contents[0].ID != catalog.ItemID(11) {
		t.Fatalf("item contents = %+v", gt.Items.Items[0].Contents)
	}
	if len(got.PendingSpawns) != 1 || got.PendingSpawns[0] != want.PendingSpawns[0] {
		t.Fatalf("spawns = %+v, want %+v", got.PendingSpawns, want.PendingSpawns)
	}
}

func TestEncodeIsByteStableAcrossRuns(t *testing.T) {
	s := sampleSubmap()
	a := worldio.Encode(s)
	b := worldio.Encode(s)
	if string(a) != string(b) {
		t.Fatal("Encode is not deterministic across repeated calls")
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	if _, err := worldio.Decode([]byte("not a submap")); err == nil {
		t.Fatal("expected error decoding truncated input")
	}
}

func TestDecodeRejectsShortRadiationRow(t *testing.T) {
	s := sampleSubmap()
	data := worldio.Encode(s)
	// Corrupt: drop everything after the terrain grid's first line boundary
	// (the radiation line) by truncating mid-file.
	truncated := data[:len(data)/3]
	if _, err := worldio.Decode(truncated); err == nil {
		t.Fatal("expected error decoding truncated submap")
	}
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop()
	gen := worldmap.GeneratorFunc(func(*worldmap.Submap) {})
	fs := worldio.NewFileStore(dir, gen, nil, log)

	want := sampleSubmap()
	if err := fs.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, existed, err := fs.Load(want.Coord)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !existed {
		t.Fatal("expected existed=true for a saved submap")
	}
	if got.LastVisited != want.LastVisited {
		t.Fatalf("LastVisited = %d, want %d", got.LastVisited, want.LastVisited)
	}
}

func TestFileStoreLoadGeneratesWhenMissing(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop()
	var generated bool
	gen := worldmap.GeneratorFunc(func(s *worldmap.Submap) { generated = true })
	fs := worldio.NewFileStore(dir, gen, nil, log)

	_, existed, err := fs.Load(worldmap.SubmapCoord{X: 99, Y: 99})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if existed {
		t.Fatal("expected existed=false for a never-saved coordinate")
	}
	if !generated {
		t.Fatal("expected the generator to run for a missing submap")
	}
}

func TestSaveAllJoinsErrors(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop()
	gen := worldmap.GeneratorFunc(func(*worldmap.Submap) {})
	fs := worldio.NewFileStore(dir, gen, nil, log)

	// Make the save root an unwritable regular file so every write fails.
	root := filepath.Join(dir, "save")
	if err := os.WriteFile(root, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	subs := []*worldmap.Submap{
		worldmap.NewSubmap(worldmap.SubmapCoord{X: 0, Y: 0}),
		worldmap.NewSubmap(worldmap.SubmapCoord{X: 1, Y: 0}),
	}
	err := fs.SaveAll(subs)
	if err == nil {
		t.Fatal("expected SaveAll to report errors when the save root cannot be created")
	}
}
