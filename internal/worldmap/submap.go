package worldmap

import (
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
)

// SubmapCoord is the absolute coordinate of a submap (not a tile), per
// spec §6 persisted-state layout.
type SubmapCoord struct {
	X, Y int32
	Z    int16
}

// SubmapCoordOf returns the coordinate of the submap containing tile p
// (spec §6: "absx = om.x*(OMAPX*2) + worldx + gridx" collapses, for our
// flat coordinate space, to a floor division by the submap edge length).
func SubmapCoordOf(p geom.Point) SubmapCoord {
	return SubmapCoord{X: floorDiv(p.X, SubmapSize), Y: floorDiv(p.Y, SubmapSize), Z: int16(p.Z)}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// SpawnPoint is a pending monster spawn recorded on a submap (spec §3
// Submap: "a list of pending monster spawn points").
type SpawnPoint struct {
	MonsterID catalog.MonsterID
	Count     int
	LocalX    int
	LocalY    int
}

// Submap is a fixed 12x12 block of tiles plus pending spawns and the
// world turn it was last saved at (spec §3 Submap). Submaps are the unit
// of persistence and procedural generation, and exclusively own their
// tiles, items, traps, and fields (spec §3 Ownership).
type Submap struct {
	Coord         SubmapCoord
	Tiles         [TilesPerSubmap]Tile
	PendingSpawns []SpawnPoint
	LastVisited   int64 // world turn
}

// NewSubmap allocates an empty submap at coord, all tiles defaulted to
// the null terrain.
func NewSubmap(coord SubmapCoord) *Submap {
	return &Submap{Coord: coord}
}

func localIndex(lx, ly int) int {
	return ly*SubmapSize + lx
}

// TileAt returns the tile at local coordinates (lx, ly) within this
// submap. Callers must ensure lx, ly are in [0, SubmapSize).
func (s *Submap) TileAt(lx, ly int) *Tile {
	return &s.Tiles[localIndex(lx, ly)]
}

// Generator procedurally populates a freshly allocated submap when no
// on-disk file exists for its coordinate. The core only requires that it
// populate the submap (spec §4.1 Chunking & persistence); the generator
// itself — terrain authoring, monster placement tables — is an external
// collaborator, analogous to the spec's Catalog boundary.
type Generator interface {
	Generate(s *Submap)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(s *Submap)

func (f GeneratorFunc) Generate(s *Submap) { f(s) }
