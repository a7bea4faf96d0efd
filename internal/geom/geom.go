// Package geom provides the integer spatial primitives the rest of the
// engine builds on: points, rectangles, directions, and distance metrics.
package geom

import "math"

// Point is an integer world coordinate. Z is the vertical level (0 = ground).
type Point struct {
	X, Y, Z int32
}

// Add returns p+o.
func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

// Sub returns p-o.
func (p Point) Sub(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

// SameZ reports whether p and o share a z-level.
func (p Point) SameZ(o Point) bool {
	return p.Z == o.Z
}

// Rect is an axis-aligned integer rectangle, Min inclusive, Max inclusive.
type Rect struct {
	Min, Max Point
}

// Contains reports whether p falls within r (inclusive), ignoring Z.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Dir is one of the eight cardinal/diagonal directions, or None.
type Dir int8

const (
	DirNone Dir = iota
	DirN
	DirNE
	DirE
	DirSE
	DirS
	DirSW
	DirW
	DirNW
)

// Offsets maps each direction to its unit displacement.
var offsets = map[Dir]Point{
	DirNone: {0, 0, 0},
	DirN:    {0, -1, 0},
	DirNE:   {1, -1, 0},
	DirE:    {1, 0, 0},
	DirSE:   {1, 1, 0},
	DirS:    {0, 1, 0},
	DirSW:   {-1, 1, 0},
	DirW:    {-1, 0, 0},
	DirNW:   {-1, -1, 0},
}

// All8 lists the eight non-None directions in a stable clockwise order,
// starting from North. Used wherever the spec requires an 8-connected
// neighborhood scan with a deterministic iteration order.
var All8 = []Dir{DirN, DirNE, DirE, DirSE, DirS, DirSW, DirW, DirNW}

// Offset returns the unit displacement for d.
func (d Dir) Offset() Point {
	return offsets[d]
}

// Neighbor returns the tile adjacent to p in direction d.
func (d Dir) Neighbor(p Point) Point {
	o := offsets[d]
	return Point{p.X + o.X, p.Y + o.Y, p.Z}
}

// Neighbors8 returns the eight Chebyshev-adjacent tiles around p, in the
// All8 order.
func Neighbors8(p Point) []Point {
	out := make([]Point, 0, 8)
	for _, d := range All8 {
		out = append(out, d.Neighbor(p))
	}
	return out
}

// DirTo returns the direction from a to b built from the signs of the X and
// Y deltas alone, so any b off both axes of a gives a diagonal (a delta of
// (5,1) gives DirSE, not DirE). Returns DirNone if a == b.
func DirTo(a, b Point) Dir {
	dx, dy := sign(b.X-a.X), sign(b.Y-a.Y)
	switch {
	case dx == 0 && dy == 0:
		return DirNone
	case dx == 0 && dy < 0:
		return DirN
	case dx > 0 && dy < 0:
		return DirNE
	case dx > 0 && dy == 0:
		return DirE
	case dx > 0 && dy > 0:
		return DirSE
	case dx == 0 && dy > 0:
		return DirS
	case dx < 0 && dy > 0:
		return DirSW
	case dx < 0 && dy == 0:
		return DirW
	default:
		return DirNW
	}
}

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Chebyshev returns the Chebyshev (king-move) distance between a and b —
// the distance metric gameplay logic uses throughout (movement cost,
// attack range, AOI radius).
func Chebyshev(a, b Point) int32 {
	dx, dy := absInt32(a.X-b.X), absInt32(a.Y-b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Euclidean returns the true distance between a and b, used only for
// display/messages, never for gameplay tie-breaking.
func Euclidean(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Manhattan returns the taxicab distance between a and b.
func Manhattan(a, b Point) int32 {
	return absInt32(a.X-b.X) + absInt32(a.Y-b.Y)
}
