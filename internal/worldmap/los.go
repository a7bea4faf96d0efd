package worldmap

import "github.com/ashgo/ashfall/internal/geom"

// LineTo traces a Bresenham-style line from a to b and returns every
// intermediate tile in order, a exclusive and b inclusive — matching the
// tie-break behavior of the original line_to() (spec §4.1 Line of sight).
func LineTo(a, b geom.Point) []geom.Point {
	dx := b.X - a.X
	dy := b.Y - a.Y
	nx, ny := absI32(dx), absI32(dy)
	sx, sy := sign32(dx), sign32(dy)

	points := make([]geom.Point, 0, maxI32(nx, ny))
	x, y := a.X, a.Y

	if nx >= ny {
		// x-major: step x every iteration, accumulate error to decide y steps.
		minorShift := ny*2 - nx
		for ix := int32(0); ix < nx; ix++ {
			x += sx
			if minorShift >= 0 {
				y += sy
				minorShift -= nx * 2
			}
			minorShift += ny * 2
			points = append(points, geom.Point{X: x, Y: y, Z: a.Z})
		}
	} else {
		minorShift := nx*2 - ny
		for iy := int32(0); iy < ny; iy++ {
			y += sy
			if minorShift >= 0 {
				x += sx
				minorShift -= ny * 2
			}
			minorShift += nx * 2
			points = append(points, geom.Point{X: x, Y: y, Z: a.Z})
		}
	}
	return points
}

// SightClear reports whether every tile strictly between from and to (both
// endpoints excluded) is transparent — a straight unobstructed line of
// sight.
func (b *Bubble) SightClear(from, to geom.Point) bool {
	for _, p := range LineTo(from, to) {
		if p == to {
			continue // the destination tile itself need not be transparent
		}
		if !b.IsTransparent(p) {
			return false
		}
	}
	return true
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign32(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
