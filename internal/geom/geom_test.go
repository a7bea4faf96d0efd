package geom_test

import (
	"testing"

	"github.com/ashgo/ashfall/internal/geom"
)

func TestNeighborRoundTrip(t *testing.T) {
	origin := geom.Point{X: 5, Y: 5, Z: 0}
	for _, d := range geom.All8 {
		n := d.Neighbor(origin)
		if n == origin {
			t.Fatalf("direction %v produced no displacement", d)
		}
		if geom.Chebyshev(origin, n) != 1 {
			t.Fatalf("direction %v neighbor not Chebyshev-adjacent: %v", d, n)
		}
	}
}

func TestDirToMatchesNeighbor(t *testing.T) {
	origin := geom.Point{}
	for _, d := range geom.All8 {
		target := d.Neighbor(origin)
		if got := geom.DirTo(origin, target); got != d {
			t.Fatalf("DirTo(origin, %v) = %v, want %v", target, got, d)
		}
	}
}

func TestDirToSamePointIsNone(t *testing.T) {
	p := geom.Point{X: 3, Y: 4}
	if d := geom.DirTo(p, p); d != geom.DirNone {
		t.Fatalf("DirTo(p,p) = %v, want DirNone", d)
	}
}

func TestChebyshevVsManhattan(t *testing.T) {
	a := geom.Point{X: 0, Y: 0}
	b := geom.Point{X: 3, Y: 1}
	if got := geom.Chebyshev(a, b); got != 3 {
		t.Fatalf("Chebyshev = %d, want 3", got)
	}
	if got := geom.Manhattan(a, b); got != 4 {
		t.Fatalf("Manhattan = %d, want 4", got)
	}
}

func TestRectContains(t *testing.T) {
	r := geom.Rect{Min: geom.Point{X: 0, Y: 0}, Max: geom.Point{X: 10, Y: 10}}
	cases := []struct {
		p    geom.Point
		want bool
	}{
		{geom.Point{X: 0, Y: 0}, true},
		{geom.Point{X: 10, Y: 10}, true},
		{geom.Point{X: 11, Y: 5}, false},
		{geom.Point{X: 5, Y: -1}, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.p); got != c.want {
			t.Errorf("Contains(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestNeighbors8Count(t *testing.T) {
	ns := geom.Neighbors8(geom.Point{})
	if len(ns) != 8 {
		t.Fatalf("Neighbors8 returned %d points, want 8", len(ns))
	}
}
