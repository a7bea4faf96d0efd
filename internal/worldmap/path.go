package worldmap

import (
	"container/heap"

	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/geom"
)

// pathNode is one entry in the open set's priority queue.
type pathNode struct {
	p        geom.Point
	g        int // cost so far
	f        int // g + heuristic
	seq      int // insertion order, used to break ties LIFO
	index    int
}

type pathQueue []*pathNode

func (q pathQueue) Len() int { return len(q) }
func (q pathQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	// LIFO tie-break: the most recently inserted node wins, matching the
	// original pathfinder's stack-biased exploration order.
	return q[i].seq > q[j].seq
}
func (q pathQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *pathQueue) Push(x any) {
	n := x.(*pathNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *pathQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}

// FindPath runs A* from src to dst over the bubble's loaded tiles, 8
// directions per step, and returns the path from src exclusive to dst
// inclusive (spec §4.1 Pathfinding). Returns nil if no path exists or dst
// is unreachable within the loaded bubble.
func (b *Bubble) FindPath(src, dst geom.Point) []geom.Point {
	if src == dst {
		return nil
	}

	open := &pathQueue{}
	heap.Init(open)
	seq := 0
	push := func(p geom.Point, g int) {
		seq++
		heap.Push(open, &pathNode{p: p, g: g, f: g + 2*int(geom.Chebyshev(p, dst)), seq: seq})
	}
	push(src, 0)

	cameFrom := map[geom.Point]geom.Point{}
	bestG := map[geom.Point]int{src: 0}
	visited := map[geom.Point]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pathNode)
		if visited[cur.p] {
			continue
		}
		visited[cur.p] = true
		if cur.p == dst {
			return reconstructPath(cameFrom, src, dst)
		}
		for _, dir := range geom.All8 {
			next := dir.Neighbor(cur.p)
			if visited[next] {
				continue
			}
			cost, passable := b.stepCost(next)
			if !passable && next != dst {
				continue
			}
			g := cur.g + cost
			if prev, ok := bestG[next]; ok && prev <= g {
				continue
			}
			bestG[next] = g
			cameFrom[next] = cur.p
			push(next, g)
		}
	}
	return nil
}

// stepCost returns the move cost of entering p and whether it's passable
// at all. Closed (non-locked) doors cost +4 to account for the open
// action; bashable-but-impassable terrain (e.g. windows, weak walls)
// costs +18 to bias the planner toward going around unless bashing
// through is clearly shorter (spec §4.1 Pathfinding costs).
func (b *Bubble) stepCost(p geom.Point) (cost int, passable bool) {
	if !b.InBubble(p) {
		return 0, false
	}
	t := b.tileRef(p)
	if t == nil {
		return 0, false
	}
	td, ok := b.cat.TerrainByID(t.Terrain)
	if !ok {
		return 0, false
	}
	if td.Has(catalog.TerrainWalkable) {
		cost = td.MoveCost
		if cost <= 0 {
			cost = 2
		}
		if td.Has(catalog.TerrainDoor) && !td.Has(catalog.TerrainDoorLocked) {
			cost += 4
		}
		return cost, true
	}
	if td.Has(catalog.TerrainDoor) && !td.Has(catalog.TerrainDoorLocked) {
		// closed door: opened, then entered
		cost = td.MoveCost
		if cost <= 0 {
			cost = 2
		}
		return cost + 4, true
	}
	if td.Has(catalog.TerrainBashable) {
		return 18, true
	}
	return 0, false
}

func reconstructPath(cameFrom map[geom.Point]geom.Point, src, dst geom.Point) []geom.Point {
	var rev []geom.Point
	for cur := dst; cur != src; {
		rev = append(rev, cur)
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		cur = prev
	}
	out := make([]geom.Point, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}
