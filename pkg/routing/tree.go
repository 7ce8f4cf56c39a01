package routing

import (
	"fmt"
	"math"
)

// Tree is the result of a ShortestPath run.
type Tree[V comparable] struct {
	Root V
	// Dist holds the shortest distance from Root for every vertex of the
	// graph; +Inf marks unreachable vertices.
	Dist map[V]float64
	// Parent maps each reachable vertex other than Root to its predecessor
	// on one shortest path. Root and unreachable vertices have no entry.
	Parent map[V]V
}

// Reachable reports whether v can be reached from Root.
func (t *Tree[V]) Reachable(v V) bool {
	d, ok := t.Dist[v]
	return ok && !math.IsInf(d, 1)
}

// ParentOf returns the predecessor of v, or false if v has none.
func (t *Tree[V]) ParentOf(v V) (V, bool) {
	p, ok := t.Parent[v]
	return p, ok
}

// PathTo returns the vertices of the shortest path from Root to v, inclusive.
func (t *Tree[V]) PathTo(v V) ([]V, error) {
	if _, ok := t.Dist[v]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownVertex, v)
	}
	if !t.Reachable(v) {
		return nil, ErrNoRoute
	}

	path := []V{v}
	for cur := v; cur != t.Root; {
		p, ok := t.Parent[cur]
		if !ok || len(path) > len(t.Dist) {
			return nil, fmt.Errorf("broken parent chain at %v", cur)
		}
		path = append(path, p)
		cur = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// MaxDistance returns the largest finite distance in the tree.
func (t *Tree[V]) MaxDistance() float64 {
	var max float64
	for _, d := range t.Dist {
		if !math.IsInf(d, 1) && d > max {
			max = d
		}
	}
	return max
}
