package graph

import (
	"fmt"
	"iter"
	"math"
)

// Adjacency is a weighted directed graph over arbitrary comparable vertex
// identifiers. Weights are checked when edges are added, so a populated
// Adjacency never holds a negative or non-finite weight.
//
// An Adjacency must not be mutated while a traversal is reading it; any number
// of concurrent readers is fine.
type Adjacency[V comparable] struct {
	order []V
	out   map[V]*arcs[V]
	edges int
}

// arcs holds the outgoing edges of one vertex in insertion order.
type arcs[V comparable] struct {
	to     []V
	weight []float64
	pos    map[V]int
}

// NewAdjacency returns an empty graph.
func NewAdjacency[V comparable]() *Adjacency[V] {
	return &Adjacency[V]{out: make(map[V]*arcs[V])}
}

// AddVertex adds v if it is not already present.
func (a *Adjacency[V]) AddVertex(v V) {
	if _, ok := a.out[v]; ok {
		return
	}
	a.out[v] = &arcs[V]{pos: make(map[V]int)}
	a.order = append(a.order, v)
}

// AddEdge sets the weight of u→v, adding missing endpoints. Adding an existing
// edge replaces its weight.
func (a *Adjacency[V]) AddEdge(u, v V, w float64) error {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: edge %v→%v weight=%v", ErrInvalidWeight, u, v, w)
	}
	a.AddVertex(u)
	a.AddVertex(v)
	au := a.out[u]
	if i, ok := au.pos[v]; ok {
		au.weight[i] = w
		return nil
	}
	au.pos[v] = len(au.to)
	au.to = append(au.to, v)
	au.weight = append(au.weight, w)
	a.edges++
	return nil
}

// AddUndirectedEdge adds u→v and v→u with the same weight.
func (a *Adjacency[V]) AddUndirectedEdge(u, v V, w float64) error {
	if err := a.AddEdge(u, v, w); err != nil {
		return err
	}
	return a.AddEdge(v, u, w)
}

// Weight returns the weight of u→v and whether the edge exists.
func (a *Adjacency[V]) Weight(u, v V) (float64, bool) {
	au, ok := a.out[u]
	if !ok {
		return 0, false
	}
	i, ok := au.pos[v]
	if !ok {
		return 0, false
	}
	return au.weight[i], true
}

// Vertices returns the vertices in insertion order.
func (a *Adjacency[V]) Vertices() []V {
	return append([]V(nil), a.order...)
}

func (a *Adjacency[V]) HasVertex(v V) bool {
	_, ok := a.out[v]
	return ok
}

func (a *Adjacency[V]) Neighbors(u V) iter.Seq2[V, float64] {
	return func(yield func(V, float64) bool) {
		au, ok := a.out[u]
		if !ok {
			return
		}
		for i, v := range au.to {
			if !yield(v, au.weight[i]) {
				return
			}
		}
	}
}

func (a *Adjacency[V]) NumVertices() int { return len(a.order) }

func (a *Adjacency[V]) NumEdges() int { return a.edges }
