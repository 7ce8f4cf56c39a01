package routing

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"

	"osm_spt/pkg/graph"
	"osm_spt/pkg/pq"
)

// ErrUnknownVertex is returned when a vertex is not part of the graph.
var ErrUnknownVertex = errors.New("unknown vertex")

// checkInterval is the number of extractions between context checks.
const checkInterval = 1024

// Graph is the read-only view of a weighted graph consumed by ShortestPath.
// Neighbors yields every edge leaving u with its weight; an edge that is
// absent is simply not yielded.
//
// ShortestPath never mutates a Graph, so one Graph may serve any number of
// concurrent runs as long as nothing else modifies it meanwhile.
type Graph[V comparable] interface {
	Vertices() []V
	HasVertex(v V) bool
	Neighbors(u V) iter.Seq2[V, float64]
}

type options struct {
	queue   pq.Kind
	trusted bool
}

// Option configures ShortestPath.
type Option func(*options)

// WithQueue selects the priority queue backend. The default is pq.Binary.
func WithQueue(k pq.Kind) Option {
	return func(o *options) { o.queue = k }
}

// WithTrustedWeights skips the weight pre-scan. Use it only for graphs whose
// weights were validated when they were built.
func WithTrustedWeights() Option {
	return func(o *options) { o.trusted = true }
}

// ShortestPath computes single-source shortest paths from root with
// Dijkstra's algorithm. Every edge weight must be non-negative.
//
// Decrease-key is simulated: an improved vertex is pushed again and the older,
// larger entry is skipped when it surfaces.
//
// Errors: ErrUnknownVertex if root (or the target of some edge) is not in the
// graph, graph.ErrInvalidWeight if any weight is negative or NaN, and
// ctx.Err() if ctx is done before the run completes. No partial Tree is ever
// returned.
func ShortestPath[V comparable](ctx context.Context, g Graph[V], root V, opts ...Option) (*Tree[V], error) {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	if !g.HasVertex(root) {
		return nil, fmt.Errorf("%w: root %v", ErrUnknownVertex, root)
	}

	vertices := g.Vertices()
	if !cfg.trusted {
		if err := validate(g, vertices); err != nil {
			return nil, err
		}
	}

	dist := make(map[V]float64, len(vertices))
	for _, v := range vertices {
		dist[v] = math.Inf(1)
	}
	dist[root] = 0
	parent := make(map[V]V)

	q := pq.New[V](cfg.queue)
	q.Insert(0, root)

	iterations := 0
	for !q.IsEmpty() {
		iterations++
		if iterations%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		d, u, err := q.ExtractMin()
		if err != nil {
			return nil, fmt.Errorf("extract from non-empty queue: %w", err)
		}
		if d > dist[u] {
			continue // stale entry
		}

		for v, w := range g.Neighbors(u) {
			candidate := d + w
			if candidate < dist[v] {
				dist[v] = candidate
				parent[v] = u
				q.Insert(candidate, v)
			}
		}
	}

	return &Tree[V]{Root: root, Dist: dist, Parent: parent}, nil
}

// validate rejects negative or NaN weights and edges leaving the vertex set
// before any distance is computed.
func validate[V comparable](g Graph[V], vertices []V) error {
	for _, u := range vertices {
		for v, w := range g.Neighbors(u) {
			if w < 0 || math.IsNaN(w) {
				return fmt.Errorf("%w: edge %v→%v weight=%v", graph.ErrInvalidWeight, u, v, w)
			}
			if !g.HasVertex(v) {
				return fmt.Errorf("%w: edge %v→%v leaves the graph", ErrUnknownVertex, u, v)
			}
		}
	}
	return nil
}
