package routing

import (
	"context"
	"errors"
	"fmt"

	"osm_spt/pkg/geo"
	"osm_spt/pkg/graph"
	"osm_spt/pkg/pq"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// RouteResult is the output of a route query.
type RouteResult struct {
	Source              uint32
	Target              uint32
	TotalDistanceMeters float64
	Nodes               []uint32
	Geometry            []LatLng
}

// Router is the interface for route and tree queries.
type Router interface {
	Route(ctx context.Context, start, end LatLng) (*RouteResult, error)
	Tree(ctx context.Context, origin LatLng) (*Tree[uint32], error)
	Snap(p LatLng) (uint32, error)
	Graph() *graph.Graph
	Queue() pq.Kind
}

// Engine implements Router with ShortestPath over a road graph.
type Engine struct {
	g       *graph.Graph
	locator Locator
	queue   pq.Kind
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLocator replaces the default R-tree locator.
func WithLocator(l Locator) EngineOption {
	return func(e *Engine) { e.locator = l }
}

// WithEngineQueue selects the priority queue used by every query.
func WithEngineQueue(k pq.Kind) EngineOption {
	return func(e *Engine) { e.queue = k }
}

// NewEngine creates a routing engine over g. Weights of a built graph are
// unsigned integers, so queries skip the weight pre-scan.
func NewEngine(g *graph.Graph, opts ...EngineOption) *Engine {
	e := &Engine{g: g, queue: pq.Binary}
	for _, opt := range opts {
		opt(e)
	}
	if e.locator == nil {
		e.locator = NewRTreeLocator(g)
	}
	return e
}

func (e *Engine) Graph() *graph.Graph { return e.g }

func (e *Engine) Queue() pq.Kind { return e.queue }

// Route computes the shortest path between the vertices nearest to start and end.
func (e *Engine) Route(ctx context.Context, start, end LatLng) (*RouteResult, error) {
	src, err := e.Snap(start)
	if err != nil {
		return nil, err
	}
	dst, err := e.Snap(end)
	if err != nil {
		return nil, err
	}

	tree, err := e.run(ctx, src)
	if err != nil {
		return nil, err
	}
	nodes, err := tree.PathTo(dst)
	if err != nil {
		return nil, err
	}

	return &RouteResult{
		Source:              src,
		Target:              dst,
		TotalDistanceMeters: tree.Dist[dst],
		Nodes:               nodes,
		Geometry:            e.buildGeometry(nodes),
	}, nil
}

// Tree computes the shortest-path tree rooted at the vertex nearest to origin.
func (e *Engine) Tree(ctx context.Context, origin LatLng) (*Tree[uint32], error) {
	root, err := e.Snap(origin)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, root)
}

func (e *Engine) run(ctx context.Context, root uint32) (*Tree[uint32], error) {
	tree, err := ShortestPath[uint32](ctx, e.g, root, WithQueue(e.queue), WithTrustedWeights())
	if err != nil {
		return nil, fmt.Errorf("shortest path from %d: %w", root, err)
	}
	return tree, nil
}

// Snap resolves p to its nearest vertex, rejecting points off the network.
func (e *Engine) Snap(p LatLng) (uint32, error) {
	v, err := e.locator.Nearest(p.Lat, p.Lng)
	if err != nil {
		return 0, err
	}
	lat, lng := e.g.Coord(v)
	if geo.EquirectangularDist(p.Lat, p.Lng, lat, lng) > maxSnapDistMeters {
		return 0, ErrPointTooFar
	}
	return v, nil
}

// buildGeometry converts a sequence of node IDs into lat/lng coordinates,
// including intermediate shape points from edge geometry.
func (e *Engine) buildGeometry(nodes []uint32) []LatLng {
	if len(nodes) == 0 {
		return nil
	}

	g := e.g
	geom := []LatLng{{Lat: g.NodeLat[nodes[0]], Lng: g.NodeLon[nodes[0]]}}

	for i := 0; i < len(nodes)-1; i++ {
		u := nodes[i]
		v := nodes[i+1]

		if edge, ok := g.FindEdge(u, v); ok {
			lats, lons := g.Shape(edge)
			for k := range lats {
				geom = append(geom, LatLng{Lat: lats[k], Lng: lons[k]})
			}
		}

		geom = append(geom, LatLng{Lat: g.NodeLat[v], Lng: g.NodeLon[v]})
	}

	return geom
}
