package style

import "osm_spt/pkg/routing"

// Edge identifies a directed edge.
type Edge[V comparable] struct {
	From, To V
}

// Styling assigns colours to vertices and edges. Elements without an entry
// are not drawn.
type Styling[V comparable] struct {
	Vertices map[V]Color
	Edges    map[Edge[V]]Color
}

func newStyling[V comparable]() Styling[V] {
	return Styling[V]{
		Vertices: make(map[V]Color),
		Edges:    make(map[Edge[V]]Color),
	}
}

// RootStyle marks only the root vertex.
func RootStyle[V comparable](root V) Styling[V] {
	s := newStyling[V]()
	s.Vertices[root] = Red
	return s
}

// Gradient wraps DistanceGradient as a vertex-only Styling.
func Gradient[V comparable](dist map[V]float64) Styling[V] {
	s := newStyling[V]()
	s.Vertices = DistanceGradient(dist)
	return s
}

// HighlightPath draws the whole graph LightGray and the parent chain from
// dest back to the root Black.
func HighlightPath[V comparable](g routing.Graph[V], parent map[V]V, dest V) Styling[V] {
	s := newStyling[V]()
	vertices := g.Vertices()
	for _, u := range vertices {
		s.Vertices[u] = LightGray
		for v := range g.Neighbors(u) {
			s.Edges[Edge[V]{From: u, To: v}] = LightGray
		}
	}

	if !g.HasVertex(dest) {
		return s
	}
	cur := dest
	s.Vertices[cur] = Black
	for steps := 0; steps < len(vertices); steps++ {
		p, ok := parent[cur]
		if !ok {
			break
		}
		s.Vertices[p] = Black
		s.Edges[Edge[V]{From: p, To: cur}] = Black
		cur = p
	}
	return s
}
