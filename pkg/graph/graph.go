package graph

import (
	"errors"
	"iter"

	osmparser "osm_spt/pkg/osm"
)

// ErrInvalidWeight is returned for edge weights that are negative or not finite.
var ErrInvalidWeight = errors.New("invalid edge weight")

// Graph represents a directed graph in CSR (Compressed Sparse Row) format.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	Weight   []uint32  // len: NumEdges; distance in millimeters
	NodeLat  []float64 // len: NumNodes
	NodeLon  []float64 // len: NumNodes

	// Edge geometry: intermediate shape nodes for rendering.
	// GeoFirstOut[i]..GeoFirstOut[i+1] indexes into GeoShapeLat/Lon for edge i.
	GeoFirstOut []uint32  // len: NumEdges + 1
	GeoShapeLat []float64 // flattened intermediate lat coords
	GeoShapeLon []float64 // flattened intermediate lon coords
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// Vertices returns every node index in ascending order.
func (g *Graph) Vertices() []uint32 {
	vs := make([]uint32, g.NumNodes)
	for i := range vs {
		vs[i] = uint32(i)
	}
	return vs
}

func (g *Graph) HasVertex(v uint32) bool { return v < g.NumNodes }

// Neighbors yields the targets of u's outgoing edges with their weight in meters.
func (g *Graph) Neighbors(u uint32) iter.Seq2[uint32, float64] {
	return func(yield func(uint32, float64) bool) {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			if !yield(g.Head[e], float64(g.Weight[e])/1000) {
				return
			}
		}
	}
}

// FindEdge returns the index of the lightest edge u→v, or false if there is none.
func (g *Graph) FindEdge(u, v uint32) (uint32, bool) {
	best, found := uint32(0), false
	start, end := g.EdgesFrom(u)
	for e := start; e < end; e++ {
		if g.Head[e] == v && (!found || g.Weight[e] < g.Weight[best]) {
			best, found = e, true
		}
	}
	return best, found
}

// Coord returns the latitude and longitude of node v.
func (g *Graph) Coord(v uint32) (lat, lon float64) {
	return g.NodeLat[v], g.NodeLon[v]
}

// Bounds returns the extent of the node coordinates, or the zero BBox for an
// empty graph.
func (g *Graph) Bounds() osmparser.BBox {
	if g.NumNodes == 0 {
		return osmparser.BBox{}
	}
	b := osmparser.PointBox(g.Coord(0))
	for v := uint32(1); v < g.NumNodes; v++ {
		b = b.Extend(g.Coord(v))
	}
	return b
}

// Shape returns the intermediate shape points of edge e, excluding its endpoints.
func (g *Graph) Shape(e uint32) (lats, lons []float64) {
	if g.GeoFirstOut == nil || e >= uint32(len(g.GeoFirstOut)-1) {
		return nil, nil
	}
	start, end := g.GeoFirstOut[e], g.GeoFirstOut[e+1]
	return g.GeoShapeLat[start:end], g.GeoShapeLon[start:end]
}
