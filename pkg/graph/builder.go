package graph

import (
	"cmp"
	"slices"

	"github.com/paulmach/osm"

	osmparser "osm_spt/pkg/osm"
)

// arc is one directed edge in compact vertex numbering, before CSR layout.
type arc struct {
	from, to, weight uint32
	lats, lons       []float64
}

// Build creates a CSR Graph from parsed OSM edges. Vertices are numbered in
// order of first appearance; arcs out of a vertex are ordered by head.
func Build(result *osmparser.ParseResult) *Graph {
	if len(result.Edges) == 0 {
		return &Graph{}
	}

	index := make(map[osm.NodeID]uint32)
	var ids []osm.NodeID
	vertex := func(id osm.NodeID) uint32 {
		if v, ok := index[id]; ok {
			return v
		}
		v := uint32(len(ids))
		index[id] = v
		ids = append(ids, id)
		return v
	}

	arcs := make([]arc, len(result.Edges))
	for i, e := range result.Edges {
		arcs[i] = arc{
			from:   vertex(e.FromNodeID),
			to:     vertex(e.ToNodeID),
			weight: e.Weight,
			lats:   e.ShapeLats,
			lons:   e.ShapeLons,
		}
	}
	slices.SortStableFunc(arcs, func(a, b arc) int {
		if c := cmp.Compare(a.from, b.from); c != 0 {
			return c
		}
		return cmp.Compare(a.to, b.to)
	})

	lat := make([]float64, len(ids))
	lon := make([]float64, len(ids))
	for v, id := range ids {
		lat[v] = result.NodeLat[id]
		lon[v] = result.NodeLon[id]
	}
	return assemble(lat, lon, arcs)
}

// assemble lays arcs out in CSR form. Arcs sharing a tail keep their
// relative order.
func assemble(lat, lon []float64, arcs []arc) *Graph {
	n := uint32(len(lat))
	m := uint32(len(arcs))

	g := &Graph{
		NumNodes:    n,
		NumEdges:    m,
		FirstOut:    make([]uint32, n+1),
		Head:        make([]uint32, m),
		Weight:      make([]uint32, m),
		NodeLat:     lat,
		NodeLon:     lon,
		GeoFirstOut: make([]uint32, m+1),
	}

	for _, a := range arcs {
		g.FirstOut[a.from+1]++
	}
	for v := uint32(1); v <= n; v++ {
		g.FirstOut[v] += g.FirstOut[v-1]
	}

	next := slices.Clone(g.FirstOut[:n])
	slot := make([]uint32, m)
	for i, a := range arcs {
		e := next[a.from]
		next[a.from]++
		g.Head[e] = a.to
		g.Weight[e] = a.weight
		slot[e] = uint32(i)
	}

	// Shape points follow edge order so GeoFirstOut stays monotonic.
	for e := uint32(0); e < m; e++ {
		a := arcs[slot[e]]
		g.GeoFirstOut[e] = uint32(len(g.GeoShapeLat))
		g.GeoShapeLat = append(g.GeoShapeLat, a.lats...)
		g.GeoShapeLon = append(g.GeoShapeLon, a.lons...)
	}
	g.GeoFirstOut[m] = uint32(len(g.GeoShapeLat))

	return g
}
