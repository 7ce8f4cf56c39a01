package graph

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	osmparser "osm_spt/pkg/osm"
)

// assertCSR checks the structural invariants every built graph must hold.
func assertCSR(t *testing.T, g *Graph) {
	t.Helper()
	require.Len(t, g.FirstOut, int(g.NumNodes)+1)
	require.Len(t, g.Head, int(g.NumEdges))
	require.Len(t, g.Weight, int(g.NumEdges))
	require.Len(t, g.GeoFirstOut, int(g.NumEdges)+1)

	assert.Zero(t, g.FirstOut[0])
	assert.Equal(t, g.NumEdges, g.FirstOut[g.NumNodes])
	for v := uint32(1); v <= g.NumNodes; v++ {
		assert.LessOrEqual(t, g.FirstOut[v-1], g.FirstOut[v], "FirstOut not monotonic at %d", v)
	}
	for e := uint32(1); e <= g.NumEdges; e++ {
		assert.LessOrEqual(t, g.GeoFirstOut[e-1], g.GeoFirstOut[e], "GeoFirstOut not monotonic at %d", e)
	}
	for e, h := range g.Head {
		assert.Less(t, h, g.NumNodes, "Head[%d]", e)
	}
}

func TestBuildTriangle(t *testing.T) {
	g := Build(&osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 100, ToNodeID: 200, Weight: 1000},
			{FromNodeID: 200, ToNodeID: 300, Weight: 2000},
			{FromNodeID: 300, ToNodeID: 100, Weight: 3000},
		},
		NodeLat: map[osm.NodeID]float64{100: 1.0, 200: 1.1, 300: 1.0},
		NodeLon: map[osm.NodeID]float64{100: 103.0, 200: 103.0, 300: 103.1},
	})

	require.Equal(t, uint32(3), g.NumNodes)
	require.Equal(t, uint32(3), g.NumEdges)
	assertCSR(t, g)

	for v := range g.NumNodes {
		start, end := g.EdgesFrom(v)
		assert.Equal(t, uint32(1), end-start, "out-degree of %d", v)
	}

	// Vertices are numbered by first appearance.
	lat, lon := g.Coord(1)
	assert.Equal(t, 1.1, lat)
	assert.Equal(t, 103.0, lon)

	got := map[uint32]float64{}
	for v, w := range g.Neighbors(2) {
		got[v] = w
	}
	assert.Equal(t, map[uint32]float64{0: 3}, got)
}

func TestBuildEmptyGraph(t *testing.T) {
	g := Build(&osmparser.ParseResult{
		NodeLat: map[osm.NodeID]float64{},
		NodeLon: map[osm.NodeID]float64{},
	})
	assert.Zero(t, g.NumNodes)
	assert.Zero(t, g.NumEdges)
}

func TestBuildSortsArcsByHead(t *testing.T) {
	g := Build(&osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 30, ToNodeID: 10, Weight: 50},
			{FromNodeID: 10, ToNodeID: 40, Weight: 300},
			{FromNodeID: 10, ToNodeID: 30, Weight: 200, ShapeLats: []float64{1.25, 1.3}, ShapeLons: []float64{103.25, 103.3}},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 1.3},
		NodeLon: map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 103.3},
	})
	assertCSR(t, g)

	// 10->0, 20->1, 30->2, 40->3
	start, end := g.EdgesFrom(0)
	assert.Equal(t, []uint32{1, 2, 3}, g.Head[start:end])
	assert.Equal(t, []uint32{100, 200, 300}, g.Weight[start:end])

	lats, lons := g.Shape(start + 1)
	assert.Equal(t, []float64{1.25, 1.3}, lats)
	assert.Equal(t, []float64{103.25, 103.3}, lons)

	lats, _ = g.Shape(start + 2)
	assert.Empty(t, lats)
}

func TestBuildParallelArcs(t *testing.T) {
	g := Build(&osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, Weight: 900},
			{FromNodeID: 1, ToNodeID: 2, Weight: 500},
			{FromNodeID: 2, ToNodeID: 1, Weight: 500},
		},
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.1},
		NodeLon: map[osm.NodeID]float64{1: 103.0, 2: 103.1},
	})
	require.Equal(t, uint32(3), g.NumEdges)
	assertCSR(t, g)

	e, ok := g.FindEdge(0, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(500), g.Weight[e])
}

func TestGraphBounds(t *testing.T) {
	assert.True(t, (&Graph{}).Bounds().IsZero())

	b := twoIslands().Bounds()
	assert.Equal(t, osmparser.BBox{MinLat: 1.0, MaxLat: 2.1, MinLng: 103.0, MaxLng: 104.1}, b)
	lat, lng := b.Center()
	assert.InDelta(t, 1.55, lat, 1e-9)
	assert.InDelta(t, 103.55, lng, 1e-9)
}
