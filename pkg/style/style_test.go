package style

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osm_spt/pkg/graph"
)

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ff0000", Red.Hex())
	assert.Equal(t, "#000000", Black.Hex())
	assert.Equal(t, "#d3d3d3", LightGray.Hex())
	assert.Equal(t, "#0a0b0c", Color{R: 10, G: 11, B: 12}.Hex())
}

func TestDistanceGradient(t *testing.T) {
	colors := DistanceGradient(map[string]float64{
		"root": 0,
		"mid":  5,
		"far":  10,
		"lost": math.Inf(1),
	})

	assert.Equal(t, Color{B: 255}, colors["root"])
	assert.Equal(t, Color{R: 128, B: 127}, colors["mid"])
	assert.Equal(t, Color{R: 255}, colors["far"])
	assert.Equal(t, Red, colors["lost"])
}

func TestDistanceGradientOnlyRoot(t *testing.T) {
	colors := DistanceGradient(map[int]float64{1: 0, 2: math.Inf(1)})
	assert.Equal(t, Color{B: 255}, colors[1])
	assert.Equal(t, Red, colors[2])
}

func TestHighlightPath(t *testing.T) {
	g := graph.NewAdjacency[string]()
	require.NoError(t, g.AddEdge("A", "B", 1))
	require.NoError(t, g.AddEdge("B", "C", 2))
	require.NoError(t, g.AddEdge("A", "C", 4))
	require.NoError(t, g.AddEdge("C", "D", 1))

	parent := map[string]string{"B": "A", "C": "B", "D": "C"}
	s := HighlightPath[string](g, parent, "C")

	assert.Equal(t, map[string]Color{"A": Black, "B": Black, "C": Black, "D": LightGray}, s.Vertices)
	assert.Equal(t, map[Edge[string]]Color{
		{From: "A", To: "B"}: Black,
		{From: "B", To: "C"}: Black,
		{From: "A", To: "C"}: LightGray,
		{From: "C", To: "D"}: LightGray,
	}, s.Edges)
}

func TestHighlightPathUnknownDest(t *testing.T) {
	g := graph.NewAdjacency[int]()
	g.AddVertex(1)
	s := HighlightPath[int](g, nil, 42)
	assert.Equal(t, map[int]Color{1: LightGray}, s.Vertices)
}

func TestRootStyle(t *testing.T) {
	s := RootStyle(3)
	assert.Equal(t, map[int]Color{3: Red}, s.Vertices)
	assert.Empty(t, s.Edges)
}

// twoNodeGraph is 0 <-> 1 with one shape point on 0→1.
func twoNodeGraph() *graph.Graph {
	return &graph.Graph{
		NumNodes:    2,
		NumEdges:    2,
		FirstOut:    []uint32{0, 1, 2},
		Head:        []uint32{1, 0},
		Weight:      []uint32{1500, 1500},
		NodeLat:     []float64{1.300, 1.301},
		NodeLon:     []float64{103.800, 103.801},
		GeoFirstOut: []uint32{0, 1, 1},
		GeoShapeLat: []float64{1.3005},
		GeoShapeLon: []float64{103.8004},
	}
}

func TestFeatureCollection(t *testing.T) {
	g := twoNodeGraph()
	s := newStyling[uint32]()
	s.Vertices[0] = Red
	s.Edges[Edge[uint32]{From: 1, To: 0}] = LightGray
	s.Edges[Edge[uint32]{From: 0, To: 1}] = Black

	fc := FeatureCollection(g, s)
	require.Len(t, fc.Features, 2)

	line := fc.Features[0]
	assert.Equal(t, orb.LineString{{103.800, 1.300}, {103.8004, 1.3005}, {103.801, 1.301}}, line.Geometry)
	assert.Equal(t, "#000000", line.Properties["stroke"])
	assert.Equal(t, 1.5, line.Properties["length_m"])

	point := fc.Features[1]
	assert.Equal(t, orb.Point{103.800, 1.300}, point.Geometry)
	assert.Equal(t, "#ff0000", point.Properties["marker-color"])
}

func TestFeatureCollectionBlackWinsOverReverse(t *testing.T) {
	g := twoNodeGraph()
	s := newStyling[uint32]()
	s.Edges[Edge[uint32]{From: 0, To: 1}] = LightGray
	s.Edges[Edge[uint32]{From: 1, To: 0}] = Black

	fc := FeatureCollection(g, s)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "#000000", fc.Features[0].Properties["stroke"])
}

func TestFeatureCollectionGradient(t *testing.T) {
	g := twoNodeGraph()
	fc := FeatureCollection(g, Gradient(map[uint32]float64{0: 0, 1: 1.5}))
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "#0000ff", fc.Features[0].Properties["marker-color"])
	assert.Equal(t, "#ff0000", fc.Features[1].Properties["marker-color"])
}
