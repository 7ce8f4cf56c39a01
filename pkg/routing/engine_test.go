package routing

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osm_spt/pkg/graph"
	osmparser "osm_spt/pkg/osm"
	"osm_spt/pkg/pq"
)

// buildTestGraph creates a small road grid.
//
//	0 ---100--- 1 ---200--- 2
//	|                       |
//	300                    400
//	|                       |
//	3 ---500--- 4 ---600--- 5
//
// All edges bidirectional. Weights in millimeters.
func buildTestGraph(t testing.TB) *graph.Graph {
	t.Helper()
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 20, ToNodeID: 10, Weight: 100},
			{FromNodeID: 20, ToNodeID: 30, Weight: 200, ShapeLats: []float64{1.3}, ShapeLons: []float64{103.8015}},
			{FromNodeID: 30, ToNodeID: 20, Weight: 200},
			{FromNodeID: 10, ToNodeID: 40, Weight: 300},
			{FromNodeID: 40, ToNodeID: 10, Weight: 300},
			{FromNodeID: 30, ToNodeID: 60, Weight: 400},
			{FromNodeID: 60, ToNodeID: 30, Weight: 400},
			{FromNodeID: 40, ToNodeID: 50, Weight: 500},
			{FromNodeID: 50, ToNodeID: 40, Weight: 500},
			{FromNodeID: 50, ToNodeID: 60, Weight: 600},
			{FromNodeID: 60, ToNodeID: 50, Weight: 600},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.300, 20: 1.300, 30: 1.300, 40: 1.301, 50: 1.301, 60: 1.301},
		NodeLon: map[osm.NodeID]float64{10: 103.800, 20: 103.801, 30: 103.802, 40: 103.800, 50: 103.801, 60: 103.802},
	}
	return graph.Build(result)
}

// nodeAt returns the compact index of the node at (lat, lng).
func nodeAt(t testing.TB, g *graph.Graph, lat, lng float64) uint32 {
	t.Helper()
	for v := uint32(0); v < g.NumNodes; v++ {
		if g.NodeLat[v] == lat && g.NodeLon[v] == lng {
			return v
		}
	}
	t.Fatalf("no node at %f,%f", lat, lng)
	return 0
}

func TestLocatorsAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	g := &graph.Graph{NumNodes: 500}
	for v := 0; v < 500; v++ {
		g.NodeLat = append(g.NodeLat, 1.2+rng.Float64()*0.3)
		g.NodeLon = append(g.NodeLon, 103.6+rng.Float64()*0.4)
	}

	scan := NewScanLocator(g)
	tree := NewRTreeLocator(g)

	for i := 0; i < 200; i++ {
		lat, lng := 1.15+rng.Float64()*0.4, 103.55+rng.Float64()*0.5
		want, err := scan.Nearest(lat, lng)
		require.NoError(t, err)
		got, err := tree.Nearest(lat, lng)
		require.NoError(t, err)
		assert.Equal(t, want, got, "query %f,%f", lat, lng)
	}
}

func TestLocatorExactVertex(t *testing.T) {
	g := buildTestGraph(t)
	want := nodeAt(t, g, 1.301, 103.801)

	for _, kind := range []LocatorKind{LocatorScan, LocatorRTree} {
		l, err := NewLocator(kind, g)
		require.NoError(t, err)
		got, err := l.Nearest(1.301, 103.801)
		require.NoError(t, err)
		assert.Equal(t, want, got, string(kind))
	}
}

func TestLocatorEmptyGraph(t *testing.T) {
	g := &graph.Graph{}
	_, err := NewScanLocator(g).Nearest(1.3, 103.8)
	assert.ErrorIs(t, err, ErrEmptyGraph)
	_, err = NewRTreeLocator(g).Nearest(1.3, 103.8)
	assert.ErrorIs(t, err, ErrEmptyGraph)
}

func TestParseLocatorKind(t *testing.T) {
	k, err := ParseLocatorKind("scan")
	require.NoError(t, err)
	assert.Equal(t, LocatorScan, k)

	_, err = ParseLocatorKind("grid")
	assert.ErrorIs(t, err, ErrUnknownLocator)

	_, err = NewLocator("grid", &graph.Graph{})
	assert.ErrorIs(t, err, ErrUnknownLocator)
}

func TestRouteEndToEnd(t *testing.T) {
	g := buildTestGraph(t)

	for _, k := range queueKinds {
		t.Run(k.String(), func(t *testing.T) {
			eng := NewEngine(g, WithEngineQueue(k))
			assert.Equal(t, k, eng.Queue())

			result, err := eng.Route(context.Background(),
				LatLng{Lat: 1.300, Lng: 103.800}, // node 10
				LatLng{Lat: 1.301, Lng: 103.802}, // node 60
			)
			require.NoError(t, err)

			// 10→20→30→60 = 0.7 m beats 10→40→50→60 = 1.4 m.
			assert.InDelta(t, 0.7, result.TotalDistanceMeters, 1e-9)
			assert.Equal(t, []uint32{
				nodeAt(t, g, 1.300, 103.800),
				nodeAt(t, g, 1.300, 103.801),
				nodeAt(t, g, 1.300, 103.802),
				nodeAt(t, g, 1.301, 103.802),
			}, result.Nodes)

			// Four nodes plus one shape point on 20→30.
			require.Len(t, result.Geometry, 5)
			assert.Equal(t, LatLng{Lat: 1.3, Lng: 103.8015}, result.Geometry[2])
			assert.Equal(t, LatLng{Lat: 1.301, Lng: 103.802}, result.Geometry[4])
		})
	}
}

func TestRouteSamePoint(t *testing.T) {
	eng := NewEngine(buildTestGraph(t), WithLocator(NewScanLocator(buildTestGraph(t))))
	p := LatLng{Lat: 1.300, Lng: 103.801}

	result, err := eng.Route(context.Background(), p, p)
	require.NoError(t, err)
	assert.Zero(t, result.TotalDistanceMeters)
	assert.Len(t, result.Nodes, 1)
	assert.Len(t, result.Geometry, 1)
}

func TestRoutePointTooFar(t *testing.T) {
	eng := NewEngine(buildTestGraph(t))
	_, err := eng.Route(context.Background(),
		LatLng{Lat: 1.300, Lng: 103.800},
		LatLng{Lat: 1.400, Lng: 103.900},
	)
	assert.ErrorIs(t, err, ErrPointTooFar)
}

func TestRouteNoRoute(t *testing.T) {
	// 10→20 one way only.
	g := graph.Build(&osmparser.ParseResult{
		Edges:   []osmparser.RawEdge{{FromNodeID: 10, ToNodeID: 20, Weight: 1000}},
		NodeLat: map[osm.NodeID]float64{10: 1.300, 20: 1.300},
		NodeLon: map[osm.NodeID]float64{10: 103.800, 20: 103.801},
	})
	eng := NewEngine(g)

	_, err := eng.Route(context.Background(),
		LatLng{Lat: 1.300, Lng: 103.801},
		LatLng{Lat: 1.300, Lng: 103.800},
	)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestEngineTree(t *testing.T) {
	g := buildTestGraph(t)
	eng := NewEngine(g, WithEngineQueue(pq.Fibonacci))

	tree, err := eng.Tree(context.Background(), LatLng{Lat: 1.300, Lng: 103.800})
	require.NoError(t, err)

	assert.Equal(t, nodeAt(t, g, 1.300, 103.800), tree.Root)
	assert.Len(t, tree.Dist, int(g.NumNodes))
	assert.Len(t, tree.Parent, int(g.NumNodes)-1)
	assert.InDelta(t, 0.8, tree.MaxDistance(), 1e-9) // 10→40→50
}

func BenchmarkRoute(b *testing.B) {
	eng := NewEngine(buildTestGraph(b))
	ctx := context.Background()
	start := LatLng{Lat: 1.300, Lng: 103.800}
	end := LatLng{Lat: 1.301, Lng: 103.802}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = eng.Route(ctx, start, end)
	}
}
