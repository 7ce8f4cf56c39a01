package style

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"osm_spt/pkg/graph"
)

// FeatureCollection renders a styled road graph as GeoJSON. Colours use the
// simplestyle properties understood by common map viewers: vertices become
// Points with "marker-color" and edges become LineStrings with "stroke".
//
// Two opposite edges with the same endpoints are drawn once; Black wins
// over any other colour so a highlighted path is never hidden.
func FeatureCollection(g *graph.Graph, s Styling[uint32]) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	type pair struct{ a, b uint32 }
	drawn := make(map[pair]*geojson.Feature)

	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			c, ok := s.Edges[Edge[uint32]{From: u, To: v}]
			if !ok {
				continue
			}

			key := pair{u, v}
			if v < u {
				key = pair{v, u}
			}
			if f, seen := drawn[key]; seen {
				if c == Black {
					f.Properties["stroke"] = c.Hex()
				}
				continue
			}

			f := geojson.NewFeature(edgeLine(g, u, v, e))
			f.Properties["stroke"] = c.Hex()
			f.Properties["from"] = u
			f.Properties["to"] = v
			f.Properties["length_m"] = float64(g.Weight[e]) / 1000
			drawn[key] = f
			fc.Append(f)
		}
	}

	for v := uint32(0); v < g.NumNodes; v++ {
		c, ok := s.Vertices[v]
		if !ok {
			continue
		}
		lat, lng := g.Coord(v)
		f := geojson.NewFeature(orb.Point{lng, lat})
		f.Properties["marker-color"] = c.Hex()
		f.Properties["marker-size"] = "small"
		f.Properties["node"] = v
		fc.Append(f)
	}

	return fc
}

func edgeLine(g *graph.Graph, u, v, e uint32) orb.LineString {
	lats, lons := g.Shape(e)
	line := make(orb.LineString, 0, len(lats)+2)
	line = append(line, orb.Point{g.NodeLon[u], g.NodeLat[u]})
	for i := range lats {
		line = append(line, orb.Point{lons[i], lats[i]})
	}
	return append(line, orb.Point{g.NodeLon[v], g.NodeLat[v]})
}
