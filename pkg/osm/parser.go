package osm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"osm_spt/pkg/geo"
)

// ErrUnknownLevel is returned for a road level that names no major road class.
var ErrUnknownLevel = errors.New("unknown road level")

// RawEdge represents a directed edge parsed from OSM data.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Weight     uint32    // distance in millimeters
	ShapeLats  []float64 // intermediate shape node latitudes (excluding from/to)
	ShapeLons  []float64 // intermediate shape node longitudes (excluding from/to)
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// Bounds returns the extent of the collected node coordinates, or the zero
// BBox when no node was collected.
func (r *ParseResult) Bounds() BBox {
	var b BBox
	first := true
	for id, lat := range r.NodeLat {
		if first {
			b, first = PointBox(lat, r.NodeLon[id]), false
			continue
		}
		b = b.Extend(lat, r.NodeLon[id])
	}
	return b
}

// minorRank is shared by every drivable road below the tertiary class.
const minorRank = 5

// roadRanks holds every highway value a car may use, ranked by importance.
// Major classes can serve as a level; their _link roads share the rank.
var roadRanks = map[string]int{
	"motorway":      0,
	"trunk":         1,
	"primary":       2,
	"secondary":     3,
	"tertiary":      4,
	"unclassified":  minorRank,
	"residential":   minorRank,
	"living_street": minorRank,
	"service":       minorRank,
}

// roadRank returns the rank of a highway value and whether cars use it.
func roadRank(highway string) (int, bool) {
	if class, ok := strings.CutSuffix(highway, "_link"); ok {
		r, known := roadRanks[class]
		return r, known && r < minorRank
	}
	r, ok := roadRanks[highway]
	return r, ok
}

// ParseLevel validates a level name and returns the largest rank it keeps.
// The empty level keeps every drivable road.
func ParseLevel(level string) (int, error) {
	if level == "" {
		return minorRank, nil
	}
	r, ok := roadRanks[level]
	if !ok || r == minorRank {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
	return r, nil
}

// isCarAccessible reports whether the way is a drivable road open to cars.
func isCarAccessible(tags osm.Tags) bool {
	if _, ok := roadRank(tags.Find("highway")); !ok {
		return false
	}
	switch {
	case tags.Find("area") == "yes":
		return false
	case tags.Find("motor_vehicle") == "no":
		return false
	}
	access := tags.Find("access")
	return access != "no" && access != "private"
}

// onewayValues maps explicit oneway tags to (forward, backward).
// "reversible" changes direction over the day, so neither is usable.
var onewayValues = map[string][2]bool{
	"yes":        {true, false},
	"true":       {true, false},
	"1":          {true, false},
	"-1":         {false, true},
	"reverse":    {false, true},
	"no":         {true, true},
	"reversible": {false, false},
}

// directionFlags returns the directions a way may be driven in. Motorways
// and roundabouts are one-way unless tagged otherwise.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	if dir, ok := onewayValues[tags.Find("oneway")]; ok {
		return dir[0], dir[1]
	}
	hw := tags.Find("highway")
	implied := hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout"
	return true, !implied
}

// way is a drivable way kept by the first pass.
type way struct {
	nodes             []osm.NodeID
	forward, backward bool
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox BBox // if non-zero, keep only edges with both endpoints inside

	// Level keeps only roads of this class or a more important one
	// ("motorway", "trunk", "primary", "secondary", "tertiary").
	// Empty keeps every car-accessible road.
	Level string
}

// Parse reads an OSM PBF file and returns directed edges for car routing.
// The reader is scanned twice, ways first and then nodes.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	maxRank, err := ParseLevel(opt.Level)
	if err != nil {
		return nil, err
	}

	ways, referenced, err := scanWays(ctx, rs, maxRank, opt.Level)
	if err != nil {
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}
	result, err := scanNodes(ctx, rs, referenced)
	if err != nil {
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}

	result.Edges = buildEdges(ways, result, opt.BBox)
	return result, nil
}

// scanWays collects drivable ways at or above maxRank and the set of nodes
// they reference.
func scanWays(ctx context.Context, r io.Reader, maxRank int, level string) ([]way, map[osm.NodeID]struct{}, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	var ways []way
	referenced := make(map[osm.NodeID]struct{})
	belowLevel := 0

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 || !isCarAccessible(w.Tags) {
			continue
		}
		if rank, _ := roadRank(w.Tags.Find("highway")); rank > maxRank {
			belowLevel++
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		ids := w.Nodes.NodeIDs()
		for _, id := range ids {
			referenced[id] = struct{}{}
		}
		ways = append(ways, way{nodes: ids, forward: fwd, backward: bwd})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	if belowLevel > 0 {
		log.Printf("Dropped %d ways below level %q", belowLevel, level)
	}
	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referenced))
	return ways, referenced, nil
}

// scanNodes collects coordinates for the referenced nodes only.
func scanNodes(ctx context.Context, r io.Reader, referenced map[osm.NodeID]struct{}) (*ParseResult, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	result := &ParseResult{
		NodeLat: make(map[osm.NodeID]float64, len(referenced)),
		NodeLon: make(map[osm.NodeID]float64, len(referenced)),
	}
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; needed {
			result.NodeLat[n.ID] = n.Lat
			result.NodeLon[n.ID] = n.Lon
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	log.Printf("Pass 2 complete: %d node coordinates collected", len(result.NodeLat))
	return result, nil
}

// buildEdges splits ways into directed segments weighted by great-circle
// length in millimetres. Segments with an endpoint outside a non-zero bbox
// or without coordinates are dropped.
func buildEdges(ways []way, coords *ParseResult, bbox BBox) []RawEdge {
	var edges []RawEdge
	var missing, outside int

	for _, w := range ways {
		for i := range len(w.nodes) - 1 {
			from, to := w.nodes[i], w.nodes[i+1]
			fromLat, okFrom := coords.NodeLat[from]
			toLat, okTo := coords.NodeLat[to]
			if !okFrom || !okTo {
				missing++
				continue
			}
			fromLon, toLon := coords.NodeLon[from], coords.NodeLon[to]
			if !bbox.IsZero() && (!bbox.Contains(fromLat, fromLon) || !bbox.Contains(toLat, toLon)) {
				outside++
				continue
			}

			// Zero-length segments still cost 1 mm.
			weight := max(uint32(math.Round(geo.Haversine(fromLat, fromLon, toLat, toLon)*1000)), 1)
			if w.forward {
				edges = append(edges, RawEdge{FromNodeID: from, ToNodeID: to, Weight: weight})
			}
			if w.backward {
				edges = append(edges, RawEdge{FromNodeID: to, ToNodeID: from, Weight: weight})
			}
		}
	}

	if missing > 0 {
		log.Printf("Warning: skipped %d edges due to missing node coordinates", missing)
	}
	if outside > 0 {
		log.Printf("Filtered %d edges outside bounding box", outside)
	}
	log.Printf("Built %d directed edges", len(edges))
	return edges
}
