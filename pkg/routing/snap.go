package routing

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/rtree"

	"osm_spt/pkg/graph"
)

const maxSnapDistMeters = 500.0

var (
	// ErrPointTooFar is returned when the query point is too far from any road.
	ErrPointTooFar = errors.New("point too far from road")
	// ErrEmptyGraph is returned when a locator has no vertex to offer.
	ErrEmptyGraph = errors.New("graph has no vertices")
	// ErrUnknownLocator is returned by ParseLocatorKind for unrecognised names.
	ErrUnknownLocator = errors.New("unknown locator")
)

// Locator finds the graph vertex closest to a coordinate.
type Locator interface {
	Nearest(lat, lng float64) (uint32, error)
}

// LocatorKind selects a Locator implementation.
type LocatorKind string

const (
	LocatorScan  LocatorKind = "scan"
	LocatorRTree LocatorKind = "rtree"
)

// ParseLocatorKind maps a flag value to a LocatorKind.
func ParseLocatorKind(s string) (LocatorKind, error) {
	switch k := LocatorKind(s); k {
	case LocatorScan, LocatorRTree:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLocator, s)
}

// NewLocator builds the locator of the given kind over g.
func NewLocator(kind LocatorKind, g *graph.Graph) (Locator, error) {
	switch kind {
	case LocatorScan:
		return NewScanLocator(g), nil
	case LocatorRTree, "":
		return NewRTreeLocator(g), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLocator, kind)
}

// sqDegrees is the squared Euclidean distance in degree space. It is only
// used to rank candidates; Engine.Snap measures the winner in metres.
func sqDegrees(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := lat1 - lat2
	dLng := lng1 - lng2
	return dLat*dLat + dLng*dLng
}

// ScanLocator checks every vertex. It needs no index and is used for small
// graphs and as the reference for RTreeLocator.
type ScanLocator struct {
	g *graph.Graph
}

func NewScanLocator(g *graph.Graph) *ScanLocator {
	return &ScanLocator{g: g}
}

func (s *ScanLocator) Nearest(lat, lng float64) (uint32, error) {
	if s.g.NumNodes == 0 {
		return 0, ErrEmptyGraph
	}
	best := uint32(0)
	bestDist := math.Inf(1)
	for v := uint32(0); v < s.g.NumNodes; v++ {
		d := sqDegrees(lat, lng, s.g.NodeLat[v], s.g.NodeLon[v])
		if d < bestDist {
			bestDist = d
			best = v
		}
	}
	return best, nil
}

// RTreeLocator answers nearest-vertex queries from an R-tree of vertex
// points. Points are stored as [lng, lat] so the tree's axes match x/y.
type RTreeLocator struct {
	tr rtree.RTreeG[uint32]
	n  uint32
}

func NewRTreeLocator(g *graph.Graph) *RTreeLocator {
	l := &RTreeLocator{n: g.NumNodes}
	for v := uint32(0); v < g.NumNodes; v++ {
		p := [2]float64{g.NodeLon[v], g.NodeLat[v]}
		l.tr.Insert(p, p, v)
	}
	return l
}

func (l *RTreeLocator) Nearest(lat, lng float64) (uint32, error) {
	if l.n == 0 {
		return 0, ErrEmptyGraph
	}
	target := [2]float64{lng, lat}
	var (
		best  uint32
		found bool
	)
	l.tr.Nearby(
		func(min, max [2]float64, _ uint32, _ bool) float64 {
			return boxDist(target, min, max)
		},
		func(_, _ [2]float64, v uint32, _ float64) bool {
			best = v
			found = true
			return false
		},
	)
	if !found {
		return 0, ErrEmptyGraph
	}
	return best, nil
}

// boxDist is the squared distance from p to the nearest point of the box.
// For a point item the box is degenerate and this is sqDegrees.
func boxDist(p, min, max [2]float64) float64 {
	var sum float64
	for i := 0; i < 2; i++ {
		var d float64
		switch {
		case p[i] < min[i]:
			d = min[i] - p[i]
		case p[i] > max[i]:
			d = p[i] - max[i]
		}
		sum += d * d
	}
	return sum
}
