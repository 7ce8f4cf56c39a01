// Command render writes GeoJSON snapshots of a shortest-path tree: the root,
// the distance gradient over the whole graph and the path to a destination.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/geojson"

	"osm_spt/pkg/graph"
	"osm_spt/pkg/pq"
	"osm_spt/pkg/routing"
	"osm_spt/pkg/style"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph binary")
	outDir := flag.String("out", ".", "Directory for the GeoJSON files")
	heap := flag.String("heap", "binary", "Priority queue backend: binary or fibonacci")
	locatorName := flag.String("locator", "scan", "Nearest-vertex index: rtree or scan")
	rootLat := flag.Float64("root-lat", math.NaN(), "Root latitude (default: centre of the graph)")
	rootLng := flag.Float64("root-lng", math.NaN(), "Root longitude (default: centre of the graph)")
	destLat := flag.Float64("dest-lat", math.NaN(), "Destination latitude (default: quarter point of the graph)")
	destLng := flag.Float64("dest-lng", math.NaN(), "Destination longitude (default: quarter point of the graph)")
	flag.Parse()

	kind, err := pq.ParseKind(*heap)
	if err != nil {
		log.Fatalf("Invalid -heap: %v", err)
	}
	locatorKind, err := routing.ParseLocatorKind(*locatorName)
	if err != nil {
		log.Fatalf("Invalid -locator: %v", err)
	}

	g, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	locator, err := routing.NewLocator(locatorKind, g)
	if err != nil {
		log.Fatalf("Failed to build locator: %v", err)
	}

	b := g.Bounds()
	if math.IsNaN(*rootLat) || math.IsNaN(*rootLng) {
		*rootLat, *rootLng = b.Center()
	}
	if math.IsNaN(*destLat) || math.IsNaN(*destLng) {
		*destLat, *destLng = b.Lerp(0.25)
	}

	root, err := locator.Nearest(*rootLat, *rootLng)
	if err != nil {
		log.Fatalf("Failed to locate root: %v", err)
	}
	dest, err := locator.Nearest(*destLat, *destLng)
	if err != nil {
		log.Fatalf("Failed to locate destination: %v", err)
	}
	log.Printf("Root: node %d, destination: node %d", root, dest)

	if err := write(*outDir, "root.geojson", style.FeatureCollection(g, style.RootStyle(root))); err != nil {
		log.Fatalf("Failed to write root styling: %v", err)
	}

	start := time.Now()
	tree, err := routing.ShortestPath[uint32](context.Background(), g, root, routing.WithQueue(kind))
	if err != nil {
		log.Fatalf("Shortest path failed: %v", err)
	}
	log.Printf("Shortest-path tree (%s) in %s, farthest vertex at %.0f m",
		kind, time.Since(start).Round(time.Millisecond), tree.MaxDistance())

	gradient := style.Gradient(tree.Dist)
	if err := write(*outDir, "distance.geojson", style.FeatureCollection(g, gradient)); err != nil {
		log.Fatalf("Failed to write distance styling: %v", err)
	}

	if !tree.Reachable(dest) {
		log.Printf("Warning: destination %d is unreachable from %d; path styling shows no path", dest, root)
	} else {
		log.Printf("Path length: %.0f m", tree.Dist[dest])
	}
	path := style.HighlightPath[uint32](g, tree.Parent, dest)
	if err := write(*outDir, "path.geojson", style.FeatureCollection(g, path)); err != nil {
		log.Fatalf("Failed to write path styling: %v", err)
	}
}

func write(dir, name string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Printf("Wrote %s (%d features)", path, len(fc.Features))
	return nil
}
