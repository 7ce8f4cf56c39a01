package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"osm_spt/pkg/graph"
	osmparser "osm_spt/pkg/osm"
)

const steps = 4

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "graph.bin", "Output binary graph file path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	level := flag.String("level", "", "Keep roads of this class or above: motorway, trunk, primary, secondary, tertiary (empty = all)")
	compress := flag.Bool("compress", false, "Compress the graph payload with zstd")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--output graph.bin] [--bbox minLat,minLng,maxLat,maxLng] [--level primary] [--compress]")
		os.Exit(1)
	}

	opts := osmparser.ParseOptions{Level: *level}
	if _, err := osmparser.ParseLevel(*level); err != nil {
		log.Fatalf("Invalid level: %v", err)
	}
	if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		_, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng)
		if err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	start := time.Now()
	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	bar.Describe("[cyan][1/4][reset] Parsing OSM data...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	parseResult, err := osmparser.Parse(context.Background(), f, opts)
	if err != nil {
		log.Fatalf("Failed to parse OSM data: %v", err)
	}
	log.Printf("Parsed %d edges, %d nodes", len(parseResult.Edges), len(parseResult.NodeLat))
	b := parseResult.Bounds()
	log.Printf("Data bounds: lat [%.4f, %.4f], lng [%.4f, %.4f]", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	bar.Add(1)

	bar.Describe("[cyan][2/4][reset] Building graph...")
	g := graph.Build(parseResult)
	log.Printf("Graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)
	bar.Add(1)

	bar.Describe("[cyan][3/4][reset] Extracting largest component...")
	componentNodes, components := graph.LargestComponent(g)
	if g.NumNodes > 0 {
		log.Printf("Largest of %d components: %d nodes (%.1f%%)", components, len(componentNodes), float64(len(componentNodes))/float64(g.NumNodes)*100)
	}
	g = graph.FilterToComponent(g, componentNodes)
	log.Printf("Filtered graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)
	bar.Add(1)

	bar.Describe(fmt.Sprintf("[cyan][4/4][reset] Writing %s...", *output))
	if err := graph.WriteBinary(*output, g, graph.WriteOptions{Compress: *compress}); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}
	bar.Add(1)
	bar.Finish()
	fmt.Println()

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Second), *output, float64(info.Size())/(1024*1024))
}
