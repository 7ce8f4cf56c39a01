package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"osm_spt/pkg/api"
	"osm_spt/pkg/graph"
	"osm_spt/pkg/pq"
	"osm_spt/pkg/routing"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph binary")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	heap := flag.String("heap", "binary", "Priority queue backend: binary or fibonacci")
	locatorName := flag.String("locator", "rtree", "Nearest-vertex index: rtree or scan")
	flag.Parse()

	kind, err := pq.ParseKind(*heap)
	if err != nil {
		log.Fatalf("Invalid -heap: %v", err)
	}
	locatorKind, err := routing.ParseLocatorKind(*locatorName)
	if err != nil {
		log.Fatalf("Invalid -locator: %v", err)
	}

	start := time.Now()

	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	log.Printf("Building %s locator...", locatorKind)
	locator, err := routing.NewLocator(locatorKind, g)
	if err != nil {
		log.Fatalf("Failed to build locator: %v", err)
	}
	engine := routing.NewEngine(g, routing.WithLocator(locator), routing.WithEngineQueue(kind))

	log.Printf("Ready in %s (queue: %s)", time.Since(start).Round(time.Millisecond), kind)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cfg := api.DefaultConfig(fmt.Sprintf(":%d", *port))
	cfg.CORSOrigin = *corsOrigin

	stats := api.StatsResponse{
		NumNodes: g.NumNodes,
		NumEdges: g.NumEdges,
		Queue:    kind.String(),
		Locator:  string(locatorKind),
	}

	handlers := api.NewHandlers(engine, stats, api.NewMetrics(reg))
	srv := api.NewServer(cfg, handlers, reg)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
