package graph

// disjointSet is a union-find over vertex indices with union by size.
type disjointSet struct {
	parent []uint32
	size   []uint32
}

func newDisjointSet(n uint32) *disjointSet {
	ds := &disjointSet{parent: make([]uint32, n), size: make([]uint32, n)}
	for v := range n {
		ds.parent[v] = v
		ds.size[v] = 1
	}
	return ds
}

func (ds *disjointSet) find(v uint32) uint32 {
	for ds.parent[v] != v {
		ds.parent[v] = ds.parent[ds.parent[v]]
		v = ds.parent[v]
	}
	return v
}

// union merges the sets of a and b and reports whether they were distinct.
func (ds *disjointSet) union(a, b uint32) bool {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return false
	}
	if ds.size[ra] < ds.size[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	ds.size[ra] += ds.size[rb]
	return true
}

// LargestComponent returns the vertices of the largest weakly connected
// component in ascending order, together with the number of components.
// On equal sizes the component holding the lowest vertex wins.
func LargestComponent(g *Graph) (vertices []uint32, components int) {
	if g.NumNodes == 0 {
		return nil, 0
	}

	ds := newDisjointSet(g.NumNodes)
	components = int(g.NumNodes)
	for u := range g.NumNodes {
		for v := range g.Neighbors(u) {
			if ds.union(u, v) {
				components--
			}
		}
	}

	best := ds.find(0)
	for v := range g.NumNodes {
		if r := ds.find(v); ds.size[r] > ds.size[best] {
			best = r
		}
	}

	vertices = make([]uint32, 0, ds.size[best])
	for v := range g.NumNodes {
		if ds.find(v) == best {
			vertices = append(vertices, v)
		}
	}
	return vertices, components
}

// FilterToComponent returns the subgraph induced by vertices, renumbered in
// the order given. Edge order and shape geometry are preserved.
func FilterToComponent(g *Graph, vertices []uint32) *Graph {
	if len(vertices) == 0 {
		return &Graph{}
	}

	renumber := make(map[uint32]uint32, len(vertices))
	lat := make([]float64, len(vertices))
	lon := make([]float64, len(vertices))
	for i, v := range vertices {
		renumber[v] = uint32(i)
		lat[i], lon[i] = g.Coord(v)
	}

	var arcs []arc
	for _, u := range vertices {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			to, ok := renumber[g.Head[e]]
			if !ok {
				continue
			}
			lats, lons := g.Shape(e)
			arcs = append(arcs, arc{
				from:   renumber[u],
				to:     to,
				weight: g.Weight[e],
				lats:   lats,
				lons:   lons,
			})
		}
	}
	return assemble(lat, lon, arcs)
}
