package pq

// none marks an absent link in the node arena.
const none int32 = -1

// fibNode is one slot of the FibHeap arena. Siblings form a circular doubly
// linked list through prev/next; child points at any one child of the node.
type fibNode[T any] struct {
	priority float64
	value    T

	parent int32
	child  int32
	prev   int32
	next   int32

	// Number of children; also the consolidation bucket of a root.
	rank int32
}

// FibHeap is a Fibonacci heap: a forest of heap-ordered trees whose roots form
// a circular list reachable from the cached minimum. Nodes are stored in an
// arena and linked by index, so the forest holds no pointer cycles.
//
// Insert is O(1); ExtractMin is amortized O(log n).
type FibHeap[T any] struct {
	nodes []fibNode[T]
	free  []int32
	min   int32
	size  int

	// Scratch space reused by consolidate.
	roots   []int32
	buckets []int32
}

// NewFibHeap returns an empty Fibonacci heap.
func NewFibHeap[T any]() *FibHeap[T] {
	return &FibHeap[T]{min: none}
}

func (h *FibHeap[T]) Len() int { return h.size }

func (h *FibHeap[T]) IsEmpty() bool { return h.min == none }

func (h *FibHeap[T]) Insert(priority float64, value T) {
	i := h.alloc(priority, value)
	h.size++
	if h.min == none {
		h.min = i
		return
	}
	h.splice(h.min, i)
	if priority < h.nodes[h.min].priority {
		h.min = i
	}
}

func (h *FibHeap[T]) ExtractMin() (float64, T, error) {
	if h.min == none {
		var zero T
		return 0, zero, ErrEmptyQueue
	}
	m := h.min

	// Promote children to the root list. Their ranks are unchanged since
	// they keep their own subtrees.
	if c := h.nodes[m].child; c != none {
		for x := c; ; {
			h.nodes[x].parent = none
			x = h.nodes[x].next
			if x == c {
				break
			}
		}
		h.splice(m, c)
		h.nodes[m].child = none
	}

	next := h.nodes[m].next
	if next == m {
		h.min = none
	} else {
		prev := h.nodes[m].prev
		h.nodes[prev].next = next
		h.nodes[next].prev = prev
		h.min = next
		h.consolidate()
	}

	priority, value := h.nodes[m].priority, h.nodes[m].value
	h.release(m)
	h.size--
	return priority, value, nil
}

// consolidate links roots of equal rank until every root rank is unique, then
// rebuilds the root list and recomputes the minimum.
func (h *FibHeap[T]) consolidate() {
	roots := h.roots[:0]
	for x := h.min; ; {
		roots = append(roots, x)
		x = h.nodes[x].next
		if x == h.min {
			break
		}
	}

	buckets := h.buckets[:0]
	for _, x := range roots {
		h.nodes[x].prev, h.nodes[x].next = x, x
		for {
			r := int(h.nodes[x].rank)
			for len(buckets) <= r {
				buckets = append(buckets, none)
			}
			y := buckets[r]
			if y == none {
				buckets[r] = x
				break
			}
			buckets[r] = none
			if h.nodes[y].priority < h.nodes[x].priority {
				x, y = y, x
			}
			h.link(y, x)
		}
	}

	h.min = none
	for _, x := range buckets {
		if x == none {
			continue
		}
		if h.min == none {
			h.min = x
			continue
		}
		h.splice(h.min, x)
		if h.nodes[x].priority < h.nodes[h.min].priority {
			h.min = x
		}
	}

	h.roots = roots[:0]
	h.buckets = buckets[:0]
}

// link makes the detached root y a child of x.
func (h *FibHeap[T]) link(y, x int32) {
	h.nodes[y].parent = x
	if c := h.nodes[x].child; c == none {
		h.nodes[x].child = y
	} else {
		h.splice(c, y)
	}
	h.nodes[x].rank++
}

// splice joins the circular lists containing a and b.
func (h *FibHeap[T]) splice(a, b int32) {
	an := h.nodes[a].next
	bn := h.nodes[b].next
	h.nodes[a].next = bn
	h.nodes[bn].prev = a
	h.nodes[b].next = an
	h.nodes[an].prev = b
}

func (h *FibHeap[T]) alloc(priority float64, value T) int32 {
	var i int32
	if n := len(h.free); n > 0 {
		i = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		h.nodes = append(h.nodes, fibNode[T]{})
		i = int32(len(h.nodes) - 1)
	}
	h.nodes[i] = fibNode[T]{
		priority: priority,
		value:    value,
		parent:   none,
		child:    none,
		prev:     i,
		next:     i,
	}
	return i
}

func (h *FibHeap[T]) release(i int32) {
	h.nodes[i] = fibNode[T]{parent: none, child: none, prev: none, next: none}
	h.free = append(h.free, i)
}
