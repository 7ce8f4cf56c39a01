package pq

// MinHeap is a slice-backed binary min-heap. The entry at index 0 is the
// minimum and the children of index i sit at 2i+1 and 2i+2.
type MinHeap[T any] struct {
	items []entry[T]
}

type entry[T any] struct {
	priority float64
	value    T
}

// NewMinHeap returns an empty binary heap.
func NewMinHeap[T any]() *MinHeap[T] {
	return &MinHeap[T]{items: make([]entry[T], 0, 64)}
}

func (h *MinHeap[T]) Len() int { return len(h.items) }

func (h *MinHeap[T]) IsEmpty() bool { return len(h.items) == 0 }

func (h *MinHeap[T]) Insert(priority float64, value T) {
	h.items = append(h.items, entry[T]{priority, value})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap[T]) ExtractMin() (float64, T, error) {
	n := len(h.items)
	if n == 0 {
		var zero T
		return 0, zero, ErrEmptyQueue
	}
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items[n-1] = entry[T]{} // drop the reference held by the vacated slot
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item.priority, item.value, nil
}

func (h *MinHeap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].priority >= h.items[parent].priority {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap[T]) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].priority < h.items[smallest].priority {
			smallest = left
		}
		if right < n && h.items[right].priority < h.items[smallest].priority {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
