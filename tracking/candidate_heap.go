package tracking

// scoredCandidate is a possible association with its score.
// seq is the discovery order, used to break ties so selections stay deterministic.
type scoredCandidate[T any] struct {
	value T
	score float64
	seq   int
}

// Copied from container/heap - https://golang.org/pkg/container/heap/
// Why make copy? Just want to avoid type conversion

type candidateHeap[T any] []*scoredCandidate[T]

func (h candidateHeap[T]) Len() int { return len(h) }
func (h candidateHeap[T]) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].seq < h[j].seq
}
func (h candidateHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Add pushes a new candidate found at position seq of the enumeration
func (h *candidateHeap[T]) Add(value T, score float64, seq int) {
	h.Push(&scoredCandidate[T]{value: value, score: score, seq: seq})
}

// Push pushes the element x onto the heap.
// The complexity is O(log n) where n = h.Len().
func (h *candidateHeap[T]) Push(x *scoredCandidate[T]) {
	*h = append(*h, x)
	h.up(h.Len() - 1)
}

// Pop removes and returns the minimum element (according to Less) from the heap.
// The complexity is O(log n) where n = h.Len().
func (h *candidateHeap[T]) Pop() *scoredCandidate[T] {
	n := h.Len() - 1
	h.Swap(0, n)
	h.down(0, n)
	heapSize := len(*h)
	lastNode := (*h)[heapSize-1]
	*h = (*h)[0 : heapSize-1]
	return lastNode
}

// Drain pops every candidate: the result is sorted by score, then by discovery order
func (h *candidateHeap[T]) Drain() []*scoredCandidate[T] {
	sorted := make([]*scoredCandidate[T], 0, h.Len())
	for h.Len() > 0 {
		sorted = append(sorted, h.Pop())
	}
	return sorted
}

func (h candidateHeap[T]) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		j = i
	}
}

func (h candidateHeap[T]) down(i0, n int) bool {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.Less(j2, j1) {
			j = j2
		}
		if !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		i = j
	}
	return i > i0
}
