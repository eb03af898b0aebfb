package crawler

import "container/heap"

// Frontier is a priority queue of link candidates awaiting fetch.
//
// Ordering follows Candidate.less: score descending, then depth, then
// path length, then first-seen order. The frontier assigns the
// first-seen sequence number at push time, so insertion order is part of
// the queue's deterministic ordering.
//
// Frontier is not goroutine-safe; the Scheduler serializes access
// through the crawl State's mutex.
type Frontier struct {
	items candidateHeap
	// enqueued tracks every URL ever pushed, so a URL can sit in the
	// frontier at most once per crawl lifetime.
	enqueued map[string]bool
	nextSeq  int
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{enqueued: make(map[string]bool)}
}

// Push adds a candidate unless its URL was already enqueued at some
// point in the crawl. Returns true if the candidate was accepted.
func (f *Frontier) Push(c Candidate) bool {
	if f.enqueued[c.URL] {
		return false
	}
	f.enqueued[c.URL] = true
	c.seq = f.nextSeq
	f.nextSeq++
	heap.Push(&f.items, c)
	return true
}

// Pop removes and returns the highest-priority candidate.
// The second return value is false when the frontier is empty.
func (f *Frontier) Pop() (Candidate, bool) {
	if f.items.Len() == 0 {
		return Candidate{}, false
	}
	return heap.Pop(&f.items).(Candidate), true
}

// Requeue puts a previously popped candidate back, preserving its
// original sequence number. Used for candidates deferred because their
// depth exceeds the current round's budget; a later round with a larger
// budget may still fetch them.
func (f *Frontier) Requeue(c Candidate) {
	heap.Push(&f.items, c)
}

// Len returns the number of queued candidates.
func (f *Frontier) Len() int {
	return f.items.Len()
}

// candidateHeap implements heap.Interface over candidates.
type candidateHeap []Candidate

func (h candidateHeap) Len() int            { return len(h) }
func (h candidateHeap) Less(i, j int) bool  { return h[i].less(h[j]) }
func (h candidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)         { *h = append(*h, x.(Candidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
