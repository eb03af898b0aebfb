package crawler

import (
	"sync"

	"github.com/clinicscan/clinicscan/internal/model"
)

// State is the mutable aggregate for one crawl lifetime: the visited
// set, the frontier, the page counter, and every page record produced.
//
// State is created at the start of a run, retained across expansion
// rounds (so a larger budget never refetches a page), and discarded when
// the run ends. All access goes through the single mutex; nothing
// mutates these fields outside that critical section.
type State struct {
	mu sync.Mutex

	// visited holds every canonical URL that was ever dispatched for
	// fetching. Set semantics across all rounds: at most one fetch per
	// URL per crawl lifetime.
	visited map[string]bool

	// frontier is the priority queue of candidates awaiting fetch.
	frontier *Frontier

	// pagesFetched counts dispatched fetches (successes and failures).
	pagesFetched int

	// pages holds the page records in dispatch order.
	pages []*model.Page
}

// NewState creates empty crawl state.
func NewState() *State {
	return &State{
		visited:  make(map[string]bool),
		frontier: NewFrontier(),
	}
}

// Visited reports whether a canonical URL has been dispatched.
func (s *State) Visited(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited[url]
}

// VisitedCount returns the size of the visited set.
func (s *State) VisitedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visited)
}

// PagesFetched returns the cumulative dispatched-fetch count.
func (s *State) PagesFetched() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagesFetched
}

// Pages returns a copy of the page records in dispatch order.
func (s *State) Pages() []*model.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Page, len(s.pages))
	copy(out, s.pages)
	return out
}
