package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/clinicscan/clinicscan/internal/distill"
	"github.com/clinicscan/clinicscan/internal/model"
)

// Terminal is the condition that ended a crawl round. Budget exhaustion
// is a normal state transition, not an error.
type Terminal int

const (
	// TerminalPagesExhausted means the page budget was spent.
	TerminalPagesExhausted Terminal = iota

	// TerminalDepthExhausted means candidates remain but every one of
	// them sits deeper than the depth budget.
	TerminalDepthExhausted

	// TerminalFrontierEmpty means the site ran out of crawlable URLs.
	TerminalFrontierEmpty
)

// String returns the terminal condition's report name.
func (t Terminal) String() string {
	switch t {
	case TerminalPagesExhausted:
		return "pages_exhausted"
	case TerminalDepthExhausted:
		return "depth_exhausted"
	case TerminalFrontierEmpty:
		return "frontier_empty"
	default:
		return "unknown"
	}
}

// RoundResult summarizes one scheduler round.
type RoundResult struct {
	// Terminal is how the round ended.
	Terminal Terminal

	// NewPages are the page records this round produced, in dispatch
	// order.
	NewPages []*model.Page

	// PagesFetched is the cumulative dispatch count after the round.
	PagesFetched int
}

// Scheduler drives a budget-bounded breadth-first crawl of a single
// site. It owns the crawl State and coordinates the canonicalizer,
// robots gate, fetcher, distiller, and ranker.
//
// Rounds run in waves: the scheduler pops up to one worker-pool's worth
// of candidates in frontier order, fetches them concurrently, then
// integrates the results sequentially in the same order. Dispatch order
// therefore always follows the frontier's deterministic ordering, and
// fetch completion order can only affect wall-clock timing, never page
// content or budget accounting. Once a terminal condition is reached no
// new fetches are dispatched; in-flight fetches from the current wave
// drain normally.
type Scheduler struct {
	canon     *Canonicalizer
	gate      *Gate
	fetcher   *Fetcher
	distiller *distill.Distiller
	ranker    *Ranker
	state     *State

	workers        int
	ignorePatterns []string
	followPatterns []string
	logger         *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithWorkers sets the fetch worker pool size for each wave.
func WithWorkers(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithIgnorePatterns sets URL path globs to skip during crawling.
func WithIgnorePatterns(patterns []string) SchedulerOption {
	return func(s *Scheduler) { s.ignorePatterns = patterns }
}

// WithFollowPatterns restricts crawling to matching URL paths.
func WithFollowPatterns(patterns []string) SchedulerOption {
	return func(s *Scheduler) { s.followPatterns = patterns }
}

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

// NewScheduler creates a Scheduler for one site.
func NewScheduler(canon *Canonicalizer, gate *Gate, fetcher *Fetcher, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		canon:     canon,
		gate:      gate,
		fetcher:   fetcher,
		distiller: distill.NewDistiller(),
		ranker:    NewRanker(),
		state:     NewState(),
		workers:   4,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// State exposes the scheduler's crawl state for inspection.
func (s *Scheduler) State() *State {
	return s.state
}

// Seed enqueues the starting URL at depth zero. Calling Seed again with
// the same URL is a no-op (the frontier deduplicates), so re-running
// under a larger budget is idempotent.
func (s *Scheduler) Seed(seedURL string) {
	canonical, ok := s.canon.Canonicalize(seedURL)
	if !ok {
		// A seed the canonicalizer rejects still gets one candidate so
		// the failure is observable as a failed page, not silence.
		canonical = seedURL
	}
	s.state.mu.Lock()
	s.state.frontier.Push(Candidate{URL: canonical, SourceDepth: -1})
	s.state.mu.Unlock()
}

// Run executes one crawl round under the given budget. The visited set,
// frontier, and page counter carry over from prior rounds, so a second
// run with a larger budget only fetches new URLs, and a rerun with an
// unchanged budget fetches nothing.
func (s *Scheduler) Run(ctx context.Context, budget model.CrawlBudget) (*RoundResult, error) {
	s.logger.Debug("crawl round starting", "budget", budget.String())

	var newPages []*model.Page
	var deferred []Candidate
	terminal := TerminalFrontierEmpty

	for {
		if err := ctx.Err(); err != nil {
			s.requeueDeferred(deferred)
			return s.result(terminal, newPages), err
		}

		batch, t := s.nextBatch(ctx, budget, &deferred)
		if len(batch) == 0 {
			terminal = t
			break
		}

		wave := s.fetchWave(ctx, batch)

		// Integrate sequentially in dispatch order so link discovery
		// order (and with it frontier sequence numbers) never depends
		// on fetch completion order.
		for _, w := range wave {
			s.state.mu.Lock()
			s.state.pages = append(s.state.pages, w.page)
			s.state.mu.Unlock()
			newPages = append(newPages, w.page)

			if w.page.Status == model.FetchOK {
				s.enqueueLinks(w.page.Depth, w.links)
			}
		}
	}

	s.requeueDeferred(deferred)
	s.logger.Debug("crawl round finished",
		"terminal", terminal.String(),
		"new_pages", len(newPages),
		"total_fetched", s.state.PagesFetched(),
	)
	return s.result(terminal, newPages), nil
}

// result builds the round summary.
func (s *Scheduler) result(terminal Terminal, newPages []*model.Page) *RoundResult {
	return &RoundResult{
		Terminal:     terminal,
		NewPages:     newPages,
		PagesFetched: s.state.PagesFetched(),
	}
}

// nextBatch selects the next wave of candidates in frontier order. Each
// selected candidate is marked visited and counted against the page
// budget at selection time, which is the dispatch point. Candidates
// beyond the depth budget are deferred for a later round; candidates the
// robots gate rejects are discarded outright.
//
// A nil batch means the round is over, with the accompanying Terminal
// saying why.
func (s *Scheduler) nextBatch(ctx context.Context, budget model.CrawlBudget, deferred *[]Candidate) ([]Candidate, Terminal) {
	var batch []Candidate
	for {
		s.state.mu.Lock()
		if s.state.pagesFetched >= budget.MaxPages {
			s.state.mu.Unlock()
			if len(batch) > 0 {
				return batch, TerminalFrontierEmpty // terminal unused when batch is non-empty
			}
			return nil, TerminalPagesExhausted
		}
		if len(batch) >= s.workers {
			s.state.mu.Unlock()
			return batch, TerminalFrontierEmpty // terminal unused when batch is non-empty
		}

		cand, ok := s.state.frontier.Pop()
		if !ok {
			s.state.mu.Unlock()
			if len(batch) > 0 {
				return batch, TerminalFrontierEmpty // terminal unused when batch is non-empty
			}
			if len(*deferred) > 0 {
				return nil, TerminalDepthExhausted
			}
			return nil, TerminalFrontierEmpty
		}
		if s.state.visited[cand.URL] {
			s.state.mu.Unlock()
			continue
		}
		if cand.depth() > budget.MaxDepth {
			s.state.mu.Unlock()
			*deferred = append(*deferred, cand)
			continue
		}
		s.state.mu.Unlock()

		// Robots consultation may fetch robots.txt, so it happens
		// outside the critical section and before the candidate is
		// marked visited: a disallowed URL never enters the visited set.
		if !s.gate.Allowed(ctx, cand.URL) {
			s.logger.Debug("robots disallow", "url", cand.URL)
			continue
		}

		s.state.mu.Lock()
		if s.state.visited[cand.URL] || s.state.pagesFetched >= budget.MaxPages {
			s.state.mu.Unlock()
			continue
		}
		s.state.visited[cand.URL] = true
		s.state.pagesFetched++
		s.state.mu.Unlock()
		batch = append(batch, cand)
	}
}

// waveResult pairs a page record with the links discovered on it.
// Links feed the frontier; they are not part of the immutable record.
type waveResult struct {
	page  *model.Page
	links []distill.Link
}

// fetchWave fetches a batch concurrently and returns results
// positionally aligned with the batch.
func (s *Scheduler) fetchWave(ctx context.Context, batch []Candidate) []waveResult {
	wave := make([]waveResult, len(batch))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, cand := range batch {
		g.Go(func() error {
			wave[i] = s.fetchOne(ctx, cand)
			return nil
		})
	}
	// Workers never return errors; failures become failed page records.
	_ = g.Wait()
	return wave
}

// fetchOne fetches and distills a single candidate into an immutable
// page record. Every failure mode ends in a FetchFailed record; nothing
// here can abort the crawl.
func (s *Scheduler) fetchOne(ctx context.Context, cand Candidate) waveResult {
	page := &model.Page{
		URL:   cand.URL,
		Depth: cand.depth(),
	}

	result, err := s.fetcher.Fetch(ctx, cand.URL)
	if err != nil {
		page.Status = model.FetchFailed
		page.FetchError = err.Error()
		var fe *FetchError
		if errors.As(err, &fe) {
			page.StatusCode = fe.StatusCode
		}
		s.logger.Debug("page fetch failed", "url", cand.URL, "error", err)
		return waveResult{page: page}
	}

	page.Status = model.FetchOK
	page.StatusCode = result.StatusCode

	distilled, err := s.distiller.Distill(cand.URL, result.Body)
	if err != nil {
		// Markup too broken to parse at all: keep the page as fetched
		// but empty. Still a success; the crawl continues.
		s.logger.Debug("distillation failed", "url", cand.URL, "error", err)
		return waveResult{page: page}
	}

	page.Title = distilled.Title
	page.Text = distilled.VisibleText
	page.StructuredBlocks = distilled.StructuredBlocks
	return waveResult{page: page, links: distilled.Links}
}

// enqueueLinks ranks a fetched page's outgoing links and feeds them into
// the frontier at depth+1.
func (s *Scheduler) enqueueLinks(sourceDepth int, links []distill.Link) {
	candidates := make([]Candidate, 0, len(links))
	for _, link := range links {
		canonical, ok := s.canon.Canonicalize(link.URL)
		if !ok {
			continue
		}
		if !allowedByPatterns(pathOf(canonical), s.ignorePatterns, s.followPatterns) {
			continue
		}
		candidates = append(candidates, Candidate{
			URL:         canonical,
			AnchorText:  link.AnchorText,
			SourceDepth: sourceDepth,
		})
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, c := range s.ranker.Rank(candidates) {
		if s.state.visited[c.URL] {
			continue
		}
		s.state.frontier.Push(c)
	}
}

// pathOf extracts the path component of a canonical URL for pattern
// matching.
func pathOf(canonical string) string {
	u, err := url.Parse(canonical)
	if err != nil {
		return canonical
	}
	return u.Path
}

// requeueDeferred returns over-depth candidates to the frontier so a
// later round with a larger depth budget can still reach them.
func (s *Scheduler) requeueDeferred(deferred []Candidate) {
	if len(deferred) == 0 {
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, c := range deferred {
		s.state.frontier.Requeue(c)
	}
}
