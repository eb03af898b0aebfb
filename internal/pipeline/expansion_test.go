package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicscan/clinicscan/internal/config"
	"github.com/clinicscan/clinicscan/internal/crawler"
	"github.com/clinicscan/clinicscan/internal/extract"
	"github.com/clinicscan/clinicscan/internal/model"
)

// scriptedExtractor resolves every field after a fixed number of calls.
// resolveAfter < 0 means it never resolves.
type scriptedExtractor struct {
	resolveAfter int
	calls        int
}

func (s *scriptedExtractor) Extract(_ context.Context, _ extract.Payload) (model.ClinicInfo, error) {
	s.calls++
	if s.resolveAfter >= 0 && s.calls > s.resolveAfter {
		return model.ClinicInfo{
			Specialty:  model.Known("psychiatry"),
			Modalities: model.Known("CBT"),
			Location:   model.Known("Austin, TX"),
			ClinicSize: model.Known("Solo Practice (1 provider)"),
		}, nil
	}
	return model.ClinicInfo{}, nil
}

// serveSite serves the given path->HTML map with no robots.txt.
func serveSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newSiteScheduler(t *testing.T, srv *httptest.Server) *crawler.Scheduler {
	t.Helper()
	canon, err := crawler.NewCanonicalizer(srv.URL)
	if err != nil {
		t.Fatalf("NewCanonicalizer() error = %v", err)
	}
	gate := crawler.NewGate(srv.Client(), "clinicscan/1.0")
	fetcher := crawler.NewFetcher(srv.Client(), crawler.WithHostInterval(time.Millisecond))
	return crawler.NewScheduler(canon, gate, fetcher)
}

func threePageSite(t *testing.T) *httptest.Server {
	return serveSite(t, map[string]string{
		"/":           `<html><head><title>Home</title></head><body><a href="/about">About</a><a href="/services">Services</a><p>Welcome home</p></body></html>`,
		"/about":      `<html><body><a href="/about/team">Team</a><p>About the clinic</p></body></html>`,
		"/services":   `<html><body><p>Our services</p></body></html>`,
		"/about/team": `<html><body><p>The team</p></body></html>`,
	})
}

func TestControllerResolvesEarly(t *testing.T) {
	t.Parallel()

	srv := threePageSite(t)
	extractor := &scriptedExtractor{resolveAfter: 0}
	ctrl := NewController(newSiteScheduler(t, srv), extractor,
		model.CrawlBudget{MaxPages: 2, MaxDepth: 1},
		model.CrawlBudget{MaxPages: 10, MaxDepth: 3},
		WithExhaustive(true),
	)

	report := model.NewScanReport(srv.URL)
	if err := ctrl.Run(context.Background(), report); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Rounds) != 1 {
		t.Errorf("Rounds = %d, want 1 when the first extraction resolves", len(report.Rounds))
	}
	if !report.Clinic.Resolved() {
		t.Error("Clinic not resolved")
	}
	if report.Evidence == nil {
		t.Error("Evidence bundle not recorded")
	}
}

func TestControllerEscalates(t *testing.T) {
	t.Parallel()

	srv := threePageSite(t)
	extractor := &scriptedExtractor{resolveAfter: -1}
	ctrl := NewController(newSiteScheduler(t, srv), extractor,
		model.CrawlBudget{MaxPages: 2, MaxDepth: 1},
		model.CrawlBudget{MaxPages: 6, MaxDepth: 2},
	)

	report := model.NewScanReport(srv.URL)
	if err := ctrl.Run(context.Background(), report); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Rounds) < 2 {
		t.Fatalf("Rounds = %d, want escalation past the initial budget", len(report.Rounds))
	}
	first := report.Rounds[0]
	if first.Budget.MaxPages != 2 || first.Budget.MaxDepth != 1 {
		t.Errorf("first round budget = %s, want pages=2 depth=1", first.Budget.String())
	}

	// All four site pages end up crawled, each exactly once.
	if got := report.PagesCrawled(); got != 4 {
		t.Errorf("PagesCrawled() = %d, want the whole site", got)
	}
	seen := make(map[string]int)
	for _, p := range report.Pages {
		seen[p.URL]++
	}
	for url, n := range seen {
		if n > 1 {
			t.Errorf("page %s recorded %d times", url, n)
		}
	}

	// The deepest page needs the depth raise, so the last productive
	// round must run at depth 2.
	last := report.Rounds[len(report.Rounds)-1]
	if last.Budget.MaxDepth != 2 {
		t.Errorf("final round depth = %d, want the ceiling depth", last.Budget.MaxDepth)
	}
	if extractor.calls != len(report.Rounds) {
		t.Errorf("extractor called %d times over %d rounds, want one call per round", extractor.calls, len(report.Rounds))
	}
}

func TestControllerSkipsDrainedLadder(t *testing.T) {
	t.Parallel()

	srv := serveSite(t, map[string]string{
		"/": `<html><body><p>Single page site</p></body></html>`,
	})
	extractor := &scriptedExtractor{resolveAfter: -1}
	ctrl := NewController(newSiteScheduler(t, srv), extractor,
		model.CrawlBudget{MaxPages: 1, MaxDepth: 1},
		model.CrawlBudget{MaxPages: 3, MaxDepth: 2},
	)

	report := model.NewScanReport(srv.URL)
	if err := ctrl.Run(context.Background(), report); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Ladder is pages=2/depth=1, pages=3/depth=1, pages=3/depth=2. The
	// first rung drains the frontier, so the second same-depth rung is
	// skipped and only the depth raise still runs.
	for _, r := range report.Rounds[1:] {
		if r.Budget.MaxPages == 3 && r.Budget.MaxDepth == 1 {
			t.Errorf("drained same-depth rung was not skipped: %+v", report.Rounds)
		}
	}
	last := report.Rounds[len(report.Rounds)-1]
	if last.Budget.MaxDepth != 2 {
		t.Errorf("final round budget = %s, want the depth raise", last.Budget.String())
	}
}

func TestControllerExpansionDisabled(t *testing.T) {
	t.Parallel()

	srv := threePageSite(t)
	extractor := &scriptedExtractor{resolveAfter: -1}
	ctrl := NewController(newSiteScheduler(t, srv), extractor,
		model.CrawlBudget{MaxPages: 2, MaxDepth: 1},
		model.CrawlBudget{MaxPages: 10, MaxDepth: 3},
		WithExpansion(false),
	)

	report := model.NewScanReport(srv.URL)
	if err := ctrl.Run(context.Background(), report); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Rounds) != 1 {
		t.Errorf("Rounds = %d, want 1 with expansion disabled", len(report.Rounds))
	}
	if report.PagesCrawled() != 2 {
		t.Errorf("PagesCrawled() = %d, want the initial budget only", report.PagesCrawled())
	}
}

func TestControllerExhaustiveRound(t *testing.T) {
	t.Parallel()

	srv := threePageSite(t)
	extractor := &scriptedExtractor{resolveAfter: -1}
	ctrl := NewController(newSiteScheduler(t, srv), extractor,
		model.CrawlBudget{MaxPages: 2, MaxDepth: 1},
		model.CrawlBudget{MaxPages: 2, MaxDepth: 1},
		WithExpansion(false),
		WithExhaustive(true),
	)

	report := model.NewScanReport(srv.URL)
	if err := ctrl.Run(context.Background(), report); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Rounds) != 2 {
		t.Fatalf("Rounds = %d, want initial plus exhaustive", len(report.Rounds))
	}
	last := report.Rounds[1]
	if last.Budget.MaxPages != config.ExhaustivePageCap {
		t.Errorf("exhaustive round pages = %d, want %d", last.Budget.MaxPages, config.ExhaustivePageCap)
	}
	if report.PagesCrawled() != 4 {
		t.Errorf("PagesCrawled() = %d, want the whole site after the exhaustive round", report.PagesCrawled())
	}
}

func TestBudgetLadder(t *testing.T) {
	t.Parallel()

	t.Run("pages then depth", func(t *testing.T) {
		t.Parallel()
		got := budgetLadder(
			model.CrawlBudget{MaxPages: 20, MaxDepth: 2},
			model.CrawlBudget{MaxPages: 120, MaxDepth: 3},
		)
		want := []model.CrawlBudget{
			{MaxPages: 40, MaxDepth: 2},
			{MaxPages: 60, MaxDepth: 2},
			{MaxPages: 80, MaxDepth: 2},
			{MaxPages: 100, MaxDepth: 2},
			{MaxPages: 120, MaxDepth: 2},
			{MaxPages: 120, MaxDepth: 3},
		}
		if len(got) != len(want) {
			t.Fatalf("ladder = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ladder[%d] = %s, want %s", i, got[i].String(), want[i].String())
			}
		}
	})

	t.Run("final page rung clamped to ceiling", func(t *testing.T) {
		t.Parallel()
		got := budgetLadder(
			model.CrawlBudget{MaxPages: 20, MaxDepth: 2},
			model.CrawlBudget{MaxPages: 50, MaxDepth: 2},
		)
		want := []model.CrawlBudget{
			{MaxPages: 40, MaxDepth: 2},
			{MaxPages: 50, MaxDepth: 2},
		}
		if len(got) != len(want) {
			t.Fatalf("ladder = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ladder[%d] = %s, want %s", i, got[i].String(), want[i].String())
			}
		}
	})

	t.Run("ceiling equal to initial yields empty ladder", func(t *testing.T) {
		t.Parallel()
		got := budgetLadder(
			model.CrawlBudget{MaxPages: 20, MaxDepth: 2},
			model.CrawlBudget{MaxPages: 20, MaxDepth: 2},
		)
		if len(got) != 0 {
			t.Errorf("ladder = %v, want empty", got)
		}
	})
}
