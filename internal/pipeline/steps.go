package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clinicscan/clinicscan/internal/config"
	"github.com/clinicscan/clinicscan/internal/crawler"
	"github.com/clinicscan/clinicscan/internal/database"
	"github.com/clinicscan/clinicscan/internal/extract"
	"github.com/clinicscan/clinicscan/internal/model"
)

// ScanStep performs the full crawl-extract-expand scan for one site.
// It builds the per-site crawl components (canonicalizer, robots gate,
// fetcher, scheduler), applies any per-site configuration overrides,
// and runs the expansion controller.
type ScanStep struct {
	cfg       *config.Config
	extractor extract.Extractor
	logger    *slog.Logger
}

// ScanStepOption configures a ScanStep.
type ScanStepOption func(*ScanStep)

// WithScanLogger sets a custom logger for the scan step.
func WithScanLogger(logger *slog.Logger) ScanStepOption {
	return func(s *ScanStep) {
		s.logger = logger
	}
}

// NewScanStep creates a scan step using the given configuration and
// extractor.
func NewScanStep(cfg *config.Config, extractor extract.Extractor, opts ...ScanStepOption) *ScanStep {
	s := &ScanStep{
		cfg:       cfg,
		extractor: extractor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// Do executes the scan step.
func (s *ScanStep) Do(ctx context.Context, report *model.ScanReport) error {
	seed, err := crawler.NormalizeSeed(report.SiteURL)
	if err != nil {
		return fmt.Errorf("invalid target URL %q: %w", report.SiteURL, err)
	}
	report.SiteURL = seed

	canon, err := crawler.NewCanonicalizer(seed)
	if err != nil {
		return fmt.Errorf("invalid target URL %q: %w", seed, err)
	}

	site := s.siteConfig(seed)
	client := &http.Client{Timeout: s.cfg.Timeout}

	gate := crawler.NewGate(client, config.DefaultUserAgent,
		crawler.WithGateLogger(s.logger),
	)
	fetcher := crawler.NewFetcher(client,
		crawler.WithUserAgent(config.DefaultUserAgent),
		crawler.WithMaxBodySize(config.DefaultMaxBodySize),
		crawler.WithHostWorkers(s.cfg.HostWorkers),
		crawler.WithExtraHeaders(site.Headers),
		crawler.WithCookie(site.Cookie),
		crawler.WithFetcherLogger(s.logger),
	)
	scheduler := crawler.NewScheduler(canon, gate, fetcher,
		crawler.WithWorkers(s.cfg.Workers),
		crawler.WithIgnorePatterns(site.IgnorePatterns),
		crawler.WithFollowPatterns(site.FollowPatterns),
		crawler.WithSchedulerLogger(s.logger),
	)

	initial := s.cfg.InitialBudget()
	if site.Depth > 0 {
		initial.MaxDepth = site.Depth
	}

	controller := NewController(scheduler, s.extractor, initial, s.cfg.CeilingBudget(),
		WithExpansion(s.cfg.ExpandEnabled),
		WithExhaustive(s.cfg.ExhaustiveEnabled),
		WithControllerLogger(s.logger),
	)

	start := time.Now()
	err = controller.Run(ctx, report)
	report.Elapsed = time.Since(start)
	if err != nil {
		return err
	}

	if len(report.SucceededPages()) == 0 {
		return fmt.Errorf("no pages could be fetched from %s", seed)
	}
	return nil
}

// siteConfig resolves the per-site overrides for the seed's domain.
func (s *ScanStep) siteConfig(seed string) config.SiteConfig {
	if s.cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(seed)
	if err != nil {
		return s.cfg.SiteConfigs.Defaults
	}
	domain := strings.TrimPrefix(u.Hostname(), "www.")
	return s.cfg.SiteConfigs.GetSiteConfig(domain)
}

// HistoryStep persists the finished report to the scan history database.
// It is added with continue-on-error so a failed save never discards a
// completed scan.
type HistoryStep struct {
	db     *database.DB
	logger *slog.Logger
}

// NewHistoryStep creates a history persistence step.
func NewHistoryStep(db *database.DB, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{db: db, logger: logger}
}

// Name returns the step name.
func (h *HistoryStep) Name() string {
	return "history"
}

// Do saves the report.
func (h *HistoryStep) Do(ctx context.Context, report *model.ScanReport) error {
	if err := h.db.SaveScan(ctx, report); err != nil {
		return fmt.Errorf("save scan history: %w", err)
	}
	h.logger.Debug("scan saved to history", "site", report.SiteURL)
	return nil
}
