package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clinicscan/clinicscan/internal/model"
)

// BatchProcessor scans multiple sites concurrently. It uses errgroup to
// manage goroutines and respect the concurrency limit.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-site execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each site. A factory
	// ensures every site gets fresh crawl state; schedulers are not
	// reusable across sites.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent site scans.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports, indexed by target position.
	results []*model.ScanReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent site scans.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. The pipelineFactory is
// called once per site.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scans the given sites concurrently, respecting the
// concurrency limit and context cancellation.
//
// Returns one report per site in input order, including reports for
// sites that failed; per-site errors are recorded on their reports and
// never abort the batch.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.ScanReport, error) {
	bp.logger.Info("starting batch scan",
		"total_sites", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	bp.results = make([]*model.ScanReport, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scanning site",
				"site", target,
				"index", i+1,
				"total", len(targets),
			)

			report := model.NewScanReport(target)
			err := bp.pipelineFactory().Execute(ctx, report)

			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				// The failure is recorded in the report; other sites
				// keep scanning.
				bp.logger.Warn("site scan failed",
					"site", target,
					"error", err,
				)
				return nil
			}

			bp.logger.Info("site scan completed",
				"site", target,
				"pages", report.PagesCrawled(),
				"unknown_fields", report.Clinic.UnknownFields(),
			)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch scan complete",
		"total_sites", len(targets),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}
