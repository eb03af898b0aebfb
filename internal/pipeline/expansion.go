package pipeline

import (
	"context"
	"log/slog"

	"github.com/clinicscan/clinicscan/internal/config"
	"github.com/clinicscan/clinicscan/internal/crawler"
	"github.com/clinicscan/clinicscan/internal/evidence"
	"github.com/clinicscan/clinicscan/internal/extract"
	"github.com/clinicscan/clinicscan/internal/model"
)

// exhaustiveDepth is the depth bound used for the final exhaustive
// round. It is well past any real site's click depth, so the round is
// limited by its page cap alone.
const exhaustiveDepth = 64

// Controller runs the crawl-extract-expand control loop for one site.
//
// The loop crawls under the initial budget, extracts, and escalates the
// budget while fields remain unresolved: pages first (in initial-budget
// increments up to the page ceiling), then depth (one level at a time up
// to the depth ceiling), then optionally one exhaustive round.
//
// Crawl state persists across rounds, so each escalation only fetches
// pages the previous rounds did not. Evidence and extraction are re-run
// in full over the cumulative page set after every round, which keeps
// the result a pure function of the pages crawled so far.
type Controller struct {
	scheduler *crawler.Scheduler
	extractor extract.Extractor
	initial   model.CrawlBudget
	ceiling   model.CrawlBudget

	// expand permits budget escalation; exhaustive permits the final
	// all-pages round when escalation alone does not resolve every field.
	expand     bool
	exhaustive bool

	logger *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithExpansion enables or disables budget escalation.
func WithExpansion(enabled bool) ControllerOption {
	return func(c *Controller) {
		c.expand = enabled
	}
}

// WithExhaustive enables the final exhaustive round.
func WithExhaustive(enabled bool) ControllerOption {
	return func(c *Controller) {
		c.exhaustive = enabled
	}
}

// WithControllerLogger sets the logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController wires a scheduler and an extractor into a control loop
// bounded by the given initial budget and ceiling.
func NewController(
	scheduler *crawler.Scheduler,
	extractor extract.Extractor,
	initial, ceiling model.CrawlBudget,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		scheduler: scheduler,
		extractor: extractor,
		initial:   initial,
		ceiling:   ceiling,
		expand:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run executes the control loop and fills the report's Pages, Rounds,
// Evidence, and Clinic fields.
func (c *Controller) Run(ctx context.Context, report *model.ScanReport) error {
	c.scheduler.Seed(report.SiteURL)

	if err := c.round(ctx, report, c.initial); err != nil {
		return err
	}

	if c.expand && !report.Clinic.Resolved() {
		if err := c.escalate(ctx, report); err != nil {
			return err
		}
	}

	if c.exhaustive && !report.Clinic.Resolved() {
		c.logger.Info("running exhaustive round",
			"site", report.SiteURL,
			"unknown_fields", report.Clinic.UnknownFields(),
		)
		budget := model.CrawlBudget{MaxPages: config.ExhaustivePageCap, MaxDepth: exhaustiveDepth}
		if err := c.round(ctx, report, budget); err != nil {
			return err
		}
	}

	return nil
}

// escalate walks the budget ladder until every field resolves or the
// ceiling is reached. Rounds that add no pages at an unchanged depth are
// skipped forward: a drained frontier cannot yield more pages until the
// depth bound rises.
func (c *Controller) escalate(ctx context.Context, report *model.ScanReport) error {
	drained := false
	lastDepth := c.initial.MaxDepth

	for _, budget := range budgetLadder(c.initial, c.ceiling) {
		if drained && budget.MaxDepth == lastDepth {
			continue
		}

		c.logger.Info("expanding crawl budget",
			"site", report.SiteURL,
			"unknown_fields", report.Clinic.UnknownFields(),
			"budget", budget.String(),
		)

		if err := c.round(ctx, report, budget); err != nil {
			return err
		}
		if report.Clinic.Resolved() {
			return nil
		}

		last := report.Rounds[len(report.Rounds)-1]
		drained = last.NewPages == 0 && last.Terminal == crawler.TerminalFrontierEmpty.String()
		lastDepth = budget.MaxDepth
	}
	return nil
}

// round runs one crawl round under the given budget, then rebuilds the
// evidence bundle and re-extracts over the full page set.
func (c *Controller) round(ctx context.Context, report *model.ScanReport, budget model.CrawlBudget) error {
	result, err := c.scheduler.Run(ctx, budget)
	if err != nil {
		return err
	}

	pages := c.scheduler.State().Pages()
	report.Pages = pages
	report.Rounds = append(report.Rounds, model.RoundSummary{
		Budget:       budget,
		Terminal:     result.Terminal.String(),
		PagesFetched: result.PagesFetched,
		NewPages:     len(result.NewPages),
	})

	bundle := evidence.Build(pages)
	report.Evidence = &bundle

	clinic, err := c.extractor.Extract(ctx, extract.BuildPayload(report.SiteURL, pages, bundle))
	if err != nil {
		return err
	}
	report.Clinic = clinic
	return nil
}

// budgetLadder lists the escalation budgets between an initial budget
// and its ceiling: page raises in initial-page-budget increments at the
// initial depth, then depth raises one level at a time at the page
// ceiling.
func budgetLadder(initial, ceiling model.CrawlBudget) []model.CrawlBudget {
	var ladder []model.CrawlBudget

	pages := initial.MaxPages
	for pages < ceiling.MaxPages {
		pages += initial.MaxPages
		if pages > ceiling.MaxPages {
			pages = ceiling.MaxPages
		}
		ladder = append(ladder, model.CrawlBudget{MaxPages: pages, MaxDepth: initial.MaxDepth})
	}

	for depth := initial.MaxDepth + 1; depth <= ceiling.MaxDepth; depth++ {
		ladder = append(ladder, model.CrawlBudget{MaxPages: ceiling.MaxPages, MaxDepth: depth})
	}

	return ladder
}
