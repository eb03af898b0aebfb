package config

import "errors"

// Configuration validation errors.
//
// Design decision: Package-level sentinel errors rather than ad-hoc
// errors.New calls inside Validate(). Callers branch with errors.Is while
// the messages stay human-readable.
var (
	// ErrNoTarget is returned when no seed URL or list file was given.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --list")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBudget is returned when the initial page budget is not
	// positive or the depth budget is negative.
	ErrInvalidBudget = errors.New("invalid crawl budget: max-pages must be positive and max-depth non-negative")

	// ErrCeilingBelowInitial is returned when an expansion ceiling is
	// smaller than the initial budget. Budgets only grow.
	ErrCeilingBelowInitial = errors.New("invalid expansion ceiling: total ceilings must be at least the initial budget")

	// ErrInvalidWorkers is returned when a worker pool size is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one output
	// format flag is set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose at most one of --json, --jsonl, --csv, --markdown")
)
