package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/clinicscan/clinicscan/internal/model"
)

// Default configuration values. The crawl defaults match the behavior the
// system was tuned for: small business websites where the interesting
// pages (about, team, locations, contact) sit within two clicks of the
// home page.
const (
	// DefaultMaxPages is the initial page budget for the first crawl
	// round. Twenty pages cover the relevant sections of most clinic
	// sites without fetching the blog archive.
	DefaultMaxPages = 20

	// DefaultMaxDepth is the initial depth budget. Clinic sites almost
	// always link their metadata-bearing pages from the home page or
	// from a section index one level down.
	DefaultMaxDepth = 2

	// DefaultMaxTotalPages is the outer page ceiling the expansion
	// controller escalates toward when fields remain unresolved.
	DefaultMaxTotalPages = 120

	// DefaultMaxTotalDepth is the outer depth ceiling for expansion.
	DefaultMaxTotalDepth = 3

	// ExhaustivePageCap is the safety ceiling for the optional final
	// exhaustive round that crawls all discovered same-domain pages.
	ExhaustivePageCap = 500

	// DefaultTimeout is the per-request timeout. Business sites on
	// shared hosting can be slow, but 20 seconds is enough to separate
	// slow from dead.
	DefaultTimeout = 20 * time.Second

	// DefaultWorkers is the size of the fetch worker pool.
	DefaultWorkers = 4

	// DefaultHostWorkers caps concurrent requests to a single host,
	// independent of pool size. The crawler only visits one domain per
	// site today, but the cap is per-host so multi-domain batches stay
	// polite without code changes.
	DefaultHostWorkers = 2

	// DefaultBatchSize is the number of sites scanned concurrently when
	// a URL list is given.
	DefaultBatchSize = 4

	// DefaultMaxBodySize limits response bodies to 5MB. HTML pages
	// beyond that are overwhelmingly generated listings with no clinic
	// metadata.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent identifies clinicscan in HTTP requests so site
	// operators can recognize the traffic.
	DefaultUserAgent = "clinicscan/1.0 (+https://github.com/clinicscan/clinicscan)"

	// AppName is used for XDG directory paths.
	AppName = "clinicscan"
)

// Config holds all options for a clinicscan run.
//
// Design decision: A single flat struct, populated from CLI flags and
// passed through the application by injection. The option count is small
// enough that nested sub-structs would add indirection without benefit.
type Config struct {
	// Targets are the seed URLs to scan.
	Targets []string

	// MaxPages and MaxDepth form the initial crawl budget.
	MaxPages int
	MaxDepth int

	// MaxTotalPages and MaxTotalDepth are the expansion ceilings.
	MaxTotalPages int
	MaxTotalDepth int

	// ExpandEnabled controls whether the expansion controller escalates
	// budgets while extracted fields remain unresolved.
	ExpandEnabled bool

	// ExhaustiveEnabled permits one final exhaustive round (all
	// discovered same-domain pages up to ExhaustivePageCap) when
	// escalation alone does not resolve every field.
	ExhaustiveEnabled bool

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Workers is the fetch worker pool size.
	Workers int

	// HostWorkers caps concurrent requests per host.
	HostWorkers int

	// BatchSize is the number of concurrent site scans.
	BatchSize int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is an explicit path to the .clinicscan file. Empty
	// means search the current directory and then the home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// Output format selection. At most one of JSONReport, JSONLReport,
	// CSVReport, MarkdownReport may be set; none means the simple
	// human-readable report.
	JSONReport     bool
	JSONLReport    bool
	CSVReport      bool
	MarkdownReport bool

	// ReportFile is the output path. Empty writes to stdout.
	ReportFile string

	// SaveToDB persists scan results to the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	DBDir string
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		MaxPages:      DefaultMaxPages,
		MaxDepth:      DefaultMaxDepth,
		MaxTotalPages: DefaultMaxTotalPages,
		MaxTotalDepth: DefaultMaxTotalDepth,
		ExpandEnabled: true,
		Timeout:       DefaultTimeout,
		Workers:       DefaultWorkers,
		HostWorkers:   DefaultHostWorkers,
		BatchSize:     DefaultBatchSize,
	}
}

// InitialBudget returns the budget for the first crawl round.
func (c *Config) InitialBudget() model.CrawlBudget {
	return model.CrawlBudget{MaxPages: c.MaxPages, MaxDepth: c.MaxDepth}
}

// CeilingBudget returns the outer expansion ceilings as a budget.
func (c *Config) CeilingBudget() model.CrawlBudget {
	return model.CrawlBudget{MaxPages: c.MaxTotalPages, MaxDepth: c.MaxTotalDepth}
}

// Validate checks the configuration for consistency. It returns one of
// the package sentinel errors so callers can branch with errors.Is.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages <= 0 || c.MaxDepth < 0 {
		return ErrInvalidBudget
	}
	if c.MaxTotalPages < c.MaxPages || c.MaxTotalDepth < c.MaxDepth {
		return ErrCeilingBelowInitial
	}
	if c.Workers <= 0 || c.HostWorkers <= 0 {
		return ErrInvalidWorkers
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if count := countTrue(c.JSONReport, c.JSONLReport, c.CSVReport, c.MarkdownReport); count > 1 {
		return ErrConflictingReportFormats
	}
	return nil
}

func countTrue(vs ...bool) int {
	n := 0
	for _, v := range vs {
		if v {
			n++
		}
	}
	return n
}

// XDGDataDir returns the directory for persistent application data
// (the scan history database).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
