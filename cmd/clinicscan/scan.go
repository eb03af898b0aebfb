package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicscan/clinicscan/internal/config"
	"github.com/clinicscan/clinicscan/internal/database"
	"github.com/clinicscan/clinicscan/internal/extract"
	"github.com/clinicscan/clinicscan/internal/log"
	"github.com/clinicscan/clinicscan/internal/model"
	"github.com/clinicscan/clinicscan/internal/pipeline"
	"github.com/clinicscan/clinicscan/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Scan business websites and extract clinic metadata",
		Long: `Scan crawls one or more business websites and extracts their key facts:
specialty, treatment modalities, office locations, and practice size.

The crawl respects robots.txt, stays on the site's domain, and starts
with a small budget (home page plus the most promising internal links).
While any extracted field remains unknown, the budget expands: more
pages first, then more depth, up to the configured ceilings.

Examples:
  # Scan a single site
  clinicscan scan exampleclinic.com

  # Scan multiple sites concurrently
  clinicscan scan site1.com site2.com site3.com

  # Scan every URL in a file (one per line, # comments allowed)
  clinicscan scan --list targets.txt

  # Larger crawl ceilings and the exhaustive fallback
  clinicscan scan --max-total-pages 200 --exhaustive exampleclinic.com

  # Machine-readable output
  clinicscan scan --jsonl --output results.jsonl --list targets.txt

Configuration file (.clinicscan) example:
  sites:
    exampleclinic.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      depth: 3
      ignorePatterns:
        - "/blog/*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl budget flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Initial page budget per site")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Initial link depth from the home page")
	cmd.Flags().Int("max-total-pages", config.DefaultMaxTotalPages,
		"Page ceiling for budget expansion")
	cmd.Flags().Int("max-total-depth", config.DefaultMaxTotalDepth,
		"Depth ceiling for budget expansion")
	cmd.Flags().Bool("no-expand", false,
		"Disable budget expansion; crawl only the initial budget")
	cmd.Flags().Bool("exhaustive", false,
		"After expansion, crawl all discovered same-domain pages if fields remain unknown")

	// Scan behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Int("workers", config.DefaultWorkers,
		"Fetch worker pool size per site")
	cmd.Flags().Int("host-workers", config.DefaultHostWorkers,
		"Maximum concurrent requests per host")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites scanned concurrently")
	cmd.Flags().StringP("list", "l", "",
		"File with target URLs, one per line")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .clinicscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report")
	cmd.Flags().Bool("jsonl", false,
		"Output one JSON line per site")
	cmd.Flags().Bool("csv", false,
		"Output CSV, one row per site")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}
	cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, err
	}
	cfg.MaxTotalPages, err = cmd.Flags().GetInt("max-total-pages")
	if err != nil {
		return nil, err
	}
	cfg.MaxTotalDepth, err = cmd.Flags().GetInt("max-total-depth")
	if err != nil {
		return nil, err
	}

	noExpand, err := cmd.Flags().GetBool("no-expand")
	if err != nil {
		return nil, err
	}
	cfg.ExpandEnabled = !noExpand

	cfg.ExhaustiveEnabled, err = cmd.Flags().GetBool("exhaustive")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}
	cfg.HostWorkers, err = cmd.Flags().GetInt("host-workers")
	if err != nil {
		return nil, err
	}
	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// An explicitly specified file must exist; an implicit one may not.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.JSONLReport, err = cmd.Flags().GetBool("jsonl")
	if err != nil {
		return nil, err
	}
	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// The verbose flag lives on the root command; a scan command built
	// standalone (as in tests) has no such flag and stays quiet.
	if flag := cmd.Root().PersistentFlags().Lookup("verbose"); flag != nil {
		cfg.Verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return nil, err
		}
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	cfg.Targets = args

	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}
	if listPath != "" {
		listed, err := readTargetList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, listed...)
	}

	return cfg, nil
}

// readTargetList reads target URLs from a file, one per line. Blank
// lines and lines starting with # are skipped.
func readTargetList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open target list: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read target list: %w", err)
	}
	return targets, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"initial_budget", cfg.InitialBudget().String(),
		"ceiling", cfg.CeilingBudget().String(),
		"expand", cfg.ExpandEnabled,
		"exhaustive", cfg.ExhaustiveEnabled,
		"batch", cfg.BatchSize,
	)

	// Open the history database. A failure here degrades to a scan
	// without history rather than aborting.
	var db *database.DB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("scan history disabled", "error", err)
		} else {
			defer db.Close()
			logger.Info("history database opened", "dir", cfg.DBDir)
		}
	}

	extractor := extract.NewHeuristicExtractor()

	factory := func() *pipeline.Pipeline {
		p := pipeline.New(
			pipeline.WithLogger(logger),
			pipeline.WithContinueOnError(true),
		)
		p.AddStep(pipeline.NewScanStep(cfg, extractor, pipeline.WithScanLogger(logger)))
		if db != nil {
			p.AddStep(pipeline.NewHistoryStep(db, logger))
		}
		return p
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	reports, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		return err
	}

	if err := outputReports(cfg, reports); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Scanned %d site(s) in %s\n",
		len(reports), time.Since(startTime).Round(time.Millisecond))
	return nil
}

// outputReports writes the scan reports in the requested format.
func outputReports(cfg *config.Config, reports []*model.ScanReport) error {
	var output io.Writer = os.Stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer := selectWriter(cfg, output)
	if _, err := writer.WriteBatch(reports); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// selectWriter maps the format flags onto a report writer. The default
// is the human-readable text report.
func selectWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.JSONLReport:
		return report.NewJSONLWriter(output)
	case cfg.CSVReport:
		return report.NewCSVWriter(output)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
