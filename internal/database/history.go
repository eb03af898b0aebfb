package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/clinicscan/clinicscan/internal/model"
)

// DB provides SQLite-based storage for scan history. It manages the
// connection pool and provides methods for saving and querying scans.
//
// Design decision: One database file holds all sites rather than a file
// per site. This keeps cross-site queries ("which sites still have
// unknown fields") trivial and makes backup a single-file copy.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// read performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in the given directory.
// If CreateIfNotExists is false and the database doesn't exist, an
// error is returned.
func Open(dbDir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dbDir, "clinicscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent batch saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &DB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *DB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the database file.
func (hdb *DB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *DB) createTables() error {
	schema := `
	-- Page records store individual page fetches per scan
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		depth INTEGER,
		status TEXT,
		status_code INTEGER,
		title TEXT,
		UNIQUE(site, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_site ON pages(site);
	CREATE INDEX IF NOT EXISTS idx_pages_timestamp ON pages(timestamp);

	-- Scan reports store complete scan results as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		pages_crawled INTEGER,
		unknown_fields TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_site ON scan_reports(site);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScan persists a completed scan: the full report as JSON plus one
// page record per fetched URL. Page records upsert on (site, url) so
// re-scanning a site refreshes its rows instead of duplicating them.
func (hdb *DB) SaveScan(ctx context.Context, report *model.ScanReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	unknownJSON, _ := json.Marshal(report.Clinic.UnknownFields()) //nolint:errcheck,errchkjson // a string slice; Marshal won't fail

	query := `
	INSERT INTO scan_reports (site, pages_crawled, unknown_fields, report_json)
	VALUES (?, ?, ?, ?)
	`
	if _, err := hdb.db.ExecContext(ctx, query,
		report.SiteURL,
		report.PagesCrawled(),
		string(unknownJSON),
		string(reportJSON),
	); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	for _, page := range report.Pages {
		if err := hdb.insertPage(ctx, report.SiteURL, page); err != nil {
			return err
		}
	}
	return nil
}

func (hdb *DB) insertPage(ctx context.Context, site string, page *model.Page) error {
	query := `
	INSERT INTO pages (site, url, depth, status, status_code, title)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(site, url) DO UPDATE SET
		depth = excluded.depth,
		status = excluded.status,
		status_code = excluded.status_code,
		title = excluded.title,
		timestamp = CURRENT_TIMESTAMP
	`
	if _, err := hdb.db.ExecContext(ctx, query,
		site,
		page.URL,
		page.Depth,
		page.Status.String(),
		page.StatusCode,
		page.Title,
	); err != nil {
		return fmt.Errorf("failed to insert page record: %w", err)
	}
	return nil
}

// LatestScan retrieves the most recent scan report for a site, or nil
// if the site was never scanned.
func (hdb *DB) LatestScan(ctx context.Context, site string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE site = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, site).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// HasRecentScan reports whether a site was scanned within the given
// duration. Batch runs use it to skip sites scanned moments ago.
func (hdb *DB) HasRecentScan(ctx context.Context, site string, within time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM scan_reports
	WHERE site = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(within.Seconds()))

	var count int
	if err := hdb.db.QueryRowContext(ctx, query, site, modifier).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check recent scan: %w", err)
	}
	return count > 0, nil
}

// ListScannedSites returns every site with at least one stored report.
func (hdb *DB) ListScannedSites(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT site FROM scan_reports
	ORDER BY site
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}
