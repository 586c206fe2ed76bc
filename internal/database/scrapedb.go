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

	"github.com/pagescan/pagescan/internal/model"
)

// ScrapeDB provides SQLite-based storage for scrape reports.
// It manages connection pooling and provides methods for saving and
// querying past scrape runs.
//
// Design decision: We use a single database file for all scraped URLs
// rather than separate files per site. This simplifies history queries
// and backup/restore operations.
type ScrapeDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScrapeDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScrapeDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScrapeDB, error) {
	dbPath := filepath.Join(dbDir, "pagescan.db")

	// Check if we should create the database or require it to exist
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

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
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

	// SQLite only supports one writer, but multiple readers can improve
	// performance
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScrapeDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScrapeDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScrapeDB) createTables() error {
	schema := `
	-- Scrape reports store complete scrape results as JSON, plus a
	-- record summary for listing history without loading the full report
	CREATE TABLE IF NOT EXISTS scrape_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		failed INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL,
		record_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_url ON scrape_reports(url);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scrape_reports(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport saves a complete scrape report as JSON.
// The report's summary is stored alongside it so history listings can
// show record counts without deserializing the full report.
func (sdb *ScrapeDB) SaveReport(ctx context.Context, report *model.ScrapeReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}
	summaryJSON, _ := json.Marshal(summary) //nolint:errcheck,errchkjson // summary is a plain struct; Marshal won't fail

	failed := 0
	if report.Failed {
		failed = 1
	}

	query := `
	INSERT INTO scrape_reports (url, status_code, failed, report_json, record_summary)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err = sdb.db.ExecContext(ctx, query,
		report.URL,
		report.StatusCode,
		failed,
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scrape report: %w", err)
	}

	return nil
}

// GetLatestReport retrieves the most recent scrape report for a URL.
// Returns nil without error when the URL has never been scraped.
func (sdb *ScrapeDB) GetLatestReport(ctx context.Context, url string) (*model.ScrapeReport, error) {
	query := `
	SELECT report_json FROM scrape_reports
	WHERE url = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, url).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scrape report: %w", err)
	}

	var report model.ScrapeReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListScrapedURLs returns a list of all URLs with at least one stored report.
func (sdb *ScrapeDB) ListScrapedURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM scrape_reports
	ORDER BY url
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// GetHistory retrieves all scrape reports for a URL, newest first.
func (sdb *ScrapeDB) GetHistory(ctx context.Context, url string) ([]*model.ScrapeReport, error) {
	query := `
	SELECT report_json FROM scrape_reports
	WHERE url = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get scrape history: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScrapeReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.ScrapeReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ReportMetadata contains summary information about a stored report.
// This is used for displaying scrape history without loading the full report.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// URL is the scraped page.
	URL string

	// Timestamp is when the scrape was performed.
	Timestamp time.Time

	// StatusCode is the final HTTP status of the scrape.
	StatusCode int

	// Failed reports whether the scrape failed.
	Failed bool

	// Summary contains per-variant record counts.
	Summary *model.Summary
}

// GetHistoryWithMetadata retrieves report metadata for a URL, newest first.
// This is more efficient than GetHistory when only metadata is needed.
// An empty url returns metadata for every stored report.
func (sdb *ScrapeDB) GetHistoryWithMetadata(ctx context.Context, url string) ([]ReportMetadata, error) {
	query := `
	SELECT id, url, timestamp, status_code, failed, record_summary
	FROM scrape_reports
	`
	args := make([]any, 0, 1)
	if url != "" {
		query += " WHERE url = ?"
		args = append(args, url)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get scrape history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var failed int
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.URL, &timestamp, &meta.StatusCode, &failed, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.Failed = failed != 0

		if summaryJSON.Valid && summaryJSON.String != "" {
			var summary model.Summary
			if err := json.Unmarshal([]byte(summaryJSON.String), &summary); err == nil {
				meta.Summary = &summary
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReportByID retrieves a scrape report by its database ID.
// Returns nil without error when no report has that ID.
func (sdb *ScrapeDB) GetReportByID(ctx context.Context, id int64) (*model.ScrapeReport, error) {
	query := `
	SELECT report_json FROM scrape_reports
	WHERE id = ?
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scrape report: %w", err)
	}

	var report model.ScrapeReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
