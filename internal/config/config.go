package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/pagescan/pagescan/internal/exporter"
)

// Default configuration values.
// These values are chosen for typical public web pages and can all be
// overridden via CLI flags or the .pagescan configuration file.
const (
	// DefaultTimeout is the per-request timeout. 30 seconds covers slow
	// origins without leaving a hung request open indefinitely.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of retries after the first attempt.
	// With exponential backoff this means waits of 1s, 2s, and 4s before
	// giving up on a flaky origin.
	DefaultRetries = 3

	// DefaultWorkers is the worker pool size for batch scrapes.
	// Five concurrent fetches balance throughput against politeness
	// toward the scraped servers.
	DefaultWorkers = 5

	// DefaultBackoffUnit is the base wait for exponential backoff.
	// The wait before retry n is DefaultBackoffUnit << (n-1).
	DefaultBackoffUnit = 1 * time.Second

	// DefaultUserAgent identifies pagescan in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scraper traffic in their logs.
	DefaultUserAgent = "pagescan/1.0 (+https://github.com/pagescan/pagescan)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultOutputDir is the directory exported files are written to
	// when no --output flag is given.
	DefaultOutputDir = "scraped_data"

	// AppName is the application name used for XDG directory paths.
	AppName = "pagescan"
)

// Config holds all configuration options for pagescan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ExportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// URLs is the list of pages to scrape.
	// Must contain at least one URL.
	URLs []string

	// Timeout is the timeout for each HTTP request, covering all retry
	// attempts of one fetch individually.
	Timeout time.Duration

	// Retries is the number of retries after the first failed attempt.
	// Zero means each URL gets exactly one attempt.
	Retries int

	// Workers is the worker pool size when scraping multiple URLs
	// concurrently. A value of 1 forces sequential scraping.
	Workers int

	// Formats are the export formats to produce for each scraped page.
	Formats []exporter.Format

	// OutputDir is the directory exported files are written to.
	// Created automatically if it does not exist.
	OutputDir string

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify scraper traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// RequestsPerSecond caps the fetch rate across all workers.
	// Zero disables rate limiting.
	RequestsPerSecond float64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogFile is the path of the per-run execution log.
	// When empty, no execution log file is written.
	LogFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .pagescan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file. This is populated by LoadConfigFile and consulted per
	// URL during scraping.
	SiteConfigs *File

	// DBDir is the directory path for storing the SQLite database.
	// When set, scrape results are saved to the database for later
	// inspection via the history subcommand.
	// Defaults to the XDG data directory (~/.local/share/pagescan on Linux).
	DBDir string

	// SaveToDB indicates whether to save scrape results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, workers).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Retries:     DefaultRetries,
		Workers:     DefaultWorkers,
		Formats:     []exporter.Format{exporter.FormatJSON},
		OutputDir:   DefaultOutputDir,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for pagescan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/pagescan
// On macOS: ~/Library/Application Support/pagescan
// On Windows: %LOCALAPPDATA%\pagescan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagescan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/pagescan
// On macOS: ~/Library/Application Support/pagescan
// On Windows: %APPDATA%\pagescan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scraping begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one URL to scrape
	if len(c.URLs) == 0 {
		return ErrNoURL
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Zero retries is a single attempt; negative is meaningless
	if c.Retries < 0 {
		return ErrInvalidRetries
	}

	// Workers must be positive; zero would mean no scraping
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// At least one export format must be selected
	if len(c.Formats) == 0 {
		return ErrNoFormat
	}

	// MaxBodySize must be non-negative; zero means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// RequestsPerSecond must be non-negative; zero disables limiting
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRateLimit
	}

	return nil
}
