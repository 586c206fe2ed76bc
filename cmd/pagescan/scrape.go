package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/pagescan/pagescan/internal/config"
	"github.com/pagescan/pagescan/internal/database"
	"github.com/pagescan/pagescan/internal/exporter"
	"github.com/pagescan/pagescan/internal/fetcher"
	"github.com/pagescan/pagescan/internal/log"
	"github.com/pagescan/pagescan/internal/model"
	"github.com/pagescan/pagescan/internal/pipeline"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url...]",
		Short: "Scrape one or more web pages",
		Long: `Scrape fetches each URL, extracts structured records, and exports them.

For every page it extracts:
- Headings (h1-h6) in document order
- Links with resolved absolute URLs and internal/external classification
- Images with source, alt, and title attributes
- Table rows flattened across all tables
- Metadata from <meta> tags

Examples:
  # Scrape a single page to JSON (default)
  pagescan scrape https://example.com

  # Scrape several pages concurrently into CSV and text files
  pagescan scrape -F csv -F txt https://example.com https://example.org

  # Read URLs from a file, one per line
  pagescan scrape --list urls.txt

  # Slow origin: longer timeout, more retries, polite request rate
  pagescan scrape -t 90s -r 5 --rate 2 https://slow.example.org

Configuration file (.pagescan) example:
  sites:
    example.com:
      headers:
        Authorization: "Bearer token"
    slow.example.org:
      timeoutSeconds: 90
      retries: 5`,
		Args: cobra.ArbitraryArgs,
		RunE: runScrapeCmd,
	}

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().IntP("retries", "r", config.DefaultRetries,
		"Number of retries after a failed request")
	cmd.Flags().Float64("rate", 0,
		"Maximum requests per second across all workers (0 disables)")

	// Batch scraping flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent scrapes (1 forces sequential mode)")

	// Input flags
	cmd.Flags().StringP("list", "l", "",
		"File containing URLs to scrape, one per line")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pagescan in current or home directory)")

	// Export flags
	cmd.Flags().StringArrayP("format", "F", []string{"json"},
		"Export format: json, csv, txt, or markdown (repeatable)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory to write exported files to")

	// Logging
	cmd.Flags().String("log-file", "",
		"Write an execution log to the given file path")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking, optionally teeing
	// into a per-run execution log file
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return err
	}
	cfg.LogFile = logFile

	runLog, err := log.NewRunLogger(os.Stderr, cfg.LogFile, cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() {
		if err := runLog.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()
	logger := runLog.Logger
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScrape(ctx, cmd, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Retries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.RequestsPerSecond, err = cmd.Flags().GetFloat64("rate")
	if err != nil {
		return nil, err
	}

	formatNames, err := cmd.Flags().GetStringArray("format")
	if err != nil {
		return nil, err
	}
	cfg.Formats = cfg.Formats[:0]
	for _, name := range formatNames {
		format, err := exporter.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		cfg.Formats = append(cfg.Formats, format)
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// URLs from positional arguments plus the optional list file
	cfg.URLs = args

	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}
	if listPath != "" {
		listed, err := readURLList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.URLs = append(cfg.URLs, listed...)
	}

	return cfg, nil
}

// readURLList reads URLs from a file, one per line.
// Blank lines and lines starting with # are skipped.
func readURLList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open url list: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read url list: %w", err)
	}

	return urls, nil
}

// runScrape executes the scrape.
func runScrape(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scrape",
		"urls", len(cfg.URLs),
		"workers", cfg.Workers,
		"formats", len(cfg.Formats),
		"outputDir", cfg.OutputDir,
	)

	// Open database connection if saving is enabled
	var db *database.ScrapeDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	f := newFetcher(cfg, logger)

	var reports []*model.ScrapeReport
	var err error
	if len(cfg.URLs) > 1 && cfg.Workers > 1 {
		reports, err = runBatchScrape(ctx, cmd, cfg, f, db, logger)
	} else {
		reports, err = runSequentialScrape(ctx, cmd, cfg, f, db, logger)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, report := range reports {
		if report.Failed {
			failed++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nScraped %d page(s): %d succeeded, %d failed\n",
		len(reports), len(reports)-failed, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d page(s) failed", failed, len(reports))
	}
	return nil
}

// newFetcher builds the shared fetcher for this run.
// A single fetcher is shared by all workers so they pool connections and
// honor one global rate limit.
func newFetcher(cfg *config.Config, logger *slog.Logger) *fetcher.Fetcher {
	opts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithMaxRetries(cfg.Retries),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, fetcher.WithLimiter(
			rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		))
	}
	return fetcher.New(&http.Client{}, opts...)
}

// runSequentialScrape scrapes URLs one at a time, applying per-site
// configuration to each.
func runSequentialScrape(ctx context.Context, cmd *cobra.Command, cfg *config.Config, f *fetcher.Fetcher, db *database.ScrapeDB, logger *slog.Logger) ([]*model.ScrapeReport, error) {
	reports := make([]*model.ScrapeReport, 0, len(cfg.URLs))

	for _, target := range cfg.URLs {
		select {
		case <-ctx.Done():
			return reports, ctx.Err()
		default:
		}

		siteConfig := siteConfigFor(cfg, target)
		p := createPipelineForURL(f, logger, cfg, siteConfig)

		report := model.NewScrapeReport(target)

		fmt.Fprintf(cmd.OutOrStdout(), "Scraping %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, report); err != nil {
			logger.Error("scrape failed", "url", target, "error", err)
			fmt.Fprintf(os.Stderr, "Scrape error for %s: %v\n", target, err)
		} else {
			elapsed := time.Since(startTime)
			fmt.Fprintf(cmd.OutOrStdout(), "Scraped %d record(s) in %s\n",
				report.RecordCount(), elapsed.Round(time.Millisecond))
		}

		if err := saveScrapeReport(ctx, db, report, logger); err != nil {
			logger.Error("failed to save scrape report", "url", target, "error", err)
		}

		reports = append(reports, report)
	}

	return reports, nil
}

// runBatchScrape scrapes multiple URLs concurrently using BatchProcessor.
func runBatchScrape(ctx context.Context, cmd *cobra.Command, cfg *config.Config, f *fetcher.Fetcher, db *database.ScrapeDB, logger *slog.Logger) ([]*model.ScrapeReport, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "Starting batch scrape of %d urls (workers: %d)...\n\n",
		len(cfg.URLs), cfg.Workers)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch mode uses default site config only; site-specific settings are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use --workers 1 to apply per-site settings.\n\n")
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Site-specific configs would require per-URL pipeline creation
			var siteConfig config.SiteConfig
			if cfg.SiteConfigs != nil {
				siteConfig = cfg.SiteConfigs.Defaults
			}
			return createPipelineForURL(f, logger, cfg, siteConfig)
		},
		pipeline.WithConcurrency(cfg.Workers),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	reports := make([]*model.ScrapeReport, 0, len(cfg.URLs))
	err := bp.ProcessBatchWithCallback(ctx, cfg.URLs, func(report *model.ScrapeReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		if report.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] Scrape failed: %s (%s)\n",
				index+1, len(cfg.URLs), report.URL, report.ErrorMessage)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] Scraped %d record(s): %s\n",
				index+1, len(cfg.URLs), report.RecordCount(), report.URL)
		}

		if err := saveScrapeReport(ctx, db, report, logger); err != nil {
			logger.Error("failed to save scrape report", "url", report.URL, "error", err)
		}

		reports = append(reports, report)
	})

	elapsed := time.Since(startTime)
	fmt.Fprintf(cmd.OutOrStdout(), "\nBatch scrape completed in %s\n", elapsed.Round(time.Millisecond))

	return reports, err
}

// siteConfigFor returns the merged site configuration for a URL.
// The lookup key is the URL's hostname; falls back to defaults when the
// URL does not parse or has no site entry.
func siteConfigFor(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return cfg.SiteConfigs.Defaults
	}

	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}

// createPipelineForURL creates a scrape pipeline with the given configuration.
func createPipelineForURL(f *fetcher.Fetcher, logger *slog.Logger, cfg *config.Config, siteConfig config.SiteConfig) *pipeline.Pipeline {
	scrapeOpts := []pipeline.ScrapeStepOption{}

	headers := siteConfig.Headers
	if siteConfig.UserAgent != "" {
		// Header overrides are applied after the fetcher's default
		// User-Agent, so a per-site agent rides along as a header.
		merged := make(map[string]string, len(headers)+1)
		for k, v := range headers {
			merged[k] = v
		}
		merged["User-Agent"] = siteConfig.UserAgent
		headers = merged
	}
	if len(headers) > 0 {
		scrapeOpts = append(scrapeOpts, pipeline.WithHeaders(headers))
	}
	if siteConfig.Timeout() > 0 {
		scrapeOpts = append(scrapeOpts, pipeline.WithRequestTimeout(siteConfig.Timeout()))
	}
	if siteConfig.Retries != nil {
		scrapeOpts = append(scrapeOpts, pipeline.WithMaxRetries(*siteConfig.Retries))
	}

	// Continue on error so a failed fetch still reaches the summarize
	// step; the export step skips failed reports itself.
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddSteps(pipeline.DefaultSteps(f, cfg.OutputDir, cfg.Formats, scrapeOpts...)...)
	return p
}

// saveScrapeReport saves the scrape report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScrapeReport(ctx context.Context, db *database.ScrapeDB, report *model.ScrapeReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Ensure the summary is generated before saving
	if report.Summary == nil {
		report.Summary = model.NewSummary(report)
	}

	if err := db.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("failed to save scrape report: %w", err)
	}

	logger.Info("scrape report saved to database", "url", report.URL)
	return nil
}
