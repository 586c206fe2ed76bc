package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pagescan/pagescan/internal/model"
)

// DefaultConcurrency is the default worker pool size for batch scrapes.
const DefaultConcurrency = 5

// BatchProcessor handles concurrent scraping of multiple URLs.
// It uses errgroup to manage goroutines and respect the concurrency limit.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-URL execution
// 2. It allows different batch strategies (rate limiting, streaming)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each scrape.
	// A factory ensures each URL gets a fresh pipeline instance, so no
	// state leaks between URLs.
	pipelineFactory func() *Pipeline

	// concurrency is the worker pool size.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the worker pool size.
// Default is DefaultConcurrency if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each URL to create a fresh
// pipeline instance.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scrapes multiple URLs concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker pool because it's simpler and handles the concurrency correctly.
// Each URL gets its own goroutine, but only 'concurrency' goroutines run
// simultaneously.
//
// Results are collected in completion order, not submission order: the
// per-URL pipelines are fully independent, so no cross-URL ordering exists
// to preserve. Every URL yields a report, including failed ones: a failed
// URL is recorded in its own report and never aborts sibling scrapes. The
// error return indicates cancellation, not per-URL failure.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.ScrapeReport, error) {
	bp.logger.Info("starting batch scrape",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	results := make([]*model.ScrapeReport, 0, len(urls))
	var mu sync.Mutex

	err := bp.ProcessBatchWithCallback(ctx, urls, func(report *model.ScrapeReport, _ int) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, report)
	})

	elapsed := time.Since(startTime)
	bp.logger.Info("batch scrape complete",
		"total_urls", len(urls),
		"failed", countFailed(results),
		"elapsed", elapsed,
	)

	return results, err
}

// ProcessBatchWithCallback scrapes multiple URLs and calls a callback for
// each completed scrape. This is useful for streaming results.
//
// The callback receives the report and the index of the URL in the
// original slice. It is called from the goroutine that completed the
// scrape, so it must be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(report *model.ScrapeReport, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scraping url",
				"url", url,
				"index", i+1,
				"total", len(urls),
			)

			report := model.NewScrapeReport(url)
			p := bp.pipelineFactory()

			// A per-URL error is recorded in the report; it must not
			// propagate to the errgroup or it would cancel the siblings.
			if err := p.Execute(ctx, report); err != nil {
				bp.logger.Warn("scrape failed",
					"url", url,
					"error", err,
				)
			} else {
				bp.logger.Info("scrape completed",
					"url", url,
					"records", report.RecordCount(),
				)
			}

			callback(report, i)
			return nil
		})
	}

	return g.Wait()
}

// countFailed returns the number of failed reports.
func countFailed(reports []*model.ScrapeReport) int {
	n := 0
	for _, r := range reports {
		if r.Failed {
			n++
		}
	}
	return n
}
