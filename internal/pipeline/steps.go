package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pagescan/pagescan/internal/exporter"
	"github.com/pagescan/pagescan/internal/extractor"
	"github.com/pagescan/pagescan/internal/fetcher"
	"github.com/pagescan/pagescan/internal/model"
)

// ScrapeStep fetches the page and extracts all record variants.
//
// Design decision: Fetch and extract are one step rather than two because
// the fetch result is consumed immediately by the extractor and never
// persisted; splitting them would force the page body into the report just
// to hand it between steps.
type ScrapeStep struct {
	// fetcher performs the HTTP request with retry and backoff.
	fetcher *fetcher.Fetcher

	// headers are per-site header overrides applied to the request.
	headers map[string]string

	// timeout is the per-attempt timeout. Zero means the fetcher default.
	timeout time.Duration

	// maxRetries is the retry budget. Negative means the fetcher default.
	maxRetries int
}

// ScrapeStepOption configures a ScrapeStep.
type ScrapeStepOption func(*ScrapeStep)

// WithHeaders sets per-request header overrides.
func WithHeaders(headers map[string]string) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.headers = headers
	}
}

// WithRequestTimeout sets the per-attempt timeout for the fetch.
func WithRequestTimeout(d time.Duration) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.timeout = d
	}
}

// WithMaxRetries sets the retry budget for the fetch.
func WithMaxRetries(n int) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.maxRetries = n
	}
}

// NewScrapeStep creates the fetch-and-extract step.
func NewScrapeStep(f *fetcher.Fetcher, opts ...ScrapeStepOption) *ScrapeStep {
	s := &ScrapeStep{
		fetcher:    f,
		maxRetries: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ScrapeStep) Name() string {
	return "scrape"
}

// Do fetches the report's URL and fills the report with extracted records.
// Fetch failures mark the report failed and are returned; a body that
// parses to nothing yields zero records and no error.
func (s *ScrapeStep) Do(ctx context.Context, report *model.ScrapeReport) error {
	result, err := s.fetcher.Fetch(ctx, fetcher.Request{
		URL:        report.URL,
		Headers:    s.headers,
		Timeout:    s.timeout,
		MaxRetries: s.maxRetries,
	})
	if err != nil {
		if fe := fetcher.AsFetchError(err); fe != nil {
			report.StatusCode = fe.StatusCode
		}
		return err
	}

	report.StatusCode = result.StatusCode

	ex, err := extractor.New(report.URL)
	if err != nil {
		return fmt.Errorf("cannot extract from %s: %w", report.URL, err)
	}
	ex.ExtractAll(result.Body, report)

	return nil
}

// SummarizeStep computes the per-variant record counts.
// It runs even after a failed scrape so the summary carries the failure.
type SummarizeStep struct{}

// NewSummarizeStep creates the summary step.
func NewSummarizeStep() *SummarizeStep {
	return &SummarizeStep{}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return "summarize"
}

// Do fills the report's Summary.
func (s *SummarizeStep) Do(_ context.Context, report *model.ScrapeReport) error {
	report.Summary = model.NewSummary(report)
	return nil
}

// ExportStep writes the report to the output directory in the configured
// formats.
type ExportStep struct {
	// dir is the output directory. Created if it doesn't exist.
	dir string

	// formats are the output formats to write.
	formats []exporter.Format
}

// NewExportStep creates the export step.
func NewExportStep(dir string, formats ...exporter.Format) *ExportStep {
	return &ExportStep{dir: dir, formats: formats}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do writes the report files. The exporter itself propagates filesystem
// errors, so the directory is ensured here, once, before writing.
// Failed reports are skipped: there is nothing to export, and the scrape
// failure must not be masked by an export error.
func (s *ExportStep) Do(_ context.Context, report *model.ScrapeReport) error {
	if report.Failed {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if _, err := exporter.Export(report, s.dir, s.formats...); err != nil {
		return fmt.Errorf("export failed for %s: %w", report.URL, err)
	}
	return nil
}

// DefaultSteps returns the standard scrape pipeline step sequence.
func DefaultSteps(f *fetcher.Fetcher, dir string, formats []exporter.Format, opts ...ScrapeStepOption) []Step {
	return []Step{
		NewScrapeStep(f, opts...),
		NewSummarizeStep(),
		NewExportStep(dir, formats...),
	}
}
