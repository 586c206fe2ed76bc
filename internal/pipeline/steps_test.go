package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pagescan/pagescan/internal/exporter"
	"github.com/pagescan/pagescan/internal/fetcher"
	"github.com/pagescan/pagescan/internal/model"
)

// testPage is a small but complete page exercising every record variant.
const testPage = `<html>
<head>
	<title>Step Test</title>
	<meta name="description" content="step test page">
</head>
<body>
	<h1>Main</h1>
	<h2>Sub</h2>
	<a href="/local">local</a>
	<a href="https://elsewhere.org/">away</a>
	<img src="/pic.png" alt="pic">
	<table><tr><th>K</th><th>V</th></tr><tr><td>a</td><td>1</td></tr></table>
</body>
</html>`

// newTestFetcher builds a fetcher against the given server with quiet logs.
func newTestFetcher(server *httptest.Server) *fetcher.Fetcher {
	return fetcher.New(server.Client(), fetcher.WithLogger(testLogger()))
}

// TestScrapeStep tests the combined fetch-and-extract step.
func TestScrapeStep(t *testing.T) {
	t.Parallel()

	t.Run("fills the report from the fetched page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(testPage))
		}))
		defer server.Close()

		step := NewScrapeStep(newTestFetcher(server))
		report := model.NewScrapeReport(server.URL)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("scrape step failed: %v", err)
		}

		if report.Title != "Step Test" {
			t.Errorf("expected title extracted, got %q", report.Title)
		}
		if report.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", report.StatusCode)
		}
		if len(report.Headings) != 2 || len(report.Links) != 2 ||
			len(report.Images) != 1 || len(report.Tables) != 2 || len(report.Metadata) != 1 {
			t.Errorf("unexpected extraction counts: %+v", model.NewSummary(report))
		}
		// The relative link resolves against the test server's host.
		if !report.Links[0].Internal || report.Links[1].Internal {
			t.Errorf("unexpected link classification: %+v", report.Links)
		}
	})

	t.Run("reports fetch failure with status code", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		step := NewScrapeStep(newTestFetcher(server))
		report := model.NewScrapeReport(server.URL)

		err := step.Do(context.Background(), report)
		if err == nil {
			t.Fatal("expected error for 404")
		}
		if report.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404 recorded, got %d", report.StatusCode)
		}
	})

	t.Run("applies header overrides", func(t *testing.T) {
		t.Parallel()

		var gotHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeader = r.Header.Get("X-Scrape-Token")
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		step := NewScrapeStep(newTestFetcher(server),
			WithHeaders(map[string]string{"X-Scrape-Token": "abc"}),
		)
		report := model.NewScrapeReport(server.URL)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("scrape step failed: %v", err)
		}
		if gotHeader != "abc" {
			t.Errorf("expected header override applied, got %q", gotHeader)
		}
	})
}

// TestSummarizeStep tests summary generation.
func TestSummarizeStep(t *testing.T) {
	t.Parallel()

	report := model.NewScrapeReport("https://example.com")
	report.Headings = []model.Heading{{Level: "h1", Text: "A"}}

	step := NewSummarizeStep()
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if report.Summary == nil || report.Summary.HeadingCount != 1 {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
}

// TestExportStep tests file export behavior.
func TestExportStep(t *testing.T) {
	t.Parallel()

	t.Run("creates the directory and writes files", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		report := model.NewScrapeReport("https://example.com")
		report.Headings = []model.Heading{{Level: "h1", Text: "A"}}

		step := NewExportStep(dir, exporter.FormatJSON, exporter.FormatText)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("export step failed: %v", err)
		}

		for _, name := range []string{"example.com.json", "example.com.txt"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("expected %s written: %v", name, err)
			}
		}
	})

	t.Run("skips failed reports", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		report := model.NewScrapeReport("https://example.com")
		report.Failed = true
		report.ErrorMessage = "fetch failed"

		step := NewExportStep(dir, exporter.FormatJSON)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("export of failed report should be a no-op, got: %v", err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("expected no output directory for a failed report")
		}
	})
}

// TestDefaultSteps tests the standard step sequence.
func TestDefaultSteps(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPage))
	}))
	defer server.Close()

	dir := t.TempDir()
	p := New(WithLogger(testLogger()))
	p.AddSteps(DefaultSteps(newTestFetcher(server), dir, []exporter.Format{exporter.FormatJSON})...)

	if got := p.StepNames(); len(got) != 3 || got[0] != "scrape" || got[1] != "summarize" || got[2] != "export" {
		t.Fatalf("unexpected step sequence: %v", got)
	}

	report := model.NewScrapeReport(server.URL)
	if err := p.Execute(context.Background(), report); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if report.Summary == nil {
		t.Error("expected summary generated")
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		t.Errorf("expected exported files in %s: %v", dir, err)
	}
}
