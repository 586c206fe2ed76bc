package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pagescan/pagescan/internal/model"
)

// sampleReport builds a report with at least one record per variant.
func sampleReport() *model.ScrapeReport {
	report := model.NewScrapeReport("https://example.com/news")
	report.Title = "Example News"
	report.StatusCode = 200
	report.Metadata = []model.MetadataEntry{{Name: "description", Content: "news page"}}
	report.Headings = []model.Heading{{Level: "h1", Text: "Top Stories"}}
	report.Links = []model.Link{
		{Text: "About", Href: "/about", Resolved: "https://example.com/about", Internal: true},
		{Text: "Wire", Href: "https://wire.org/", Resolved: "https://wire.org/", Internal: false},
	}
	report.Images = []model.Image{{Source: "https://example.com/logo.png", Alt: "logo"}}
	report.Tables = []model.TableRow{
		{Table: 0, Cells: []string{"City", "Temp"}, Header: true},
		{Table: 0, Cells: []string{"Oslo", "12"}},
	}
	return report
}

// TestJSONWriterEmptyReport verifies an empty record set exports to JSON
// successfully, producing empty arrays.
func TestJSONWriterEmptyReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf)

	if _, err := w.Write(model.NewScrapeReport("https://example.com")); err != nil {
		t.Fatalf("JSON export of empty report should succeed: %v", err)
	}
	if !strings.Contains(buf.String(), `"links":[]`) {
		t.Errorf("expected empty array for links, got: %s", buf.String())
	}
}

// TestJSONWriterRoundTrip verifies exported JSON re-parses into an
// equivalent report with record order preserved.
func TestJSONWriterRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	report := sampleReport()
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(report); err != nil {
		t.Fatalf("failed to write JSON: %v", err)
	}

	var parsed model.ScrapeReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("failed to re-parse exported JSON: %v", err)
	}

	if parsed.URL != report.URL {
		t.Errorf("expected URL %q, got %q", report.URL, parsed.URL)
	}
	if len(parsed.Links) != 2 || parsed.Links[0].Resolved != "https://example.com/about" {
		t.Errorf("round trip changed links: %+v", parsed.Links)
	}
	if len(parsed.Tables) != 2 || parsed.Tables[1].Cells[0] != "Oslo" {
		t.Errorf("round trip changed table order: %+v", parsed.Tables)
	}
	if parsed.Summary == nil || parsed.Summary.LinkCount != 2 {
		t.Errorf("expected summary generated on write, got %+v", parsed.Summary)
	}
}

// TestCSVWriterEmptyFails verifies the empty-set CSV property: no records
// means no export, while the same empty set succeeds as JSON.
func TestCSVWriterEmptyFails(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	if err := w.WriteHeadings(nil); !errors.Is(err, ErrNoRecords) {
		t.Errorf("expected ErrNoRecords for empty headings, got %v", err)
	}
	if err := w.WriteLinks([]model.Link{}); !errors.Is(err, ErrNoRecords) {
		t.Errorf("expected ErrNoRecords for empty links, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written for empty sets, got %q", buf.String())
	}
}

// TestCSVWriterVariants tests CSV output per record variant.
func TestCSVWriterVariants(t *testing.T) {
	t.Parallel()

	t.Run("links include classification column", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := NewCSVWriter(&buf).WriteLinks([]model.Link{
			{Text: "About", Href: "/about", Resolved: "https://example.com/about", Internal: true},
		})
		if err != nil {
			t.Fatalf("failed to write links CSV: %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse CSV: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected header + 1 row, got %d records", len(records))
		}
		wantHeader := []string{"text", "href", "resolved", "internal"}
		for i, h := range wantHeader {
			if records[0][i] != h {
				t.Errorf("header[%d]: expected %q, got %q", i, h, records[0][i])
			}
		}
		if records[1][3] != "true" {
			t.Errorf("expected internal=true, got %q", records[1][3])
		}
	})

	t.Run("table rows stay ragged", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := NewCSVWriter(&buf).WriteTableRows([]model.TableRow{
			{Table: 0, Cells: []string{"a", "b", "c"}},
			{Table: 0, Cells: []string{"d"}},
		})
		if err != nil {
			t.Fatalf("failed to write tables CSV: %v", err)
		}

		r := csv.NewReader(&buf)
		r.FieldsPerRecord = -1 // ragged rows are expected
		records, err := r.ReadAll()
		if err != nil {
			t.Fatalf("failed to parse CSV: %v", err)
		}
		if len(records[1]) != 5 || len(records[2]) != 3 {
			t.Errorf("expected ragged rows preserved, got %v", records)
		}
	})
}

// TestTextWriter tests line-per-record plain text output.
func TestTextWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewTextWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("failed to write text: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"description: news page",
		"Top Stories",
		"https://example.com/about",
		"https://wire.org/",
		"https://example.com/logo.png",
		"City\tTemp",
		"Oslo\t12",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], line)
		}
	}
}

// TestMarkdownWriter tests the markdown report sections.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("failed to write markdown: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"# Scrape Report", "## Record Summary", "## Links", "## Table Rows", "mermaid"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q", want)
		}
	}
}

// TestTruncateString tests that markdown cell truncation counts runes, so
// multi-byte text is never cut mid-rune.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	got := truncateString("日本語のタイトルです", 8)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated string is not valid UTF-8: %q", got)
	}
	if got != "日本語のタ..." {
		t.Errorf("unexpected truncation: %q", got)
	}

	if s := truncateString("short", 50); s != "short" {
		t.Errorf("expected string under the limit unchanged, got %q", s)
	}
	if s := truncateString("héllo", 2); s != "hé" {
		t.Errorf("expected 2-rune cut without ellipsis, got %q", s)
	}
}

// TestExport tests directory export across formats.
func TestExport(t *testing.T) {
	t.Parallel()

	t.Run("writes one file per format plus per-variant CSVs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		paths, err := Export(sampleReport(), dir, FormatJSON, FormatText, FormatCSV)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		// 1 JSON + 1 TXT + 5 non-empty CSV variants
		if len(paths) != 7 {
			t.Errorf("expected 7 files, got %d: %v", len(paths), paths)
		}
		for _, p := range paths {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("expected file %s to exist: %v", p, err)
			}
		}
		wantJSON := filepath.Join(dir, "example.com_news.json")
		if _, err := os.Stat(wantJSON); err != nil {
			t.Errorf("expected %s: %v", wantJSON, err)
		}
	})

	t.Run("skips empty variants in CSV export", func(t *testing.T) {
		t.Parallel()

		report := model.NewScrapeReport("https://example.com")
		report.Headings = []model.Heading{{Level: "h1", Text: "only headings"}}

		dir := t.TempDir()
		paths, err := Export(report, dir, FormatCSV)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if len(paths) != 1 || !strings.HasSuffix(paths[0], "_headings.csv") {
			t.Errorf("expected only the headings CSV, got %v", paths)
		}
	})

	t.Run("propagates filesystem errors", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "does", "not", "exist")
		if _, err := Export(sampleReport(), missing, FormatJSON); err == nil {
			t.Error("expected error for missing output directory")
		}
	})
}

// TestParseFormat tests format name parsing.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{"text", FormatText, false},
		{"txt", FormatText, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestFileSlug tests URL to file name derivation.
func TestFileSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com", "example.com"},
		{"https://example.com/news/today", "example.com_news_today"},
		{"https://example.com/news/", "example.com_news"},
		{"", "report"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := FileSlug(tt.url); got != tt.want {
				t.Errorf("FileSlug(%q): expected %q, got %q", tt.url, tt.want, got)
			}
		})
	}
}
