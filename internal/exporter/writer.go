package exporter

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagescan/pagescan/internal/model"
)

// Writer defines the interface for report output.
// Implementations write a full scrape report in one format.
//
// Design decision: We use an interface so different formats and
// destinations share one API. Writers can target files, stdout, or
// in-memory buffers interchangeably.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ScrapeReport) (int, error)
}

// MultiWriter writes a report to multiple Writers in sequence.
// Useful for emitting, say, JSON and text output in one run.
//
// Design decision: This is a separate type rather than io.MultiWriter
// because our Writer interface writes reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written. Stops on the first error encountered.
func (m *MultiWriter) Write(report *model.ScrapeReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Format identifies an output format.
type Format string

// Supported output formats.
const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatText     Format = "txt"
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, csv, txt, or markdown)", s)
	}
}

// Export writes the report to dir in the given formats and returns the
// paths of all files written.
//
// File names derive from the report URL's host and path. CSV output
// produces one file per non-empty record variant; variants with no records
// are skipped rather than failing the export (use CSVWriter directly to get
// the empty-set error). The directory must already exist: filesystem errors
// propagate to the caller.
func Export(report *model.ScrapeReport, dir string, formats ...Format) ([]string, error) {
	base := FileSlug(report.URL)
	written := make([]string, 0, len(formats))

	for _, format := range formats {
		switch format {
		case FormatCSV:
			paths, err := exportCSVFiles(report, dir, base)
			written = append(written, paths...)
			if err != nil {
				return written, err
			}
		case FormatJSON, FormatText, FormatMarkdown:
			path := filepath.Join(dir, base+"."+extension(format))
			if err := exportFile(report, format, path); err != nil {
				return written, err
			}
			written = append(written, path)
		default:
			return written, fmt.Errorf("unknown output format %q", format)
		}
	}

	return written, nil
}

// exportFile writes one single-file format to path.
func exportFile(report *model.ScrapeReport, format Format, path string) error {
	f, err := os.Create(path) //nolint:gosec // Output path is user-chosen by design
	if err != nil {
		return err
	}

	var w Writer
	switch format {
	case FormatJSON:
		w = NewJSONWriter(f, WithPrettyPrint())
	case FormatText:
		w = NewTextWriter(f)
	case FormatMarkdown:
		w = NewMarkdownWriter(f)
	}

	_, werr := w.Write(report)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// extension maps a format to its file extension.
func extension(format Format) string {
	if format == FormatMarkdown {
		return "md"
	}
	return string(format)
}

// FileSlug derives a filesystem-safe base name from a URL.
// "https://example.com/news/today" becomes "example.com_news_today".
func FileSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return sanitize(rawURL)
	}

	slug := u.Host
	path := strings.Trim(u.Path, "/")
	if path != "" {
		slug += "_" + path
	}
	return sanitize(slug)
}

// sanitize replaces characters that are unsafe in file names.
func sanitize(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "?", "_", "&", "_", "=", "_", " ", "_")
	s = replacer.Replace(s)
	if s == "" {
		return "report"
	}
	return s
}
