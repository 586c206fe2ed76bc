package exporter

import (
	"io"
	"strings"

	"github.com/pagescan/pagescan/internal/model"
)

// TextWriter outputs reports as plain text: one line per record's primary
// text field, in extraction order, grouped by variant.
//
// Design decision: We use plain text with no ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easy to pipe to files or other tools
type TextWriter struct {
	baseWriter

	// headers controls whether each variant is preceded by a section line.
	// Disabled for raw line-per-record output.
	headers bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithSectionHeaders prefixes each record variant with a section line.
func WithSectionHeaders() TextWriterOption {
	return func(w *TextWriter) {
		w.headers = true
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs every record's primary text, newline-joined.
// Variants appear in a fixed order: metadata, headings, links, images,
// tables. Within a variant, lines follow extraction order.
func (w *TextWriter) Write(report *model.ScrapeReport) (int, error) {
	var sb strings.Builder

	w.section(&sb, "metadata", len(report.Metadata))
	for _, m := range report.Metadata {
		sb.WriteString(m.PrimaryText())
		sb.WriteByte('\n')
	}

	w.section(&sb, "headings", len(report.Headings))
	for _, h := range report.Headings {
		sb.WriteString(h.PrimaryText())
		sb.WriteByte('\n')
	}

	w.section(&sb, "links", len(report.Links))
	for _, l := range report.Links {
		sb.WriteString(l.PrimaryText())
		sb.WriteByte('\n')
	}

	w.section(&sb, "images", len(report.Images))
	for _, img := range report.Images {
		sb.WriteString(img.PrimaryText())
		sb.WriteByte('\n')
	}

	w.section(&sb, "tables", len(report.Tables))
	for _, r := range report.Tables {
		sb.WriteString(r.PrimaryText())
		sb.WriteByte('\n')
	}

	return io.WriteString(w.output, sb.String())
}

// section writes a variant header line when headers are enabled and the
// variant is non-empty.
func (w *TextWriter) section(sb *strings.Builder, name string, count int) {
	if !w.headers || count == 0 {
		return
	}
	sb.WriteString("== ")
	sb.WriteString(name)
	sb.WriteString(" ==\n")
}
