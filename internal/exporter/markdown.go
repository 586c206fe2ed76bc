package exporter

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/pagescan/pagescan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScrapeReport) (int, error) {
	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, summary)
	w.writeMetadata(md, report)
	w.writeHeadings(md, report)
	w.writeLinks(md, report)
	w.writeImages(md, report)
	w.writeTables(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scrape information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScrapeReport) {
	md.H1("Scrape Report")
	md.PlainText("")

	title := report.Title
	if title == "" {
		title = "-"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + report.URL + "`"},
			{"Scrape Date", report.DateScraped.Format("2006-01-02 15:04:05 MST")},
			{"Title", title},
			{"Status Code", strconv.Itoa(report.StatusCode)},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on report state.
func (w *MarkdownWriter) statusText(report *model.ScrapeReport) string {
	if report.Failed {
		return "❌ Failed - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the record count summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Record Summary")
	md.PlainText("")

	total := summary.HeadingCount + summary.LinkCount + summary.ImageCount +
		summary.TableRowCount + summary.MetadataCount

	md.Table(markdown.TableSet{
		Header: []string{"Variant", "Count"},
		Rows: [][]string{
			{"Metadata", strconv.Itoa(summary.MetadataCount)},
			{"Headings", strconv.Itoa(summary.HeadingCount)},
			{"Links", strconv.Itoa(summary.LinkCount)},
			{"↳ internal", strconv.Itoa(summary.InternalLinkCount)},
			{"↳ external", strconv.Itoa(summary.ExternalLinkCount)},
			{"Images", strconv.Itoa(summary.ImageCount)},
			{"Table Rows", strconv.Itoa(summary.TableRowCount)},
			{"**Total**", "**" + strconv.Itoa(total) + "**"},
		},
	})
	md.PlainText("")

	if total > 0 {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of the record distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Record Distribution"),
		piechart.WithShowData(true),
	)

	if summary.MetadataCount > 0 {
		chart.LabelAndIntValue("Metadata", uint64(summary.MetadataCount))
	}
	if summary.HeadingCount > 0 {
		chart.LabelAndIntValue("Headings", uint64(summary.HeadingCount))
	}
	if summary.LinkCount > 0 {
		chart.LabelAndIntValue("Links", uint64(summary.LinkCount))
	}
	if summary.ImageCount > 0 {
		chart.LabelAndIntValue("Images", uint64(summary.ImageCount))
	}
	if summary.TableRowCount > 0 {
		chart.LabelAndIntValue("Table Rows", uint64(summary.TableRowCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeMetadata writes the meta tag section.
func (w *MarkdownWriter) writeMetadata(md *markdown.Markdown, report *model.ScrapeReport) {
	if len(report.Metadata) == 0 {
		return
	}

	md.H2("Metadata")
	md.PlainText("")

	rows := make([][]string, len(report.Metadata))
	for i, m := range report.Metadata {
		rows[i] = []string{m.Name, truncateString(m.Content, 80)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Content"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeHeadings writes the heading section.
func (w *MarkdownWriter) writeHeadings(md *markdown.Markdown, report *model.ScrapeReport) {
	if len(report.Headings) == 0 {
		return
	}

	md.H2("Headings")
	md.PlainText("")

	rows := make([][]string, len(report.Headings))
	for i, h := range report.Headings {
		rows[i] = []string{h.Level, truncateString(h.Text, 80)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Level", "Text"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeLinks writes the link section.
func (w *MarkdownWriter) writeLinks(md *markdown.Markdown, report *model.ScrapeReport) {
	if len(report.Links) == 0 {
		return
	}

	md.H2("Links")
	md.PlainText("")

	rows := make([][]string, len(report.Links))
	for i, l := range report.Links {
		kind := "external"
		if l.Internal {
			kind = "internal"
		}
		text := l.Text
		if text == "" {
			text = "-"
		}
		rows[i] = []string{
			truncateString(text, 40),
			truncateString(l.Resolved, 60),
			kind,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Text", "Resolved URL", "Kind"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeImages writes the image section.
func (w *MarkdownWriter) writeImages(md *markdown.Markdown, report *model.ScrapeReport) {
	if len(report.Images) == 0 {
		return
	}

	md.H2("Images")
	md.PlainText("")

	rows := make([][]string, len(report.Images))
	for i, img := range report.Images {
		alt := img.Alt
		if alt == "" {
			alt = "-"
		}
		rows[i] = []string{truncateString(img.Source, 60), truncateString(alt, 40)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Alt"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeTables writes the table row section.
func (w *MarkdownWriter) writeTables(md *markdown.Markdown, report *model.ScrapeReport) {
	if len(report.Tables) == 0 {
		return
	}

	md.H2("Table Rows")
	md.PlainText("")

	rows := make([][]string, len(report.Tables))
	for i, r := range report.Tables {
		kind := "data"
		if r.Header {
			kind = "header"
		}
		rows[i] = []string{
			strconv.Itoa(r.Table),
			kind,
			truncateString(r.PrimaryText(), 80),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Table", "Row", "Cells"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pagescan](https://github.com/pagescan/pagescan)*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
// Counting runes rather than bytes keeps multi-byte text valid UTF-8.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
