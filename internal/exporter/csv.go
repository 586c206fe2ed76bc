package exporter

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pagescan/pagescan/internal/model"
)

// ErrNoRecords is returned when a CSV export is attempted on an empty
// record set. With no records there is nothing to derive a data row from,
// and an empty CSV file would be indistinguishable from a failed export.
var ErrNoRecords = errors.New("no records to export: cannot write CSV for an empty record set")

// Variant names used for CSV file naming.
const (
	VariantHeadings = "headings"
	VariantLinks    = "links"
	VariantImages   = "images"
	VariantTables   = "tables"
	VariantMetadata = "metadata"
)

// CSVWriter outputs one record variant as CSV.
// Each variant has its own header row derived from the record's field
// names; rows appear in extraction order.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// WriteHeadings writes the headings variant.
func (w *CSVWriter) WriteHeadings(headings []model.Heading) error {
	if len(headings) == 0 {
		return ErrNoRecords
	}
	rows := make([][]string, 0, len(headings))
	for _, h := range headings {
		rows = append(rows, []string{h.Level, h.Text})
	}
	return w.write([]string{"level", "text"}, rows)
}

// WriteLinks writes the links variant.
func (w *CSVWriter) WriteLinks(links []model.Link) error {
	if len(links) == 0 {
		return ErrNoRecords
	}
	rows := make([][]string, 0, len(links))
	for _, l := range links {
		rows = append(rows, []string{l.Text, l.Href, l.Resolved, strconv.FormatBool(l.Internal)})
	}
	return w.write([]string{"text", "href", "resolved", "internal"}, rows)
}

// WriteImages writes the images variant.
func (w *CSVWriter) WriteImages(images []model.Image) error {
	if len(images) == 0 {
		return ErrNoRecords
	}
	rows := make([][]string, 0, len(images))
	for _, img := range images {
		rows = append(rows, []string{img.Source, img.Alt, img.Title})
	}
	return w.write([]string{"source", "alt", "title"}, rows)
}

// WriteTableRows writes the table rows variant.
// Rows may be ragged: the cells follow the fixed columns, one CSV field per
// cell, with no padding to a common width.
func (w *CSVWriter) WriteTableRows(tableRows []model.TableRow) error {
	if len(tableRows) == 0 {
		return ErrNoRecords
	}
	rows := make([][]string, 0, len(tableRows))
	for _, r := range tableRows {
		row := []string{strconv.Itoa(r.Table), strconv.FormatBool(r.Header)}
		row = append(row, r.Cells...)
		rows = append(rows, row)
	}
	return w.write([]string{"table", "header", "cells"}, rows)
}

// WriteMetadata writes the metadata variant.
func (w *CSVWriter) WriteMetadata(entries []model.MetadataEntry) error {
	if len(entries) == 0 {
		return ErrNoRecords
	}
	rows := make([][]string, 0, len(entries))
	for _, m := range entries {
		rows = append(rows, []string{m.Name, m.Content})
	}
	return w.write([]string{"name", "content"}, rows)
}

// write emits the header followed by all rows.
func (w *CSVWriter) write(header []string, rows [][]string) error {
	cw := csv.NewWriter(w.output)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportCSVFiles writes one CSV file per non-empty record variant.
// Returns the paths written. Empty variants are skipped; a report with no
// records at all yields ErrNoRecords.
func exportCSVFiles(report *model.ScrapeReport, dir, base string) ([]string, error) {
	if report.RecordCount() == 0 {
		return nil, ErrNoRecords
	}

	variants := []struct {
		name  string
		empty bool
		write func(w *CSVWriter) error
	}{
		{VariantHeadings, len(report.Headings) == 0, func(w *CSVWriter) error { return w.WriteHeadings(report.Headings) }},
		{VariantLinks, len(report.Links) == 0, func(w *CSVWriter) error { return w.WriteLinks(report.Links) }},
		{VariantImages, len(report.Images) == 0, func(w *CSVWriter) error { return w.WriteImages(report.Images) }},
		{VariantTables, len(report.Tables) == 0, func(w *CSVWriter) error { return w.WriteTableRows(report.Tables) }},
		{VariantMetadata, len(report.Metadata) == 0, func(w *CSVWriter) error { return w.WriteMetadata(report.Metadata) }},
	}

	written := make([]string, 0, len(variants))
	for _, v := range variants {
		if v.empty {
			continue
		}

		path := filepath.Join(dir, base+"_"+v.name+".csv")
		f, err := os.Create(path) //nolint:gosec // Output path is user-chosen by design
		if err != nil {
			return written, err
		}

		werr := v.write(NewCSVWriter(f))
		cerr := f.Close()
		if werr != nil {
			return written, werr
		}
		if cerr != nil {
			return written, cerr
		}
		written = append(written, path)
	}

	return written, nil
}
