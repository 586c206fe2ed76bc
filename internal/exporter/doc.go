// Package exporter serializes scrape results to output files.
//
// This package contains writers for the supported output formats:
//   - JSONWriter: Pretty-printed full report for tool integration
//   - CSVWriter: One file per record variant with a derived header row
//   - TextWriter: One line per record's primary text field
//   - MarkdownWriter: Human-readable report with summary tables
//
// Design decision: We separate exporting from the report data structures
// (which live in the model package) so new output formats can be added
// without touching the core types. Writers implement the Writer interface,
// allowing them to be composed for multi-format output.
//
// Filesystem errors are propagated to the caller unwrapped by policy:
// callers are expected to ensure target directories exist beforehand.
package exporter
