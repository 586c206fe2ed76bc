// Package model defines the core data structures used throughout pagescan.
//
// This package contains the following main types:
//   - Request: Parameters for a single page fetch
//   - Heading, Link, Image, TableRow, MetadataEntry: Extracted record variants
//   - ScrapeReport: The full structured result for one URL
//   - Summary: Per-variant record counts for quick inspection
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (fetcher, extractor, exporter, pipeline)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
