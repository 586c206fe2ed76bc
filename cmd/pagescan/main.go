// Package main provides the entry point for the pagescan CLI.
//
// pagescan fetches web pages over HTTP and extracts structured records
// (headings, links, images, tables, metadata) into JSON, CSV, text, or
// Markdown files.
//
// Usage:
//
//	pagescan scrape <url> [<url>...]
//	pagescan scrape --list <file>
//
// See --help for all available options.
package main

// main is the entry point for pagescan.
func main() {
	Execute()
}
