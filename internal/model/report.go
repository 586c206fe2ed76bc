package model

import "time"

// ScrapeReport aggregates everything extracted from a single URL.
// It is the unit written to JSON output and stored in the history database.
//
// Design decision: Record slices are initialized empty, never nil, so JSON
// output always contains arrays ([]), not null. Downstream tools parsing the
// report can iterate without nil checks, and an empty scrape is
// distinguishable from a scrape that never ran.
type ScrapeReport struct {
	// URL is the page the report was produced from.
	URL string `json:"url"`

	// DateScraped is when the scrape started.
	DateScraped time.Time `json:"date_scraped"`

	// Title is the page title from the <title> tag, if any.
	Title string `json:"title,omitempty"`

	// StatusCode is the HTTP status of the final fetch attempt.
	// Zero when the fetch never received a response.
	StatusCode int `json:"status_code"`

	// Metadata contains meta tags in document order.
	Metadata []MetadataEntry `json:"metadata"`

	// Headings contains h1-h6 elements in document order.
	Headings []Heading `json:"headings"`

	// Links contains anchor elements in document order.
	Links []Link `json:"links"`

	// Images contains img elements in document order.
	Images []Image `json:"images"`

	// Tables contains table rows in document order.
	Tables []TableRow `json:"tables"`

	// Failed reports whether the scrape ended in a terminal failure.
	Failed bool `json:"failed"`

	// ErrorMessage holds the failure description when Failed is true.
	ErrorMessage string `json:"error_message,omitempty"`

	// Error holds the underlying error. Excluded from JSON because error
	// values don't serialize usefully; ErrorMessage carries the text.
	Error error `json:"-"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Summary is the per-variant count aggregation.
	// Generated lazily by NewSummary if not already set.
	Summary *Summary `json:"summary,omitempty"`
}

// NewScrapeReport creates an empty report for the given URL with the
// scrape timestamp set to now.
func NewScrapeReport(url string) *ScrapeReport {
	return &ScrapeReport{
		URL:         url,
		DateScraped: time.Now().UTC(),
		Metadata:    make([]MetadataEntry, 0),
		Headings:    make([]Heading, 0),
		Links:       make([]Link, 0),
		Images:      make([]Image, 0),
		Tables:      make([]TableRow, 0),
	}
}

// RecordCount returns the total number of extracted records across all
// variants.
func (r *ScrapeReport) RecordCount() int {
	return len(r.Metadata) + len(r.Headings) + len(r.Links) + len(r.Images) + len(r.Tables)
}

// InternalLinks returns the links classified as internal, in document order.
func (r *ScrapeReport) InternalLinks() []Link {
	links := make([]Link, 0)
	for _, l := range r.Links {
		if l.Internal {
			links = append(links, l)
		}
	}
	return links
}

// ExternalLinks returns the links classified as external, in document order.
func (r *ScrapeReport) ExternalLinks() []Link {
	links := make([]Link, 0)
	for _, l := range r.Links {
		if !l.Internal {
			links = append(links, l)
		}
	}
	return links
}

// Summary holds per-variant record counts for one URL.
// This is the "aggregation" view: counts only, no derived statistics.
type Summary struct {
	// URL is the page the summary describes.
	URL string `json:"url"`

	// DateScraped mirrors the parent report's timestamp.
	DateScraped time.Time `json:"date_scraped"`

	// HeadingCount is the number of extracted headings.
	HeadingCount int `json:"heading_count"`

	// LinkCount is the number of extracted links.
	LinkCount int `json:"link_count"`

	// InternalLinkCount is the number of links classified as internal.
	InternalLinkCount int `json:"internal_link_count"`

	// ExternalLinkCount is the number of links classified as external.
	ExternalLinkCount int `json:"external_link_count"`

	// ImageCount is the number of extracted images.
	ImageCount int `json:"image_count"`

	// TableRowCount is the number of extracted table rows.
	TableRowCount int `json:"table_row_count"`

	// MetadataCount is the number of extracted meta tags.
	MetadataCount int `json:"metadata_count"`

	// Failed mirrors the parent report's failure flag.
	Failed bool `json:"failed"`

	// Error mirrors the parent report's error message.
	Error string `json:"error,omitempty"`
}

// NewSummary computes the per-variant counts for a report.
func NewSummary(r *ScrapeReport) *Summary {
	internal := 0
	for _, l := range r.Links {
		if l.Internal {
			internal++
		}
	}

	return &Summary{
		URL:               r.URL,
		DateScraped:       r.DateScraped,
		HeadingCount:      len(r.Headings),
		LinkCount:         len(r.Links),
		InternalLinkCount: internal,
		ExternalLinkCount: len(r.Links) - internal,
		ImageCount:        len(r.Images),
		TableRowCount:     len(r.Tables),
		MetadataCount:     len(r.Metadata),
		Failed:            r.Failed,
		Error:             r.ErrorMessage,
	}
}
