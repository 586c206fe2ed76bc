package model

import "strings"

// Heading represents a heading element (h1 through h6) found in a page.
// Records appear in document order; the position in the slice is the only
// identity a heading has.
type Heading struct {
	// Level is the tag name of the heading ("h1" ... "h6").
	Level string `json:"level"`

	// Text is the trimmed text content of the heading.
	Text string `json:"text"`
}

// Link represents an anchor element with its classification.
type Link struct {
	// Text is the trimmed anchor text. May be empty for image links.
	Text string `json:"text"`

	// Href is the raw href attribute as it appeared in the document.
	Href string `json:"href"`

	// Resolved is the href resolved against the page's base URL.
	// Relative hrefs become absolute here; unresolvable hrefs stay empty.
	Resolved string `json:"resolved"`

	// Internal reports whether the resolved URL points at the same host
	// as the page the link was found on.
	Internal bool `json:"internal"`
}

// Image represents an img element.
type Image struct {
	// Source is the src attribute resolved against the base URL.
	Source string `json:"source"`

	// Alt is the alt attribute. Empty string when the attribute is missing.
	Alt string `json:"alt"`

	// Title is the title attribute. Empty string when the attribute is missing.
	Title string `json:"title"`
}

// TableRow represents a single row extracted from an HTML table.
//
// Design decision: We model tables as flat rows rather than a 2D grid
// because malformed tables (uneven column counts) are common on the web.
// Each row stands alone; no alignment between rows is guaranteed.
type TableRow struct {
	// Table is the zero-based index of the table the row belongs to,
	// counting tables in document order.
	Table int `json:"table"`

	// Cells contains the trimmed text of each td/th cell in order.
	Cells []string `json:"cells"`

	// Header reports whether the row consists of th cells.
	Header bool `json:"header"`
}

// MetadataEntry represents a meta tag from the document head.
type MetadataEntry struct {
	// Name is the meta tag's name attribute, or its property attribute
	// when name is absent (OpenGraph tags use property).
	Name string `json:"name"`

	// Content is the content attribute. Empty string when missing.
	Content string `json:"content"`
}

// PrimaryText returns the field used for plain-text export.
func (h Heading) PrimaryText() string { return h.Text }

// PrimaryText returns the field used for plain-text export.
// The resolved URL is preferred because anchor text is often empty.
func (l Link) PrimaryText() string {
	if l.Resolved != "" {
		return l.Resolved
	}
	return l.Href
}

// PrimaryText returns the field used for plain-text export.
func (i Image) PrimaryText() string { return i.Source }

// PrimaryText returns the cells joined with a tab separator.
func (r TableRow) PrimaryText() string { return strings.Join(r.Cells, "\t") }

// PrimaryText returns "name: content" for readable text output.
func (m MetadataEntry) PrimaryText() string { return m.Name + ": " + m.Content }
