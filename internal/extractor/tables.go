package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pagescan/pagescan/internal/model"
)

// ExtractTableRows returns every table row in document order.
//
// Rows are extracted row-by-row with no alignment guarantees: malformed
// tables with uneven column counts produce rows of uneven length, and that
// is preserved in the output. Rows without any cell are skipped.
func (e *Extractor) ExtractTableRows(htmlText string) []model.TableRow {
	rows := make([]model.TableRow, 0)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return rows
	}

	doc.Find("table").Each(func(tableIndex int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			// A nested table's rows also match the outer Find; they
			// belong to the inner table's own index, not this one.
			if tr.Closest("table").Get(0) != table.Get(0) {
				return
			}
			cells := make([]string, 0)
			header := true
			tr.Children().Filter("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cellText(cell))
				if !cell.Is("th") {
					header = false
				}
			})
			if len(cells) == 0 {
				return
			}
			rows = append(rows, model.TableRow{
				Table:  tableIndex,
				Cells:  cells,
				Header: header,
			})
		})
	})

	return rows
}

// cellText returns the trimmed text of a cell, excluding any table nested
// inside it. Nested table text is reported by that table's own rows.
func cellText(cell *goquery.Selection) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range cell.Nodes {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	return strings.TrimSpace(sb.String())
}

// ExtractMetadata returns every meta tag carrying a name (or, for OpenGraph
// style tags, a property) attribute, in document order. A missing content
// attribute defaults to the empty string.
func (e *Extractor) ExtractMetadata(htmlText string) []model.MetadataEntry {
	entries := make([]model.MetadataEntry, 0)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return entries
	}

	doc.Find("meta").Each(func(_ int, meta *goquery.Selection) {
		name := meta.AttrOr("name", "")
		if name == "" {
			name = meta.AttrOr("property", "")
		}
		if name == "" {
			return
		}
		entries = append(entries, model.MetadataEntry{
			Name:    name,
			Content: meta.AttrOr("content", ""),
		})
	})

	return entries
}
