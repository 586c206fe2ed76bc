package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/pagescan/pagescan/internal/model"
)

// headingTags is the set of tag names treated as headings.
var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Extractor extracts typed records from HTML text.
// The base URL is used to resolve relative hrefs and classify links.
type Extractor struct {
	// baseURL is the URL the page was fetched from.
	baseURL *url.URL
}

// New creates an Extractor for a page fetched from baseURL.
func New(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	return &Extractor{baseURL: u}, nil
}

// ExtractAll runs every per-variant extraction and fills the report.
// Each variant is an independent traversal; the report's existing fields
// are replaced, not appended to.
func (e *Extractor) ExtractAll(htmlText string, report *model.ScrapeReport) {
	report.Title = e.ExtractTitle(htmlText)
	report.Headings = e.ExtractHeadings(htmlText)
	report.Links = e.ExtractLinks(htmlText)
	report.Images = e.ExtractImages(htmlText)
	report.Tables = e.ExtractTableRows(htmlText)
	report.Metadata = e.ExtractMetadata(htmlText)
}

// ExtractTitle returns the trimmed text of the first <title> element,
// or an empty string when the document has none.
func (e *Extractor) ExtractTitle(htmlText string) string {
	var title string
	walk(parse(htmlText), func(n *html.Node) {
		if title == "" && n.Type == html.ElementNode && n.Data == "title" {
			title = strings.TrimSpace(textContent(n))
		}
	})
	return title
}

// ExtractHeadings returns all h1-h6 elements in document order.
// Headings whose text is empty after trimming are skipped.
func (e *Extractor) ExtractHeadings(htmlText string) []model.Heading {
	headings := make([]model.Heading, 0)
	walk(parse(htmlText), func(n *html.Node) {
		if n.Type != html.ElementNode || !headingTags[n.Data] {
			return
		}
		text := strings.TrimSpace(textContent(n))
		if text == "" {
			return
		}
		headings = append(headings, model.Heading{Level: n.Data, Text: text})
	})
	return headings
}

// ExtractLinks returns all anchor elements in document order.
// Relative hrefs are resolved against the base URL before classification;
// a link is internal when its resolved host matches the page's host.
func (e *Extractor) ExtractLinks(htmlText string) []model.Link {
	links := make([]model.Link, 0)
	walk(parse(htmlText), func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		href := strings.TrimSpace(getAttr(n, "href"))
		if href == "" {
			return
		}
		resolved := e.resolveURL(href)
		if resolved == "" {
			return
		}
		links = append(links, model.Link{
			Text:     strings.TrimSpace(textContent(n)),
			Href:     href,
			Resolved: resolved,
			Internal: e.isInternal(resolved),
		})
	})
	return links
}

// ExtractImages returns all img elements with a src attribute in document
// order. Missing alt and title attributes default to empty strings.
func (e *Extractor) ExtractImages(htmlText string) []model.Image {
	images := make([]model.Image, 0)
	walk(parse(htmlText), func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "img" {
			return
		}
		src := strings.TrimSpace(getAttr(n, "src"))
		if src == "" {
			return
		}
		images = append(images, model.Image{
			Source: e.resolveURL(src),
			Alt:    getAttr(n, "alt"),
			Title:  getAttr(n, "title"),
		})
	})
	return images
}

// parse parses HTML text into a node tree.
//
// html.Parse is error-tolerant: malformed markup produces a best-effort
// tree rather than an error, which matches how browsers behave. The rare
// failure cases (reader errors can't happen with a string) fall back to an
// empty document so extraction yields zero records instead of failing.
func parse(htmlText string) *html.Node {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		doc, _ = html.Parse(strings.NewReader(""))
	}
	return doc
}

// walk visits every node in the tree in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// textContent concatenates all descendant text nodes.
func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

// getAttr retrieves an attribute value from an HTML node.
// Missing attributes default to the empty string.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// resolveURL resolves a possibly-relative href against the base URL.
// Non-navigable schemes (javascript:, mailto:, tel:, data:) and bare
// fragments yield an empty string.
func (e *Extractor) resolveURL(href string) string {
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return e.baseURL.ResolveReference(u).String()
}

// isInternal reports whether a resolved URL points at the page's own host.
func (e *Extractor) isInternal(resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, e.baseURL.Host) {
		return true
	}
	return strings.EqualFold(u.Hostname(), e.baseURL.Hostname())
}
