// Package document wraps a parsed HTML page with the URL it was fetched from.
package document

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// ErrMalformedInput is returned when a page cannot be parsed into a tree.
var ErrMalformedInput = errors.New("document: malformed input")

// Document is a queryable page tree plus its source URL.
type Document struct {
	doc       *goquery.Document
	sourceURL string
}

// Parse reads an HTML page. Empty input, parser failures and input with no
// markup at all (plain text, JSON) are reported as ErrMalformedInput.
func Parse(r io.Reader, sourceURL string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedInput, "read %s: %v", sourceURL, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, eris.Wrapf(ErrMalformedInput, "empty page %s", sourceURL)
	}
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedInput, "parse %s: %v", sourceURL, err)
	}
	gq := goquery.NewDocumentFromNode(root)
	// html.Parse synthesizes html/head/body, so only real elements count.
	if gq.Find("head *, body *").Length() == 0 {
		return nil, eris.Wrapf(ErrMalformedInput, "no markup in %s", sourceURL)
	}
	return &Document{
		doc:       gq,
		sourceURL: sourceURL,
	}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s, sourceURL string) (*Document, error) {
	return Parse(strings.NewReader(s), sourceURL)
}

// URL returns the page's source URL.
func (d *Document) URL() string {
	return d.sourceURL
}

// Selection returns the root selection for querying.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Find runs a CSS selector against the whole page.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Title returns the trimmed text of the first <title> element.
func (d *Document) Title() string {
	return CellText(d.doc.Find("title").First())
}

// Text returns the whitespace-collapsed text of the whole page.
func (d *Document) Text() string {
	return CellText(d.doc.Selection)
}

// BaseURL returns the directory used to resolve relative links: scheme,
// host and first path segment when the page lives below one, otherwise the
// site root.
func (d *Document) BaseURL() string {
	return BaseURL(d.sourceURL)
}

// SiteRoot returns scheme://host/ for the page.
func (d *Document) SiteRoot() string {
	u, err := url.Parse(d.sourceURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}

// BaseURL computes the link base for rawURL. See Document.BaseURL.
func BaseURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	root := u.Scheme + "://" + u.Host + "/"
	path := strings.TrimPrefix(u.Path, "/")
	if i := strings.Index(path, "/"); i > 0 {
		return root + path[:i+1]
	}
	return root
}

// Resolve turns href into an absolute URL against base. Absolute hrefs are
// returned unchanged.
func Resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if base == "" {
		return href
	}
	if strings.HasPrefix(href, "/") {
		if u, err := url.Parse(base); err == nil && u.Host != "" {
			return u.Scheme + "://" + u.Host + href
		}
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "./")
}
