package fetcher

import (
	"bytes"
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"

	"github.com/Drewraw/social-record-platform/internal/document"
)

// PageLoader fetches pages and parses them into document trees.
type PageLoader struct {
	fetcher Fetcher
}

// NewPageLoader creates a PageLoader over f.
func NewPageLoader(f Fetcher) *PageLoader {
	return &PageLoader{fetcher: f}
}

// Load implements Loader. The body is decoded to UTF-8 using the declared
// or sniffed charset. The document keeps the requested URL as its source.
func (l *PageLoader) Load(ctx context.Context, url string) (*document.Document, error) {
	page, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	r, err := charset.NewReader(bytes.NewReader(page.Body), page.ContentType)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: decode %s", url)
	}
	return document.Parse(r, page.URL)
}
