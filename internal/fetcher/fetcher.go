// Package fetcher downloads disclosure pages with per-host pacing and
// bounded retry.
package fetcher

import (
	"context"

	"github.com/Drewraw/social-record-platform/internal/document"
)

// Page is a downloaded resource.
type Page struct {
	// URL is the address that was requested.
	URL string
	// FinalURL is the address after redirects.
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher defines the interface for downloading remote pages.
type Fetcher interface {
	// Fetch downloads url. Transient failures are retried; a non-200 final
	// status is an error.
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Loader fetches and parses a page into a document tree.
type Loader interface {
	Load(ctx context.Context, url string) (*document.Document, error)
}
