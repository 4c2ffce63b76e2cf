package profile

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Drewraw/social-record-platform/internal/document"
	"github.com/Drewraw/social-record-platform/internal/fetcher"
	"github.com/Drewraw/social-record-platform/internal/model"
)

// DefaultSearchURL is the disclosure site's name search endpoint.
const DefaultSearchURL = "https://myneta.info/search_myneta.php"

var (
	// ErrNoCandidates is returned when a search finds no candidate pages.
	ErrNoCandidates = errors.New("profile: no candidate links found")
	// ErrIndexOutOfRange is returned when BuildNth asks for a missing result.
	ErrIndexOutOfRange = errors.New("profile: result index out of range")
)

// SearchResult is one candidate link from a search page.
type SearchResult struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Match is a profile built from a search result.
type Match struct {
	Result SearchResult         `json:"result"`
	Index  int                  `json:"index"`
	Total  int                  `json:"total"`
	Record *model.ProfileRecord `json:"record"`
}

// Service loads pages and builds profiles from them.
type Service struct {
	builder   *Builder
	loader    fetcher.Loader
	searchURL string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSearchURL overrides the search endpoint.
func WithSearchURL(u string) ServiceOption {
	return func(s *Service) {
		if u != "" {
			s.searchURL = u
		}
	}
}

// NewService creates a Service.
func NewService(b *Builder, loader fetcher.Loader, opts ...ServiceOption) *Service {
	s := &Service{builder: b, loader: loader, searchURL: DefaultSearchURL}
	for _, o := range opts {
		o(s)
	}
	return s
}

// BuildURL fetches a candidate page and builds its profile.
func (s *Service) BuildURL(ctx context.Context, pageURL string) (*model.ProfileRecord, error) {
	doc, err := s.loader.Load(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrapf(err, "profile: load %s", pageURL)
	}
	return s.builder.Build(ctx, doc)
}

// SearchQueryURL returns the search page address for name.
func (s *Service) SearchQueryURL(name string) string {
	sep := "?"
	if strings.Contains(s.searchURL, "?") {
		sep = "&"
	}
	return s.searchURL + sep + "q=" + url.QueryEscape(name)
}

// Search returns the candidate links on the search page for name, in page
// order.
func (s *Service) Search(ctx context.Context, name string) ([]SearchResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, eris.New("profile: empty search name")
	}
	q := s.SearchQueryURL(name)
	doc, err := s.loader.Load(ctx, q)
	if err != nil {
		return nil, eris.Wrapf(err, "profile: search %q", name)
	}

	root := doc.SiteRoot()
	var out []SearchResult
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.Contains(href, "candidate.php") {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = root + strings.TrimLeft(href, "/")
		}
		out = append(out, SearchResult{Text: document.CellText(a), URL: href})
	})

	zap.L().Info("profile: search done",
		zap.String("name", name),
		zap.String("url", q),
		zap.Int("results", len(out)),
	)
	return out, nil
}

// BuildNth searches for name and builds the n-th result, counting from 0.
func (s *Service) BuildNth(ctx context.Context, name string, n int) (*Match, error) {
	results, err := s.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, eris.Wrapf(ErrNoCandidates, "search %q", name)
	}
	if n < 0 || n >= len(results) {
		return nil, eris.Wrapf(ErrIndexOutOfRange, "index %d, found %d results", n, len(results))
	}

	picked := results[n]
	rec, err := s.BuildURL(ctx, picked.URL)
	if err != nil {
		return nil, err
	}
	return &Match{Result: picked, Index: n, Total: len(results), Record: rec}, nil
}
