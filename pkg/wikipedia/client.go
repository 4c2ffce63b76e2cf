// Package wikipedia provides a client for the MediaWiki action API and
// article text extraction.
package wikipedia

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Drewraw/social-record-platform/internal/resilience"
)

// Client defines the encyclopedia lookups.
type Client interface {
	// Search returns up to limit page titles matching query.
	Search(ctx context.Context, query string, limit int) ([]string, error)
	// Page fetches one article. It returns nil, nil for missing pages and
	// disambiguation pages.
	Page(ctx context.Context, title string) (*Page, error)
	// LookupPage finds the article about a politician by name. It returns
	// nil, nil when no suitable article exists.
	LookupPage(ctx context.Context, name string) (*Page, error)
}

// Page is a narrative article.
type Page struct {
	Title    string
	URL      string
	Summary  string
	Content  string
	ImageURL string
}

// DefaultKeywords mark a summary as describing a politician.
var DefaultKeywords = []string{"politician", "member of parliament", "congress", "minister", "election", "political"}

// Option configures the Wikipedia client.
type Option func(*httpClient)

// WithBaseURL sets a custom site URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithKeywords replaces the relevance keywords.
func WithKeywords(kw []string) Option {
	return func(c *httpClient) {
		c.keywords = kw
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	keywords  []string
	http      *http.Client
	retry     resilience.RetryConfig
}

// NewClient creates a new Wikipedia client for the English site.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   "https://en.wikipedia.org",
		userAgent: "profile-cli/1.0",
		keywords:  DefaultKeywords,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: resilience.FixedDelay(3, 2*time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("wikipedia", "api")
	}
	return c
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

func (c *httpClient) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("srlimit", strconv.Itoa(limit))
	q.Set("format", "json")
	q.Set("formatversion", "2")

	body, err := c.fetch(ctx, c.baseURL+"/w/api.php?"+q.Encode())
	if err != nil {
		return nil, eris.Wrapf(err, "wikipedia: search %q", query)
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "wikipedia: unmarshal search response")
	}
	titles := make([]string, 0, len(resp.Query.Search))
	for _, s := range resp.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

type pageResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			FullURL   string `json:"fullurl"`
			Extract   string `json:"extract"`
			PageProps struct {
				Disambiguation *string `json:"disambiguation"`
			} `json:"pageprops"`
			Original struct {
				Source string `json:"source"`
			} `json:"original"`
		} `json:"pages"`
	} `json:"query"`
}

func (c *httpClient) Page(ctx context.Context, title string) (*Page, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts|pageimages|info|pageprops")
	q.Set("exintro", "1")
	q.Set("explaintext", "1")
	q.Set("inprop", "url")
	q.Set("piprop", "original")
	q.Set("redirects", "1")
	q.Set("titles", title)
	q.Set("format", "json")
	q.Set("formatversion", "2")

	body, err := c.fetch(ctx, c.baseURL+"/w/api.php?"+q.Encode())
	if err != nil {
		return nil, eris.Wrapf(err, "wikipedia: page %q", title)
	}
	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "wikipedia: unmarshal page response")
	}
	if len(resp.Query.Pages) == 0 {
		return nil, nil
	}
	p := resp.Query.Pages[0]
	if p.Missing || p.PageProps.Disambiguation != nil {
		return nil, nil
	}

	page := &Page{
		Title:    p.Title,
		URL:      p.FullURL,
		Summary:  strings.TrimSpace(p.Extract),
		ImageURL: mainImage(p.Original.Source),
	}
	if page.URL == "" {
		page.URL = c.articleURL(p.Title)
	}

	content, err := c.articleText(ctx, p.Title)
	if err != nil {
		// The summary alone still supports most lookups.
		zap.L().Debug("wikipedia: article text unavailable",
			zap.String("title", p.Title),
			zap.Error(err),
		)
		content = page.Summary
	}
	page.Content = content
	return page, nil
}

func (c *httpClient) LookupPage(ctx context.Context, name string) (*Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	titles, err := c.Search(ctx, name+" politician", 5)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		titles, err = c.Search(ctx, name, 3)
		if err != nil {
			return nil, err
		}
	}
	if len(titles) > 3 {
		titles = titles[:3]
	}

	for _, title := range titles {
		page, err := c.Page(ctx, title)
		if err != nil {
			zap.L().Debug("wikipedia: skipping candidate page",
				zap.String("title", title),
				zap.Error(err),
			)
			continue
		}
		if page != nil && c.relevant(page.Summary) {
			return page, nil
		}
	}
	return nil, nil
}

func (c *httpClient) relevant(summary string) bool {
	s := strings.ToLower(summary)
	for _, kw := range c.keywords {
		if strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (c *httpClient) articleURL(title string) string {
	return c.baseURL + "/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// articleText downloads the rendered article and reduces it to readable
// text.
func (c *httpClient) articleText(ctx context.Context, title string) (string, error) {
	pageURL := c.articleURL(title)
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", eris.Wrap(err, "wikipedia: parse article url")
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return "", eris.Wrap(err, "wikipedia: extract article")
	}
	return strings.TrimSpace(article.TextContent), nil
}

var imageSkip = []string{"commons-logo", "wiki.png", "edit-icon"}

func mainImage(src string) string {
	lower := strings.ToLower(src)
	if src == "" {
		return ""
	}
	if !strings.Contains(lower, ".jpg") && !strings.Contains(lower, ".jpeg") && !strings.Contains(lower, ".png") {
		return ""
	}
	for _, s := range imageSkip {
		if strings.Contains(lower, s) {
			return ""
		}
	}
	return src
}

func (c *httpClient) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "wikipedia: create request")
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrap(err, "wikipedia: request failed"), 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "wikipedia: read response body")
		}
		if resp.StatusCode != http.StatusOK {
			return nil, resilience.StatusError("wikipedia", resp.StatusCode)
		}
		return body, nil
	})
}
