// Package wikidata provides a client for the Wikidata SPARQL endpoint.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Drewraw/social-record-platform/internal/resilience"
)

// Client defines the Wikidata lookups.
type Client interface {
	// LookupPerson finds a politician by English label. It returns nil, nil
	// when nothing matches.
	LookupPerson(ctx context.Context, name string) (*Person, error)
}

// Person is the structured record for one politician.
type Person struct {
	EntityURL    string
	Label        string
	Party        string
	Position     string
	Constituency string
	BirthDate    string
	Education    string
	Spouse       string
	Children     string
	Father       string
	Mother       string
}

// Option configures the Wikidata client.
type Option func(*httpClient)

// WithEndpoint sets a custom SPARQL endpoint (for testing).
func WithEndpoint(endpoint string) Option {
	return func(c *httpClient) {
		c.endpoint = endpoint
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

// WithUserAgent sets the User-Agent header. The public endpoint rejects
// anonymous clients.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	endpoint  string
	userAgent string
	http      *http.Client
	retry     resilience.RetryConfig
}

// NewClient creates a new Wikidata client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		endpoint:  "https://query.wikidata.org/sparql",
		userAgent: "profile-cli/1.0",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: resilience.FixedDelay(3, 2*time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("wikidata", "sparql")
	}
	return c
}

const personQuery = `SELECT ?person ?personLabel ?partyLabel ?positionLabel ?constituencyLabel
       ?birthDate ?educationLabel ?spouseLabel ?childrenLabel ?fatherLabel ?motherLabel
WHERE {
  ?person ?label "%s"@en .
  ?person wdt:P31 wd:Q5 .
  ?person wdt:P106 ?occupation .
  ?occupation wdt:P279* wd:Q82955 .
  OPTIONAL { ?person wdt:P102 ?party . }
  OPTIONAL { ?person wdt:P39 ?position . }
  OPTIONAL { ?person wdt:P768 ?constituency . }
  OPTIONAL { ?person wdt:P569 ?birthDate . }
  OPTIONAL { ?person wdt:P69 ?education . }
  OPTIONAL { ?person wdt:P26 ?spouse . }
  OPTIONAL { ?person wdt:P40 ?children . }
  OPTIONAL { ?person wdt:P22 ?father . }
  OPTIONAL { ?person wdt:P25 ?mother . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 1`

// BuildQuery returns the SPARQL query for name with string escaping applied.
func BuildQuery(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", " ")
	return fmt.Sprintf(personQuery, r.Replace(strings.TrimSpace(name)))
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

func (c *httpClient) LookupPerson(ctx context.Context, name string) (*Person, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("query", BuildQuery(name))
	q.Set("format", "json")
	reqURL := c.endpoint + "?" + q.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, reqURL)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "wikidata: lookup %q", name)
	}

	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "wikidata: unmarshal response")
	}
	if len(resp.Results.Bindings) == 0 {
		return nil, nil
	}

	b := resp.Results.Bindings[0]
	val := func(k string) string { return strings.TrimSpace(b[k].Value) }
	return &Person{
		EntityURL:    val("person"),
		Label:        val("personLabel"),
		Party:        val("partyLabel"),
		Position:     val("positionLabel"),
		Constituency: val("constituencyLabel"),
		BirthDate:    val("birthDate"),
		Education:    val("educationLabel"),
		Spouse:       val("spouseLabel"),
		Children:     val("childrenLabel"),
		Father:       val("fatherLabel"),
		Mother:       val("motherLabel"),
	}, nil
}

func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "wikidata: create request")
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "wikidata: request failed"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "wikidata: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("wikidata", resp.StatusCode)
	}
	return body, nil
}
