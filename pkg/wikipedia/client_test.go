package wikipedia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Drewraw/social-record-platform/internal/resilience"
)

type fakeWiki struct {
	search map[string][]string
	pages  map[string]map[string]any
	html   map[string]string
}

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/w/api.php":
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if q.Get("list") == "search" {
			var results []map[string]string
			for _, t := range f.search[q.Get("srsearch")] {
				results = append(results, map[string]string{"title": t})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"query": map[string]any{"search": results}})
			return
		}
		page, ok := f.pages[q.Get("titles")]
		if !ok {
			page = map[string]any{"title": q.Get("titles"), "missing": true}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"query": map[string]any{"pages": []any{page}}})
	default:
		body, ok := f.html[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}
}

const articleHTML = `<html><head><title>Ramesh Kumar - Wikipedia</title></head><body>
<div id="content"><h1>Ramesh Kumar</h1>
<p>Ramesh Kumar is an Indian politician and a member of the Lok Sabha from Wayanad. He is the son of Suresh Kumar, a former minister of Kerala who served three terms in the state legislature.</p>
<p>He graduated from the University of Kerala in 1992 with a degree in law and practised at the High Court before entering public life as a party organiser in Wayanad district.</p>
<p>Kumar was elected from Wayanad constituency in 2019 and again in 2024, becoming the first candidate from the district to win consecutive national elections.</p>
</div></body></html>`

func newFake() *fakeWiki {
	return &fakeWiki{
		search: map[string][]string{
			"Ramesh Kumar politician": {"Ramesh Kumar (cricketer)", "Ramesh Kumar"},
		},
		pages: map[string]map[string]any{
			"Ramesh Kumar (cricketer)": {
				"title":   "Ramesh Kumar (cricketer)",
				"extract": "Ramesh Kumar is an Indian cricketer.",
			},
			"Ramesh Kumar": {
				"title":    "Ramesh Kumar",
				"extract":  "Ramesh Kumar is an Indian politician.",
				"original": map[string]string{"source": "https://upload.wikimedia.org/wikipedia/commons/a/ab/Ramesh.jpg"},
			},
		},
		html: map[string]string{
			"/wiki/Ramesh_Kumar": articleHTML,
		},
	}
}

func testClient(srvURL string) Client {
	return NewClient(WithBaseURL(srvURL), WithRetry(resilience.FixedDelay(1, 0)))
}

func TestLookupPage_PicksPoliticalArticle(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newFake())
	defer srv.Close()

	page, err := testClient(srv.URL).LookupPage(context.Background(), "Ramesh Kumar")
	require.NoError(t, err)
	require.NotNil(t, page)

	assert.Equal(t, "Ramesh Kumar", page.Title)
	assert.Equal(t, srv.URL+"/wiki/Ramesh_Kumar", page.URL)
	assert.Equal(t, "Ramesh Kumar is an Indian politician.", page.Summary)
	assert.Equal(t, "https://upload.wikimedia.org/wikipedia/commons/a/ab/Ramesh.jpg", page.ImageURL)
	assert.Contains(t, page.Content, "son of Suresh Kumar")
	assert.NotContains(t, page.Content, "<p>")
}

func TestLookupPage_FallsBackToBareName(t *testing.T) {
	t.Parallel()

	fake := newFake()
	fake.search = map[string][]string{"Ramesh Kumar": {"Ramesh Kumar"}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	page, err := testClient(srv.URL).LookupPage(context.Background(), "Ramesh Kumar")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, "Ramesh Kumar", page.Title)
}

func TestLookupPage_NoSuitablePage(t *testing.T) {
	t.Parallel()

	fake := newFake()
	fake.search = map[string][]string{"Ramesh Kumar politician": {"Ramesh Kumar (cricketer)"}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	page, err := testClient(srv.URL).LookupPage(context.Background(), "Ramesh Kumar")
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestPage_DisambiguationAndMissing(t *testing.T) {
	t.Parallel()

	fake := newFake()
	fake.pages["Kumar"] = map[string]any{"title": "Kumar", "pageprops": map[string]string{"disambiguation": ""}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := testClient(srv.URL)
	page, err := c.Page(context.Background(), "Kumar")
	require.NoError(t, err)
	assert.Nil(t, page)

	page, err = c.Page(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestPage_ContentFallsBackToSummary(t *testing.T) {
	t.Parallel()

	fake := newFake()
	fake.html = map[string]string{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	page, err := testClient(srv.URL).Page(context.Background(), "Ramesh Kumar")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, page.Summary, page.Content)
}

func TestSearch_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Search(context.Background(), "x", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestMainImage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", mainImage(""))
	assert.Equal(t, "", mainImage("https://upload.wikimedia.org/x/Commons-logo.svg"))
	assert.Equal(t, "", mainImage("https://upload.wikimedia.org/x/Commons-logo.png"))
	assert.Equal(t, "https://x/y/Photo.JPG", mainImage("https://x/y/Photo.JPG"))
}
