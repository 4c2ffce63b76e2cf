package wikidata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Drewraw/social-record-platform/internal/resilience"
)

const bindingJSON = `{"head":{"vars":[]},"results":{"bindings":[{
	"person":{"type":"uri","value":"http://www.wikidata.org/entity/Q123"},
	"personLabel":{"type":"literal","value":"Ramesh Kumar"},
	"partyLabel":{"type":"literal","value":"Bharatiya Janata Party"},
	"positionLabel":{"type":"literal","value":"member of the Lok Sabha"},
	"birthDate":{"type":"literal","value":"1970-05-14T00:00:00Z"},
	"fatherLabel":{"type":"literal","value":"Suresh Kumar"},
	"spouseLabel":{"type":"literal","value":"Anita Kumar"}
}]}}`

func TestLookupPerson_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Contains(t, r.URL.Query().Get("query"), `"Ramesh Kumar"@en`)

		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(bindingJSON))
	}))
	defer srv.Close()

	client := NewClient(WithEndpoint(srv.URL), WithUserAgent("test-agent"))
	got, err := client.LookupPerson(context.Background(), "Ramesh Kumar")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "http://www.wikidata.org/entity/Q123", got.EntityURL)
	assert.Equal(t, "Bharatiya Janata Party", got.Party)
	assert.Equal(t, "member of the Lok Sabha", got.Position)
	assert.Equal(t, "1970-05-14T00:00:00Z", got.BirthDate)
	assert.Equal(t, "Suresh Kumar", got.Father)
	assert.Equal(t, "Anita Kumar", got.Spouse)
	assert.Empty(t, got.Education)
}

func TestLookupPerson_NoMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"bindings":[]}}`))
	}))
	defer srv.Close()

	got, err := NewClient(WithEndpoint(srv.URL)).LookupPerson(context.Background(), "Nobody Known")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookupPerson_EmptyName(t *testing.T) {
	t.Parallel()

	got, err := NewClient(WithEndpoint("http://127.0.0.1:1")).LookupPerson(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookupPerson_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(bindingJSON))
	}))
	defer srv.Close()

	client := NewClient(WithEndpoint(srv.URL), WithRetry(resilience.FixedDelay(3, 0)))
	got, err := client.LookupPerson(context.Background(), "Ramesh Kumar")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLookupPerson_PermanentError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(WithEndpoint(srv.URL), WithRetry(resilience.FixedDelay(3, 0))).LookupPerson(context.Background(), "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestBuildQuery_Escapes(t *testing.T) {
	t.Parallel()

	q := BuildQuery(`A "B" \ C`)
	assert.Contains(t, q, `"A \"B\" \\ C"@en`)
	assert.Contains(t, q, "LIMIT 1")
}
