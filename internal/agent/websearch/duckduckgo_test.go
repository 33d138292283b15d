package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent", "")
}

const sampleResponse = `{
	"Heading": "Tesla, Inc.",
	"AbstractText": "Tesla, Inc. is an American electric vehicle manufacturer.",
	"AbstractURL": "https://en.wikipedia.org/wiki/Tesla,_Inc.",
	"AbstractSource": "Wikipedia",
	"RelatedTopics": [
		{"Text": "Elon Musk - CEO of Tesla", "FirstURL": "https://example.com/musk"},
		{"Name": "Products", "Topics": [
			{"Text": "Model S - electric sedan", "FirstURL": "https://example.com/models"}
		]}
	]
}`

func TestFetch_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Tesla", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	a := New(srv.URL, 8, testLogger())
	resp, err := a.Fetch(context.Background(), domain.Query{Text: "Tesla", Mode: domain.ModeWeb})
	require.NoError(t, err)

	assert.Equal(t, "websearch", resp.AgentID)
	assert.Equal(t, domain.KindWebSearch, resp.Kind)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "Tesla, Inc.", resp.Results[0].Title)
	assert.Equal(t, "Elon Musk", resp.Results[1].Title) // title split at " - "
	assert.Equal(t, "https://example.com/models", resp.Results[2].URL)
	assert.Contains(t, resp.Content, "Web search results for: Tesla")
	assert.Contains(t, resp.Content, "Primary source: Wikipedia")
	assert.False(t, resp.Failed)
}

func TestFetch_MaxResultsCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	a := New(srv.URL, 1, testLogger())
	resp, err := a.Fetch(context.Background(), domain.Query{Text: "Tesla"})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestFetch_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"RelatedTopics": []}`))
	}))
	defer srv.Close()

	a := New(srv.URL, 8, testLogger())
	resp, err := a.Fetch(context.Background(), domain.Query{Text: "xyzzy"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Contains(t, resp.Content, "No results found")
}

func TestFetch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := New(srv.URL, 8, testLogger())
	_, err := a.Fetch(context.Background(), domain.Query{Text: "Tesla"})
	require.Error(t, err)

	var agentErr *domain.AgentError
	require.ErrorAs(t, err, &agentErr)
	assert.Equal(t, http.StatusTooManyRequests, agentErr.Code)
	assert.Equal(t, "websearch", agentErr.AgentID)
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(srv.URL, 8, testLogger())
	_, err := a.Fetch(ctx, domain.Query{Text: "Tesla"})
	require.Error(t, err)
}
