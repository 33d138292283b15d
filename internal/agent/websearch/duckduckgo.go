// Package websearch implements the web search agent backed by the
// DuckDuckGo Instant Answer API.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
)

const agentID = "websearch"

// Agent queries the DuckDuckGo Instant Answer API.
type Agent struct {
	endpoint   string
	maxResults int
	client     *http.Client
	log        *logging.Logger
}

// New creates a web search agent. endpoint defaults to the public
// DuckDuckGo API when empty; tests point it at a local server.
func New(endpoint string, maxResults int, log *logging.Logger) *Agent {
	if endpoint == "" {
		endpoint = "https://api.duckduckgo.com"
	}
	if maxResults <= 0 {
		maxResults = 8
	}
	return &Agent{
		endpoint:   strings.TrimRight(endpoint, "/"),
		maxResults: maxResults,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        log.Sub("agent.websearch"),
	}
}

func (a *Agent) ID() string             { return agentID }
func (a *Agent) Kind() domain.AgentKind { return domain.KindWebSearch }

// ddgResponse is the subset of the Instant Answer payload we consume.
type ddgResponse struct {
	Heading        string `json:"Heading"`
	AbstractText   string `json:"AbstractText"`
	AbstractURL    string `json:"AbstractURL"`
	AbstractSource string `json:"AbstractSource"`
	RelatedTopics  []ddgTopic `json:"RelatedTopics"`
}

// ddgTopic is either a leaf result or a named group of nested topics.
type ddgTopic struct {
	Text     string     `json:"Text,omitempty"`
	FirstURL string     `json:"FirstURL,omitempty"`
	Name     string     `json:"Name,omitempty"`
	Topics   []ddgTopic `json:"Topics,omitempty"`
}

// Fetch runs the query and returns result snippets with sources.
func (a *Agent) Fetch(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"/?"+params.Encode(), nil)
	if err != nil {
		return domain.AgentResponse{}, &domain.AgentError{AgentID: agentID, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.AgentResponse{}, &domain.AgentError{AgentID: agentID, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AgentResponse{}, &domain.AgentError{AgentID: agentID, Message: "reading response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return domain.AgentResponse{}, &domain.AgentError{
			AgentID: agentID,
			Code:    resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	var parsed ddgResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.AgentResponse{}, &domain.AgentError{AgentID: agentID, Message: "parsing response: " + err.Error()}
	}

	results := a.collectResults(parsed)
	a.log.Debug().Str("query", q.Text).Int("results", len(results)).Msg("web search completed")

	return domain.AgentResponse{
		AgentID:  agentID,
		Kind:     domain.KindWebSearch,
		Content:  formatResults(q.Text, parsed, results),
		Results:  results,
		Duration: time.Since(start),
	}, nil
}

// collectResults flattens the abstract and related topics into snippets,
// capped at maxResults.
func (a *Agent) collectResults(parsed ddgResponse) []domain.SearchResult {
	var results []domain.SearchResult

	if parsed.AbstractText != "" {
		results = append(results, domain.SearchResult{
			Title:   parsed.Heading,
			URL:     parsed.AbstractURL,
			Snippet: parsed.AbstractText,
		})
	}

	var walk func(topics []ddgTopic)
	walk = func(topics []ddgTopic) {
		for _, t := range topics {
			if len(results) >= a.maxResults {
				return
			}
			if len(t.Topics) > 0 {
				walk(t.Topics)
				continue
			}
			if t.Text == "" || t.FirstURL == "" {
				continue
			}
			results = append(results, domain.SearchResult{
				Title:   topicTitle(t.Text),
				URL:     t.FirstURL,
				Snippet: t.Text,
			})
		}
	}
	walk(parsed.RelatedTopics)

	return results
}

// topicTitle takes the leading clause of a topic's text as its title.
func topicTitle(text string) string {
	if i := strings.Index(text, " - "); i > 0 {
		return text[:i]
	}
	return text
}

func formatResults(query string, parsed ddgResponse, results []domain.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Web search results for: %s\n\n", query)

	if len(results) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}

	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(&b, "   Source: %s\n", r.URL)
		}
		fmt.Fprintf(&b, "   %s\n\n", r.Snippet)
	}

	if parsed.AbstractSource != "" {
		fmt.Fprintf(&b, "Primary source: %s\n", parsed.AbstractSource)
	}
	return b.String()
}
