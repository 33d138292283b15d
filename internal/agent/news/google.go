// Package news implements the news agent backed by the Google Custom
// Search JSON API.
package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const agentID = "news"

// fetchCount is how many items we request before deduplication.
// The agent keeps the top maxItems unique ones.
const fetchCount = 10

// Agent finds the latest news about a topic via Google Custom Search.
type Agent struct {
	svc      *customsearch.Service
	engineID string
	maxItems int
	log      *logging.Logger
}

// New creates a news agent. endpoint overrides the API base URL for tests;
// leave it empty for production use.
func New(ctx context.Context, apiKey, engineID, endpoint string, maxItems int, log *logging.Logger) (*Agent, error) {
	if apiKey == "" || engineID == "" {
		return nil, errors.New("news: apiKey and engineID are required")
	}
	if maxItems <= 0 {
		maxItems = 4
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating customsearch service: %w", err)
	}

	return &Agent{
		svc:      svc,
		engineID: engineID,
		maxItems: maxItems,
		log:      log.Sub("agent.news"),
	}, nil
}

func (a *Agent) ID() string             { return agentID }
func (a *Agent) Kind() domain.AgentKind { return domain.KindNews }

// Fetch returns the latest unique headlines for the query topic,
// searching in the query's language (English or French).
func (a *Agent) Fetch(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
	start := time.Now()

	call := a.svc.Cse.List().
		Q(q.Text).
		Cx(a.engineID).
		Num(fetchCount).
		Sort("date").
		Lr(languageRestrict(q.Language))

	resp, err := call.Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return domain.AgentResponse{}, &domain.AgentError{
				AgentID: agentID,
				Code:    gerr.Code,
				Message: gerr.Message,
			}
		}
		return domain.AgentResponse{}, &domain.AgentError{AgentID: agentID, Message: err.Error()}
	}

	headlines := dedupe(resp.Items, a.maxItems)
	a.log.Debug().
		Str("query", q.Text).
		Str("lang", q.Language).
		Int("fetched", len(resp.Items)).
		Int("kept", len(headlines)).
		Msg("news search completed")

	return domain.AgentResponse{
		AgentID:   agentID,
		Kind:      domain.KindNews,
		Content:   formatHeadlines(q.Text, headlines),
		Headlines: headlines,
		Duration:  time.Since(start),
	}, nil
}

// languageRestrict maps a query language to a Custom Search lr value.
func languageRestrict(lang string) string {
	if lang == domain.LangFrench {
		return "lang_fr"
	}
	return "lang_en"
}

// dedupe drops items with duplicate titles and keeps the first max unique ones.
func dedupe(items []*customsearch.Result, max int) []domain.Headline {
	seen := make(map[string]bool, len(items))
	var out []domain.Headline
	for _, item := range items {
		if item == nil || item.Title == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(item.Title))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, domain.Headline{
			Title:   item.Title,
			URL:     item.Link,
			Source:  item.DisplayLink,
			Snippet: item.Snippet,
		})
		if len(out) >= max {
			break
		}
	}
	return out
}

func formatHeadlines(query string, headlines []domain.Headline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Latest news for: %s\n\n", query)

	if len(headlines) == 0 {
		b.WriteString("No news found.\n")
		return b.String()
	}

	for i, h := range headlines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h.Title)
		if h.Source != "" {
			fmt.Fprintf(&b, "   Source: %s\n", h.Source)
		}
		fmt.Fprintf(&b, "   %s\n", h.URL)
		if h.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", h.Snippet)
		}
		b.WriteString("\n")
	}
	return b.String()
}
