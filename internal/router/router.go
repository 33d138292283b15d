// Package router plans which agents answer a query, fans the query out
// concurrently, and aggregates the responses into one result.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/finsight/internal/agent"
	"github.com/soyeahso/finsight/internal/config"
	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
)

// Composer merges agent responses into one answer. Implemented by
// llm.Composer; nil means plain concatenation.
type Composer interface {
	Compose(ctx context.Context, q domain.Query, responses []domain.AgentResponse) (string, error)
}

// Router resolves a query mode to a set of agents, runs them
// concurrently, and aggregates their responses.
type Router struct {
	registry     *agent.Registry
	composer     Composer
	compose      string
	queryTimeout time.Duration
	agentTimeout time.Duration
	log          *logging.Logger
}

// New creates a Router over the given agent registry. composer may be
// nil; it is only consulted when cfg.Compose is "llm".
func New(registry *agent.Registry, cfg config.RouterConfig, composer Composer, log *logging.Logger) *Router {
	queryTimeout := time.Duration(cfg.QueryTimeoutSecs) * time.Second
	if queryTimeout <= 0 {
		queryTimeout = 60 * time.Second
	}
	agentTimeout := time.Duration(cfg.AgentTimeoutSecs) * time.Second
	if agentTimeout <= 0 {
		agentTimeout = 30 * time.Second
	}
	return &Router{
		registry:     registry,
		composer:     composer,
		compose:      cfg.Compose,
		queryTimeout: queryTimeout,
		agentTimeout: agentTimeout,
		log:          log.Sub("router"),
	}
}

// Plan maps a query mode to the ordered list of agent IDs that serve
// it. Team mode always lists news before finance so aggregated output
// stays stable across runs.
func Plan(mode domain.Mode) ([]string, error) {
	switch mode {
	case domain.ModeWeb:
		return []string{"websearch"}, nil
	case domain.ModeNews:
		return []string{"news"}, nil
	case domain.ModeFinance:
		return []string{"finance"}, nil
	case domain.ModeTeam:
		return []string{"news", "finance"}, nil
	}
	return nil, &domain.InvalidModeError{Mode: string(mode)}
}

// Run executes the query against the agents its mode selects and
// returns the aggregated result. An invalid mode fails before any
// agent is invoked.
func (r *Router) Run(ctx context.Context, q domain.Query) (*domain.AggregatedResult, error) {
	return r.RunWithObserver(ctx, q, nil)
}

// RunWithObserver behaves like Run but additionally invokes observer
// with each agent response as it completes. Observer calls are
// serialized.
func (r *Router) RunWithObserver(ctx context.Context, q domain.Query, observer func(domain.AgentResponse)) (*domain.AggregatedResult, error) {
	agentIDs, err := Plan(q.Mode)
	if err != nil {
		return nil, err
	}

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now().UTC()
	}
	if q.Language == "" {
		q.Language = domain.LangEnglish
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	r.log.Info().
		Str("queryId", q.ID).
		Str("mode", string(q.Mode)).
		Strs("agents", agentIDs).
		Msg("dispatching query")

	responses := make([]domain.AgentResponse, len(agentIDs))
	var observerMu sync.Mutex
	var wg sync.WaitGroup
	for i, id := range agentIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			resp := r.runAgent(ctx, id, q)
			responses[i] = resp
			if observer != nil {
				observerMu.Lock()
				observer(resp)
				observerMu.Unlock()
			}
		}(i, id)
	}
	wg.Wait()

	result := &domain.AggregatedResult{
		Query:     q,
		Responses: responses,
		Status:    statusOf(responses),
		Duration:  time.Since(start),
	}
	result.Combined = r.combine(ctx, q, result)

	r.log.Info().
		Str("queryId", q.ID).
		Str("status", string(result.Status)).
		Dur("duration", result.Duration).
		Msg("query completed")

	return result, nil
}

// runAgent invokes one agent under the per-agent timeout. Failures are
// recorded on the response so the other agents' answers survive.
func (r *Router) runAgent(ctx context.Context, id string, q domain.Query) domain.AgentResponse {
	a, ok := r.registry.Get(id)
	if !ok {
		return domain.AgentResponse{
			AgentID: id,
			Failed:  true,
			Error:   fmt.Sprintf("agent %s is not configured", id),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.agentTimeout)
	defer cancel()

	start := time.Now()
	resp, err := a.Fetch(ctx, q)
	if err != nil {
		r.log.Warn().Str("agent", id).Err(err).Msg("agent call failed")
		return domain.AgentResponse{
			AgentID:  id,
			Kind:     a.Kind(),
			Duration: time.Since(start),
			Failed:   true,
			Error:    err.Error(),
		}
	}

	resp.AgentID = id
	resp.Kind = a.Kind()
	if resp.Duration == 0 {
		resp.Duration = time.Since(start)
	}
	return resp
}

// combine produces the merged answer. With compose=llm and a working
// composer the agents' outputs are synthesized by the model; otherwise
// they are concatenated in plan order. A composer failure degrades to
// concatenation rather than failing the query.
func (r *Router) combine(ctx context.Context, q domain.Query, result *domain.AggregatedResult) string {
	if result.Status == domain.StatusFailed {
		return ""
	}

	if r.compose == "llm" && r.composer != nil {
		combined, err := r.composer.Compose(ctx, q, result.Responses)
		if err == nil {
			return combined
		}
		r.log.Warn().Str("queryId", q.ID).Err(err).Msg("composer failed, falling back to concatenation")
	}

	return concat(result.Responses)
}

// concat joins the successful responses in plan order, labelling each
// section when more than one agent answered.
func concat(responses []domain.AgentResponse) string {
	var ok []domain.AgentResponse
	for _, resp := range responses {
		if !resp.Failed && strings.TrimSpace(resp.Content) != "" {
			ok = append(ok, resp)
		}
	}
	if len(ok) == 1 {
		return strings.TrimSpace(ok[0].Content)
	}

	var b strings.Builder
	for i, resp := range ok {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## %s\n\n%s", sectionTitle(resp.Kind), strings.TrimSpace(resp.Content))
	}
	return b.String()
}

func sectionTitle(kind domain.AgentKind) string {
	switch kind {
	case domain.KindWebSearch:
		return "Web"
	case domain.KindNews:
		return "News"
	case domain.KindFinance:
		return "Finance"
	}
	return string(kind)
}

func statusOf(responses []domain.AgentResponse) domain.Status {
	failed := 0
	for _, resp := range responses {
		if resp.Failed {
			failed++
		}
	}
	switch failed {
	case 0:
		return domain.StatusOK
	case len(responses):
		return domain.StatusFailed
	}
	return domain.StatusPartial
}
