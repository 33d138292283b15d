// Package agent defines the backend agent contract and registry.
//
// An agent wraps one external data source (web search, news, or finance)
// behind a uniform query-in/response-out interface. Agents are stateless;
// each Fetch is a single request/response exchange.
package agent

import (
	"context"

	"github.com/soyeahso/finsight/internal/domain"
)

// Agent is the contract every backend agent implements.
type Agent interface {
	// ID returns the agent's registry identifier ("websearch", "news", "finance").
	ID() string

	// Kind classifies the responses this agent produces.
	Kind() domain.AgentKind

	// Fetch answers a query against the agent's external data source.
	// Implementations must honor ctx cancellation and return a
	// *domain.AgentError when the upstream provider fails.
	Fetch(ctx context.Context, q domain.Query) (domain.AgentResponse, error)
}
