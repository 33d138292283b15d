package agent

import (
	"context"

	"github.com/soyeahso/finsight/internal/domain"
)

// Mock is a test double for Agent.
type Mock struct {
	AgentID   string
	AgentKind domain.AgentKind
	FetchFunc func(ctx context.Context, q domain.Query) (domain.AgentResponse, error)

	// Calls records every query passed to Fetch.
	Calls []domain.Query
}

func (m *Mock) ID() string             { return m.AgentID }
func (m *Mock) Kind() domain.AgentKind { return m.AgentKind }

func (m *Mock) Fetch(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
	m.Calls = append(m.Calls, q)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, q)
	}
	return domain.AgentResponse{
		AgentID: m.AgentID,
		Kind:    m.AgentKind,
		Content: "mock response",
	}, nil
}
