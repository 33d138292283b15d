package router

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/finsight/internal/agent"
	"github.com/soyeahso/finsight/internal/config"
	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
)

func testRegistry(t *testing.T) (*agent.Registry, *agent.Mock, *agent.Mock, *agent.Mock) {
	t.Helper()
	log := logging.New(nil, "silent", "")

	web := &agent.Mock{AgentID: "websearch", AgentKind: domain.KindWebSearch,
		FetchFunc: func(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
			return domain.AgentResponse{Content: "web results"}, nil
		}}
	news := &agent.Mock{AgentID: "news", AgentKind: domain.KindNews,
		FetchFunc: func(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
			return domain.AgentResponse{Content: "top headlines"}, nil
		}}
	finance := &agent.Mock{AgentID: "finance", AgentKind: domain.KindFinance,
		FetchFunc: func(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
			return domain.AgentResponse{Content: "TSLA at 242.50"}, nil
		}}

	reg := agent.NewRegistry(log)
	reg.Register(web)
	reg.Register(news)
	reg.Register(finance)
	return reg, web, news, finance
}

func newTestRouter(reg *agent.Registry, composer Composer, compose string) *Router {
	cfg := config.RouterConfig{Compose: compose, QueryTimeoutSecs: 5, AgentTimeoutSecs: 2}
	return New(reg, cfg, composer, logging.New(nil, "silent", ""))
}

func TestPlan(t *testing.T) {
	cases := []struct {
		mode domain.Mode
		want []string
	}{
		{domain.ModeWeb, []string{"websearch"}},
		{domain.ModeNews, []string{"news"}},
		{domain.ModeFinance, []string{"finance"}},
		{domain.ModeTeam, []string{"news", "finance"}},
	}
	for _, tc := range cases {
		got, err := Plan(tc.mode)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := Plan(domain.Mode("crypto"))
	var invalidErr *domain.InvalidModeError
	require.ErrorAs(t, err, &invalidErr)
}

func TestRunSingleModeOneResponse(t *testing.T) {
	for _, tc := range []struct {
		mode    domain.Mode
		agentID string
	}{
		{domain.ModeWeb, "websearch"},
		{domain.ModeNews, "news"},
		{domain.ModeFinance, "finance"},
	} {
		reg, _, _, _ := testRegistry(t)
		r := newTestRouter(reg, nil, "concat")

		result, err := r.Run(context.Background(), domain.Query{Text: "anything", Mode: tc.mode})
		require.NoError(t, err)
		require.Len(t, result.Responses, 1)
		assert.Equal(t, tc.agentID, result.Responses[0].AgentID)
		assert.Equal(t, domain.StatusOK, result.Status)
		assert.NotEmpty(t, result.Combined)
	}
}

func TestRunTeamModeOrdering(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	r := newTestRouter(reg, nil, "concat")

	// Repeat to catch ordering races in the fan-out.
	for i := 0; i < 20; i++ {
		result, err := r.Run(context.Background(), domain.Query{Text: "Tesla", Mode: domain.ModeTeam})
		require.NoError(t, err)
		require.Len(t, result.Responses, 2)
		assert.Equal(t, "news", result.Responses[0].AgentID)
		assert.Equal(t, "finance", result.Responses[1].AgentID)
	}
}

func TestRunInvalidModeNoAgentCalls(t *testing.T) {
	reg, web, news, finance := testRegistry(t)
	r := newTestRouter(reg, nil, "concat")

	_, err := r.Run(context.Background(), domain.Query{Text: "x", Mode: domain.Mode("bogus")})
	var invalidErr *domain.InvalidModeError
	require.ErrorAs(t, err, &invalidErr)

	assert.Empty(t, web.Calls)
	assert.Empty(t, news.Calls)
	assert.Empty(t, finance.Calls)
}

func TestRunTeamPartialFailure(t *testing.T) {
	reg, _, _, finance := testRegistry(t)
	finance.FetchFunc = func(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
		return domain.AgentResponse{}, &domain.AgentError{AgentID: "finance", Code: 502, Message: "upstream error"}
	}
	r := newTestRouter(reg, nil, "concat")

	result, err := r.Run(context.Background(), domain.Query{Text: "Tesla stock and news", Mode: domain.ModeTeam})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPartial, result.Status)
	require.Len(t, result.Responses, 2)
	assert.False(t, result.Responses[0].Failed)
	assert.Equal(t, "top headlines", result.Responses[0].Content)
	assert.True(t, result.Responses[1].Failed)
	assert.Contains(t, result.Responses[1].Error, "upstream error")
	assert.Contains(t, result.Combined, "top headlines")
	assert.NotContains(t, result.Combined, "upstream error")
}

func TestRunAllAgentsFail(t *testing.T) {
	reg, _, news, finance := testRegistry(t)
	boom := func(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
		return domain.AgentResponse{}, errors.New("boom")
	}
	news.FetchFunc = boom
	finance.FetchFunc = boom
	r := newTestRouter(reg, nil, "concat")

	result, err := r.Run(context.Background(), domain.Query{Text: "x", Mode: domain.ModeTeam})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Empty(t, result.Combined)
}

func TestRunMissingAgentMarkedFailed(t *testing.T) {
	log := logging.New(nil, "silent", "")
	reg := agent.NewRegistry(log)
	reg.Register(&agent.Mock{AgentID: "finance", AgentKind: domain.KindFinance,
		FetchFunc: func(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
			return domain.AgentResponse{Content: "TSLA at 242.50"}, nil
		}})
	r := newTestRouter(reg, nil, "concat")

	result, err := r.Run(context.Background(), domain.Query{Text: "Tesla", Mode: domain.ModeTeam})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPartial, result.Status)
	assert.True(t, result.Responses[0].Failed)
	assert.Contains(t, result.Responses[0].Error, "not configured")
	assert.Equal(t, "TSLA at 242.50", result.Responses[1].Content)
}

func TestRunFillsQueryDefaults(t *testing.T) {
	reg, _, news, _ := testRegistry(t)
	r := newTestRouter(reg, nil, "concat")

	result, err := r.Run(context.Background(), domain.Query{Text: "élections", Mode: domain.ModeNews})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Query.ID)
	assert.False(t, result.Query.Timestamp.IsZero())
	require.Len(t, news.Calls, 1)
	assert.Equal(t, domain.LangEnglish, news.Calls[0].Language)
}

func TestRunConcatSectionsInPlanOrder(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	r := newTestRouter(reg, nil, "concat")

	result, err := r.Run(context.Background(), domain.Query{Text: "Tesla", Mode: domain.ModeTeam})
	require.NoError(t, err)

	newsIdx := strings.Index(result.Combined, "## News")
	financeIdx := strings.Index(result.Combined, "## Finance")
	require.GreaterOrEqual(t, newsIdx, 0)
	require.Greater(t, financeIdx, newsIdx)
	assert.Contains(t, result.Combined, "top headlines")
	assert.Contains(t, result.Combined, "TSLA at 242.50")
}

type stubComposer struct {
	out  string
	err  error
	got  []domain.AgentResponse
	seen int
}

func (s *stubComposer) Compose(ctx context.Context, q domain.Query, responses []domain.AgentResponse) (string, error) {
	s.seen++
	s.got = responses
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func TestRunComposeLLM(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	comp := &stubComposer{out: "synthesized answer"}
	r := newTestRouter(reg, comp, "llm")

	result, err := r.Run(context.Background(), domain.Query{Text: "Tesla", Mode: domain.ModeTeam})
	require.NoError(t, err)

	assert.Equal(t, "synthesized answer", result.Combined)
	assert.Equal(t, 1, comp.seen)
	require.Len(t, comp.got, 2)
}

func TestRunComposerFailureFallsBackToConcat(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	comp := &stubComposer{err: errors.New("provider down")}
	r := newTestRouter(reg, comp, "llm")

	result, err := r.Run(context.Background(), domain.Query{Text: "Tesla", Mode: domain.ModeTeam})
	require.NoError(t, err)

	assert.Contains(t, result.Combined, "top headlines")
	assert.Contains(t, result.Combined, "TSLA at 242.50")
}

func TestRunWithObserverStreamsResponses(t *testing.T) {
	reg, _, _, _ := testRegistry(t)
	r := newTestRouter(reg, nil, "concat")

	var mu sync.Mutex
	var seen []string
	result, err := r.RunWithObserver(context.Background(),
		domain.Query{Text: "Tesla", Mode: domain.ModeTeam},
		func(resp domain.AgentResponse) {
			mu.Lock()
			seen = append(seen, resp.AgentID)
			mu.Unlock()
		})
	require.NoError(t, err)
	require.Len(t, result.Responses, 2)
	assert.ElementsMatch(t, []string{"news", "finance"}, seen)
}

func TestRunAgentTimeout(t *testing.T) {
	log := logging.New(nil, "silent", "")
	reg := agent.NewRegistry(log)
	reg.Register(&agent.Mock{AgentID: "websearch", AgentKind: domain.KindWebSearch,
		FetchFunc: func(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
			select {
			case <-ctx.Done():
				return domain.AgentResponse{}, ctx.Err()
			case <-time.After(5 * time.Second):
				return domain.AgentResponse{Content: "too late"}, nil
			}
		}})

	cfg := config.RouterConfig{Compose: "concat", QueryTimeoutSecs: 5, AgentTimeoutSecs: 1}
	r := New(reg, cfg, nil, log)

	start := time.Now()
	result, err := r.Run(context.Background(), domain.Query{Text: "x", Mode: domain.ModeWeb})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.True(t, result.Responses[0].Failed)
}
