package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
)

// composerSystemPrompt instructs the model how to merge agent outputs.
const composerSystemPrompt = `You are a research editor. You receive raw outputs from ` +
	`specialist research agents (web search, news, financial data) about a single user query. ` +
	`Write one combined answer. Always include the sources the agents cite. ` +
	`Use tables to display financial data. If an agent reported a failure, mention that ` +
	`its data is unavailable; never invent data to fill the gap.`

// Composer synthesizes one combined answer from multiple agent responses.
type Composer struct {
	client    Client
	maxTokens int
	log       *logging.Logger
}

// NewComposer creates a composer over the given provider client.
func NewComposer(client Client, maxTokens int, log *logging.Logger) *Composer {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Composer{
		client:    client,
		maxTokens: maxTokens,
		log:       log.Sub("llm.composer"),
	}
}

// Compose merges the agent responses into a single answer. At least one
// successful response is required.
func (c *Composer) Compose(ctx context.Context, q domain.Query, responses []domain.AgentResponse) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("no LLM client configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User query: %s\n\n", q.Text)
	for _, resp := range responses {
		fmt.Fprintf(&b, "### Agent: %s (%s)\n", resp.AgentID, resp.Kind)
		if resp.Failed {
			fmt.Fprintf(&b, "FAILED: %s\n\n", resp.Error)
			continue
		}
		b.WriteString(resp.Content)
		b.WriteString("\n\n")
	}

	resp, err := c.client.Complete(ctx, CompletionRequest{
		System:    composerSystemPrompt,
		Messages:  []Message{{Role: RoleUser, Content: b.String()}},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("composing result: %w", err)
	}

	c.log.Debug().
		Str("model", resp.Model).
		Int("inputTokens", resp.Usage.InputTokens).
		Int("outputTokens", resp.Usage.OutputTokens).
		Msg("composed aggregate answer")

	return strings.TrimSpace(resp.Content), nil
}
