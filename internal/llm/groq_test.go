package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqClientComplete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "qwen/qwen3-32b",
			"choices": [{"message": {"content": "TSLA is up today."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 18}
		}`))
	}))
	defer srv.Close()

	c := NewGroqClient("test-key", "qwen/qwen3-32b", srv.URL)
	resp, err := c.Complete(context.Background(), CompletionRequest{
		System:    "You are helpful.",
		Messages:  []Message{{Role: RoleUser, Content: "How is TSLA doing?"}},
		MaxTokens: 256,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "qwen/qwen3-32b", gotBody["model"])
	assert.Equal(t, float64(256), gotBody["max_tokens"])

	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "You are helpful.", first["content"])

	assert.Equal(t, "TSLA is up today.", resp.Content)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, 120, resp.Usage.InputTokens)
	assert.Equal(t, 18, resp.Usage.OutputTokens)
}

func TestGroqClientRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit exceeded"}}`))
	}))
	defer srv.Close()

	c := NewGroqClient("test-key", "qwen/qwen3-32b", srv.URL)
	_, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)

	provErr, ok := err.(*ProviderError)
	require.True(t, ok)
	assert.Equal(t, "groq", provErr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, provErr.Code)
}

func TestGroqClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model": "qwen/qwen3-32b", "choices": []}`))
	}))
	defer srv.Close()

	c := NewGroqClient("test-key", "qwen/qwen3-32b", srv.URL)
	_, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}
