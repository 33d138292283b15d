package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/soyeahso/finsight/internal/logging"
)

// FailoverClient wraps a provider registry to try fallback providers
// when the primary fails with a retryable error.
type FailoverClient struct {
	registry  *Registry
	primary   string
	fallbacks []string
	log       *logging.Logger
}

// NewFailoverClient creates a client that tries the primary provider
// first, then walks the fallback list on retryable errors (429, 5xx).
func NewFailoverClient(registry *Registry, primary string, fallbacks []string, log *logging.Logger) *FailoverClient {
	return &FailoverClient{
		registry:  registry,
		primary:   primary,
		fallbacks: fallbacks,
		log:       log.Sub("llm.failover"),
	}
}

// Name returns the primary provider name.
func (f *FailoverClient) Name() string { return f.primary }

// Complete tries the primary provider, falling back on retryable errors.
func (f *FailoverClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	providers := append([]string{f.primary}, f.fallbacks...)

	var lastErr error
	for _, name := range providers {
		client, err := f.registry.Resolve(name)
		if err != nil {
			f.log.Debug().Str("provider", name).Err(err).Msg("provider unavailable, skipping")
			lastErr = err
			continue
		}

		resp, err := client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if isRetryable(err) {
			f.log.Warn().Str("provider", name).Err(err).Msg("retryable error, trying next provider")
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

// isRetryable checks if the error suggests trying another provider.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case 401, 403, 429, 500, 502, 503, 529:
			return true
		}
	}

	msg := err.Error()
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "capacity") ||
		strings.Contains(msg, "timeout")
}
