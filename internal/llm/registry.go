package llm

import (
	"fmt"
	"sync"

	"github.com/soyeahso/finsight/internal/config"
	"github.com/soyeahso/finsight/internal/logging"
)

// Registry manages LLM provider clients and resolves model references.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client
	fallback string
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Info().Str("provider", name).Msg("registered LLM provider")
}

// SetFallback sets the default provider used when no name matches.
func (r *Registry) SetFallback(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = provider
}

// Resolve returns the Client for the given provider name, falling back
// to the default provider when the name is unknown.
func (r *Registry) Resolve(name string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[name]; ok {
		return c, nil
	}
	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no LLM provider named %q", name)
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	return names
}

// NewRegistryFromConfig builds a Registry from the llm config section.
// An empty provider yields an empty registry; the router then falls back
// to plain concatenation.
func NewRegistryFromConfig(cfg config.LLMConfig, log *logging.Logger) *Registry {
	reg := NewRegistry(log)

	switch cfg.Provider {
	case "groq":
		if cfg.APIKey != "" {
			reg.Register("groq", NewGroqClient(cfg.APIKey, cfg.Model, cfg.Endpoint))
			reg.SetFallback("groq")
		}
	case "ollama":
		reg.Register("ollama", NewOllamaClient(cfg.Endpoint, cfg.Model))
		reg.SetFallback("ollama")
	}

	return reg
}
