package agent

import (
	"sync"

	"github.com/soyeahso/finsight/internal/logging"
)

// Registry manages the set of available backend agents.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
	log    *logging.Logger
}

// NewRegistry creates an empty agent registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		agents: make(map[string]Agent),
		log:    log.Sub("agents"),
	}
}

// Register adds an agent to the registry.
func (r *Registry) Register(a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.ID()] = a
	r.log.Info().Str("agent", a.ID()).Msg("agent registered")
}

// Get returns an agent by ID.
func (r *Registry) Get(id string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// List returns all registered agent IDs.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
