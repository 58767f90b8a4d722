package agents

import (
	"sort"
	"sync"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

// Registry holds named sub-agents for a runtime host.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]SubAgent
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]SubAgent)}
}

// Register adds a sub-agent; registering a duplicate name is an error.
func (r *Registry) Register(agent SubAgent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := agent.Name()
	if _, exists := r.agents[name]; exists {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "sub-agent already registered"),
			errors.Fields{"agent": name},
		)
	}
	r.agents[name] = agent
	return nil
}

// Get returns the sub-agent registered under name.
func (r *Registry) Get(name string) (SubAgent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[name]
	if !ok {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "sub-agent not found"),
			errors.Fields{"agent": name},
		)
	}
	return agent, nil
}

// List returns the registered sub-agents sorted by name.
func (r *Registry) List() []SubAgent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	list := make([]SubAgent, 0, len(names))
	for _, name := range names {
		list = append(list, r.agents[name])
	}
	return list
}
