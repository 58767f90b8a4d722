package core

import (
	"context"
	"sync"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

// InMemoryToolRegistry provides a thread-safe ToolRegistry backed by a map.
type InMemoryToolRegistry struct {
	tools map[string]Tool
	order []string
	mu    sync.RWMutex
}

var _ ToolRegistry = (*InMemoryToolRegistry)(nil)

// NewInMemoryToolRegistry creates an empty registry.
func NewInMemoryToolRegistry() *InMemoryToolRegistry {
	return &InMemoryToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry. Duplicate names are rejected.
func (r *InMemoryToolRegistry) Register(tool Tool) error {
	name := tool.Metadata().Name
	if name == "" {
		return errors.New(errors.InvalidInput, "tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "tool already registered"),
			errors.Fields{"name": name},
		)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a tool by name.
func (r *InMemoryToolRegistry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "tool not found in registry"),
			errors.Fields{"name": name},
		)
	}
	return tool, nil
}

// List returns all registered tools in registration order.
func (r *InMemoryToolRegistry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Match returns the tools that report being able to handle the intent.
func (r *InMemoryToolRegistry) Match(intent string) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Tool
	for _, name := range r.order {
		tool := r.tools[name]
		if tool.CanHandle(context.Background(), intent) {
			out = append(out, tool)
		}
	}
	return out
}
