package tools

import (
	"sort"
	"sync"

	"github.com/chack-ai/chack-tools/pkg/core"
)

// UsageStore aggregates tool call counts and per-model token usage across a
// run, including calls made by nested sub-agents.
type UsageStore struct {
	mu     sync.Mutex
	calls  map[string]int
	tokens map[string]core.TokenUsage
}

// NewUsageStore creates an empty store.
func NewUsageStore() *UsageStore {
	return &UsageStore{
		calls:  make(map[string]int),
		tokens: make(map[string]core.TokenUsage),
	}
}

// Add records count invocations of a tool.
func (u *UsageStore) Add(toolName string, count int) {
	if toolName == "" || count <= 0 {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls[toolName] += count
}

// AddTokens records token usage attributed to a model.
func (u *UsageStore) AddTokens(model string, usage core.TokenUsage) {
	if model == "" {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	existing := u.tokens[model]
	existing.Add(usage)
	u.tokens[model] = existing
}

// Calls returns a copy of the per-tool call counts.
func (u *UsageStore) Calls() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]int, len(u.calls))
	for name, count := range u.calls {
		out[name] = count
	}
	return out
}

// TotalCalls returns the total number of recorded tool invocations.
func (u *UsageStore) TotalCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	total := 0
	for _, count := range u.calls {
		total += count
	}
	return total
}

// Tokens returns a copy of the per-model token usage.
func (u *UsageStore) Tokens() map[string]core.TokenUsage {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]core.TokenUsage, len(u.tokens))
	for model, usage := range u.tokens {
		out[model] = usage
	}
	return out
}

// ToolNames returns the recorded tool names sorted alphabetically.
func (u *UsageStore) ToolNames() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	names := make([]string, 0, len(u.calls))
	for name := range u.calls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears all recorded usage.
func (u *UsageStore) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = make(map[string]int)
	u.tokens = make(map[string]core.TokenUsage)
}
