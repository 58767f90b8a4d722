package core

import "context"

// ModelID identifies a model, optionally with a provider prefix
// (e.g. "anthropic:claude-3-haiku-20240307", "ollama:llama3",
// "openai:gpt-4o-mini").
type ModelID string

// TokenUsage accumulates token counts reported by a provider.
type TokenUsage struct {
	PromptTokens       int
	CompletionTokens   int
	CachedPromptTokens int
}

// Add merges other into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.CachedPromptTokens += other.CachedPromptTokens
}

// LLMResponse is a single completion from a provider.
type LLMResponse struct {
	Content string
	Usage   TokenUsage
}

// GenerateOption configures a Generate call.
type GenerateOption func(*GenerateOptions)

// GenerateOptions contains configuration for Generate calls.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// NewGenerateOptions creates GenerateOptions with default values.
func NewGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		MaxTokens:   4096,
		Temperature: 0.2,
	}
}

// WithMaxTokens sets the maximum completion length.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = t
	}
}

// LLM is the minimal completion contract the sub-agent runtime needs.
type LLM interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (*LLMResponse, error)

	// ModelID returns the identifier of the underlying model.
	ModelID() ModelID
}
