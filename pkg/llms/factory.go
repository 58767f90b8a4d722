package llms

import (
	"strings"

	"github.com/XiaoConstantine/anthropic-go/anthropic"

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/errors"
)

// NewLLM creates a provider from a prefixed model ID:
//
//	anthropic:<model_name>
//	openai:<model_name>
//	ollama:<model_name> or ollama:<host>:<model_name>
//
// An unprefixed ID defaults to the OpenAI provider, matching the upstream
// agent runtime's model naming.
func NewLLM(apiKey string, modelID core.ModelID) (core.LLM, error) {
	id := strings.TrimSpace(string(modelID))
	if id == "" {
		return nil, errors.New(errors.InvalidInput, "model ID cannot be empty")
	}

	switch {
	case strings.HasPrefix(id, "anthropic:"):
		return NewAnthropicLLM(apiKey, anthropic.ModelID(id[len("anthropic:"):]))

	case strings.HasPrefix(id, "openai:"):
		return NewOpenAILLM(apiKey, id[len("openai:"):])

	case strings.HasPrefix(id, "ollama:"):
		return newOllamaFromID(id[len("ollama:"):])

	default:
		return NewOpenAILLM(apiKey, id)
	}
}

// newOllamaFromID parses the remainder of an "ollama:" model ID. Supported
// forms:
//
//	<model_name>
//	<host>:<model_name>
//	http(s)://<host>:<port>:<model_name>
func newOllamaFromID(input string) (core.LLM, error) {
	if input == "" {
		return nil, errors.New(errors.InvalidInput, "invalid Ollama model ID format. Use 'ollama:<model_name>' or 'ollama:<host>:<model_name>'")
	}

	if !strings.Contains(input, ":") {
		return NewOllamaLLM("", input)
	}

	// The model name is everything after the last colon; the host is the
	// rest, gaining an http:// prefix when missing.
	lastColon := strings.LastIndex(input, ":")
	host, model := input[:lastColon], input[lastColon+1:]
	if host == "" || model == "" {
		return nil, errors.New(errors.InvalidInput, "invalid Ollama model ID format. Use 'ollama:<host>:<model_name>' with non-empty host and model name")
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return NewOllamaLLM(host, model)
}
