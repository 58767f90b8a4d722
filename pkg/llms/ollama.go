// Package llms implements the model providers used by the sub-agent
// runtime: Ollama, OpenAI and Anthropic, behind the core.LLM contract.
package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/errors"
)

// OllamaLLM implements core.LLM for Ollama-hosted models.
type OllamaLLM struct {
	endpoint string
	model    core.ModelID
	client   *http.Client
}

var _ core.LLM = (*OllamaLLM)(nil)

// NewOllamaLLM creates an Ollama provider. An empty endpoint uses the local
// default.
func NewOllamaLLM(endpoint, model string) (*OllamaLLM, error) {
	if model == "" {
		return nil, errors.New(errors.InvalidInput, "Ollama model name is required")
	}
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	return &OllamaLLM{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    core.ModelID(model),
		client:   &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

func (o *OllamaLLM) ModelID() core.ModelID { return o.model }

// Generate implements core.LLM.
func (o *OllamaLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	streamValue := false
	reqBody := api.GenerateRequest{
		Model:  string(o.model),
		Prompt: prompt,
		Stream: &streamValue,
		Options: map[string]any{
			"num_predict": opts.MaxTokens,
			"temperature": opts.Temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to marshal request body"),
			errors.Fields{"model": o.model},
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to create request"),
			errors.Fields{"model": o.model},
		)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.LLMGenerationFailed, "failed to send request"),
			errors.Fields{"model": o.model},
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.LLMGenerationFailed, "failed to read response body"),
			errors.Fields{"model": o.model},
		)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithFields(
			errors.New(errors.LLMGenerationFailed, fmt.Sprintf("API request failed with status code %d", resp.StatusCode)),
			errors.Fields{"model": o.model, "status_code": resp.StatusCode, "response_body": string(body)},
		)
	}

	var ollamaResp api.GenerateResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidResponse, "failed to unmarshal response"),
			errors.Fields{"model": o.model},
		)
	}

	return &core.LLMResponse{
		Content: ollamaResp.Response,
		Usage: core.TokenUsage{
			PromptTokens:     ollamaResp.PromptEvalCount,
			CompletionTokens: ollamaResp.EvalCount,
		},
	}, nil
}
