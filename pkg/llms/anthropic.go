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

	"github.com/XiaoConstantine/anthropic-go/anthropic"

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/errors"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicLLM implements core.LLM against the Anthropic messages API.
type AnthropicLLM struct {
	apiKey  string
	model   anthropic.ModelID
	baseURL string
	client  *http.Client
}

var _ core.LLM = (*AnthropicLLM)(nil)

// NewAnthropicLLM creates an Anthropic provider.
func NewAnthropicLLM(apiKey string, model anthropic.ModelID) (*AnthropicLLM, error) {
	if apiKey == "" {
		return nil, errors.New(errors.MissingAPIKey, "Anthropic API key is required")
	}
	if model == "" {
		return nil, errors.New(errors.InvalidInput, "Anthropic model name is required")
	}
	return &AnthropicLLM{
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		baseURL: anthropicBaseURL,
		client:  &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

func (a *AnthropicLLM) ModelID() core.ModelID { return core.ModelID(a.model) }

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens          int `json:"input_tokens"`
		OutputTokens         int `json:"output_tokens"`
		CacheReadInputTokens int `json:"cache_read_input_tokens"`
	} `json:"usage"`
}

// Generate implements core.LLM.
func (a *AnthropicLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	reqBody := anthropicRequest{
		Model:       string(a.model),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.LLMGenerationFailed, "failed to send request"),
			errors.Fields{"model": a.model},
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.LLMGenerationFailed, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithFields(
			errors.New(errors.LLMGenerationFailed, fmt.Sprintf("API request failed with status code %d", resp.StatusCode)),
			errors.Fields{"model": a.model, "status_code": resp.StatusCode, "response_body": string(body)},
		)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failed to unmarshal response")
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &core.LLMResponse{
		Content: text.String(),
		Usage: core.TokenUsage{
			PromptTokens:       parsed.Usage.InputTokens,
			CompletionTokens:   parsed.Usage.OutputTokens,
			CachedPromptTokens: parsed.Usage.CacheReadInputTokens,
		},
	}, nil
}
