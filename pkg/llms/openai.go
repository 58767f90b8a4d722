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

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/errors"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAILLM implements core.LLM against the OpenAI chat-completions API.
type OpenAILLM struct {
	apiKey  string
	model   core.ModelID
	baseURL string
	client  *http.Client
}

var _ core.LLM = (*OpenAILLM)(nil)

// NewOpenAILLM creates an OpenAI provider.
func NewOpenAILLM(apiKey, model string) (*OpenAILLM, error) {
	if apiKey == "" {
		return nil, errors.New(errors.MissingAPIKey, "OpenAI API key is required")
	}
	if model == "" {
		return nil, errors.New(errors.InvalidInput, "OpenAI model name is required")
	}
	return &OpenAILLM{
		apiKey:  strings.TrimSpace(apiKey),
		model:   core.ModelID(model),
		baseURL: openAIBaseURL,
		client:  &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

// WithBaseURL points the provider at an OpenAI-compatible endpoint.
func (o *OpenAILLM) WithBaseURL(baseURL string) *OpenAILLM {
	o.baseURL = strings.TrimSuffix(baseURL, "/")
	return o
}

func (o *OpenAILLM) ModelID() core.ModelID { return o.model }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens        int `json:"prompt_tokens"`
		CompletionTokens    int `json:"completion_tokens"`
		PromptTokensDetails struct {
			CachedTokens int `json:"cached_tokens"`
		} `json:"prompt_tokens_details"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements core.LLM.
func (o *OpenAILLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	reqBody := openAIRequest{
		Model:       string(o.model),
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

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
		return nil, errors.Wrap(err, errors.LLMGenerationFailed, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithFields(
			errors.New(errors.LLMGenerationFailed, fmt.Sprintf("API request failed with status code %d", resp.StatusCode)),
			errors.Fields{"model": o.model, "status_code": resp.StatusCode, "response_body": string(body)},
		)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failed to unmarshal response")
	}
	if parsed.Error != nil {
		return nil, errors.WithFields(
			errors.New(errors.LLMGenerationFailed, "OpenAI returned an error"),
			errors.Fields{"model": o.model, "error": parsed.Error.Message},
		)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New(errors.InvalidResponse, "OpenAI returned no choices")
	}

	return &core.LLMResponse{
		Content: parsed.Choices[0].Message.Content,
		Usage: core.TokenUsage{
			PromptTokens:       parsed.Usage.PromptTokens,
			CompletionTokens:   parsed.Usage.CompletionTokens,
			CachedPromptTokens: parsed.Usage.PromptTokensDetails.CachedTokens,
		},
	}, nil
}
