package search

import (
	"context"

	"github.com/chack-ai/chack-tools/pkg/core"
)

// Standalone tool wrappers over the search clients, for toolsets that hand
// the engines to the parent agent directly.

// NewBraveSearchFuncTool wraps BraveClient.Search as a tool.
func NewBraveSearchFuncTool(config *core.ToolsConfig) *core.FuncTool {
	client := NewBraveClient(config)
	return core.NewFuncTool(&core.ToolMetadata{
		Name:        "brave_search",
		Description: "Search the web with the Brave search API.",
		InputSchema: map[string]string{
			"query":           "string",
			"count":           "int",
			"country":         "string",
			"search_lang":     "string",
			"ui_lang":         "string",
			"freshness":       "string",
			"timeout_seconds": "int",
		},
		Required: []string{"query"},
	}, func(ctx context.Context, params map[string]any) (string, error) {
		return client.Search(ctx, BraveQuery{
			Query:          core.StringParam(params, "query", ""),
			Count:          core.IntParam(params, "count", 0),
			Country:        core.StringParam(params, "country", ""),
			SearchLang:     core.StringParam(params, "search_lang", ""),
			UILang:         core.StringParam(params, "ui_lang", ""),
			Freshness:      core.StringParam(params, "freshness", ""),
			TimeoutSeconds: core.IntParam(params, "timeout_seconds", 25),
		}), nil
	})
}

// NewGoogleWebSearchFuncTool wraps SerpAPIClient.SearchGoogleWeb as a tool.
func NewGoogleWebSearchFuncTool(config *core.ToolsConfig) *core.FuncTool {
	client := NewSerpAPIClient(config)
	return core.NewFuncTool(&core.ToolMetadata{
		Name:        "search_google_web",
		Description: "Search Google web results via SerpAPI.",
		InputSchema: map[string]string{
			"query":           "string",
			"page":            "int",
			"num":             "int",
			"timeout_seconds": "int",
		},
		Required: []string{"query"},
	}, func(ctx context.Context, params map[string]any) (string, error) {
		return client.SearchGoogleWeb(ctx,
			core.StringParam(params, "query", ""),
			core.IntParam(params, "page", 1),
			core.IntParam(params, "num", 0),
			core.IntParam(params, "timeout_seconds", 25)), nil
	})
}

// NewBingWebSearchFuncTool wraps SerpAPIClient.SearchBingWeb as a tool.
func NewBingWebSearchFuncTool(config *core.ToolsConfig) *core.FuncTool {
	client := NewSerpAPIClient(config)
	return core.NewFuncTool(&core.ToolMetadata{
		Name:        "search_bing_web",
		Description: "Search Bing web results via SerpAPI.",
		InputSchema: map[string]string{
			"query":           "string",
			"page":            "int",
			"count":           "int",
			"timeout_seconds": "int",
		},
		Required: []string{"query"},
	}, func(ctx context.Context, params map[string]any) (string, error) {
		return client.SearchBingWeb(ctx,
			core.StringParam(params, "query", ""),
			core.IntParam(params, "page", 1),
			core.IntParam(params, "count", 0),
			core.IntParam(params, "timeout_seconds", 25)), nil
	})
}

// NewDuckDuckGoFuncTool wraps DuckDuckGoClient.Search as a tool.
func NewDuckDuckGoFuncTool(config *core.ToolsConfig) *core.FuncTool {
	client := NewDuckDuckGoClient(config)
	return core.NewFuncTool(&core.ToolMetadata{
		Name:        "duckduckgo_search",
		Description: "Search the web with DuckDuckGo (no API key required).",
		InputSchema: map[string]string{
			"query": "string",
		},
		Required: []string{"query"},
	}, func(ctx context.Context, params map[string]any) (string, error) {
		return client.Search(ctx, core.StringParam(params, "query", ""), ""), nil
	})
}
