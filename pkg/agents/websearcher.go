package agents

import (
	"context"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/search"
	"github.com/chack-ai/chack-tools/pkg/subagent"
)

const websearcherSystemPrompt = `### ROLE
You are an autonomous Web Research Sub-Agent focused on extensive, evidence-based web research.

### OBJECTIVE
Use the available web tools to gather broad and deep evidence from multiple sources, then produce a concise, factual synthesis.

### OPERATING RULES
- Use multiple search engines (Brave + Google + Bing) and compare findings.
- Prioritize primary/original sources and include relevant URLs in your final answer.
- If sources conflict, explicitly call out the conflict and indicate which sources seem more reliable.
- Never invent facts.
- Never ask the user follow-up questions; do the best possible research autonomously.
`

// WebSearcher is the web-research sub-agent: Brave plus SerpAPI Google and
// Bing web search.
type WebSearcher struct {
	config *core.ToolsConfig
	brave  *search.BraveClient
	web    *search.SerpAPIClient
	runner *subagent.Runner
}

var _ SubAgent = (*WebSearcher)(nil)

// NewWebSearcher creates the web-research sub-agent.
func NewWebSearcher(config *core.ToolsConfig, runtime subagent.Runtime, opts ...Option) *WebSearcher {
	o := newOptions(opts)
	return &WebSearcher{
		config: config,
		brave:  search.NewBraveClient(config),
		web:    search.NewSerpAPIClient(config),
		runner: o.newRunner(runtime, core.EnvWebsearcherAgentModel),
	}
}

func (w *WebSearcher) Name() string { return "websearcher_research" }

// Tools returns the restricted toolset handed to the sub-agent run.
func (w *WebSearcher) Tools() []core.Tool {
	list := []core.Tool{
		search.NewBraveSearchFuncTool(w.config),
		search.NewGoogleWebSearchFuncTool(w.config),
		search.NewBingWebSearchFuncTool(w.config),
		core.NewFuncTool(&core.ToolMetadata{
			Name:        "multi_engine_search",
			Description: "Run the same query on every configured engine in parallel and return the combined results.",
			InputSchema: map[string]string{
				"query":           "string",
				"timeout_seconds": "int",
			},
			Required: []string{"query"},
		}, func(ctx context.Context, params map[string]any) (string, error) {
			return w.MultiEngineSearch(ctx,
				core.StringParam(params, "query", ""),
				core.IntParam(params, "timeout_seconds", 25)), nil
		}),
	}
	if w.config.DuckDuckGoEnabled {
		// Keyless fallback engine.
		list = append(list, search.NewDuckDuckGoFuncTool(w.config))
	}
	return list
}

// MultiEngineSearch fans the query out to every engine the configuration
// has a key for and concatenates the labeled results.
func (w *WebSearcher) MultiEngineSearch(ctx context.Context, query string, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}

	type engineResult struct {
		label  string
		output string
	}

	hasBrave := strings.TrimSpace(w.config.BraveAPIKey) != ""
	hasSerpAPI := search.HasSerpAPIKeys(w.config.SerpAPIKey)
	if !hasBrave && !hasSerpAPI {
		return "ERROR: Neither Brave API key nor SerpAPI key is configured."
	}

	p := pool.NewWithResults[engineResult]()
	if hasBrave {
		p.Go(func() engineResult {
			return engineResult{"Brave", w.brave.Search(ctx, search.BraveQuery{
				Query:          query,
				TimeoutSeconds: timeoutSec,
			})}
		})
	}
	if hasSerpAPI {
		p.Go(func() engineResult {
			return engineResult{"Google", w.web.SearchGoogleWeb(ctx, query, 1, 0, timeoutSec)}
		})
		p.Go(func() engineResult {
			return engineResult{"Bing", w.web.SearchBingWeb(ctx, query, 1, 0, timeoutSec)}
		})
	}
	results := p.Wait()

	// Fixed section order regardless of completion order.
	byLabel := make(map[string]string, len(results))
	for _, res := range results {
		byLabel[res.label] = res.output
	}
	var b strings.Builder
	for _, label := range []string{"Brave", "Google", "Bing"} {
		output, ok := byLabel[label]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("### " + label + "\n" + output)
	}
	return b.String()
}

// Run implements SubAgent.
func (w *WebSearcher) Run(ctx context.Context, prompt string) string {
	hasBrave := strings.TrimSpace(w.config.BraveAPIKey) != ""
	hasSerpAPI := search.HasSerpAPIKeys(w.config.SerpAPIKey)
	if !hasBrave && !hasSerpAPI {
		return "ERROR: Neither Brave API key nor SerpAPI key is configured."
	}
	return w.runner.Run(ctx, "Web Research Sub-Agent", websearcherSystemPrompt, prompt, w.Tools())
}

// FuncTool implements SubAgent.
func (w *WebSearcher) FuncTool() *core.FuncTool {
	return promptTool(w.Name(),
		"Run a dedicated web-research sub-agent for extensive web research. "+
			"Pass a detailed research request as the prompt.",
		w.Run)
}
