// Package subagent runs restricted-toolset delegate agents. The actual
// turn management lives behind the Runtime interface so the package can sit
// on top of any agent SDK; ReActRuntime is the bundled reference
// implementation.
package subagent

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/tools"
)

// RunSpec describes one sub-agent run handed to a Runtime.
type RunSpec struct {
	Name         string
	Instructions string
	Model        core.ModelID // empty means the runtime's default model
	Tools        []core.Tool
	MaxTurns     int
	Input        string
}

// RunResult is what a Runtime reports back.
type RunResult struct {
	FinalOutput string
	// ToolCalls counts the nested tool invocations by tool name.
	ToolCalls map[string]int
	Usage     core.TokenUsage
}

// Runtime is the external agent-SDK boundary: it owns planning, tool-call
// dispatch and turn management for a single run.
type Runtime interface {
	Run(ctx context.Context, spec RunSpec) (*RunResult, error)
}

const forcedToolUseSuffix = "\n\nMANDATORY: Use your available tools to gather evidence " +
	"before answering. Do not answer from memory only."

// Runner executes a sub-agent through a Runtime, resolving the model from
// configuration or an environment variable, retrying once with a forced
// tool-use instruction when the first attempt used no tools, and recording
// nested tool and token usage.
type Runner struct {
	runtime    Runtime
	modelName  string
	envVarName string
	maxTurns   int
	minTools   int
	usage      *tools.UsageStore
	logger     *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithModel sets an explicit model, overriding the environment variable.
func WithModel(model string) RunnerOption {
	return func(r *Runner) { r.modelName = model }
}

// WithModelEnvVar names the environment variable consulted when no
// explicit model is set.
func WithModelEnvVar(name string) RunnerOption {
	return func(r *Runner) { r.envVarName = name }
}

// WithMaxTurns caps the number of agent turns (minimum 2).
func WithMaxTurns(n int) RunnerOption {
	return func(r *Runner) {
		if n < 2 {
			n = 2
		}
		r.maxTurns = n
	}
}

// WithMinToolsUsed sets the tool-use threshold below which the run is
// retried once with the forced-tool-use instruction (default 1).
func WithMinToolsUsed(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.minTools = n
		}
	}
}

// WithUsageStore directs nested usage accounting into store.
func WithUsageStore(store *tools.UsageStore) RunnerOption {
	return func(r *Runner) { r.usage = store }
}

// WithLogger sets the runner's logger.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a Runner on top of runtime.
func NewRunner(runtime Runtime, opts ...RunnerOption) *Runner {
	r := &Runner{
		runtime:  runtime,
		maxTurns: 30,
		minTools: 1,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// resolvedModel returns the configured model, falling back to the
// environment variable, or "" when neither is set.
func (r *Runner) resolvedModel() core.ModelID {
	if model := strings.TrimSpace(r.modelName); model != "" {
		return core.ModelID(model)
	}
	if r.envVarName == "" {
		return ""
	}
	return core.ModelID(strings.TrimSpace(os.Getenv(r.envVarName)))
}

// Run executes the sub-agent and returns its final text output as an
// agent-facing string; failures are folded into "ERROR: ..." text the
// parent agent can read.
func (r *Runner) Run(ctx context.Context, agentName, systemPrompt, prompt string, agentTools []core.Tool) string {
	if strings.TrimSpace(prompt) == "" {
		return "ERROR: prompt cannot be empty"
	}
	if r.runtime == nil {
		return "ERROR: agent runtime is not available."
	}

	model := r.resolvedModel()
	input := strings.TrimSpace(prompt)

	var result *RunResult
	var totalUsage core.TokenUsage
	var toolCalls map[string]int

	for attempt := 0; attempt < 2; attempt++ {
		attemptInput := input
		if attempt > 0 {
			attemptInput = input + forcedToolUseSuffix
		}

		res, err := r.runtime.Run(ctx, RunSpec{
			Name:         agentName,
			Instructions: systemPrompt,
			Model:        model,
			Tools:        agentTools,
			MaxTurns:     r.maxTurns,
			Input:        attemptInput,
		})
		if err != nil {
			r.logger.Warn("sub-agent run failed",
				zap.String("agent", agentName),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			return "ERROR: sub-agent run failed."
		}

		result = res
		totalUsage.Add(res.Usage)
		// Tool counts reflect the final attempt only; tokens are summed
		// because both attempts spend them.
		toolCalls = res.ToolCalls

		used := 0
		for _, count := range res.ToolCalls {
			used += count
		}
		if used >= r.minTools {
			break
		}
	}

	if r.usage != nil {
		for name, count := range toolCalls {
			r.usage.Add(name, count)
		}
		if model != "" {
			r.usage.AddTokens(string(model), totalUsage)
		}
	}

	if result == nil {
		return "ERROR: sub-agent run failed."
	}
	output := strings.TrimSpace(result.FinalOutput)
	if output == "" {
		return "ERROR: sub-agent returned an empty response."
	}
	return output
}
