// Package agents defines the bundled research sub-agents: preset name,
// system prompt, restricted toolset and model-override environment variable
// for each, exposed to the parent agent as a single prompt-in tool.
package agents

import (
	"context"

	"go.uber.org/zap"

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/subagent"
	"github.com/chack-ai/chack-tools/pkg/tools"
)

// SubAgent is a named delegate exposed to the parent agent as one tool.
type SubAgent interface {
	// Name is the tool name the parent agent calls.
	Name() string
	// Run executes the sub-agent on a research prompt and returns its
	// final answer as agent-facing text.
	Run(ctx context.Context, prompt string) string
	// FuncTool wraps Run as a core.Tool.
	FuncTool() *core.FuncTool
}

type options struct {
	model    string
	maxTurns int
	usage    *tools.UsageStore
	logger   *zap.Logger
}

// Option configures a sub-agent.
type Option func(*options)

// WithModel sets an explicit model for the sub-agent, overriding its
// environment variable.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithMaxTurns caps the sub-agent's turns.
func WithMaxTurns(n int) Option {
	return func(o *options) { o.maxTurns = n }
}

// WithUsageStore collects nested tool and token usage into store.
func WithUsageStore(store *tools.UsageStore) Option {
	return func(o *options) { o.usage = store }
}

// WithLogger sets the sub-agent's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) *options {
	o := &options{maxTurns: 30, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) newRunner(runtime subagent.Runtime, envVarName string) *subagent.Runner {
	runnerOpts := []subagent.RunnerOption{
		subagent.WithModelEnvVar(envVarName),
		subagent.WithMaxTurns(o.maxTurns),
		subagent.WithLogger(o.logger),
	}
	if o.model != "" {
		runnerOpts = append(runnerOpts, subagent.WithModel(o.model))
	}
	if o.usage != nil {
		runnerOpts = append(runnerOpts, subagent.WithUsageStore(o.usage))
	}
	return subagent.NewRunner(runtime, runnerOpts...)
}

// promptTool wraps a sub-agent's Run as a single prompt-in tool.
func promptTool(name, description string, run func(ctx context.Context, prompt string) string) *core.FuncTool {
	return core.NewFuncTool(&core.ToolMetadata{
		Name:        name,
		Description: description,
		InputSchema: map[string]string{"prompt": "string"},
		Required:    []string{"prompt"},
	}, func(ctx context.Context, params map[string]any) (string, error) {
		return run(ctx, core.StringParam(params, "prompt", "")), nil
	})
}
