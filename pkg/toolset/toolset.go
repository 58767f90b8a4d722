// Package toolset assembles the profile-gated tool list handed to the
// parent agent runtime.
package toolset

import (
	"go.uber.org/zap"

	"github.com/chack-ai/chack-tools/pkg/agents"
	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/search"
	"github.com/chack-ai/chack-tools/pkg/subagent"
	"github.com/chack-ai/chack-tools/pkg/tools"
)

// Profiles. "all" and "telegram" carry the full surface; anything else is a
// restricted profile that only keeps the profile-independent tools.
const (
	ProfileAll      = "all"
	ProfileTelegram = "telegram"
)

// Options configures a Toolset build.
type Options struct {
	Profile string

	// Runtime executes the sub-agents. With a nil runtime the sub-agent
	// tools still build and return an ERROR text when called.
	Runtime subagent.Runtime

	WebsearcherModel    string
	ScientificModel     string
	SocialNetworkModel  string
	WebsearcherMaxTurns int
	ScientificMaxTurns  int
	SocialMaxTurns      int

	// TaskLists defaults to a fresh store.
	TaskLists *tools.TaskListStore
	Usage     *tools.UsageStore
	Logger    *zap.Logger
}

func (o *Options) normalize() {
	if o.Profile == "" {
		o.Profile = ProfileAll
	}
	if o.WebsearcherMaxTurns <= 0 {
		o.WebsearcherMaxTurns = 30
	}
	if o.ScientificMaxTurns <= 0 {
		o.ScientificMaxTurns = 30
	}
	if o.SocialMaxTurns <= 0 {
		o.SocialMaxTurns = 30
	}
	if o.TaskLists == nil {
		o.TaskLists = tools.NewTaskListStore()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Toolset is the built tool list for one profile.
type Toolset struct {
	config    *core.ToolsConfig
	profile   string
	taskLists *tools.TaskListStore
	tools     []core.Tool
}

// New builds the toolset for the given configuration and options.
//
// Build rules: exec when enabled; the task list always; Brave when enabled;
// SerpAPI Google web when keys are present and enabled; Bing web, the social
// and scientific sub-agents and PDF text additionally require the "all" or
// "telegram" profile; the websearcher sub-agent requires Brave or SerpAPI.
func New(config *core.ToolsConfig, opts Options) *Toolset {
	opts.normalize()

	ts := &Toolset{
		config:    config,
		profile:   opts.Profile,
		taskLists: opts.TaskLists,
	}

	agentOpts := func(model string, maxTurns int) []agents.Option {
		list := []agents.Option{
			agents.WithMaxTurns(maxTurns),
			agents.WithLogger(opts.Logger),
		}
		if model != "" {
			list = append(list, agents.WithModel(model))
		}
		if opts.Usage != nil {
			list = append(list, agents.WithUsageStore(opts.Usage))
		}
		return list
	}

	fullProfile := opts.Profile == ProfileAll || opts.Profile == ProfileTelegram

	if config.ExecEnabled {
		ts.tools = append(ts.tools, tools.NewExecFuncTool(config, opts.Logger))
	}
	ts.tools = append(ts.tools, tools.NewTaskListFuncTool(opts.TaskLists))
	if config.BraveEnabled {
		ts.tools = append(ts.tools, search.NewBraveSearchFuncTool(config))
	}
	hasSerpAPI := search.HasSerpAPIKeys(config.SerpAPIKey)
	if hasSerpAPI && config.SerpAPIGoogleWebEnabled {
		ts.tools = append(ts.tools, search.NewGoogleWebSearchFuncTool(config))
	}
	if hasSerpAPI && config.SerpAPIBingWebEnabled && fullProfile {
		ts.tools = append(ts.tools, search.NewBingWebSearchFuncTool(config))
	}
	if config.WebsearcherEnabled && (config.BraveEnabled || hasSerpAPI) {
		agent := agents.NewWebSearcher(config, opts.Runtime,
			agentOpts(opts.WebsearcherModel, opts.WebsearcherMaxTurns)...)
		ts.tools = append(ts.tools, agent.FuncTool())
	}
	if config.ForumScoutEnabled && fullProfile {
		agent := agents.NewSocialResearcher(config, opts.Runtime,
			agentOpts(opts.SocialNetworkModel, opts.SocialMaxTurns)...)
		ts.tools = append(ts.tools, agent.FuncTool())
	}
	if config.ScientificEnabled && fullProfile {
		agent := agents.NewScientificResearcher(config, opts.Runtime,
			agentOpts(opts.ScientificModel, opts.ScientificMaxTurns)...)
		ts.tools = append(ts.tools, agent.FuncTool())
	}
	if config.PDFTextEnabled && fullProfile {
		ts.tools = append(ts.tools, tools.NewPDFTextFuncTool(config))
	}

	return ts
}

// Tools returns the built tool list in registration order.
func (t *Toolset) Tools() []core.Tool {
	return t.tools
}

// ToolNames returns the tool names in registration order.
func (t *Toolset) ToolNames() []string {
	names := make([]string, 0, len(t.tools))
	for _, tool := range t.tools {
		names = append(names, tool.Metadata().Name)
	}
	return names
}

// Profile returns the profile the toolset was built for.
func (t *Toolset) Profile() string { return t.profile }

// TaskLists exposes the task list store backing the task_list tool.
func (t *Toolset) TaskLists() *tools.TaskListStore { return t.taskLists }

// RegisterAll registers every built tool into registry.
func (t *Toolset) RegisterAll(registry core.ToolRegistry) error {
	for _, tool := range t.tools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
