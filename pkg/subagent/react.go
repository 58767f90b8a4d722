package subagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/errors"
)

// ReActRuntime is the bundled reference Runtime. It drives a core.LLM
// through a bounded thought/action/observation loop over the run's tools:
// one tool call per turn, a Finish action ends the run.
type ReActRuntime struct {
	llm     core.LLM
	factory func(model core.ModelID) (core.LLM, error)
	logger  *zap.Logger
}

var _ Runtime = (*ReActRuntime)(nil)

// NewReActRuntime creates a runtime with a fixed default model. The
// optional factory builds a provider for runs that override the model.
func NewReActRuntime(llm core.LLM, factory func(model core.ModelID) (core.LLM, error), logger *zap.Logger) *ReActRuntime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReActRuntime{llm: llm, factory: factory, logger: logger}
}

func (r *ReActRuntime) llmFor(model core.ModelID) (core.LLM, error) {
	if model == "" || (r.llm != nil && model == r.llm.ModelID()) {
		if r.llm == nil {
			return nil, errors.New(errors.InvalidInput, "no default model configured")
		}
		return r.llm, nil
	}
	if r.factory == nil {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "model override requested but no factory configured"),
			errors.Fields{"model": model},
		)
	}
	return r.factory(model)
}

// Run implements Runtime.
func (r *ReActRuntime) Run(ctx context.Context, spec RunSpec) (*RunResult, error) {
	llm, err := r.llmFor(spec.Model)
	if err != nil {
		return nil, err
	}
	maxTurns := spec.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 30
	}

	byName := make(map[string]core.Tool, len(spec.Tools))
	for _, tool := range spec.Tools {
		byName[tool.Metadata().Name] = tool
	}

	result := &RunResult{ToolCalls: map[string]int{}}
	var transcript strings.Builder

	for turn := 0; turn < maxTurns; turn++ {
		prompt := renderReActPrompt(spec, transcript.String(), maxTurns-turn)
		resp, err := llm.Generate(ctx, prompt)
		if err != nil {
			return nil, errors.Wrap(err, errors.LLMGenerationFailed, "sub-agent model call failed")
		}
		result.Usage.Add(resp.Usage)

		step := parseReActStep(resp.Content)
		if step.action == "" {
			// No parsable action: treat the whole completion as the answer.
			result.FinalOutput = strings.TrimSpace(resp.Content)
			return result, nil
		}
		if strings.EqualFold(step.action, "finish") {
			result.FinalOutput = step.answer
			return result, nil
		}

		tool, ok := byName[step.action]
		observation := ""
		if !ok {
			observation = fmt.Sprintf("ERROR: unknown tool %q. Available: %s", step.action, toolNames(spec.Tools))
		} else {
			result.ToolCalls[step.action]++
			params := parseToolInput(step.input, tool.Metadata())
			toolResult, err := tool.Execute(ctx, params)
			if err != nil {
				observation = fmt.Sprintf("ERROR: tool failed (%v)", err)
			} else {
				observation = toolResult.Text()
			}
		}

		r.logger.Debug("sub-agent step",
			zap.String("agent", spec.Name),
			zap.Int("turn", turn+1),
			zap.String("action", step.action))

		fmt.Fprintf(&transcript, "thought: %s\naction: %s\ninput: %s\nobservation: %s\n\n",
			step.thought, step.action, step.input, observation)
	}

	// Out of turns: ask for a final synthesis without tools.
	prompt := renderReActPrompt(spec, transcript.String(), 0) +
		"\nYou are out of turns. Produce your final answer now as 'action: Finish' with an 'answer:' line."
	resp, err := llm.Generate(ctx, prompt)
	if err != nil {
		return nil, errors.Wrap(err, errors.LLMGenerationFailed, "sub-agent final synthesis failed")
	}
	result.Usage.Add(resp.Usage)
	step := parseReActStep(resp.Content)
	if step.answer != "" {
		result.FinalOutput = step.answer
	} else {
		result.FinalOutput = strings.TrimSpace(resp.Content)
	}
	return result, nil
}

type reactStep struct {
	thought string
	action  string
	input   string
	answer  string
}

// parseReActStep pulls the thought/action/input/answer lines out of a
// model completion. The format is line-oriented; the answer may span the
// rest of the completion.
func parseReActStep(content string) reactStep {
	var step reactStep
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "thought:"):
			step.thought = strings.TrimSpace(trimmed[len("thought:"):])
		case strings.HasPrefix(lower, "action:"):
			step.action = strings.TrimSpace(trimmed[len("action:"):])
		case strings.HasPrefix(lower, "input:"):
			step.input = strings.TrimSpace(trimmed[len("input:"):])
		case strings.HasPrefix(lower, "answer:"):
			step.answer = strings.TrimSpace(strings.Join(
				append([]string{trimmed[len("answer:"):]}, lines[i+1:]...), "\n"))
			return step
		}
	}
	return step
}

// parseToolInput accepts either a JSON object or free text; free text is
// assigned to the tool's first required parameter.
func parseToolInput(input string, meta *core.ToolMetadata) map[string]any {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "{") {
		var params map[string]any
		if err := json.Unmarshal([]byte(input), &params); err == nil {
			return params
		}
	}
	if len(meta.Required) > 0 {
		return map[string]any{meta.Required[0]: input}
	}
	return map[string]any{"input": input}
}

func toolNames(list []core.Tool) string {
	names := make([]string, 0, len(list))
	for _, tool := range list {
		names = append(names, tool.Metadata().Name)
	}
	return strings.Join(names, ", ")
}

func renderReActPrompt(spec RunSpec, transcript string, turnsLeft int) string {
	var b strings.Builder
	b.WriteString(spec.Instructions)
	b.WriteString("\n\n### TOOLS\n")
	for _, tool := range spec.Tools {
		meta := tool.Metadata()
		fmt.Fprintf(&b, "- %s: %s", meta.Name, meta.Description)
		if len(meta.InputSchema) > 0 {
			fmt.Fprintf(&b, " (params: %s)", schemaSummary(meta))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n### FORMAT\n")
	b.WriteString("Reply with exactly one step per turn:\n")
	b.WriteString("thought: <your reasoning>\n")
	b.WriteString("action: <tool name, or Finish>\n")
	b.WriteString("input: <JSON object of tool parameters>\n")
	b.WriteString("When done: action: Finish and answer: <final answer>.\n")
	if turnsLeft > 0 {
		fmt.Fprintf(&b, "Turns remaining: %d.\n", turnsLeft)
	}
	b.WriteString("\n### TASK\n")
	b.WriteString(spec.Input)
	if transcript != "" {
		b.WriteString("\n\n### PREVIOUS STEPS\n")
		b.WriteString(transcript)
	}
	return b.String()
}

func schemaSummary(meta *core.ToolMetadata) string {
	parts := make([]string, 0, len(meta.InputSchema))
	for _, name := range meta.Required {
		if typ, ok := meta.InputSchema[name]; ok {
			parts = append(parts, name+":"+typ+" (required)")
		}
	}
	for name, typ := range meta.InputSchema {
		if !contains(meta.Required, name) {
			parts = append(parts, name+":"+typ)
		}
	}
	return strings.Join(parts, ", ")
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
