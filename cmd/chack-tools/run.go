package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chack-ai/chack-tools/pkg/agents"
	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/llms"
	"github.com/chack-ai/chack-tools/pkg/session"
	"github.com/chack-ai/chack-tools/pkg/subagent"
	"github.com/chack-ai/chack-tools/pkg/tools"
)

func newRunCmd(state *cliState) *cobra.Command {
	var (
		model     string
		maxTurns  int
		sessionID string
		showUsage bool
	)

	cmd := &cobra.Command{
		Use:   "run <subagent> <prompt>",
		Short: "Run a sub-agent (websearcher, scientific, social)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(args[0])
			prompt := strings.Join(args[1:], " ")

			if model == "" {
				model = state.file.Model
			}
			if model == "" {
				return fmt.Errorf("no model configured: pass --model or set model in the config file")
			}

			defaultLLM, err := llms.NewLLM(state.config.OpenAIAPIKey, core.ModelID(model))
			if err != nil {
				return err
			}
			factory := func(id core.ModelID) (core.LLM, error) {
				return llms.NewLLM(state.config.OpenAIAPIKey, id)
			}
			runtime := subagent.NewReActRuntime(defaultLLM, factory, state.logger)

			usage := tools.NewUsageStore()
			registry := agents.NewRegistry()
			opts := []agents.Option{
				agents.WithMaxTurns(maxTurns),
				agents.WithUsageStore(usage),
				agents.WithLogger(state.logger),
			}
			for _, agent := range []agents.SubAgent{
				agents.NewWebSearcher(state.config, runtime, opts...),
				agents.NewScientificResearcher(state.config, runtime, opts...),
				agents.NewSocialResearcher(state.config, runtime, opts...),
			} {
				if err := registry.Register(agent); err != nil {
					return err
				}
			}

			agent, err := registry.Get(resolveAgentName(name))
			if err != nil {
				names := make([]string, 0, 3)
				for _, a := range registry.List() {
					names = append(names, a.Name())
				}
				return fmt.Errorf("unknown sub-agent %q (available: %s)", name, strings.Join(names, ", "))
			}

			manager, err := session.NewManager(state.file.SessionDir)
			if err != nil {
				return err
			}
			if sessionID == "" {
				sessionID = session.NewSessionID()
			}
			_ = manager.Append(sessionID, session.Message{Role: "user", Content: prompt})

			output := agent.Run(cmd.Context(), prompt)

			_ = manager.Append(sessionID, session.Message{Role: "assistant", Content: output})
			if err := manager.Flush(sessionID); err != nil {
				state.logger.Warn("failed to persist session", zap.Error(err))
			}

			if store, err := openSessionStore(state.file); err != nil {
				return err
			} else if store != nil {
				record := map[string]any{
					"agent":       agent.Name(),
					"last_prompt": prompt,
					"last_output": output,
				}
				if err := store.Store(sessionID, record); err != nil {
					state.logger.Warn("failed to write session store", zap.Error(err))
				}
				store.Close()
			}

			fmt.Fprintln(cmd.OutOrStdout(), output)
			if showUsage {
				printUsage(cmd, usage)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", sessionID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model ID (openai:<name>, anthropic:<name>, ollama:<name>)")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 30, "sub-agent turn budget")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (defaults to a new one)")
	cmd.Flags().BoolVar(&showUsage, "usage", false, "print tool and token usage after the run")
	return cmd
}

// resolveAgentName maps CLI shorthand to registry names.
func resolveAgentName(name string) string {
	switch name {
	case "websearcher", "web":
		return "websearcher_research"
	case "scientific", "science":
		return "scientific_research"
	case "social":
		return "social_network_research"
	}
	return name
}

func printUsage(cmd *cobra.Command, usage *tools.UsageStore) {
	out := cmd.ErrOrStderr()
	calls := usage.Calls()
	if len(calls) > 0 {
		fmt.Fprintln(out, "tool calls:")
		names := make([]string, 0, len(calls))
		for name := range calls {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %-26s %d\n", name, calls[name])
		}
	}
	for model, tokens := range usage.Tokens() {
		fmt.Fprintf(out, "tokens (%s): prompt=%d completion=%d cached=%d\n",
			model, tokens.PromptTokens, tokens.CompletionTokens, tokens.CachedPromptTokens)
	}
}
