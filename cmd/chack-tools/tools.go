package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chack-ai/chack-tools/pkg/toolset"
)

func newToolsCmd(state *cliState) *cobra.Command {
	var profile string
	var validate bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools a profile yields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if profile == "" {
				profile = state.file.Profile
			}
			if validate {
				if err := state.config.Validate(); err != nil {
					return err
				}
			}
			ts := toolset.New(state.config, toolset.Options{
				Profile: profile,
				Logger:  state.logger,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "profile: %s\n", ts.Profile())
			for _, tool := range ts.Tools() {
				meta := tool.Metadata()
				fmt.Fprintf(cmd.OutOrStdout(), "  %-26s %s\n", meta.Name, meta.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "tool profile (all, telegram, or a restricted name)")
	cmd.Flags().BoolVar(&validate, "validate", false, "fail when an enabled tool is missing its API key")
	return cmd
}
