package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chack-ai/chack-tools/pkg/search"
)

func newSearchCmd(state *cliState) *cobra.Command {
	var (
		page    int
		count   int
		timeout int
	)

	cmd := &cobra.Command{
		Use:   "search <engine> <query>",
		Short: "Run one search engine directly",
		Long: "Run one search engine directly and print the rendered result block.\n" +
			"Engines: brave, duckduckgo, google, bing, scholar, patents, news,\n" +
			"forums, youtube, arxiv, europepmc, semanticscholar, openalex, plos.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := strings.ToLower(args[0])
			query := strings.Join(args[1:], " ")
			ctx := cmd.Context()

			var output string
			switch engine {
			case "brave":
				output = search.NewBraveClient(state.config).Search(ctx, search.BraveQuery{
					Query:          query,
					Count:          count,
					TimeoutSeconds: timeout,
				})
			case "duckduckgo", "ddg":
				output = search.NewDuckDuckGoClient(state.config).Search(ctx, query, "")
			case "google":
				output = search.NewSerpAPIClient(state.config).SearchGoogleWeb(ctx, query, page, count, timeout)
			case "bing":
				output = search.NewSerpAPIClient(state.config).SearchBingWeb(ctx, query, page, count, timeout)
			case "scholar":
				output = search.NewSerpAPIClient(state.config).SearchGoogleScholar(ctx, query, count, false, timeout)
			case "patents":
				output = search.NewSerpAPIClient(state.config).SearchGooglePatents(ctx, query, page, count, timeout)
			case "news":
				output = search.NewSerpAPIClient(state.config).SearchGoogleNews(ctx, query, page, timeout)
			case "forums":
				output = search.NewSerpAPIClient(state.config).SearchGoogleForums(ctx, query, page, timeout)
			case "youtube":
				output = search.NewSerpAPIClient(state.config).SearchYouTube(ctx, query, count, "", "", timeout)
			case "arxiv":
				output = search.NewScientificClient(state.config).SearchArxiv(ctx, query, count, timeout)
			case "europepmc":
				output = search.NewScientificClient(state.config).SearchEuropePMC(ctx, query, page, count, timeout)
			case "semanticscholar":
				output = search.NewScientificClient(state.config).SearchSemanticScholar(ctx, query, count, timeout)
			case "openalex":
				output = search.NewScientificClient(state.config).SearchOpenAlex(ctx, query, page, count, timeout)
			case "plos":
				output = search.NewScientificClient(state.config).SearchPLOS(ctx, query, count, 0, timeout)
			default:
				return fmt.Errorf("unknown engine %q", engine)
			}

			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().IntVar(&count, "count", 0, "result count (0 uses the configured default)")
	cmd.Flags().IntVar(&timeout, "timeout", 20, "request timeout in seconds")
	return cmd
}
