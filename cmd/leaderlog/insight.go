package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/leaderlog/internal/insight"
)

var insightRaw bool

func init() {
	insightCmd.Flags().BoolVar(&insightRaw, "raw", false, "print the markdown without rendering it")
	rootCmd.AddCommand(insightCmd)
}

var insightCmd = &cobra.Command{
	Use:     "insight",
	Aliases: []string{"insights", "coach"},
	Short:   "Generate coaching insights from the last 30 days",
	Long: `Send the last 30 days of reflections, triggers and accomplishments to the
configured text-generation service and print a short coaching summary.

The API key is read from LEADERLOG_INSIGHTS_API_KEY, GEMINI_API_KEY or
API_KEY (OPENAI_API_KEY for the openai provider).`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
		out := a.requester.Generate(a.ctx, a.store.Snapshot(), now())

		switch out.Kind {
		case insight.KindGenerated:
			fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(out.Text, insightRaw))
			return nil
		case insight.KindServiceError:
			return fmt.Errorf("%s: %w", out.Text, out.Err)
		default:
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		}
	}),
}

// renderMarkdown renders text for the terminal, falling back to the raw
// markdown if the renderer fails.
func renderMarkdown(text string, raw bool) string {
	if raw {
		return text + "\n"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return text + "\n"
	}
	s, err := r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return s
}
