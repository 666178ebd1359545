package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/leaderlog/internal/dashboard"
	"github.com/fyrsmithlabs/leaderlog/internal/journal"
)

const listTextWidth = 50

var (
	reflectCategory  string
	triggerIntensity int
	triggerNotes     string
	winDetails       string
	listLimit        int
	listJSON         bool
)

// now is replaced in tests.
var now = time.Now

func init() {
	reflectAddCmd.Flags().StringVarP(&reflectCategory, "category", "c", journal.CategoryProgress.Short(), "category: progress, communication, or stress")
	reflectCmd.AddCommand(reflectAddCmd, newListCmd(journal.KindReflection), newDeleteCmd(journal.KindReflection))

	triggerAddCmd.Flags().IntVarP(&triggerIntensity, "intensity", "i", journal.DefaultIntensity, "intensity from 1 (mild) to 10 (overwhelming)")
	triggerAddCmd.Flags().StringVarP(&triggerNotes, "notes", "n", "", "how you responded")
	triggerCmd.AddCommand(triggerAddCmd, newListCmd(journal.KindTrigger), newDeleteCmd(journal.KindTrigger))

	winAddCmd.Flags().StringVarP(&winDetails, "details", "d", "", "optional details")
	winCmd.AddCommand(winAddCmd, newListCmd(journal.KindAccomplishment), newDeleteCmd(journal.KindAccomplishment))

	rootCmd.AddCommand(reflectCmd, triggerCmd, winCmd)
}

var reflectCmd = &cobra.Command{
	Use:     "reflect",
	Aliases: []string{"reflection", "r"},
	Short:   "Add, list and delete reflections",
}

var reflectAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Record a reflection",
	Long: `Record a categorized reflection.

Examples:
  leaderlog reflect add "Let the team own the retro agenda"
  leaderlog reflect add --category stress "Blocked focus time before the review"`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		category, err := journal.ParseCategory(reflectCategory)
		if err != nil {
			return err
		}
		r, err := journal.NewReflection(strings.Join(args, " "), category, now())
		if err != nil {
			return err
		}
		if err := a.store.AddReflection(a.ctx, r); err != nil {
			return err
		}
		cmd.Printf("Saved reflection %s (%s)\n", r.ID, r.Category)
		return nil
	}),
}

var triggerCmd = &cobra.Command{
	Use:     "trigger",
	Aliases: []string{"t"},
	Short:   "Add, list and delete emotional triggers",
}

var triggerAddCmd = &cobra.Command{
	Use:   "add <what happened>",
	Short: "Log an emotional trigger",
	Long: `Log an event that triggered a strong reaction, with its intensity.

Intensity 1-3 is low, 4-6 medium and 7-10 high.

Examples:
  leaderlog trigger add --intensity 8 --notes "paused before replying" "Public criticism in standup"`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		t, err := journal.NewTrigger(strings.Join(args, " "), triggerNotes, triggerIntensity, now())
		if err != nil {
			return err
		}
		if err := a.store.AddTrigger(a.ctx, t); err != nil {
			return err
		}
		cmd.Printf("Saved trigger %s (intensity %s, %s)\n", t.ID, dashboard.FormatIntensity(t.Intensity), t.Severity())
		return nil
	}),
}

var winCmd = &cobra.Command{
	Use:     "win",
	Aliases: []string{"accomplishment", "w"},
	Short:   "Add, list and delete accomplishments",
}

var winAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Celebrate an accomplishment",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		w, err := journal.NewAccomplishment(strings.Join(args, " "), winDetails, now())
		if err != nil {
			return err
		}
		if err := a.store.AddAccomplishment(a.ctx, w); err != nil {
			return err
		}
		cmd.Printf("Saved accomplishment %s\n", w.ID)
		return nil
	}),
}

func newListCmd(kind journal.Kind) *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %ss, newest first", kind),
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return printList(cmd, kind, a.store.Snapshot())
		}),
	}
	c.Flags().IntVar(&listLimit, "limit", 0, "show at most this many records (0 for all)")
	c.Flags().BoolVar(&listJSON, "json", false, "output records as JSON")
	return c
}

func newDeleteCmd(kind journal.Kind) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s by id", kind),
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			removed, err := a.store.Delete(a.ctx, kind, args[0])
			if err != nil {
				return err
			}
			if !removed {
				cmd.Printf("No %s with id %s\n", kind, args[0])
				return nil
			}
			cmd.Printf("Deleted %s %s\n", kind, args[0])
			return nil
		}),
	}
}

func limit[T any](items []T) []T {
	if listLimit > 0 && len(items) > listLimit {
		return items[:listLimit]
	}
	return items
}

func printList(cmd *cobra.Command, kind journal.Kind, state journal.AppState) error {
	var (
		records any
		headers []string
		rows    [][]string
	)

	switch kind {
	case journal.KindReflection:
		items := limit(journal.NewestFirst(state.Reflections))
		records = items
		headers = []string{"ID", "Date", "Category", "Reflection"}
		for _, r := range items {
			rows = append(rows, []string{r.ID, dashboard.FormatDate(r.Date), r.Category.Short(), dashboard.Truncate(r.Content, listTextWidth)})
		}
	case journal.KindTrigger:
		items := limit(journal.NewestFirst(state.Triggers))
		records = items
		headers = []string{"ID", "Date", "Intensity", "Trigger", "Notes"}
		for _, t := range items {
			rows = append(rows, []string{t.ID, dashboard.FormatDate(t.Timestamp), dashboard.FormatIntensity(t.Intensity), dashboard.Truncate(t.Trigger, listTextWidth), dashboard.Truncate(t.Notes, listTextWidth)})
		}
	case journal.KindAccomplishment:
		items := limit(journal.NewestFirst(state.Accomplishments))
		records = items
		headers = []string{"ID", "Date", "Title", "Details"}
		for _, w := range items {
			rows = append(rows, []string{w.ID, dashboard.FormatDate(w.Date), dashboard.Truncate(w.Title, listTextWidth), dashboard.Truncate(w.Details, listTextWidth)})
		}
	default:
		return fmt.Errorf("%w: %s", journal.ErrUnknownKind, kind)
	}

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(rows) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No %ss yet.\n", kind)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))).
		Headers(headers...).
		Rows(rows...).
		String()
}
