package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/stats"
)

var statsJSON bool

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show weekly activity for the last 8 weeks",
	Long: `Show how many reflections, accomplishments and triggers were logged in
each of the last 8 ISO weeks, oldest first, plus overall totals.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
		report := buildReport(a.store.Snapshot(), now())
		if statsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printReport(cmd, report)
		return nil
	}),
}

// statsReport is the --json output of the stats command.
type statsReport struct {
	Weeks            []weekRow                `json:"weeks"`
	Totals           stats.Totals             `json:"totals"`
	Categories       map[journal.Category]int `json:"categories"`
	Severity         map[journal.Severity]int `json:"severity"`
	AverageIntensity float64                  `json:"average_intensity"`
}

type weekRow struct {
	Label           string `json:"label"`
	Week            string `json:"week"`
	Reflections     int    `json:"reflections"`
	Accomplishments int    `json:"accomplishments"`
	Triggers        int    `json:"triggers"`
}

func buildReport(state journal.AppState, at time.Time) statsReport {
	buckets := stats.Weekly(state, at)
	weeks := make([]weekRow, 0, len(buckets))
	for _, b := range buckets {
		weeks = append(weeks, weekRow{
			Label:           b.Label,
			Week:            b.Week.String(),
			Reflections:     b.Reflections,
			Accomplishments: b.Accomplishments,
			Triggers:        b.Triggers,
		})
	}

	return statsReport{
		Weeks:            weeks,
		Totals:           stats.TotalsOf(state),
		Categories:       stats.CategoryCounts(state.Reflections),
		Severity:         stats.SeverityCounts(state.Triggers),
		AverageIntensity: stats.AverageIntensity(state.Triggers),
	}
}

func printReport(cmd *cobra.Command, r statsReport) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(r.Weeks))
	for _, w := range r.Weeks {
		rows = append(rows, []string{
			w.Label,
			strconv.Itoa(w.Reflections),
			strconv.Itoa(w.Accomplishments),
			strconv.Itoa(w.Triggers),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Week", "Reflections", "Wins", "Triggers"}, rows))

	fmt.Fprintf(out, "Totals: %d reflections, %d wins, %d triggers\n",
		r.Totals.Reflections, r.Totals.Accomplishments, r.Totals.Triggers)

	fmt.Fprint(out, "Categories:")
	for _, c := range journal.Categories {
		fmt.Fprintf(out, " %s %d", c.Short(), r.Categories[c])
	}
	fmt.Fprintln(out)

	if r.Totals.Triggers > 0 {
		fmt.Fprintf(out, "Trigger intensity: avg %.1f (low %d, medium %d, high %d)\n",
			r.AverageIntensity,
			r.Severity[journal.SeverityLow],
			r.Severity[journal.SeverityMedium],
			r.Severity[journal.SeverityHigh])
	}
}
