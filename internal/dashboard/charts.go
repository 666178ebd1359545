package dashboard

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/progress"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/stats"
)

const (
	barChartHeight  = 10
	barColumnWidth  = 7
	sparklineHeight = 3
	columnsPerWeek  = 4
	progressWidth   = 40
)

// weeklyChart draws one stacked bar per ISO week. An all-zero window
// renders a placeholder; the chart cannot scale against a zero maximum.
func weeklyChart(buckets []stats.Bucket) string {
	if !hasActivity(buckets) {
		return dimStyle.Render("  no activity in the last 8 weeks")
	}

	data := make([]barchart.BarData, 0, len(buckets))
	for _, b := range buckets {
		data = append(data, barchart.BarData{
			Label: b.Label,
			Values: []barchart.BarValue{
				{Name: "Reflections", Value: float64(b.Reflections), Style: reflectionBarStyle},
				{Name: "Accomplishments", Value: float64(b.Accomplishments), Style: accomplishmentBarStyle},
				{Name: "Triggers", Value: float64(b.Triggers), Style: triggerBarStyle},
			},
		})
	}

	chart := barchart.New(len(buckets)*barColumnWidth, barChartHeight)
	chart.PushAll(data)
	chart.Draw()

	return chart.View() + "\n" + chartLegend()
}

func chartLegend() string {
	return "  " + reflectionBarStyle.Render("█ reflections") +
		"  " + accomplishmentBarStyle.Render("█ accomplishments") +
		"  " + triggerBarStyle.Render("█ triggers")
}

func hasActivity(buckets []stats.Bucket) bool {
	for _, b := range buckets {
		if b.Total() > 0 {
			return true
		}
	}
	return false
}

// consistencySparkline plots reflections per week. Each week is widened to
// several columns so eight points remain readable.
func consistencySparkline(buckets []stats.Bucket) string {
	series := stats.Series(buckets, journal.KindReflection)
	width := len(series) * columnsPerWeek

	var sum float64
	for _, v := range series {
		sum += v
	}
	if sum == 0 {
		return dimStyle.Render(fmt.Sprintf("  %-*s", width, "no data"))
	}

	spark := sparkline.New(width, sparklineHeight)
	for _, v := range series {
		for range columnsPerWeek {
			spark.Push(v)
		}
	}
	spark.Draw()

	return sparklineStyle.Render(spark.View()) + "\n" + weekAxis(buckets)
}

// weekAxis prints the first and last week labels under the sparkline.
func weekAxis(buckets []stats.Bucket) string {
	if len(buckets) == 0 {
		return ""
	}
	first, last := buckets[0].Label, buckets[len(buckets)-1].Label
	gap := len(buckets)*columnsPerWeek - len(first) - len(last)
	if gap < 1 {
		gap = 1
	}
	return dimStyle.Render(first + strings.Repeat(" ", gap) + last)
}

func newSeverityBar() progress.Model {
	return progress.New(
		progress.WithGradient(string(accomplishmentColor), string(triggerColor)),
		progress.WithWidth(progressWidth),
	)
}

// severityLine shows the average trigger intensity as a share of the
// maximum plus a count per severity band.
func severityLine(bar progress.Model, triggers []journal.Trigger) string {
	if len(triggers) == 0 {
		return dimStyle.Render("  no triggers logged")
	}

	avg := stats.AverageIntensity(triggers)
	pct := avg / float64(journal.MaxIntensity)
	if pct > 1.0 {
		pct = 1.0
	}

	counts := stats.SeverityCounts(triggers)
	return labelStyle.Render("  Avg intensity: ") +
		bar.ViewAs(pct) +
		" " + valueStyle.Render(fmt.Sprintf("%.1f", avg)) + "\n" +
		labelStyle.Render("  Bands: ") +
		healthyStyle.Render(fmt.Sprintf("low %d", counts[journal.SeverityLow])) + "  " +
		warningStyle.Render(fmt.Sprintf("medium %d", counts[journal.SeverityMedium])) + "  " +
		errorStyle.Render(fmt.Sprintf("high %d", counts[journal.SeverityHigh]))
}
