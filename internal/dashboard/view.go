package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/stats"
)

const listTextWidth = 60

// View renders the current tab.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	content += headerStyle.Render(" Leadership Journal ") + "  " + dimStyle.Render(m.now().Format("Mon Jan 2, 2006")) + "\n"
	content += m.renderTabs() + "\n"

	switch {
	case m.adding:
		content += m.renderForm()
	case m.view == ViewDashboard:
		content += m.renderDashboard()
	case m.view == ViewReflections:
		content += m.renderReflections()
	case m.view == ViewTriggers:
		content += m.renderTriggers()
	case m.view == ViewAccomplishments:
		content += m.renderAccomplishments()
	}

	content += m.renderStatus()
	content += m.renderFooter()

	return containerStyle.Render(content)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := View(0); v < viewCount; v++ {
		label := fmt.Sprintf("%d %s", int(v)+1, v)
		if v == m.view {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderDashboard() string {
	var content string

	totals := stats.TotalsOf(m.state)
	content += "\n" + lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("Reflections", totals.Reflections, "entries", reflectionColor),
		statCard("Wins", totals.Accomplishments, "celebrated", accomplishmentColor),
		statCard("Triggers", totals.Triggers, "logged", triggerColor),
	) + "\n"

	buckets := stats.Weekly(m.state, m.now())

	content += "\n" + sectionStyle.Render("┃ Weekly Activity") + "\n"
	content += weeklyChart(buckets) + "\n"

	content += "\n" + sectionStyle.Render("┃ Reflection Consistency") + "\n"
	content += consistencySparkline(buckets) + "\n"

	content += "\n" + sectionStyle.Render("┃ Trigger Intensity") + "\n"
	content += severityLine(m.severityBar, m.state.Triggers) + "\n"

	content += "\n" + sectionStyle.Render("┃ Leadership Coach Insights") + "\n"
	content += m.renderInsightPanel() + "\n"

	return content
}

func statCard(title string, n int, unit string, color lipgloss.Color) string {
	body := lipgloss.NewStyle().Foreground(color).Bold(true).Render(title) + "\n" +
		valueStyle.Render(fmt.Sprintf("%d", n)) + " " + dimStyle.Render(unit)
	return cardStyle.Render(body)
}

func (m Model) renderInsightPanel() string {
	switch {
	case m.pending:
		return "  " + m.spinner.View() + " " + dimStyle.Render("analyzing the last 30 days...")
	case !m.hasOutcome:
		if m.insighter == nil {
			return dimStyle.Render("  insights unavailable")
		}
		return dimStyle.Render("  press ") + footerKeyStyle.Render("g") + dimStyle.Render(" to generate insights from the last 30 days")
	case m.outcome.Generated():
		return strings.TrimRight(m.rendered, "\n")
	case m.outcome.Err != nil:
		return errorStyle.Render("  "+m.outcome.Text) + "\n" + dimStyle.Render("  "+m.outcome.Err.Error())
	default:
		return warningStyle.Render("  " + m.outcome.Text)
	}
}

func (m Model) renderReflections() string {
	items := journal.NewestFirst(m.state.Reflections)
	if len(items) == 0 {
		return "\n" + dimStyle.Render("  no reflections yet") + "\n"
	}

	var content string
	content += "\n" + sectionStyle.Render(fmt.Sprintf("┃ Reflections (%s)", pluralize(len(items), "entry", "entries"))) + "\n"
	for i, r := range items {
		line := dimStyle.Render(FormatDate(r.Date)) + "  " +
			labelStyle.Render(fmt.Sprintf("%-13s", r.Category.Short())) + " " +
			Truncate(r.Content, listTextWidth)
		content += m.row(i, line) + "\n"
	}
	return content
}

func (m Model) renderTriggers() string {
	items := journal.NewestFirst(m.state.Triggers)
	if len(items) == 0 {
		return "\n" + dimStyle.Render("  no triggers logged") + "\n"
	}

	var content string
	content += "\n" + sectionStyle.Render(fmt.Sprintf("┃ Triggers (%s)", pluralize(len(items), "event", "events"))) + "\n"
	for i, t := range items {
		line := dimStyle.Render(FormatDate(t.Timestamp)) + "  " +
			intensityBadge(t.Intensity) + " " +
			Truncate(t.Trigger, listTextWidth)
		if t.Notes != "" {
			line += "\n      " + dimStyle.Render(Truncate(t.Notes, listTextWidth))
		}
		content += m.row(i, line) + "\n"
	}
	return content
}

func (m Model) renderAccomplishments() string {
	items := journal.NewestFirst(m.state.Accomplishments)
	if len(items) == 0 {
		return "\n" + dimStyle.Render("  no wins logged yet") + "\n"
	}

	var content string
	content += "\n" + sectionStyle.Render(fmt.Sprintf("┃ Accomplishments (%s)", pluralize(len(items), "win", "wins"))) + "\n"
	for i, a := range items {
		line := dimStyle.Render(FormatDate(a.Date)) + "  " + valueStyle.Render(Truncate(a.Title, listTextWidth))
		if a.Details != "" {
			line += "\n      " + dimStyle.Render(Truncate(a.Details, listTextWidth))
		}
		content += m.row(i, line) + "\n"
	}
	return content
}

func (m Model) row(i int, line string) string {
	if i == m.cursor {
		return selectedStyle.Render("▶ ") + line
	}
	return "  " + line
}

func (m Model) renderStatus() string {
	if err := m.store.LastSaveError(); err != nil {
		return "\n" + errorStyle.Render("⚠ changes are not saved: "+err.Error()) + "\n"
	}
	if m.status != "" {
		return "\n" + dimStyle.Render(m.status) + "\n"
	}
	return ""
}

func (m Model) renderFooter() string {
	if m.adding {
		return footerStyle.Render(footerKeyStyle.Render("[tab]") + " next field  " +
			footerKeyStyle.Render("[enter]") + " save  " +
			footerKeyStyle.Render("[esc]") + " cancel")
	}
	keys := []struct{ key, desc string }{
		{"q", "quit"},
		{"tab", "switch"},
		{"r", "refresh"},
		{"g", "insights"},
	}
	if _, ok := m.view.kind(); ok {
		keys = append(keys,
			struct{ key, desc string }{"j/k", "move"},
			struct{ key, desc string }{"a", "add"},
			struct{ key, desc string }{"d", "delete"},
		)
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render("["+k.key+"]")+" "+k.desc)
	}
	return footerStyle.Render(strings.Join(parts, "  "))
}
