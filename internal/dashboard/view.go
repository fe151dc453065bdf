package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/examdeck/examdeck/internal/snapshot"
	"github.com/examdeck/examdeck/internal/threat"
)

// render assembles the full dashboard frame.
func (m *Model) render() string {
	var sections []string

	sections = append(sections, m.renderHeader())

	if m.alert != "" {
		sections = append(sections, AlertStyle.Render("⚠ "+m.alert+"  (x to dismiss)"))
	}

	if m.confirmPending {
		sections = append(sections, m.renderConfirm())
	}

	if m.current == nil {
		sections = append(sections, SectionStyle.Render(m.spin.View()+LabelStyle.Render(" waiting for first snapshot...")))
	} else {
		sections = append(sections, m.renderProcesses())
		sections = append(sections, m.renderTabs())
		sections = append(sections, m.renderMemory())
	}

	sections = append(sections, m.renderActivity())
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader shows the connection dot and the four animated counters.
func (m *Model) renderHeader() string {
	parts := []string{
		statusDot(m.connState.String()) + " examdeck",
		m.renderCounter("procs", counterTotal),
		m.renderCounter("ai", counterAI),
		m.renderCounter("tabs", counterTabs),
		m.renderCounter("mem%", counterMemory),
	}
	if m.polling {
		parts = append(parts, LabelStyle.Render(fmt.Sprintf("polling @%s", m.settings.UpdateInterval)))
	}
	return HeaderStyle.Render(strings.Join(parts, "   "))
}

// renderCounter shows one header counter, flashing briefly after its
// animation lands.
func (m *Model) renderCounter(label, id string) string {
	style := CounterStyle
	if deadline, ok := m.flash[id]; ok && m.now().Before(deadline) {
		style = CounterFlashStyle
	}
	return LabelStyle.Render(label+" ") + style.Render(fmt.Sprintf("%d", m.counterValue(id)))
}

// renderConfirm shows the destructive-action prompt.
func (m *Model) renderConfirm() string {
	return ConfirmStyle.Render(fmt.Sprintf("Really %s?  y / n", m.confirmKind.label()))
}

// renderProcesses shows the top process rows with AI, memory, and risk
// annotations.
func (m *Model) renderProcesses() string {
	rows := m.processRows()

	title := SectionTitleStyle.Render(fmt.Sprintf("Processes (%s, by %s)", m.filter, m.sortField))
	lines := []string{title}

	if groups := snapshot.GroupByStatus(m.current.Processes.All); len(groups) > 0 {
		parts := make([]string, len(groups))
		for i, g := range groups {
			parts[i] = fmt.Sprintf("%s %d (%.1f%% mem)", g.Status, len(g.Processes), g.TotalMem)
		}
		lines = append(lines, LabelStyle.Render(strings.Join(parts, "   ")))
	}

	if len(rows) == 0 {
		lines = append(lines, LabelStyle.Render("none"))
	}

	for _, row := range rows {
		p := row.Process
		line := fmt.Sprintf("%7d  %-24s %5.1f%% mem %5.1f%% cpu", p.PID, truncate(p.Name, 24), p.MemoryPercent, p.CPUPercent)

		var badges []string
		if p.IsAIApp {
			badges = append(badges, BadgeAIStyle.Render("AI"))
		}
		if p.MemoryPercent > HighMemoryBadgePercent {
			badges = append(badges, BadgeMemStyle.Render("High Memory"))
		}
		if m.sensitivityShows(row.Threat.Risk) {
			badges = append(badges, riskStyle(row.Threat.Risk).Render(row.Threat.Risk))
		}
		if len(badges) > 0 {
			line += "  " + strings.Join(badges, " ")
		}
		lines = append(lines, line)
	}

	return SectionStyle.Render(strings.Join(lines, "\n"))
}

// renderTabs shows browser tabs split into protected and will-close groups
// per browser.
func (m *Model) renderTabs() string {
	tabs := m.current.BrowserTabs
	title := SectionTitleStyle.Render(fmt.Sprintf("Browser Tabs (%d)", m.current.TotalTabCount()))
	lines := []string{title}

	for _, browser := range tabs.SortedBrowsers() {
		protected, willClose := snapshot.ClassifyTabs(tabs.Tabs[browser], m.settings.ExamURL)
		lines = append(lines, LabelStyle.Render(browser))
		for _, t := range protected {
			lines = append(lines, "  "+ProtectedStyle.Render("✓ ")+truncate(t.Title, 48)+ProtectedStyle.Render(" (protected)"))
		}
		for _, t := range willClose {
			line := "  " + WillCloseStyle.Render("✗ "+truncate(t.Title, 48))
			if a := threat.AnalyzeTab(t); m.sensitivityShows(a.Risk) {
				line += " " + riskStyle(a.Risk).Render(a.Risk)
			}
			lines = append(lines, line)
		}
	}

	if len(lines) == 1 {
		lines = append(lines, LabelStyle.Render("no open tabs"))
	}

	return SectionStyle.Render(strings.Join(lines, "\n"))
}

// renderMemory shows the system memory line and its sparkline history.
func (m *Model) renderMemory() string {
	stats := m.current.SystemStats
	title := SectionTitleStyle.Render("System")

	usage := fmt.Sprintf("memory %.1f%% (%.1f / %.1f GB)   cpu %.1f%%",
		stats.MemoryPercent, stats.MemoryUsedGB, stats.MemoryTotalGB, stats.CPUPercent)

	lines := []string{title, usage}
	if spark := renderSparkline(m.tracker.MemoryHistory(60), 60, ColorGraph); spark != "" {
		lines = append(lines, spark)
	}

	return SectionStyle.Render(strings.Join(lines, "\n"))
}

// renderActivity shows the most recent activity log entries, newest first.
func (m *Model) renderActivity() string {
	title := SectionTitleStyle.Render("Activity")
	lines := []string{title}

	entries := m.activity.last(6)
	if len(entries) == 0 {
		lines = append(lines, LabelStyle.Render("quiet"))
	}
	for _, e := range entries {
		lines = append(lines, activityLevelStyle(e.Level).Render(e.Time.Format("15:04:05"))+" "+e.Message)
	}

	return SectionStyle.Render(strings.Join(lines, "\n"))
}

// renderFooter shows key bindings, expanded when help is toggled.
func (m *Model) renderFooter() string {
	if m.showHelp {
		return FooterStyle.Render(
			"q quit · r refresh · f filter · s sort · K kill all · A kill AI · T close tabs · x dismiss alert · ? help\n" +
				fmt.Sprintf("render avg %.2fms · api avg %.2fms · %d samples",
					m.tracker.AverageRenderTime(), m.tracker.AverageAPIResponseTime(), m.tracker.RenderSampleCount()))
	}
	return FooterStyle.Render("q quit · K kill all · A kill AI · T close tabs · ? help")
}

// sensitivityShows reports whether a risk label is highlighted under the
// configured threat sensitivity. Low surfaces only critical findings, high
// surfaces everything above minimal.
func (m *Model) sensitivityShows(risk string) bool {
	switch m.settings.ThreatSensitivity {
	case "low":
		return risk == threat.RiskCritical
	case "high":
		return risk != threat.RiskMinimal
	default:
		return risk == threat.RiskCritical || risk == threat.RiskHigh || risk == threat.RiskMedium
	}
}

// activityLevelStyle maps an activity level to the timestamp style.
func activityLevelStyle(level ActivityLevel) lipgloss.Style {
	switch level {
	case ActivitySuccess:
		return lipgloss.NewStyle().Foreground(ColorHealthy)
	case ActivityWarning:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case ActivityError:
		return lipgloss.NewStyle().Foreground(ColorCritical)
	default:
		return lipgloss.NewStyle().Foreground(ColorTextMuted)
	}
}

// truncate shortens a string to max runes with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
