package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examdeck/examdeck/internal/snapshot"
)

func TestViewShowsBadgesForAIProcess(t *testing.T) {
	m := newTestModel(t)
	m.applySnapshot(testSnapshot())

	out := m.View()

	assert.Contains(t, out, "chatgpt")
	assert.Contains(t, out, "AI")
	assert.Contains(t, out, "High Memory", "memory share above the badge threshold")
	assert.Contains(t, out, "critical", "chatgpt scores past the critical breakpoint")
}

func TestViewMarksProtectedAndClosingTabs(t *testing.T) {
	m := newTestModel(t)
	m.applySnapshot(testSnapshot())

	out := m.View()

	assert.Contains(t, out, "Final Exam")
	assert.Contains(t, out, "(protected)")
	assert.Contains(t, out, "ChatGPT")
}

func TestViewBeforeFirstSnapshot(t *testing.T) {
	m := newTestModel(t)

	out := m.View()

	assert.Contains(t, out, "waiting for first snapshot")
	assert.Contains(t, out, "procs")
}

func TestViewShowsAlertBanner(t *testing.T) {
	m := newTestModel(t)
	snap := testSnapshot()
	snap.SystemStats.MemoryPercent = 92.0
	m.applySnapshot(snap)

	out := m.View()

	assert.Contains(t, out, "Memory usage high")
}

func TestViewShowsConfirmPrompt(t *testing.T) {
	m := newTestModel(t)
	m.confirmPending = true
	m.confirmKind = commandCloseTabs

	out := m.View()

	assert.Contains(t, out, "Really close browser tabs?")
}

func TestViewRecordsRenderTime(t *testing.T) {
	m := newTestModel(t)
	before := m.tracker.RenderSampleCount()

	m.View()

	assert.Equal(t, before+1, m.tracker.RenderSampleCount())
}

func TestSensitivityFiltersRiskLabels(t *testing.T) {
	m := newTestModel(t)

	m.settings.ThreatSensitivity = "low"
	assert.True(t, m.sensitivityShows("critical"))
	assert.False(t, m.sensitivityShows("high"))

	m.settings.ThreatSensitivity = "medium"
	assert.True(t, m.sensitivityShows("medium"))
	assert.False(t, m.sensitivityShows("low"))

	m.settings.ThreatSensitivity = "high"
	assert.True(t, m.sensitivityShows("low"))
	assert.False(t, m.sensitivityShows("minimal"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactlyten", truncate("exactlyten", 10))
	assert.Equal(t, "longer th…", truncate("longer than ten", 10))
}

func TestActivityLogBounded(t *testing.T) {
	l := newActivityLog()
	for i := 0; i < maxActivityEntries+10; i++ {
		l.add(ActivityInfo, "entry")
	}

	assert.Len(t, l.entries, maxActivityEntries)

	l.add(ActivityError, "newest")
	entries := l.last(2)
	require.Len(t, entries, 2)
	assert.Equal(t, "newest", entries[0].Message)
}

func TestRenderSparkline(t *testing.T) {
	assert.Empty(t, renderSparkline(nil, 10, ColorGraph))

	out := renderSparkline([]float64{0, 50, 100}, 10, ColorGraph)
	assert.Contains(t, out, "▁")
	assert.Contains(t, out, "█")

	// Data wider than the window keeps only the most recent points.
	wide := renderSparkline([]float64{100, 0, 0}, 2, ColorGraph)
	assert.NotContains(t, wide, "█")
}

func TestClassifyTabsAgainstExamURL(t *testing.T) {
	tabs := testSnapshot().BrowserTabs.Tabs["chrome"]
	protected, willClose := snapshot.ClassifyTabs(tabs, "https://exam.university.edu/final")

	require.Len(t, protected, 1)
	require.Len(t, willClose, 1)
	assert.Equal(t, "Final Exam", protected[0].Title)
	assert.Equal(t, "ChatGPT", willClose[0].Title)
}
