package dashboard

import (
	"encoding/json"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examdeck/examdeck/internal/backend"
	"github.com/examdeck/examdeck/internal/config"
	"github.com/examdeck/examdeck/internal/logger"
	"github.com/examdeck/examdeck/internal/snapshot"
)

func init() {
	// Deterministic colors regardless of the test terminal.
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	settings := config.DefaultSettings()
	settings.Animations = false
	settings.ExamURL = "https://exam.university.edu/final"
	client := backend.NewClient("http://127.0.0.1:1", logger.Noop())
	return NewModel(settings, client, nil, logger.Noop())
}

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Processes: snapshot.Processes{
			All: []snapshot.ProcessInfo{
				{PID: 101, Name: "chatgpt", MemoryPercent: 14.0, CPUPercent: 3.0, Status: "running", IsAIApp: true},
				{PID: 202, Name: "slack", MemoryPercent: 4.0, CPUPercent: 1.0, Status: "running"},
			},
			AI:    []snapshot.ProcessInfo{{PID: 101, Name: "chatgpt", MemoryPercent: 14.0, IsAIApp: true}},
			Count: 2,
		},
		BrowserTabs: snapshot.BrowserTabs{
			Tabs: map[string][]snapshot.TabInfo{
				"chrome": {
					{Title: "Final Exam", URL: "https://exam.university.edu/final", Browser: "chrome", Active: true},
					{Title: "ChatGPT", URL: "https://chat.openai.com/", Browser: "chrome"},
				},
			},
		},
		SystemStats: snapshot.SystemStats{CPUPercent: 12.5, MemoryPercent: 45.0, MemoryUsedGB: 7.2, MemoryTotalGB: 16.0},
	}
}

func encode(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestSnapshotUpdatesCounters(t *testing.T) {
	m := newTestModel(t)
	m.applySnapshot(testSnapshot())

	assert.Equal(t, 2, m.counterValue(counterTotal))
	assert.Equal(t, 1, m.counterValue(counterAI))
	assert.Equal(t, 2, m.counterValue(counterTabs))
	assert.Equal(t, 45, m.counterValue(counterMemory))
}

func TestIdenticalSnapshotIsSkipped(t *testing.T) {
	m := newTestModel(t)
	m.applySnapshot(testSnapshot())
	first := m.current

	m.applySnapshot(testSnapshot())

	assert.Same(t, first, m.current, "identical snapshot should not replace the current one")
	assert.Nil(t, m.previous)
}

func TestChangedSnapshotReplacesCurrent(t *testing.T) {
	m := newTestModel(t)
	m.applySnapshot(testSnapshot())
	first := m.current

	next := testSnapshot()
	next.Processes.All = next.Processes.All[:1]
	next.Processes.Count = 1
	m.applySnapshot(next)

	assert.Same(t, first, m.previous)
	assert.Equal(t, 1, m.counterValue(counterTotal))
}

func TestMemoryAlertAboveRatio(t *testing.T) {
	m := newTestModel(t)

	snap := testSnapshot()
	snap.SystemStats.MemoryPercent = 85.0
	m.applySnapshot(snap)
	assert.Contains(t, m.alert, "Memory usage high")

	recovered := testSnapshot()
	recovered.SystemStats.MemoryPercent = 45.0
	m.applySnapshot(recovered)
	assert.Empty(t, m.alert)
}

func TestKillCompletedZeroesAICounterAndLogsBothNumbers(t *testing.T) {
	m := newTestModel(t)
	m.applySnapshot(testSnapshot())
	require.Equal(t, 1, m.counterValue(counterAI))

	result := backend.KillAllResult{
		AIApplications: backend.KillResult{Killed: []string{"chatgpt", "claude"}},
		BrowserTabs:    backend.TabsResult{TotalClosed: 5, TotalPreserved: 1},
	}
	cmd := m.handleEvent(backend.Event{Name: backend.EventKillCompleted, Data: encode(t, result)})

	assert.Equal(t, 0, m.counterValue(counterAI), "AI counter drops before the next snapshot arrives")
	require.NotNil(t, cmd, "a reconciling request must be scheduled")
	assert.True(t, m.settlePending)

	entries := m.activity.last(1)
	require.Len(t, entries, 1)
	assert.Equal(t, ActivitySuccess, entries[0].Level)
	assert.Contains(t, entries[0].Message, "2")
	assert.Contains(t, entries[0].Message, "5")
}

func TestSettleIsScheduledOnce(t *testing.T) {
	m := newTestModel(t)

	first := m.scheduleSettle()
	second := m.scheduleSettle()

	assert.NotNil(t, first)
	assert.Nil(t, second, "a pending settle must not be re-armed")

	_, _ = m.Update(settleMsg{})
	assert.False(t, m.settlePending)
}

func TestTabsClosedUpdatesTabCounter(t *testing.T) {
	m := newTestModel(t)
	m.applySnapshot(testSnapshot())

	result := backend.TabsResult{TotalClosed: 1, TotalPreserved: 1}
	m.handleEvent(backend.Event{Name: backend.EventTabsClosed, Data: encode(t, result)})

	assert.Equal(t, 1, m.counterValue(counterTabs))
}

func TestPollInFlightGuard(t *testing.T) {
	m := newTestModel(t)

	first := m.pollNowCmd()
	second := m.pollNowCmd()

	assert.NotNil(t, first)
	assert.Nil(t, second, "only one poll may be in flight")

	_, _ = m.Update(pollResultMsg{snap: testSnapshot()})
	assert.False(t, m.pollInFlight)
	assert.NotNil(t, m.pollNowCmd())
}

func TestChannelClosedFallsBackToPolling(t *testing.T) {
	m := newTestModel(t)
	m.polling = false

	_, cmd := m.Update(channelClosedMsg{})

	assert.True(t, m.polling)
	assert.NotNil(t, cmd)
	assert.Equal(t, backend.StateDisconnected, m.connState)
}

func TestMalformedEventPayloadIsLoggedNotFatal(t *testing.T) {
	m := newTestModel(t)

	cmd := m.handleEvent(backend.Event{Name: backend.EventKillCompleted, Data: json.RawMessage(`{"broken`)})

	assert.Nil(t, cmd)
	entries := m.activity.last(1)
	require.Len(t, entries, 1)
	assert.Equal(t, ActivityError, entries[0].Level)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	m := newTestModel(t)

	// initial_data with a payload that decodes but with a nil model field
	// is hard to provoke, so panic directly through the recovery wrapper.
	m.realtime = nil
	assert.NotPanics(t, func() {
		m.safeHandleEvent(backend.Event{Name: backend.EventConnect})
	})

	entries := m.activity.last(1)
	require.Len(t, entries, 1)
	assert.Equal(t, ActivityError, entries[0].Level)
}

func TestConfirmFlow(t *testing.T) {
	m := newTestModel(t)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'K'}})
	require.True(t, m.confirmPending)
	assert.Equal(t, commandKillAll, m.confirmKind)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.False(t, m.confirmPending)
	assert.False(t, m.commandInFlight)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'A'}})
	require.True(t, m.confirmPending)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	assert.False(t, m.confirmPending)
	assert.True(t, m.commandInFlight)
	assert.NotNil(t, cmd)
}

func TestSecondCommandRejectedWhileInFlight(t *testing.T) {
	m := newTestModel(t)
	m.commandInFlight = true

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'T'}})

	assert.False(t, m.confirmPending)
}

func TestCommandFailureRaisesAlert(t *testing.T) {
	m := newTestModel(t)
	m.commandInFlight = true

	_, _ = m.Update(commandResultMsg{kind: commandKillAI, err: assert.AnError})

	assert.False(t, m.commandInFlight)
	assert.Contains(t, m.alert, "Could not")
	entries := m.activity.last(1)
	require.Len(t, entries, 1)
	assert.Equal(t, ActivityError, entries[0].Level)
}

func TestCommandResultDrivesCountersInPollingMode(t *testing.T) {
	m := newTestModel(t)
	m.applySnapshot(testSnapshot())
	m.commandInFlight = true

	_, cmd := m.Update(commandResultMsg{
		kind:   commandKillAI,
		killAI: &backend.KillResult{Killed: []string{"chatgpt"}},
	})

	assert.Equal(t, 0, m.counterValue(counterAI))
	assert.NotNil(t, cmd)
}

func TestFilterAndSortCycling(t *testing.T) {
	m := newTestModel(t)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	assert.Equal(t, snapshot.FilterAI, m.filter)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	assert.Equal(t, snapshot.FilterAll, m.filter)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	assert.Equal(t, snapshot.SortByCPU, m.sortField)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	assert.Equal(t, snapshot.SortByName, m.sortField)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	assert.Equal(t, snapshot.SortByMemory, m.sortField)
}

func TestProcessRowsAreCached(t *testing.T) {
	m := newTestModel(t)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }
	m.applySnapshot(testSnapshot())

	first := m.processRows()
	require.Len(t, first, 2)

	// Mutate the snapshot behind the cache's back; within the same bucket
	// and inputs the cached rows are served.
	m.current.Processes.All[0].Name = "renamed"
	second := m.processRows()
	assert.Equal(t, "chatgpt", second[0].Process.Name)

	// Changing the filter changes the key, forcing a recompute.
	m.filter = snapshot.FilterAI
	third := m.processRows()
	require.Len(t, third, 1)
}

func TestCloseIsIdempotent(t *testing.T) {
	m := newTestModel(t)
	m.Close()
	assert.NotPanics(t, m.Close)
	assert.True(t, m.closed)
}

func TestConnectionChangesRecordedInActivity(t *testing.T) {
	m := newTestModel(t)

	m.setConnState(backend.StateConnected)

	entries := m.activity.last(1)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "connected")
}
