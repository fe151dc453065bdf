// Package dashboard implements the examdeck TUI: a Bubble Tea model that
// owns the realtime channel, renders pushed snapshots, and drives the
// kill/close command flows against the backend.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/examdeck/examdeck/internal/anim"
	"github.com/examdeck/examdeck/internal/backend"
	"github.com/examdeck/examdeck/internal/cache"
	"github.com/examdeck/examdeck/internal/config"
	"github.com/examdeck/examdeck/internal/logger"
	"github.com/examdeck/examdeck/internal/perf"
	"github.com/examdeck/examdeck/internal/snapshot"
	"github.com/examdeck/examdeck/internal/state"
	"github.com/examdeck/examdeck/internal/threat"
)

// Timing constants for the dashboard's scheduled work.
const (
	// SettleDelay is the pause after a command completion before the
	// reconciling snapshot request.
	SettleDelay = 750 * time.Millisecond
	// frameInterval is the counter animation frame rate.
	frameInterval = 50 * time.Millisecond
	// sweepInterval is how often the derived cache is age-swept.
	sweepInterval = time.Minute
	// commandTimeout bounds a full command flow including retries.
	commandTimeout = 60 * time.Second
)

// Counter identities for the animator.
const (
	counterTotal  = "total_processes"
	counterAI     = "ai_processes"
	counterTabs   = "browser_tabs"
	counterMemory = "memory_percent"
)

// State store keys.
const (
	stateConnection  = "connection"
	stateSnapshotSig = "snapshot_signature"
)

// flashDuration is how long a completed counter stays highlighted.
const flashDuration = 400 * time.Millisecond

// processRow is one derived display row: a process plus its assessment.
type processRow struct {
	Process snapshot.ProcessInfo
	Threat  threat.Assessment
}

// Model is the Bubble Tea model for the proctoring dashboard.
type Model struct {
	settings *config.Settings
	client   *backend.Client
	realtime *backend.Realtime // nil when the channel could not initialize
	events   <-chan backend.Event

	store    *state.Store
	derived  *cache.LRU
	tracker  *perf.Tracker
	animator *anim.Animator
	activity *activityLog
	log      logger.Logger

	current       *snapshot.Snapshot
	previous      *snapshot.Snapshot
	lastSignature string
	lastUpdate    time.Time

	connState backend.ConnState
	polling   bool // fixed-interval fallback when the channel is unavailable

	// In-flight guards: one request of each type at a time.
	pollInFlight    bool
	commandInFlight bool
	settlePending   bool

	confirmPending bool
	confirmKind    commandKind

	filter    string
	sortField string

	flash map[string]time.Time
	alert string

	spin spinner.Model

	width, height int
	showHelp      bool
	quitting      bool
	closed        bool

	framesRunning bool

	now func() time.Time
}

// NewModel creates a dashboard model. A nil realtime client puts the
// dashboard straight into polling-fallback mode.
func NewModel(settings *config.Settings, client *backend.Client, realtime *backend.Realtime, log logger.Logger) *Model {
	if log == nil {
		log = logger.NewEnvLogger("[dashboard]")
	}

	m := &Model{
		settings:  settings,
		client:    client,
		realtime:  realtime,
		store:     state.NewStore(state.DefaultHistorySize),
		derived:   cache.NewLRU(settings.CacheCapacity),
		tracker:   perf.NewTracker(settings.PerfWindow),
		animator:  anim.NewAnimator(),
		activity:  newActivityLog(),
		log:       log,
		connState: backend.StateDisconnected,
		polling:   realtime == nil,
		filter:    snapshot.FilterAll,
		sortField: snapshot.SortByMemory,
		flash:     make(map[string]time.Time),
		now:       time.Now,
	}
	m.spin = spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorAccent)),
	)

	if realtime != nil {
		m.events = realtime.Events()
		m.connState = backend.StateConnecting
	}

	// Connection transitions feed the activity log through the store, so
	// history of state changes is queryable.
	m.store.Subscribe(stateConnection, func(newValue, oldValue interface{}) {
		if oldValue == nil || newValue == oldValue {
			return
		}
		m.activity.add(ActivityInfo, fmt.Sprintf("connection: %v to %v", oldValue, newValue))
	})
	m.store.Set(stateConnection, m.connState.String())

	return m
}

// Init starts the event pump, the fallback poll timer, and the cache sweep.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.sweepTickCmd(), m.spin.Tick}
	if m.events != nil {
		cmds = append(cmds, waitForEvent(m.events))
	}
	if m.polling {
		m.activity.add(ActivityWarning, "realtime channel unavailable, polling instead")
		cmds = append(cmds, m.pollNowCmd(), m.pollTickCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case realtimeEventMsg:
		cmd := m.safeHandleEvent(msg.event)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case channelClosedMsg:
		m.setConnState(backend.StateDisconnected)
		m.polling = true
		m.events = nil
		m.activity.add(ActivityWarning, "realtime channel lost, falling back to polling")
		return m, tea.Batch(m.pollNowCmd(), m.pollTickCmd())

	case pollTickMsg:
		if m.quitting {
			return m, nil
		}
		var cmd tea.Cmd
		if m.polling {
			cmd = m.pollNowCmd()
		}
		return m, tea.Batch(cmd, m.pollTickCmd())

	case pollResultMsg:
		m.pollInFlight = false
		m.tracker.AddAPIResponseTime(msg.elapsed)
		if msg.err != nil {
			m.activity.add(ActivityError, fmt.Sprintf("status poll failed: %v", msg.err))
			return m, nil
		}
		return m, m.safeApplySnapshot(msg.snap)

	case frameMsg:
		for _, id := range m.animator.Step() {
			m.flash[id] = m.now().Add(flashDuration)
		}
		if m.animator.Active() && !m.quitting {
			return m, m.frameCmd()
		}
		m.framesRunning = false
		return m, nil

	case sweepTickMsg:
		if removed := m.derived.Sweep(cache.DefaultMaxAge); removed > 0 {
			m.log.Debug("swept %d stale cache entries", removed)
		}
		if m.quitting {
			return m, nil
		}
		return m, m.sweepTickCmd()

	case settleMsg:
		m.settlePending = false
		return m, m.requestUpdate()

	case spinner.TickMsg:
		// The spinner only matters before the first snapshot arrives.
		if m.current != nil || m.quitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case commandResultMsg:
		return m.handleCommandResult(msg)
	}

	return m, nil
}

// View renders the dashboard and records the render time.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	start := m.now()
	out := m.render()
	m.tracker.AddRenderTime(m.now().Sub(start))
	return out
}

// Close releases everything the dashboard owns: in-flight animations and the
// realtime connection. Idempotent, and safe if Init was never run.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.quitting = true
	m.animator.CancelAll()
	if m.realtime != nil {
		if m.connState == backend.StateConnected {
			if err := m.realtime.Send(backend.EventStopMonitoring, nil); err != nil {
				m.log.Debug("stop_monitoring on close: %v", err)
			}
		}
		m.realtime.Close()
	}
}

// waitForEvent blocks on the realtime channel and delivers the next event.
func waitForEvent(events <-chan backend.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return channelClosedMsg{}
		}
		return realtimeEventMsg{event: ev}
	}
}

// safeHandleEvent dispatches a realtime event with a recovery net: a panic in
// a handler is logged to the activity log and answered with a fresh snapshot
// request instead of crashing the dashboard.
func (m *Model) safeHandleEvent(ev backend.Event) (cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.activity.add(ActivityError, fmt.Sprintf("internal error handling %s: %v", ev.Name, r))
			m.log.Error("recovered from %s handler: %v", ev.Name, r)
			cmd = m.requestUpdate()
		}
	}()
	return m.handleEvent(ev)
}

// handleEvent reacts to one realtime event.
func (m *Model) handleEvent(ev backend.Event) tea.Cmd {
	switch ev.Name {
	case backend.EventConnect:
		m.setConnState(backend.StateConnected)
		m.polling = false
		// Re-request monitoring on every connect so reconnection is
		// idempotent with respect to server-side subscription state.
		if err := m.realtime.Send(backend.EventStartMonitoring, nil); err != nil {
			m.log.Warn("could not start monitoring: %v", err)
		}
		return nil

	case backend.EventDisconnect:
		m.setConnState(backend.StateDisconnected)
		var payload backend.ErrorPayload
		if len(ev.Data) > 0 {
			_ = json.Unmarshal(ev.Data, &payload)
		}
		if payload.Message != "" {
			m.activity.add(ActivityWarning, "disconnected: "+payload.Message)
		}
		return nil

	case backend.EventInitialData, backend.EventMonitoringUpdate:
		var snap snapshot.Snapshot
		if err := json.Unmarshal(ev.Data, &snap); err != nil {
			m.activity.add(ActivityError, fmt.Sprintf("malformed %s payload: %v", ev.Name, err))
			return nil
		}
		return m.safeApplySnapshot(&snap)

	case backend.EventMonitoringStarted:
		m.activity.add(ActivityInfo, "monitoring started")
		return nil

	case backend.EventMonitoringStopped:
		m.activity.add(ActivityWarning, "monitoring stopped")
		return nil

	case backend.EventKillCompleted:
		var result backend.KillAllResult
		if err := json.Unmarshal(ev.Data, &result); err != nil {
			m.activity.add(ActivityError, fmt.Sprintf("malformed kill_completed payload: %v", err))
			return nil
		}
		return m.applyKillAll(&result)

	case backend.EventAIKillCompleted:
		var result backend.KillResult
		if err := json.Unmarshal(ev.Data, &result); err != nil {
			m.activity.add(ActivityError, fmt.Sprintf("malformed ai_kill_completed payload: %v", err))
			return nil
		}
		return m.applyKillAI(&result)

	case backend.EventTabsClosed:
		var result backend.TabsResult
		if err := json.Unmarshal(ev.Data, &result); err != nil {
			m.activity.add(ActivityError, fmt.Sprintf("malformed tabs_closed payload: %v", err))
			return nil
		}
		return m.applyTabsClosed(&result)

	case backend.EventError:
		var payload backend.ErrorPayload
		_ = json.Unmarshal(ev.Data, &payload)
		m.activity.add(ActivityError, "backend error: "+payload.Message)
		return nil
	}

	m.log.Debug("ignoring unknown event %q", ev.Name)
	return nil
}

// safeApplySnapshot applies a snapshot with the same recovery net as event
// handling.
func (m *Model) safeApplySnapshot(snap *snapshot.Snapshot) (cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.activity.add(ActivityError, fmt.Sprintf("internal error rendering snapshot: %v", r))
			m.log.Error("recovered from snapshot apply: %v", r)
			cmd = nil
		}
	}()
	return m.applySnapshot(snap)
}

// applySnapshot makes a pushed snapshot the authoritative one, skipping
// recompute entirely when its signature matches the current snapshot.
func (m *Model) applySnapshot(snap *snapshot.Snapshot) tea.Cmd {
	snap.Normalize()
	m.lastUpdate = m.now()
	m.tracker.AddMemoryReading(snap.SystemStats.MemoryPercent)

	sig := snap.Signature()
	if m.current != nil && sig == m.lastSignature {
		return nil
	}

	m.previous = m.current
	m.current = snap
	m.lastSignature = sig
	m.store.Set(stateSnapshotSig, sig)

	cmd := m.animateCounters(snap)

	wasAlerting := m.alert != ""
	if snap.SystemStats.MemoryPercent/100 > MemoryAlertRatio {
		m.alert = fmt.Sprintf("Memory usage high: %.1f%%", snap.SystemStats.MemoryPercent)
		if !wasAlerting {
			m.activity.add(ActivityWarning, m.alert)
			if m.settings.AudioAlerts {
				fmt.Print("\a")
			}
		}
	} else if wasAlerting {
		m.alert = ""
	}

	return cmd
}

// animateCounters transitions the header counters to the new snapshot's
// values. With animations disabled the counters snap directly.
func (m *Model) animateCounters(snap *snapshot.Snapshot) tea.Cmd {
	targets := map[string]int{
		counterTotal:  snap.Processes.Count,
		counterAI:     len(snap.Processes.AI),
		counterTabs:   snap.TotalTabCount(),
		counterMemory: int(snap.SystemStats.MemoryPercent),
	}

	// Counter updates are issued in a fixed order; their animations then
	// run interleaved across frames with no completion-order guarantee.
	for _, id := range []string{counterTotal, counterAI, counterTabs, counterMemory} {
		target := targets[id]
		from, ok := m.animator.Value(id)
		if !ok {
			from = 0
		}
		if !m.settings.Animations {
			m.setCounter(id, target)
			continue
		}
		m.animator.Start(id, from, target, anim.DefaultDuration, "easeOut")
	}

	return m.startFrames()
}

// setCounter snaps a counter to a value with no transition, cancelling any
// animation in flight for it.
func (m *Model) setCounter(id string, value int) {
	m.animator.Cancel(id)
	m.animator.Start(id, value, value, 0, "")
}

// counterValue reads a counter's currently displayed value.
func (m *Model) counterValue(id string) int {
	v, _ := m.animator.Value(id)
	return v
}

// startFrames begins the frame loop if animations are in flight and the loop
// isn't already running.
func (m *Model) startFrames() tea.Cmd {
	if m.framesRunning || !m.animator.Active() {
		return nil
	}
	m.framesRunning = true
	return m.frameCmd()
}

// applyKillAll optimistically updates counters from a kill_completed event,
// logs the result, and schedules exactly one reconciling snapshot request.
func (m *Model) applyKillAll(result *backend.KillAllResult) tea.Cmd {
	m.setCounter(counterAI, 0)
	remaining := m.counterValue(counterTabs) - result.BrowserTabs.TotalClosed
	if remaining < 0 {
		remaining = 0
	}
	m.setCounter(counterTabs, remaining)

	m.activity.add(ActivitySuccess, fmt.Sprintf("killed %d AI applications, closed %d tabs",
		len(result.AIApplications.Killed), result.BrowserTabs.TotalClosed))

	return m.scheduleSettle()
}

// applyKillAI optimistically zeroes the AI counter from an ai_kill_completed
// event.
func (m *Model) applyKillAI(result *backend.KillResult) tea.Cmd {
	m.setCounter(counterAI, 0)
	m.activity.add(ActivitySuccess, fmt.Sprintf("killed %d AI applications", len(result.Killed)))
	return m.scheduleSettle()
}

// applyTabsClosed optimistically updates the tab counter from a tabs_closed
// event.
func (m *Model) applyTabsClosed(result *backend.TabsResult) tea.Cmd {
	m.setCounter(counterTabs, result.TotalPreserved)
	m.activity.add(ActivitySuccess, fmt.Sprintf("closed %d tabs, preserved %d",
		result.TotalClosed, result.TotalPreserved))
	return m.scheduleSettle()
}

// scheduleSettle arms the settle timer unless a reconciliation is already
// pending, so bursts of completion events reconcile once.
func (m *Model) scheduleSettle() tea.Cmd {
	if m.settlePending {
		return nil
	}
	m.settlePending = true
	return tea.Tick(SettleDelay, func(time.Time) tea.Msg {
		return settleMsg{}
	})
}

// requestUpdate asks the backend for a fresh snapshot over whichever
// transport is available.
func (m *Model) requestUpdate() tea.Cmd {
	if m.connState == backend.StateConnected && m.realtime != nil {
		if err := m.realtime.Send(backend.EventRequestUpdate, nil); err != nil {
			m.log.Warn("request_update failed: %v", err)
			return m.pollNowCmd()
		}
		return nil
	}
	return m.pollNowCmd()
}

// setConnState records a connection state transition.
func (m *Model) setConnState(s backend.ConnState) {
	m.connState = s
	m.store.Set(stateConnection, s.String())
}

// pollNowCmd fetches a snapshot from the status endpoint, guarded so only
// one poll is in flight at a time.
func (m *Model) pollNowCmd() tea.Cmd {
	if m.pollInFlight {
		return nil
	}
	m.pollInFlight = true
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		start := time.Now()
		snap, err := client.Status(ctx)
		return pollResultMsg{snap: snap, err: err, elapsed: time.Since(start)}
	}
}

// pollTickCmd schedules the next fallback poll.
func (m *Model) pollTickCmd() tea.Cmd {
	return tea.Tick(m.settings.UpdateInterval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// frameCmd schedules the next animation frame.
func (m *Model) frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// sweepTickCmd schedules the next derived-cache age sweep.
func (m *Model) sweepTickCmd() tea.Cmd {
	return tea.Tick(sweepInterval, func(t time.Time) tea.Msg {
		return sweepTickMsg(t)
	})
}

// execCommandCmd issues a command request. The REST client retries with
// backoff internally; the final failure comes back as a commandResultMsg.
func (m *Model) execCommandCmd(kind commandKind) tea.Cmd {
	client := m.client
	examURL := m.settings.ExamURL
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		switch kind {
		case commandKillAll:
			result, err := client.KillAll(ctx, examURL)
			return commandResultMsg{kind: kind, err: err, killAll: result}
		case commandKillAI:
			result, err := client.KillAIOnly(ctx)
			return commandResultMsg{kind: kind, err: err, killAI: result}
		default:
			result, err := client.CloseTabsOnly(ctx, examURL)
			return commandResultMsg{kind: kind, err: err, tabs: result}
		}
	}
}

// handleCommandResult reacts to a finished command request.
func (m *Model) handleCommandResult(msg commandResultMsg) (tea.Model, tea.Cmd) {
	m.commandInFlight = false

	if msg.err != nil {
		m.alert = fmt.Sprintf("Could not %s", msg.kind.label())
		m.activity.add(ActivityError, fmt.Sprintf("%s failed: %v", msg.kind.label(), msg.err))
		return m, nil
	}

	m.activity.add(ActivityInfo, msg.kind.label()+" accepted by backend")

	// With the realtime channel up, the completion event carries the
	// authoritative numbers. In polling mode it never arrives, so the
	// response body drives the optimistic update instead.
	if m.connState == backend.StateConnected {
		return m, nil
	}

	switch {
	case msg.killAll != nil:
		return m, m.applyKillAll(msg.killAll)
	case msg.killAI != nil:
		return m, m.applyKillAI(msg.killAI)
	case msg.tabs != nil:
		return m, m.applyTabsClosed(msg.tabs)
	}
	return m, m.scheduleSettle()
}

// processRows computes (or serves from cache) the display rows for the
// current snapshot under the active filter and sort.
func (m *Model) processRows() []processRow {
	if m.current == nil {
		return nil
	}

	procs := m.current.Processes.All
	key := cache.Key("process_rows", len(procs), m.filter, m.sortField, m.now())
	if cached, ok := m.derived.Get(key); ok {
		if rows, ok := cached.([]processRow); ok {
			return rows
		}
	}

	filtered := snapshot.FilterProcesses(procs, m.filter)
	sorted := snapshot.SortProcesses(filtered, m.sortField)
	top := snapshot.TopN(sorted, 15)

	rows := make([]processRow, len(top))
	for i, p := range top {
		rows[i] = processRow{Process: p, Threat: threat.AnalyzeProcess(p)}
	}

	m.derived.Set(key, rows)
	return rows
}
