package dashboard

import (
	"time"

	"github.com/examdeck/examdeck/internal/backend"
	"github.com/examdeck/examdeck/internal/snapshot"
)

// realtimeEventMsg carries one event from the realtime channel.
type realtimeEventMsg struct {
	event backend.Event
}

// channelClosedMsg signals that the realtime channel gave up reconnecting;
// the dashboard falls back to fixed-interval polling.
type channelClosedMsg struct{}

// pollTickMsg signals a periodic poll of the status endpoint.
type pollTickMsg time.Time

// pollResultMsg carries the result of one status poll.
type pollResultMsg struct {
	snap    *snapshot.Snapshot
	err     error
	elapsed time.Duration
}

// frameMsg signals an animation frame.
type frameMsg time.Time

// sweepTickMsg signals a periodic age sweep of the derived cache.
type sweepTickMsg time.Time

// settleMsg fires once after a command completion, triggering the
// reconciling snapshot request.
type settleMsg struct{}

// commandKind identifies which destructive command is pending or completed.
type commandKind int

const (
	commandKillAll commandKind = iota
	commandKillAI
	commandCloseTabs
)

// label returns the human-readable command name for confirm prompts and logs.
func (k commandKind) label() string {
	switch k {
	case commandKillAll:
		return "kill AI apps and close tabs"
	case commandKillAI:
		return "kill AI apps"
	case commandCloseTabs:
		return "close browser tabs"
	default:
		return "unknown command"
	}
}

// commandResultMsg carries the outcome of a command request.
type commandResultMsg struct {
	kind    commandKind
	err     error
	killAll *backend.KillAllResult
	killAI  *backend.KillResult
	tabs    *backend.TabsResult
}
