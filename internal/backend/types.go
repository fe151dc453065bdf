// Package backend is the client side of the proctoring backend contract:
// a small REST surface for commands and a realtime channel for pushed
// snapshots and completion events. The backend itself (process enumeration,
// browser-tab introspection, termination) is an external collaborator.
package backend

import (
	"encoding/json"

	"github.com/examdeck/examdeck/internal/snapshot"
)

// Envelope is the response wrapper used by every REST endpoint.
type Envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp float64         `json:"timestamp,omitempty"`
}

// KillResult reports processes terminated by a kill command.
type KillResult struct {
	Killed []string `json:"killed"`
	Failed []string `json:"failed,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// TabsResult reports tabs closed and preserved by a close-tabs command.
type TabsResult struct {
	TotalClosed    int `json:"total_closed"`
	TotalPreserved int `json:"total_preserved"`
}

// KillAllResult is the combined result of the kill-all command, and the
// payload of the kill_completed event.
type KillAllResult struct {
	AIApplications KillResult `json:"ai_applications"`
	BrowserTabs    TabsResult `json:"browser_tabs"`
}

// PreviewProcess is one process a kill command would terminate.
type PreviewProcess struct {
	Name string `json:"name"`
	PID  int    `json:"pid"`
	Exe  string `json:"exe,omitempty"`
}

// Preview describes what a kill-all would do without doing it.
type Preview struct {
	AIApplications []PreviewProcess              `json:"ai_applications"`
	BrowserTabs    map[string][]snapshot.TabInfo `json:"browser_tabs"`
	ProtectedTabs  []snapshot.TabInfo            `json:"protected_tabs"`
}

// ErrorPayload is the data of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}
