// Package snapshot defines the wire types pushed by the proctoring backend
// and the batch utilities that turn a snapshot into display rows.
//
// Exactly one snapshot is authoritative for rendering at any time. The
// dashboard keeps only the immediately previous one for change detection.
package snapshot

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ProcessInfo describes one running process as reported by the backend.
// PIDs identify a process for the lifetime of one snapshot only.
type ProcessInfo struct {
	PID           int     `json:"pid"`
	Name          string  `json:"name"`
	MemoryPercent float64 `json:"memory_percent"`
	CPUPercent    float64 `json:"cpu_percent"`
	Status        string  `json:"status"`
	IsAIApp       bool    `json:"is_ai_app"`
}

// TabInfo describes one open browser tab.
type TabInfo struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Browser string `json:"browser,omitempty"`
	Active  bool   `json:"active,omitempty"`
}

// Processes groups the process lists in one snapshot.
type Processes struct {
	All   []ProcessInfo `json:"all"`
	AI    []ProcessInfo `json:"ai"`
	Count int           `json:"count"`
}

// TabSummary aggregates tab counts across browsers.
type TabSummary struct {
	TotalTabs int            `json:"total_tabs"`
	Browsers  map[string]int `json:"browsers"`
}

// BrowserTabs groups per-browser tab lists with their summary.
type BrowserTabs struct {
	Tabs    map[string][]TabInfo `json:"tabs"`
	Summary TabSummary           `json:"summary"`
}

// SystemStats carries coarse system readings alongside each snapshot.
type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedGB  float64 `json:"memory_used_gb"`
	MemoryTotalGB float64 `json:"memory_total_gb"`
}

// Snapshot is one full push of process/tab/system data from the backend.
// It is transient: superseded by the next push, never persisted.
type Snapshot struct {
	Processes   Processes   `json:"processes"`
	BrowserTabs BrowserTabs `json:"browser_tabs"`
	SystemStats SystemStats `json:"system_stats"`
	Timestamp   float64     `json:"timestamp"`
	Datetime    string      `json:"datetime"`
}

// Normalize fills in defaults for optional fields the backend may omit, so
// the dashboard can render zero counts and empty-state placeholders instead
// of failing on a partial snapshot.
func (s *Snapshot) Normalize() {
	if s.Processes.All == nil {
		s.Processes.All = []ProcessInfo{}
	}
	if s.Processes.AI == nil {
		s.Processes.AI = []ProcessInfo{}
	}
	if s.Processes.Count == 0 {
		s.Processes.Count = len(s.Processes.All)
	}
	if s.BrowserTabs.Tabs == nil {
		s.BrowserTabs.Tabs = map[string][]TabInfo{}
	}
	if s.BrowserTabs.Summary.Browsers == nil {
		s.BrowserTabs.Summary.Browsers = map[string]int{}
	}
	if s.BrowserTabs.Summary.TotalTabs == 0 {
		total := 0
		for browser, tabs := range s.BrowserTabs.Tabs {
			s.BrowserTabs.Summary.Browsers[browser] = len(tabs)
			total += len(tabs)
		}
		s.BrowserTabs.Summary.TotalTabs = total
	}
}

// TotalTabCount returns the summed tab count across all browsers.
func (s *Snapshot) TotalTabCount() int {
	if s.BrowserTabs.Summary.TotalTabs > 0 {
		return s.BrowserTabs.Summary.TotalTabs
	}
	total := 0
	for _, tabs := range s.BrowserTabs.Tabs {
		total += len(tabs)
	}
	return total
}

// Signature produces a cheap change-detection fingerprint for a snapshot.
// Two snapshots with equal signatures render identically, so the dashboard
// skips recomputation when consecutive pushes match.
func (s *Snapshot) Signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "p%d:a%d:t%d:m%.1f:c%.1f",
		s.Processes.Count,
		len(s.Processes.AI),
		s.TotalTabCount(),
		s.SystemStats.MemoryPercent,
		s.SystemStats.CPUPercent)

	// Top PIDs keep the signature sensitive to process churn without
	// hashing the whole list.
	limit := len(s.Processes.All)
	if limit > 10 {
		limit = 10
	}
	for _, p := range s.Processes.All[:limit] {
		fmt.Fprintf(&b, ":%d", p.PID)
	}
	return b.String()
}

// IsProtected reports whether a tab shares a hostname with the exam page.
// Protected tabs are preserved by close-tab commands; classification happens
// per render and is never stored.
func (t TabInfo) IsProtected(examURL string) bool {
	if examURL == "" || t.URL == "" {
		return false
	}
	tabHost := hostnameOf(t.URL)
	examHost := hostnameOf(examURL)
	return tabHost != "" && tabHost == examHost
}

func hostnameOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SortedBrowsers returns the browser names of a tab map in stable order.
func (b BrowserTabs) SortedBrowsers() []string {
	names := make([]string, 0, len(b.Tabs))
	for name := range b.Tabs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
