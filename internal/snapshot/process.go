package snapshot

import (
	"sort"
	"strings"
)

// Filter modes for process views.
const (
	FilterAll = "all"
	FilterAI  = "ai"
)

// Sort fields for process views.
const (
	SortByMemory = "memory"
	SortByCPU    = "cpu"
	SortByName   = "name"
)

// FilterProcesses returns the processes matching the given filter mode.
// Unknown modes behave like FilterAll.
func FilterProcesses(procs []ProcessInfo, filter string) []ProcessInfo {
	if filter != FilterAI {
		return procs
	}
	var out []ProcessInfo
	for _, p := range procs {
		if p.IsAIApp {
			out = append(out, p)
		}
	}
	return out
}

// SortProcesses returns a new slice sorted by the given field.
// Memory and CPU sort descending; name sorts ascending, case-insensitive.
// Unknown fields behave like SortByMemory.
func SortProcesses(procs []ProcessInfo, field string) []ProcessInfo {
	sorted := make([]ProcessInfo, len(procs))
	copy(sorted, procs)

	switch field {
	case SortByCPU:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CPUPercent > sorted[j].CPUPercent
		})
	case SortByName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].MemoryPercent > sorted[j].MemoryPercent
		})
	}
	return sorted
}

// TopN returns at most n processes from the front of the slice.
func TopN(procs []ProcessInfo, n int) []ProcessInfo {
	if n <= 0 || n >= len(procs) {
		return procs
	}
	return procs[:n]
}

// StatusNode is one group in a process tree, keyed by process status.
type StatusNode struct {
	Status    string
	Processes []ProcessInfo
	TotalMem  float64
	TotalCPU  float64
	AICount   int
}

// GroupByStatus builds a status-keyed tree from a process list, with
// per-group resource totals. Groups come back sorted by size, largest first.
func GroupByStatus(procs []ProcessInfo) []StatusNode {
	byStatus := make(map[string]*StatusNode)
	for _, p := range procs {
		status := p.Status
		if status == "" {
			status = "unknown"
		}
		node, ok := byStatus[status]
		if !ok {
			node = &StatusNode{Status: status}
			byStatus[status] = node
		}
		node.Processes = append(node.Processes, p)
		node.TotalMem += p.MemoryPercent
		node.TotalCPU += p.CPUPercent
		if p.IsAIApp {
			node.AICount++
		}
	}

	nodes := make([]StatusNode, 0, len(byStatus))
	for _, node := range byStatus {
		nodes = append(nodes, *node)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if len(nodes[i].Processes) != len(nodes[j].Processes) {
			return len(nodes[i].Processes) > len(nodes[j].Processes)
		}
		return nodes[i].Status < nodes[j].Status
	})
	return nodes
}

// ClassifyTabs splits a browser's tabs into protected (same hostname as the
// exam page) and will-close, computed per render.
func ClassifyTabs(tabs []TabInfo, examURL string) (protected, willClose []TabInfo) {
	for _, tab := range tabs {
		if tab.IsProtected(examURL) {
			protected = append(protected, tab)
		} else {
			willClose = append(willClose, tab)
		}
	}
	return protected, willClose
}
