package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/examdeck/examdeck/internal/backend"
	"github.com/examdeck/examdeck/internal/logger"
	"github.com/examdeck/examdeck/internal/snapshot"
	"github.com/examdeck/examdeck/internal/threat"
)

// statusCommand fetches one snapshot and prints it.
func statusCommand() error {
	settings := loadSettings()
	client := backend.NewClient(settings.BackendURL, logger.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := client.Status(ctx)
	if err != nil {
		if statusJSONFlag {
			return WriteJSONError(os.Stdout, err)
		}
		return err
	}

	if statusJSONFlag {
		return WriteJSONSuccess(os.Stdout, snap)
	}

	printSnapshot(snap, settings.ExamURL)
	return nil
}

// printSnapshot writes a human-readable snapshot summary.
func printSnapshot(snap *snapshot.Snapshot, examURL string) {
	title := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Faint(true)

	fmt.Printf("%s  %d processes, %d AI, %d tabs\n",
		title.Render("examdeck status"),
		snap.Processes.Count, len(snap.Processes.AI), snap.TotalTabCount())
	fmt.Printf("memory %.1f%% (%.1f / %.1f GB)   cpu %.1f%%\n",
		snap.SystemStats.MemoryPercent, snap.SystemStats.MemoryUsedGB,
		snap.SystemStats.MemoryTotalGB, snap.SystemStats.CPUPercent)

	for _, g := range snapshot.GroupByStatus(snap.Processes.All) {
		fmt.Printf("  %-10s %3d processes  %5.1f%% mem  %5.1f%% cpu",
			g.Status, len(g.Processes), g.TotalMem, g.TotalCPU)
		if g.AICount > 0 {
			fmt.Printf("  (%d AI)", g.AICount)
		}
		fmt.Println()
	}
	fmt.Println()

	if len(snap.Processes.AI) > 0 {
		fmt.Println(title.Render("AI applications:"))
		for _, p := range snap.Processes.AI {
			a := threat.AnalyzeProcess(p)
			fmt.Printf("  %7d  %-24s %5.1f%% mem  %s\n", p.PID, p.Name, p.MemoryPercent, a.Risk)
		}
		fmt.Println()
	}

	for _, browser := range snap.BrowserTabs.SortedBrowsers() {
		protected, willClose := snapshot.ClassifyTabs(snap.BrowserTabs.Tabs[browser], examURL)
		fmt.Println(title.Render(browser + ":"))
		for _, t := range protected {
			fmt.Printf("  ✓ %s %s\n", t.Title, dim.Render("(protected)"))
		}
		for _, t := range willClose {
			fmt.Printf("  ✗ %s\n", t.Title)
		}
	}
}
