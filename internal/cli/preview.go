package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/examdeck/examdeck/internal/backend"
	"github.com/examdeck/examdeck/internal/errors"
	"github.com/examdeck/examdeck/internal/logger"
)

// previewCommand shows what a kill-all would terminate, without doing it.
func previewCommand() error {
	settings := loadSettings()
	if killExamURLFlag != "" {
		settings.ExamURL = killExamURLFlag
	}
	if settings.ExamURL == "" {
		return errors.New(errors.ErrConfig,
			"No exam URL configured",
			"Pass --exam-url or run 'examdeck settings set exam_url <url>' so exam tabs are protected")
	}

	client := backend.NewClient(settings.BackendURL, logger.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	preview, err := client.PreviewTermination(ctx, settings.ExamURL)
	if err != nil {
		if previewJSONFlag {
			return WriteJSONError(os.Stdout, err)
		}
		return err
	}

	if previewJSONFlag {
		return WriteJSONSuccess(os.Stdout, preview)
	}

	title := lipgloss.NewStyle().Bold(true)

	fmt.Println(title.Render("Would kill:"))
	if len(preview.AIApplications) == 0 {
		fmt.Println("  nothing")
	}
	for _, p := range preview.AIApplications {
		fmt.Printf("  %7d  %s\n", p.PID, p.Name)
	}

	fmt.Println(title.Render("Would close:"))
	closing := 0
	for browser, tabs := range preview.BrowserTabs {
		for _, t := range tabs {
			fmt.Printf("  [%s] %s\n", browser, t.Title)
			closing++
		}
	}
	if closing == 0 {
		fmt.Println("  nothing")
	}

	if len(preview.ProtectedTabs) > 0 {
		fmt.Println(title.Render("Protected:"))
		for _, t := range preview.ProtectedTabs {
			fmt.Printf("  %s\n", t.Title)
		}
	}

	return nil
}
