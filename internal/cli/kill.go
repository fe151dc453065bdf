package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/examdeck/examdeck/internal/backend"
	"github.com/examdeck/examdeck/internal/errors"
	"github.com/examdeck/examdeck/internal/logger"
)

// killMode selects which termination command runs.
type killMode int

const (
	killModeAll killMode = iota
	killModeAIOnly
	killModeTabsOnly
)

func (m killMode) description() string {
	switch m {
	case killModeAIOnly:
		return "kill all detected AI applications"
	case killModeTabsOnly:
		return "close all non-exam browser tabs"
	default:
		return "kill all AI applications and close all non-exam browser tabs"
	}
}

// killCommand runs one of the termination commands after confirmation.
func killCommand(mode killMode) error {
	settings := loadSettings()
	if killExamURLFlag != "" {
		settings.ExamURL = killExamURLFlag
	}

	if mode != killModeAIOnly && settings.ExamURL == "" {
		return errors.New(errors.ErrConfig,
			"No exam URL configured",
			"Pass --exam-url or run 'examdeck settings set exam_url <url>' so exam tabs are protected")
	}

	confirmed, err := confirmDestructive(mode.description())
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("cancelled")
		return nil
	}

	client := backend.NewClient(settings.BackendURL, logger.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch mode {
	case killModeAIOnly:
		result, err := client.KillAIOnly(ctx)
		if err != nil {
			return err
		}
		printKillResult(result)

	case killModeTabsOnly:
		result, err := client.CloseTabsOnly(ctx, settings.ExamURL)
		if err != nil {
			return err
		}
		fmt.Printf("closed %d tabs, preserved %d\n", result.TotalClosed, result.TotalPreserved)

	default:
		result, err := client.KillAll(ctx, settings.ExamURL)
		if err != nil {
			return err
		}
		printKillResult(&result.AIApplications)
		fmt.Printf("closed %d tabs, preserved %d\n",
			result.BrowserTabs.TotalClosed, result.BrowserTabs.TotalPreserved)
	}

	return nil
}

// confirmDestructive asks before a destructive action. With --yes it is
// skipped; without a TTY it fails rather than guessing.
func confirmDestructive(action string) (bool, error) {
	if killYesFlag {
		return true, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New(errors.ErrCommand,
			"Confirmation required but no terminal is attached",
			"Re-run with --yes to skip the prompt in scripts")
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Really %s?", action)).
				Affirmative("Yes, do it").
				Negative("No").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, errors.Wrap(err, "Confirmation prompt failed")
	}
	return confirmed, nil
}

// printKillResult lists killed and failed process names.
func printKillResult(result *backend.KillResult) {
	fmt.Printf("killed %d AI applications\n", len(result.Killed))
	for _, name := range result.Killed {
		fmt.Printf("  ✓ %s\n", name)
	}
	for _, name := range result.Failed {
		fmt.Printf("  ✗ %s (failed)\n", name)
	}
	for _, msg := range result.Errors {
		fmt.Printf("  ! %s\n", msg)
	}
}
