package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/examdeck/examdeck/internal/backend"
	"github.com/examdeck/examdeck/internal/dashboard"
	"github.com/examdeck/examdeck/internal/errors"
	"github.com/examdeck/examdeck/internal/logger"
)

// watchCommand starts the live dashboard TUI.
func watchCommand() error {
	settings := loadSettings()
	if watchExamURLFlag != "" {
		settings.ExamURL = watchExamURLFlag
	}
	if watchNoAnim {
		settings.Animations = false
	}

	log := logger.Default()
	client := backend.NewClient(settings.BackendURL, log)

	// A realtime setup failure is not fatal: the dashboard polls instead.
	realtime, err := backend.NewRealtime(settings.BackendURL, log)
	if err != nil {
		log.Warn("realtime channel unavailable: %v", err)
		realtime = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if realtime != nil {
		realtime.Start(ctx)
	}

	model := dashboard.NewModel(settings, client, realtime, log)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()

	model.Close()

	if err != nil {
		return errors.Wrap(err, "Dashboard exited with an error")
	}
	return nil
}
