// Package cli wires the examdeck commands: the live dashboard, one-shot
// status and preview queries, the kill/close commands, and settings
// management.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/examdeck/examdeck/internal/config"
	"github.com/examdeck/examdeck/internal/logger"
)

// Global flags
var (
	backendFlag  string
	settingsFlag string
)

var rootCmd = &cobra.Command{
	Use:   "examdeck",
	Short: "Exam proctoring dashboard",
	Long: `examdeck is a terminal dashboard for the exam proctoring backend.

It watches the machine under exam conditions: running processes, AI
application detection, open browser tabs, and system memory. Destructive
actions (killing AI apps, closing non-exam tabs) always ask first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "backend URL (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&settingsFlag, "settings", "", "path to settings file")
}

// Execute runs the root command. Errors carry their own formatting, so they
// are printed as-is.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings loads settings from the configured path and applies flag
// overrides.
func loadSettings() *config.Settings {
	path := settingsFlag
	if path == "" {
		path = config.DefaultPath()
	}
	manager := config.NewManager(path, logger.Default())
	settings := manager.Load()
	if backendFlag != "" {
		settings.BackendURL = backendFlag
	}
	return settings
}

// settingsManager opens the settings manager for read/write commands.
func settingsManager() *config.Manager {
	path := settingsFlag
	if path == "" {
		path = config.DefaultPath()
	}
	return config.NewManager(path, logger.Default())
}
