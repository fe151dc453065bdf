package cli

import (
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	watchExamURLFlag string
	watchNoAnim      bool
	statusJSONFlag   bool
	killExamURLFlag  string
	killYesFlag      bool
	previewJSONFlag  bool
)

// watchCmd runs the live dashboard.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live proctoring dashboard",
	Long: `Open the full-screen dashboard showing processes, AI application
detections, browser tabs, and system memory, updated live from the backend.

Falls back to fixed-interval polling when the realtime channel cannot be
established.

Examples:
  examdeck watch
  examdeck watch --exam-url https://exam.university.edu/final
  examdeck watch --no-animations`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand()
	},
}

// statusCmd fetches and prints one snapshot.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-shot monitoring snapshot",
	Long: `Fetch the current snapshot from the backend and print it once.

Examples:
  examdeck status
  examdeck status --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand()
	},
}

// killCmd terminates AI applications and closes non-exam tabs.
var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Kill AI applications and close non-exam browser tabs",
	Long: `Terminate all detected AI applications and close every browser tab
whose hostname differs from the exam URL. Asks for confirmation unless --yes
is given.

Examples:
  examdeck kill --exam-url https://exam.university.edu/final
  examdeck kill --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return killCommand(killModeAll)
	},
}

// killAICmd terminates AI applications only, leaving tabs alone.
var killAICmd = &cobra.Command{
	Use:   "kill-ai",
	Short: "Kill AI applications only",
	Long: `Terminate all detected AI applications without touching browser tabs.

Examples:
  examdeck kill-ai
  examdeck kill-ai --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return killCommand(killModeAIOnly)
	},
}

// closeTabsCmd closes non-exam tabs only, leaving processes alone.
var closeTabsCmd = &cobra.Command{
	Use:   "close-tabs",
	Short: "Close non-exam browser tabs only",
	Long: `Close every browser tab whose hostname differs from the exam URL,
without killing any process.

Examples:
  examdeck close-tabs --exam-url https://exam.university.edu/final`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return killCommand(killModeTabsOnly)
	},
}

// previewCmd shows what kill would do, without doing it.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview what 'kill' would terminate",
	Long: `Query the backend for the processes that would be killed and the
tabs that would be closed, without performing any action.

Examples:
  examdeck preview --exam-url https://exam.university.edu/final
  examdeck preview --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return previewCommand()
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchExamURLFlag, "exam-url", "", "exam page URL; same-hostname tabs are protected")
	watchCmd.Flags().BoolVar(&watchNoAnim, "no-animations", false, "disable counter animations")

	statusCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "output in JSON format")

	for _, cmd := range []*cobra.Command{killCmd, killAICmd, closeTabsCmd} {
		cmd.Flags().BoolVar(&killYesFlag, "yes", false, "skip the confirmation prompt")
	}
	killCmd.Flags().StringVar(&killExamURLFlag, "exam-url", "", "exam page URL; same-hostname tabs are protected")
	closeTabsCmd.Flags().StringVar(&killExamURLFlag, "exam-url", "", "exam page URL; same-hostname tabs are protected")

	previewCmd.Flags().StringVar(&killExamURLFlag, "exam-url", "", "exam page URL; same-hostname tabs are protected")
	previewCmd.Flags().BoolVar(&previewJSONFlag, "json", false, "output in JSON format")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(killAICmd)
	rootCmd.AddCommand(closeTabsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(settingsCmd)
}
