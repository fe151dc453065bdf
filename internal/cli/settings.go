package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/examdeck/examdeck/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persisted examdeck settings",
	Long: `Manage the settings file (` + "`" + `~/.config/examdeck/settings.yaml` + "`" + ` by default).

Unknown keys in the file are ignored; missing keys fall back to defaults.`,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings and their current values",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := settingsManager()
		manager.Load()
		for _, key := range config.Keys() {
			value, err := manager.Get(key)
			if err != nil {
				return err
			}
			fmt.Printf("%-20s %s\n", key, value)
		}
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting's value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := settingsManager()
		manager.Load()
		value, err := manager.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set and persist one setting",
	Long: `Set a setting and write the full settings file back to disk.

Examples:
  examdeck settings set exam_url https://exam.university.edu/final
  examdeck settings set update_interval 10s
  examdeck settings set animations false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := settingsManager()
		manager.Load()
		if err := manager.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all settings to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := settingsManager()
		manager.Reset()
		fmt.Println("settings reset to defaults")
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}
