package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "levelup",
		Short: "XP, levels and streaks for learning activities",
		Long: "levelup turns completed learning activities into experience points, " +
			"tracks levels and daily streaks, and shows progress in a terminal dashboard.",
		SilenceUsage: true,
		RunE:         runDashboard,
	}

	root.PersistentFlags().String("db", "", "SQLite path or postgres:// URL (overrides LEVELUP_DB)")
	root.PersistentFlags().String("config", "", "Path to a TOML config file (overrides LEVELUP_CONFIG)")
	root.PersistentFlags().String("learner", "", "Learner name (overrides LEVELUP_LEARNER)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newDashCmd(),
		newAwardCmd(),
		newLevelCmd(),
		newCurveCmd(),
		newHistoryCmd(),
		newStatsCmd(),
		newLearnersCmd(),
		newResetCmd(),
		newImportCmd(),
		newExportCmd(),
		newServeCmd(),
		newLLMCmd(),
		newVersionCmd(),
	)
	return root
}

func Execute() error {
	return rootCmd.Execute()
}
