package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/app"
)

func newDashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Open the progress dashboard",
		RunE:  runDashboard,
	}
}

// runDashboard opens the store, builds dependencies, and launches the TUI.
// Logs are discarded while the terminal is in alt-screen mode.
func runDashboard(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, io.Discard)
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(app.Options{
		Service:   e.service,
		EventRepo: e.events,
		Learner:   e.cfg.Learner,
	})
}
