package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLearnersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learners",
		Short: "List every learner with their level and streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			states, err := e.service.Learners(cmd.Context())
			if err != nil {
				return fmt.Errorf("list learners: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(states) == 0 {
				fmt.Fprintln(out, "No learners yet.")
				return nil
			}

			fmt.Fprintf(out, "%-20s  %5s  %8s  %6s  %s\n", "Learner", "Level", "XP", "Streak", "Today")
			fmt.Fprintln(out, strings.Repeat("─", 56))
			for _, s := range states {
				today := ""
				if s.ActiveToday {
					today = "✓"
				}
				fmt.Fprintf(out, "%-20s  %5d  %8d  %6d  %s\n",
					truncate(s.Learner, 20), s.Level.Level, s.Level.TotalXP, s.Streak, today)
			}
			return nil
		},
	}
}
