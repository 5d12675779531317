package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every award for the learner named by --learner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetString("learner"); v == "" {
				return fmt.Errorf("reset needs an explicit --learner")
			}

			e, err := openEnv(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.service.Reset(cmd.Context(), e.cfg.Learner)
			if err != nil {
				return fmt.Errorf("reset %s: %w", e.cfg.Learner, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d awards for %s.\n", n, e.cfg.Learner)
			return nil
		},
	}
}
