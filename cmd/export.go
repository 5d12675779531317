package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/sheets"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write a learner's summary and ledger to an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			state, err := e.service.State(ctx, e.cfg.Learner)
			if err != nil {
				return fmt.Errorf("load learner state: %w", err)
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			if err := sheets.Export(ctx, f, e.events, state); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (level %d, %d XP) to %s\n",
				state.Learner, state.Level.Level, state.Level.TotalXP, args[0])
			return nil
		},
	}
}
