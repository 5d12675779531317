package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daily snapshot and streak reminder jobs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched := scheduler.New(e.cfg.Scheduler, e.service, e.store.SnapshotRepo(), e.notifier, e.logger)

			if now, _ := cmd.Flags().GetBool("now"); now {
				if err := sched.RunSnapshot(ctx); err != nil {
					return err
				}
				if _, err := sched.RunReminders(ctx); err != nil {
					return err
				}
			}

			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer sched.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Scheduler running: snapshots at %s, reminders at %s. Press Ctrl+C to stop.\n",
				e.cfg.Scheduler.SnapshotAt, e.cfg.Scheduler.ReminderAt)
			<-ctx.Done()
			e.logger.Info("scheduler stopping")
			return nil
		},
	}
	cmd.Flags().Bool("now", false, "Run both jobs once before waiting for the schedule")
	return cmd
}
