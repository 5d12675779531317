package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/xp"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a learner's recent awards, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			e, err := openEnv(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			events, err := e.events.QueryActivityEvents(cmd.Context(), e.cfg.Learner, store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query awards: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintf(out, "No awards for %s yet.\n", e.cfg.Learner)
				return nil
			}

			fmt.Fprintf(out, "%-5s  %-16s  %-22s  %-12s  %-6s  %s\n",
				"#", "When", "Activity", "Difficulty", "XP", "Material")
			fmt.Fprintln(out, strings.Repeat("─", 90))
			for _, ev := range events {
				activity := xp.ActivityType(ev.ActivityType)
				fmt.Fprintf(out, "%-5d  %-16s  %-22s  %-12s  %-6s  %s\n",
					ev.Sequence,
					ev.Timestamp.Local().Format("2006-01-02 15:04"),
					truncate(activity.DisplayName(), 22),
					xp.Difficulty(ev.Difficulty).DisplayName(),
					fmt.Sprintf("+%d", ev.Award),
					ev.Material,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Number of awards to show (0 for all)")
	return cmd
}
