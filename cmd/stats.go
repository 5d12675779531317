package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/xp"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show a learner's level, streak and XP by activity",
		Args:  cobra.NoArgs,
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
			events, err := e.events.QueryActivityEvents(ctx, e.cfg.Learner, store.QueryOpts{})
			if err != nil {
				return fmt.Errorf("query awards: %w", err)
			}

			printStats(cmd.OutOrStdout(), state, events)
			return nil
		},
	}
}

type activityTotals struct {
	count int
	xp    int
}

func printStats(w io.Writer, state *progression.LearnerState, events []store.ActivityEventRecord) {
	fmt.Fprintln(w, state.Learner)
	printLevel(w, state.Level)
	fmt.Fprintf(w, "🔥 %d-day streak", state.Streak)
	if state.NextMilestone > 0 {
		fmt.Fprintf(w, " (next bonus at %d days)", state.NextMilestone)
	}
	fmt.Fprintln(w)

	if len(events) == 0 {
		fmt.Fprintln(w, "\nNo awards yet.")
		return
	}

	byType := make(map[xp.ActivityType]*activityTotals)
	for _, ev := range events {
		t := xp.ActivityType(ev.ActivityType)
		if byType[t] == nil {
			byType[t] = &activityTotals{}
		}
		byType[t].count++
		byType[t].xp += ev.Award
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-24s  %6s  %8s\n", "Activity", "Awards", "XP")
	fmt.Fprintln(w, strings.Repeat("─", 42))

	// Known types in display order, then anything else the ledger holds.
	var unknown []xp.ActivityType
	for t := range byType {
		if !t.Known() {
			unknown = append(unknown, t)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	order := append(xp.AllActivityTypes(), unknown...)
	var count int
	for _, t := range order {
		tot, ok := byType[t]
		if !ok {
			continue
		}
		count += tot.count
		fmt.Fprintf(w, "%-24s  %6d  %8d\n", t.Icon()+" "+t.DisplayName(), tot.count, tot.xp)
	}
	fmt.Fprintln(w, strings.Repeat("─", 42))
	fmt.Fprintf(w, "%-24s  %6d  %8d\n", "TOTAL", count, state.Level.TotalXP)
}
