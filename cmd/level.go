package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/xp"
)

func newLevelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "level [xp]",
		Short: "Show the level for a learner or a raw XP total",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLevel,
	}
}

func runLevel(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		total, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid XP total %q: %w", args[0], err)
		}
		printLevel(out, xp.ComputeLevelState(total))
		return nil
	}

	e, err := openEnv(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	state, err := e.service.State(cmd.Context(), e.cfg.Learner)
	if err != nil {
		return fmt.Errorf("load learner state: %w", err)
	}

	fmt.Fprintln(out, state.Learner)
	printLevel(out, state.Level)
	fmt.Fprintf(out, "🔥 %d-day streak", state.Streak)
	if !state.ActiveToday && state.Streak > 0 {
		fmt.Fprint(out, " (nothing logged today yet)")
	}
	fmt.Fprintln(out)
	if n := state.DaysToMilestone(); n > 0 {
		fmt.Fprintf(out, "   %d more days to the %d-day bonus\n", n, state.NextMilestone)
	}
	return nil
}

func printLevel(w io.Writer, s xp.LevelState) {
	fmt.Fprintf(w, "Level %d · %d XP total\n", s.Level, s.TotalXP)
	fmt.Fprintf(w, "   %d / %d XP into level %d, %d XP to level %d\n",
		s.XPIntoLevel(), s.LevelSpan(), s.Level, s.XPToNextLevel, s.Level+1)
}
