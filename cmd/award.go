package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/sheets"
	"github.com/abhisek/levelup/internal/xp"
)

func newAwardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "award <activity>",
		Short: "Score a completed activity and add it to the ledger",
		Long: `Score a completed activity and add it to the ledger.

Activities: material-completion, problem-solved, concept-mastered,
help-peer-provided, creative-work, reflection.

Scores accept a fraction (0.9), a 0-100 value (90) or a percentage (90%).`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: activityNames(),
		RunE:      runAward,
	}

	cmd.Flags().String("accuracy", "", "Accuracy score; drives the quality multiplier")
	cmd.Flags().String("speed", "", "Speed score")
	cmd.Flags().String("creativity", "", "Creativity score")
	cmd.Flags().String("effort", "", "Effort score")
	cmd.Flags().StringP("difficulty", "d", string(xp.DifficultyBeginner), "Difficulty: beginner, intermediate, advanced or expert")
	cmd.Flags().String("material", "", "Learning material the activity belongs to")
	cmd.Flags().String("note", "", "Free-form note")
	cmd.Flags().String("date", "", "When the activity happened (default now), e.g. 2026-03-01")
	cmd.Flags().Bool("dry-run", false, "Show the award without recording it")
	return cmd
}

func runAward(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	e, err := openEnv(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	a, err := activityFromFlags(cmd, args[0], e.cfg.Learner)
	if err != nil {
		return err
	}
	if !a.Type.Known() {
		suggest(out, "activity", args[0], activityNames())
	}
	if !a.Difficulty.Known() {
		suggest(out, "difficulty", string(a.Difficulty), difficultyNames())
	}
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	var res *progression.Result
	if dryRun {
		res, err = e.service.Preview(ctx, a)
	} else {
		res, err = e.service.Record(ctx, a)
	}
	if err != nil {
		return fmt.Errorf("award %s: %w", a.Type, err)
	}

	printResult(out, res, dryRun)
	return nil
}

func activityFromFlags(cmd *cobra.Command, name, learner string) (progression.Activity, error) {
	flags := cmd.Flags()
	difficulty, _ := flags.GetString("difficulty")
	material, _ := flags.GetString("material")
	note, _ := flags.GetString("note")

	a := progression.Activity{
		Learner:    learner,
		Type:       xp.ActivityType(strings.ToLower(strings.TrimSpace(name))),
		Difficulty: xp.Difficulty(strings.ToLower(strings.TrimSpace(difficulty))),
		Material:   material,
		Note:       note,
	}

	scores := []struct {
		flag string
		dst  *float64
	}{
		{"accuracy", &a.Performance.Accuracy},
		{"speed", &a.Performance.Speed},
		{"creativity", &a.Performance.Creativity},
		{"effort", &a.Performance.Effort},
	}
	for _, s := range scores {
		v, _ := flags.GetString(s.flag)
		score, err := sheets.ParseScore(strings.TrimSpace(v))
		if err != nil {
			return a, fmt.Errorf("--%s: %w", s.flag, err)
		}
		*s.dst = score
	}

	date, _ := flags.GetString("date")
	at, err := sheets.ParseDate(strings.TrimSpace(date), nil)
	if err != nil {
		return a, fmt.Errorf("--date: %w", err)
	}
	a.At = at
	return a, nil
}

// suggest tells the user that input is not a known name and lists the
// closest known ones, or all of them when nothing is close.
func suggest(w io.Writer, kind, input string, known []string) {
	matches := fuzzy.Find(strings.ToLower(input), known)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Str)
	}
	if len(names) == 0 {
		fmt.Fprintf(w, "Unknown %s %q. Known: %s\n", kind, input, strings.Join(known, ", "))
		return
	}
	fmt.Fprintf(w, "Unknown %s %q. Did you mean: %s?\n", kind, input, strings.Join(names, ", "))
}

func activityNames() []string {
	var names []string
	for _, t := range xp.AllActivityTypes() {
		names = append(names, string(t))
	}
	return names
}

func difficultyNames() []string {
	var names []string
	for _, d := range xp.AllDifficulties() {
		names = append(names, string(d))
	}
	return names
}

func printResult(w io.Writer, res *progression.Result, dryRun bool) {
	bd := res.Breakdown
	if dryRun {
		fmt.Fprintln(w, "(dry run, nothing recorded)")
	}
	fmt.Fprintf(w, "%s %s · %s\n", bd.Activity.Icon(), bd.Activity.DisplayName(), bd.Difficulty.DisplayName())
	fmt.Fprintf(w, "   %d base × %.1f quality × %.1f difficulty × %.1f streak = %d XP\n",
		bd.BaseXP, bd.QualityMultiplier, bd.DifficultyMultiplier, bd.StreakBonus, bd.Award)
	fmt.Fprintf(w, "   Level %d · %d XP total · %d XP to level %d\n",
		res.After.Level, res.After.TotalXP, res.After.XPToNextLevel, res.After.Level+1)
	fmt.Fprintf(w, "   🔥 %d-day streak\n", res.Streak)
	if res.LeveledUp() {
		fmt.Fprintf(w, "   🎉 Level up! %d → %d\n", res.Before.Level, res.After.Level)
		if res.Message != "" {
			fmt.Fprintf(w, "   %s\n", res.Message)
		}
	}
}
