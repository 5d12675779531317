package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/sheets"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Record activities from an .xlsx or .csv file",
		Long: `Record activities from an .xlsx or .csv file.

Each row is scored like "levelup award", in file order, so streaks and
level-ups build up as they would have live. Rows that fail are reported
and skipped. With --dry-run nothing is written, but each row is still
scored on top of the rows before it, so the totals match a real import.

The default layout is date, learner, activity, difficulty, accuracy,
speed, creativity, effort, material and note in columns A to J with one
header row. Use --sheet Awards to re-import a levelup export.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	cmd.Flags().String("sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().Int("start-row", 2, "First row holding an activity")
	cmd.Flags().StringToString("column", nil, "Column letters by field, e.g. --column date=B,activity=D")
	cmd.Flags().Bool("dry-run", false, "Score rows without recording them")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	icfg := sheets.DefaultImportConfig()
	icfg.SheetName, _ = flags.GetString("sheet")
	icfg.StartRow, _ = flags.GetInt("start-row")
	dryRun, _ := flags.GetBool("dry-run")
	overrides, _ := flags.GetStringToString("column")
	if err := applyColumns(&icfg.Columns, overrides); err != nil {
		return err
	}

	e, err := openEnv(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	icfg.Learner = e.cfg.Learner
	icfg.Location = e.cfg.Scheduler.Location

	var rec sheets.Recorder = e.service
	if dryRun {
		rec = e.service.Simulate()
	}
	res, err := sheets.ImportFile(cmd.Context(), args[0], rec, icfg)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	printImport(cmd.OutOrStdout(), res, dryRun)
	return nil
}

// applyColumns sets the column letters named in overrides. An empty
// letter drops the field.
func applyColumns(c *sheets.Columns, overrides map[string]string) error {
	for field, letter := range overrides {
		letter = strings.ToUpper(strings.TrimSpace(letter))
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "date":
			c.Date = letter
		case "learner":
			c.Learner = letter
		case "activity":
			c.Activity = letter
		case "difficulty":
			c.Difficulty = letter
		case "accuracy":
			c.Accuracy = letter
		case "speed":
			c.Speed = letter
		case "creativity":
			c.Creativity = letter
		case "effort":
			c.Effort = letter
		case "material":
			c.Material = letter
		case "note":
			c.Note = letter
		default:
			return fmt.Errorf("unknown column field %q", field)
		}
	}
	return nil
}

func printImport(w io.Writer, res *sheets.ImportResult, dryRun bool) {
	verb := "Recorded"
	if dryRun {
		verb = "Scored (dry run)"
	}
	fmt.Fprintf(w, "%s %d of %d rows for %d XP", verb, res.Recorded, res.Processed, res.AwardedXP)
	if res.LevelUps > 0 {
		fmt.Fprintf(w, ", %d level-ups", res.LevelUps)
	}
	if res.Skipped > 0 {
		fmt.Fprintf(w, ", %d blank rows skipped", res.Skipped)
	}
	fmt.Fprintln(w, ".")
	if len(res.Errors) > 0 {
		fmt.Fprintf(w, "%d rows failed:\n", len(res.Errors))
	}
	for _, msg := range res.Errors {
		fmt.Fprintf(w, "  %s\n", msg)
	}
}
