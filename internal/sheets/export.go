package sheets

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/xp"
)

// Sheet names written by Export.
const (
	SummarySheet = "Summary"
	AwardsSheet  = "Awards"
)

var awardHeader = []any{
	"Date", "Learner", "Activity", "Difficulty", "Accuracy", "Speed", "Creativity", "Effort",
	"Material", "Note", "Streak", "Base XP", "Quality ×", "Difficulty ×", "Streak ×", "Award",
}

// Export writes state and the learner's ledger, oldest award first, as an
// .xlsx workbook to w. The awards sheet starts with the same columns
// DefaultImportConfig reads, so an export can be imported elsewhere.
func Export(ctx context.Context, w io.Writer, repo store.EventRepo, state *progression.LearnerState) error {
	events, err := repo.QueryActivityEvents(ctx, state.Learner, store.QueryOpts{})
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeSummary(f, bold, state, len(events)); err != nil {
		return err
	}

	if _, err := f.NewSheet(AwardsSheet); err != nil {
		return fmt.Errorf("create awards sheet: %w", err)
	}
	if err := writeAwards(f, bold, events); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, headerStyle int, state *progression.LearnerState, awards int) error {
	lvl := state.Level
	rows := [][]any{
		{"Learner", state.Learner},
		{"Level", lvl.Level},
		{"Total XP", lvl.TotalXP},
		{"XP into level", lvl.XPIntoLevel()},
		{"XP to next level", lvl.XPToNextLevel},
		{"Next level at", xp.TotalXPForLevel(lvl.Level + 1)},
		{"Streak (days)", state.Streak},
		{"Awards", awards},
		{"Exported", time.Now().Format(time.RFC3339)},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(SummarySheet, cell(1, i+1), &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", cell(1, len(rows)), headerStyle); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 18)
}

func writeAwards(f *excelize.File, headerStyle int, events []store.ActivityEventRecord) error {
	if err := f.SetSheetRow(AwardsSheet, "A1", &awardHeader); err != nil {
		return fmt.Errorf("write awards header: %w", err)
	}
	if err := f.SetRowStyle(AwardsSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style awards header: %w", err)
	}

	for i, ev := range events {
		row := []any{
			ev.Timestamp.Format("2006-01-02 15:04:05"),
			ev.Learner,
			ev.ActivityType,
			ev.Difficulty,
			ev.Accuracy,
			ev.Speed,
			ev.Creativity,
			ev.Effort,
			ev.Material,
			ev.Note,
			ev.StreakDays,
			ev.BaseXP,
			ev.QualityMultiplier,
			ev.DifficultyMultiplier,
			ev.StreakBonus,
			ev.Award,
		}
		if err := f.SetSheetRow(AwardsSheet, cell(1, i+2), &row); err != nil {
			return fmt.Errorf("write award row %d: %w", i+2, err)
		}
	}
	return f.SetColWidth(AwardsSheet, "A", "A", 20)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
