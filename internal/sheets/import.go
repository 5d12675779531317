// Package sheets imports activities from spreadsheets and exports a
// learner's ledger to Excel.
package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/xp"
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Columns maps fields to spreadsheet column letters. An empty letter
// means the field is not present in the sheet.
type Columns struct {
	Date       string
	Learner    string
	Activity   string
	Difficulty string
	Accuracy   string
	Speed      string
	Creativity string
	Effort     string
	Material   string
	Note       string
}

// ImportConfig describes the sheet layout.
type ImportConfig struct {
	Columns Columns

	// SheetName selects the worksheet of an .xlsx file. Empty means the
	// first sheet.
	SheetName string

	// StartRow is the 1-based row of the first activity.
	StartRow int

	// Learner is used for rows without a learner column or value.
	Learner string

	// Location interprets dates without a zone.
	Location *time.Location
}

// DefaultImportConfig returns the layout written by Export's template:
// date, learner, activity, difficulty, accuracy, speed, creativity,
// effort, material, note in columns A to J with one header row.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		Columns: Columns{
			Date:       "A",
			Learner:    "B",
			Activity:   "C",
			Difficulty: "D",
			Accuracy:   "E",
			Speed:      "F",
			Creativity: "G",
			Effort:     "H",
			Material:   "I",
			Note:       "J",
		},
		StartRow: 2,
	}
}

// ImportResult summarises an import. Row failures are collected in
// Errors rather than aborting the import.
type ImportResult struct {
	Processed int
	Recorded  int
	Skipped   int
	AwardedXP int
	LevelUps  int
	Errors    []string
}

// Recorder scores activities. *progression.Service records them;
// *progression.Simulation scores them for a dry run.
type Recorder interface {
	Record(ctx context.Context, a progression.Activity) (*progression.Result, error)
}

// ImportFile imports the activities in path through rec. The format is
// chosen by extension.
func ImportFile(ctx context.Context, path string, rec Recorder, cfg ImportConfig) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path, cfg.SheetName)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return ImportRows(ctx, rows, rec, cfg)
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	return parseCSV(file)
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// ImportRows records each row from cfg.StartRow on. Blank rows are skipped.
func ImportRows(ctx context.Context, rows [][]string, rec Recorder, cfg ImportConfig) (*ImportResult, error) {
	idx, err := cfg.Columns.indexes()
	if err != nil {
		return nil, err
	}
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		if blank(row) {
			result.Skipped++
			continue
		}
		result.Processed++

		activity, err := parseRow(row, idx, cfg)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		res, err := rec.Record(ctx, activity)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		result.Recorded++
		result.AwardedXP += res.Breakdown.Award
		if res.LeveledUp() {
			result.LevelUps++
		}
	}
	return result, nil
}

type columnIndexes struct {
	date, learner, activity, difficulty int
	accuracy, speed, creativity, effort int
	material, note                      int
}

func (c Columns) indexes() (columnIndexes, error) {
	var idx columnIndexes
	fields := []struct {
		name   string
		letter string
		dst    *int
	}{
		{"date", c.Date, &idx.date},
		{"learner", c.Learner, &idx.learner},
		{"activity", c.Activity, &idx.activity},
		{"difficulty", c.Difficulty, &idx.difficulty},
		{"accuracy", c.Accuracy, &idx.accuracy},
		{"speed", c.Speed, &idx.speed},
		{"creativity", c.Creativity, &idx.creativity},
		{"effort", c.Effort, &idx.effort},
		{"material", c.Material, &idx.material},
		{"note", c.Note, &idx.note},
	}
	for _, f := range fields {
		*f.dst = -1
		if f.letter == "" {
			continue
		}
		n, err := excelize.ColumnNameToNumber(strings.TrimSpace(f.letter))
		if err != nil {
			return idx, fmt.Errorf("%s column %q: %w", f.name, f.letter, err)
		}
		*f.dst = n - 1
	}
	if idx.activity < 0 {
		return idx, errors.New("activity column is required")
	}
	return idx, nil
}

func parseRow(row []string, idx columnIndexes, cfg ImportConfig) (progression.Activity, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	a := progression.Activity{
		Learner:    cell(idx.learner),
		Type:       xp.ActivityType(strings.ToLower(cell(idx.activity))),
		Difficulty: xp.Difficulty(strings.ToLower(cell(idx.difficulty))),
		Material:   cell(idx.material),
		Note:       cell(idx.note),
	}
	if a.Learner == "" {
		a.Learner = cfg.Learner
	}
	if !a.Type.Known() {
		return a, fmt.Errorf("unknown activity %q", cell(idx.activity))
	}
	if a.Difficulty == "" {
		a.Difficulty = xp.DifficultyBeginner
	}

	var err error
	scores := []struct {
		name string
		col  int
		dst  *float64
	}{
		{"accuracy", idx.accuracy, &a.Performance.Accuracy},
		{"speed", idx.speed, &a.Performance.Speed},
		{"creativity", idx.creativity, &a.Performance.Creativity},
		{"effort", idx.effort, &a.Performance.Effort},
	}
	for _, s := range scores {
		if *s.dst, err = ParseScore(cell(s.col)); err != nil {
			return a, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if a.At, err = ParseDate(cell(idx.date), cfg.Location); err != nil {
		return a, fmt.Errorf("date: %w", err)
	}
	return a, nil
}

// ParseScore reads a score in [0,1]. Percentages ("85%") and values on a
// 0 to 100 scale are converted. Empty is zero.
func ParseScore(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	percent := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if percent || v > 1 {
		v /= 100
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return v, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01-02-06",
	"1/2/2006",
}

// ParseDate accepts the layouts above. Empty means "now" and is returned
// as the zero time. A nil loc is time.Local.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
