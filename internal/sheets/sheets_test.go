package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/xp"
)

type fakeRecorder struct {
	recorded []progression.Activity
	total    int
}

func (f *fakeRecorder) score(a progression.Activity) *progression.Result {
	bd := xp.ComputeBreakdown(a.Type, a.Performance, a.Difficulty, 0)
	return &progression.Result{
		Learner:   a.Learner,
		Breakdown: bd,
		Before:    xp.ComputeLevelState(f.total),
		After:     xp.ComputeLevelState(f.total + bd.Award),
	}
}

func (f *fakeRecorder) Record(_ context.Context, a progression.Activity) (*progression.Result, error) {
	if a.Learner == "" {
		return nil, progression.ErrEmptyLearner
	}
	res := f.score(a)
	f.total += res.Breakdown.Award
	f.recorded = append(f.recorded, a)
	return res, nil
}

func TestImportRows(t *testing.T) {
	rows := [][]string{
		{"date", "learner", "activity", "difficulty", "accuracy"},
		{"2026-03-01", "Ana", "problem-solved", "intermediate", "0.9"},
		{"2026-03-02 17:30", "", "Creative-Work", "expert", "95%"},
		{},
		{"", "Bo", "juggling", "", ""},
		{"yesterday", "Bo", "reflection", "", ""},
		{"2026-03-03", "Bo", "reflection", "", "abc"},
		{"2026-03-04", "Bo", "reflection", "advanced", "80"},
	}
	rec := &fakeRecorder{}
	cfg := DefaultImportConfig()
	cfg.Learner = "Default"
	cfg.Location = time.UTC

	res, err := ImportRows(context.Background(), rows, rec, cfg)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Processed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 3, res.Recorded)
	assert.Equal(t, 39+600+80, res.AwardedXP)
	assert.Equal(t, 2, res.LevelUps)
	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[0], "Row 5: unknown activity")
	assert.Contains(t, res.Errors[1], "Row 6: date")
	assert.Contains(t, res.Errors[2], "Row 7: accuracy")

	require.Len(t, rec.recorded, 3)
	first := rec.recorded[0]
	assert.Equal(t, "Ana", first.Learner)
	assert.Equal(t, xp.ActivityProblemSolved, first.Type)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), first.At)

	second := rec.recorded[1]
	assert.Equal(t, "Default", second.Learner)
	assert.Equal(t, xp.ActivityCreativeWork, second.Type)
	assert.InDelta(t, 0.95, second.Performance.Accuracy, 1e-9)

	assert.Equal(t, xp.DifficultyAdvanced, rec.recorded[2].Difficulty)
	assert.InDelta(t, 0.8, rec.recorded[2].Performance.Accuracy, 1e-9)
}

func TestImportRowsRecorderError(t *testing.T) {
	rows := [][]string{{"", "", "reflection"}}
	cfg := DefaultImportConfig()
	cfg.StartRow = 1

	res, err := ImportRows(context.Background(), rows, &fakeRecorder{}, cfg)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "learner name is required")
}

func TestImportRowsBadColumns(t *testing.T) {
	cfg := DefaultImportConfig()
	cfg.Columns.Activity = ""
	_, err := ImportRows(context.Background(), nil, &fakeRecorder{}, cfg)
	assert.ErrorContains(t, err, "activity column is required")

	cfg = DefaultImportConfig()
	cfg.Columns.Accuracy = "1A"
	_, err = ImportRows(context.Background(), nil, &fakeRecorder{}, cfg)
	assert.ErrorContains(t, err, "accuracy column")
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"0.85", 0.85, false},
		{"1", 1, false},
		{"85%", 0.85, false},
		{"70", 0.7, false},
		{"100", 1, false},
		{"-0.1", 0, true},
		{"150", 0, true},
		{"great", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseScore(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestImportCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	content := strings.Join([]string{
		"date,learner,activity,difficulty,accuracy",
		"2026-03-01,Ana,reflection,beginner,0.7",
		`2026-03-02,Ana,material-completion,beginner,"0.95"`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rec := &fakeRecorder{}
	res, err := ImportFile(context.Background(), path, rec, DefaultImportConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Recorded)
	assert.Equal(t, 50+150, res.AwardedXP)
	assert.Empty(t, res.Errors)
}

func TestImportUnsupportedFormat(t *testing.T) {
	_, err := ImportFile(context.Background(), "log.txt", &fakeRecorder{}, DefaultImportConfig())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func newService(t *testing.T, db string) (*progression.Service, store.EventRepo) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:sheets_%s_%s?mode=memory&cache=shared", name, db))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc, err := progression.NewService(st.EventRepo(), progression.Options{})
	require.NoError(t, err)
	return svc, st.EventRepo()
}

func TestExportAndReimport(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t, "source")

	base := time.Now().AddDate(0, 0, -2)
	for i, act := range []xp.ActivityType{xp.ActivityReflection, xp.ActivityProblemSolved, xp.ActivityConceptMastered} {
		_, err := svc.Record(ctx, progression.Activity{
			Learner:     "Ana",
			Type:        act,
			Difficulty:  xp.DifficultyIntermediate,
			Performance: xp.Performance{Accuracy: 0.9},
			Material:    "fractions",
			At:          base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}
	state, err := svc.State(ctx, "Ana")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, &buf, repo, state))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, AwardsSheet}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Learner", "Ana"}, summary[0])
	assert.Equal(t, []string{"Level", fmt.Sprint(state.Level.Level)}, summary[1])
	assert.Equal(t, []string{"Total XP", fmt.Sprint(state.Level.TotalXP)}, summary[2])
	assert.Equal(t, []string{"XP to next level", fmt.Sprint(state.Level.XPToNextLevel)}, summary[4])

	awards, err := f.GetRows(AwardsSheet)
	require.NoError(t, err)
	require.Len(t, awards, 4)
	assert.Equal(t, "Award", awards[0][15])
	assert.Equal(t, "reflection", awards[1][2])
	assert.Equal(t, "concept-mastered", awards[3][2])

	path := filepath.Join(t.TempDir(), "ana.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	other, otherRepo := newService(t, "target")
	cfg := DefaultImportConfig()
	cfg.SheetName = AwardsSheet
	res, err := ImportFile(ctx, path, other, cfg)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 3, res.Recorded)

	total, err := otherRepo.TotalXP(ctx, "Ana")
	require.NoError(t, err)
	assert.Equal(t, state.Level.TotalXP, total)
}
