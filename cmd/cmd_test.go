package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/screens/curve"
	"github.com/abhisek/levelup/internal/sheets"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/xp"
)

// testDB isolates a test from the user's config and environment and
// returns a fresh database path.
func testDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	for _, k := range []string{
		"LEVELUP_CONFIG", "LEVELUP_DB", "LEVELUP_LEARNER",
		"LEVELUP_TELEGRAM_TOKEN", "LEVELUP_TELEGRAM_CHAT_ID", "LEVELUP_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("LEVELUP_LLM_PROVIDER", "none")
	t.Setenv("LEVELUP_TIMEZONE", "UTC")
	return filepath.Join(dir, "levelup.db")
}

func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--db", db}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAwardAndLevel(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, db, "award", "problem-solved", "--learner", "ana", "--accuracy", "90", "--difficulty", "intermediate")
	require.NoError(t, err)
	assert.Contains(t, out, "Problem Solved · Intermediate")
	assert.Contains(t, out, "25 base × 1.2 quality × 1.3 difficulty × 1.0 streak = 39 XP")
	assert.Contains(t, out, "Level 1 · 39 XP total · 81 XP to level 2")
	assert.Contains(t, out, "1-day streak")

	out, err = runCLI(t, db, "level", "--learner", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "Level 1 · 39 XP total")

	out, err = runCLI(t, db, "award", "creative-work", "--learner", "ana", "--accuracy", "0.96", "--difficulty", "expert")
	require.NoError(t, err)
	assert.Contains(t, out, "= 600 XP")
	assert.Contains(t, out, "Level up! 1 → 4")
}

func TestAwardDryRunRecordsNothing(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, db, "award", "reflection", "--learner", "ana", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "= 40 XP")

	out, err = runCLI(t, db, "history", "--learner", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "No awards for ana yet.")
}

func TestAwardUnknownNamesSuggest(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, db, "award", "problm-solved", "--learner", "ana", "--difficulty", "expret")
	require.NoError(t, err)
	assert.Contains(t, out, `Unknown activity "problm-solved". Did you mean: problem-solved?`)
	assert.Contains(t, out, `Unknown difficulty "expret".`)
	assert.Contains(t, out, "= 0 XP")
}

func TestAwardRejectsBadScores(t *testing.T) {
	db := testDB(t)

	_, err := runCLI(t, db, "award", "reflection", "--learner", "ana", "--accuracy", "150")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--accuracy")

	_, err = runCLI(t, db, "award", "reflection", "--learner", "ana", "--date", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--date")
}

func TestLevelForRawXP(t *testing.T) {
	out, err := runCLI(t, testDB(t), "level", "264")
	require.NoError(t, err)
	assert.Contains(t, out, "Level 3 · 264 XP total")
	assert.Contains(t, out, "0 / 172 XP into level 3, 172 XP to level 4")

	_, err = runCLI(t, testDB(t), "level", "lots")
	assert.Error(t, err)
}

func TestCurve(t *testing.T) {
	out, err := runCLI(t, testDB(t), "curve", "--levels", "3")
	require.NoError(t, err)
	assert.Contains(t, out, curve.Row(1))
	assert.Contains(t, out, curve.Row(3))
	assert.NotContains(t, out, curve.Row(4))

	_, err = runCLI(t, testDB(t), "curve", "--levels", "0")
	assert.Error(t, err)
}

func TestHistoryLearnersAndReset(t *testing.T) {
	db := testDB(t)
	for _, learner := range []string{"ana", "bo"} {
		_, err := runCLI(t, db, "award", "material-completion", "--learner", learner, "--material", "fractions")
		require.NoError(t, err)
	}

	out, err := runCLI(t, db, "history", "--learner", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Material Completed")
	assert.Contains(t, out, "fractions")

	out, err = runCLI(t, db, "learners")
	require.NoError(t, err)
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "bo")

	_, err = runCLI(t, db, "reset")
	require.Error(t, err)

	out, err = runCLI(t, db, "reset", "--learner", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 awards for ana.")

	out, err = runCLI(t, db, "learners")
	require.NoError(t, err)
	assert.NotContains(t, out, "ana")
}

func TestImportAndExport(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "log.csv")
	csv := "date,learner,activity,difficulty,accuracy\n" +
		"2026-03-01,,reflection,beginner,90\n" +
		"2026-03-02,,problem-solved,intermediate,100%\n" +
		"2026-03-03,,dancing,,\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o644))

	out, err := runCLI(t, db, "import", csvPath, "--learner", "bo")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 2 of 3 rows")
	assert.Contains(t, out, "1 rows failed:")
	assert.Contains(t, out, "Row 4:")

	xlsxPath := filepath.Join(dir, "bo.xlsx")
	out, err = runCLI(t, db, "export", xlsxPath, "--learner", "bo")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported bo")
	_, err = os.Stat(xlsxPath)
	require.NoError(t, err)

	_, err = runCLI(t, db, "import", csvPath, "--column", "grade=C")
	assert.Error(t, err)
}

func TestImportDryRunChainsRows(t *testing.T) {
	db := testDB(t)
	csvPath := filepath.Join(t.TempDir(), "log.csv")
	csv := "date,learner,activity,difficulty,accuracy\n" +
		",,reflection,beginner,90\n" +
		",,reflection,beginner,90\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o644))

	// 60 + 60 reaches level 2 at 120 XP only when the rows build on each other.
	out, err := runCLI(t, db, "import", csvPath, "--learner", "bo", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Scored (dry run) 2 of 2 rows for 120 XP, 1 level-ups.")

	out, err = runCLI(t, db, "history", "--learner", "bo")
	require.NoError(t, err)
	assert.Contains(t, out, "No awards for bo yet.")

	out, err = runCLI(t, db, "import", csvPath, "--learner", "bo")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 2 of 2 rows for 120 XP, 1 level-ups.")
}

func TestApplyColumns(t *testing.T) {
	cols := sheets.DefaultImportConfig().Columns
	require.NoError(t, applyColumns(&cols, map[string]string{"Date": "c", "note": ""}))
	assert.Equal(t, "C", cols.Date)
	assert.Equal(t, "", cols.Note)
	assert.Equal(t, "B", cols.Learner)

	assert.Error(t, applyColumns(&cols, map[string]string{"grade": "K"}))
}

func TestSuggestListsAllWhenNothingMatches(t *testing.T) {
	var buf bytes.Buffer
	suggest(&buf, "difficulty", "zzz", difficultyNames())
	assert.Equal(t, "Unknown difficulty \"zzz\". Known: beginner, intermediate, advanced, expert\n", buf.String())
}

func TestPrintStats(t *testing.T) {
	state := &progression.LearnerState{
		Learner:       "ana",
		Level:         xp.ComputeLevelState(175),
		Streak:        3,
		NextMilestone: 7,
	}
	events := []store.ActivityEventRecord{
		{ActivityEventData: store.ActivityEventData{ActivityType: "reflection", Award: 50}},
		{ActivityEventData: store.ActivityEventData{ActivityType: "reflection", Award: 60}},
		{ActivityEventData: store.ActivityEventData{ActivityType: "juggling", Award: 0}},
		{ActivityEventData: store.ActivityEventData{ActivityType: "problem-solved", Award: 65}},
	}

	var buf bytes.Buffer
	printStats(&buf, state, events)
	out := buf.String()

	assert.Contains(t, out, "3-day streak (next bonus at 7 days)")
	lines := strings.Split(out, "\n")
	var rows []string
	for _, l := range lines {
		if strings.Contains(l, "Problem Solved") || strings.Contains(l, "Reflection") || strings.Contains(l, "juggling") {
			rows = append(rows, l)
		}
	}
	require.Len(t, rows, 3)
	assert.Contains(t, rows[0], "Problem Solved")
	assert.Contains(t, rows[1], "Reflection")
	assert.Contains(t, rows[2], "juggling")
	assert.Contains(t, out, "TOTAL")
}

func TestVersionAndEmptyLLMEvents(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, db, "version")
	require.NoError(t, err)
	assert.Equal(t, "levelup (devel)\n", out)

	out, err = runCLI(t, db, "llm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM events found.")

	_, err = runCLI(t, db, "llm", "view", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 42 not found")
}

func TestPrintLLMEventsFiltersPurpose(t *testing.T) {
	events := []store.LLMRequestEventRecord{
		{ID: 1, Timestamp: time.Now(), LLMRequestEventData: store.LLMRequestEventData{Purpose: "level-up", Model: "m1", Success: true}},
		{ID: 2, Timestamp: time.Now(), LLMRequestEventData: store.LLMRequestEventData{Purpose: "other", Model: "m2"}},
	}
	var buf bytes.Buffer
	printLLMEvents(&buf, events, "level-up")
	assert.Contains(t, buf.String(), "m1")
	assert.NotContains(t, buf.String(), "m2")
}
