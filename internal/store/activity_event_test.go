package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendActivity(t *testing.T, repo EventRepo, learner string, award int, ts time.Time) *ActivityEventRecord {
	t.Helper()
	rec, err := repo.AppendActivityEvent(context.Background(), ActivityEventData{
		Learner:              learner,
		SessionID:            "sess-1",
		ActivityType:         "problem-solved",
		Difficulty:           "beginner",
		Accuracy:             0.9,
		BaseXP:               25,
		QualityMultiplier:    1.2,
		DifficultyMultiplier: 1.0,
		StreakBonus:          1.0,
		Award:                award,
		Timestamp:            ts,
	})
	require.NoError(t, err)
	return rec
}

func TestAppendActivityEventAssignsSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	first := appendActivity(t, repo, "ana", 30, base)
	second := appendActivity(t, repo, "ana", 30, base.Add(time.Hour))

	assert.Equal(t, int64(1), first.Sequence)
	assert.Equal(t, int64(2), second.Sequence)
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAppendActivityEventDefaultsTimestamp(t *testing.T) {
	s := openTestStore(t)
	before := time.Now()

	rec, err := s.EventRepo().AppendActivityEvent(context.Background(), ActivityEventData{
		Learner: "ana", ActivityType: "reflection", Award: 50,
	})
	require.NoError(t, err)
	assert.False(t, rec.Timestamp.Before(before))
}

func TestQueryActivityEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		appendActivity(t, repo, "ana", 10*(i+1), base.Add(time.Duration(i)*24*time.Hour))
	}
	appendActivity(t, repo, "ben", 99, base)

	t.Run("newest first", func(t *testing.T) {
		events, err := repo.QueryActivityEvents(ctx, "ana", QueryOpts{})
		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, 40, events[0].Award)
		assert.Equal(t, 10, events[3].Award)
		assert.Equal(t, "sess-1", events[0].SessionID)
		assert.InDelta(t, 0.9, events[0].Accuracy, 1e-9)
		assert.InDelta(t, 1.2, events[0].QualityMultiplier, 1e-9)
		assert.True(t, events[3].Timestamp.Equal(base))
	})

	t.Run("limit", func(t *testing.T) {
		events, err := repo.QueryActivityEvents(ctx, "ana", QueryOpts{Limit: 2})
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, 40, events[0].Award)
	})

	t.Run("time window", func(t *testing.T) {
		events, err := repo.QueryActivityEvents(ctx, "ana", QueryOpts{
			From: base.Add(24 * time.Hour),
			To:   base.Add(48 * time.Hour),
		})
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, 30, events[0].Award)
		assert.Equal(t, 20, events[1].Award)
	})

	t.Run("after sequence", func(t *testing.T) {
		events, err := repo.QueryActivityEvents(ctx, "ana", QueryOpts{After: 2})
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("all learners", func(t *testing.T) {
		events, err := repo.QueryActivityEvents(ctx, "", QueryOpts{})
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})
}

func TestTotalXP(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	total, err := repo.TotalXP(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, total)

	now := time.Now()
	appendActivity(t, repo, "ana", 100, now)
	appendActivity(t, repo, "ana", 20, now)
	appendActivity(t, repo, "ben", 7, now)

	total, err = repo.TotalXP(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 120, total)
}

func TestActiveDays(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	appendActivity(t, repo, "ana", 10, base)
	appendActivity(t, repo, "ana", 10, base.Add(48*time.Hour))
	appendActivity(t, repo, "ana", 10, base.Add(72*time.Hour))

	days, err := repo.ActiveDays(context.Background(), "ana", base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.True(t, days[0].Equal(base.Add(72*time.Hour)))

	days, err = repo.ActiveDays(context.Background(), "ana", time.Time{})
	require.NoError(t, err)
	assert.Len(t, days, 3)
}

func TestLearnersAndDelete(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	appendActivity(t, repo, "ben", 5, base)
	appendActivity(t, repo, "ana", 100, base)
	appendActivity(t, repo, "ana", 50, base.Add(time.Hour))

	learners, err := repo.Learners(ctx)
	require.NoError(t, err)
	require.Len(t, learners, 2)
	assert.Equal(t, "ana", learners[0].Learner)
	assert.Equal(t, 150, learners[0].TotalXP)
	assert.Equal(t, 2, learners[0].Awards)
	assert.True(t, learners[0].LastActive.Equal(base.Add(time.Hour)))
	assert.Equal(t, "ben", learners[1].Learner)

	n, err := repo.DeleteLearner(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	learners, err = repo.Learners(ctx)
	require.NoError(t, err)
	require.Len(t, learners, 1)
	assert.Equal(t, "ben", learners[0].Learner)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "claude-sonnet-4-20250514", Purpose: "level-up",
		InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true,
		RequestBody: "[user]\nhi", ResponseBody: `{"message":"yay"}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "claude-sonnet-4-20250514", Purpose: "level-up",
		InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: false,
		ErrorMessage: "boom",
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o", Purpose: "streak",
		InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: true,
	}))

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "gpt-4o", events[0].Model)
	assert.False(t, events[1].Success)
	assert.Equal(t, "boom", events[1].ErrorMessage)

	got, err := repo.GetLLMEvent(ctx, events[2].ID)
	require.NoError(t, err)
	assert.Equal(t, `{"message":"yay"}`, got.ResponseBody)
	assert.True(t, got.Success)

	_, err = repo.GetLLMEvent(ctx, 9999)
	assert.True(t, errors.Is(err, ErrNotFound))

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, LLMUsageStats{
		Purpose: "level-up", Calls: 2, InputTokens: 150, OutputTokens: 30, AvgLatencyMs: 200,
	}, byPurpose[0])

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "claude-sonnet-4-20250514", byModel[0].Model)
	assert.Equal(t, 2, byModel[0].Calls)
	assert.Equal(t, 5, byModel[1].OutputTokens)
}
