// Package progression records scored learning activities and derives each
// learner's level and streak from the ledger.
package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/abhisek/levelup/internal/coach"
	"github.com/abhisek/levelup/internal/notify"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/streak"
	"github.com/abhisek/levelup/internal/xp"
)

// ErrEmptyLearner is returned when an activity names no learner.
var ErrEmptyLearner = errors.New("learner name is required")

// streakLookbackDays bounds how much history is read to count a streak.
const streakLookbackDays = 400

// DefaultCacheSize is the number of learner states kept in memory.
const DefaultCacheSize = 128

// Celebrator writes the message shown when a learner levels up.
type Celebrator interface {
	LevelUpMessage(ctx context.Context, ev coach.LevelUp) string
}

// Options configures a Service. Zero values pick sensible defaults.
type Options struct {
	Coach     Celebrator
	Notifier  notify.Notifier
	Logger    *slog.Logger
	CacheSize int

	// Now and Location override the clock and the calendar used to
	// count streak days. Defaults: time.Now and time.Local.
	Now      func() time.Time
	Location *time.Location
}

// Service is the progression store: it scores activities with the xp
// engine, appends them to the ledger, and answers level and streak
// queries. Levels are never stored; they are recomputed from total XP.
type Service struct {
	eventRepo store.EventRepo
	coach     Celebrator
	notifier  notify.Notifier
	logger    *slog.Logger
	now       func() time.Time
	loc       *time.Location

	// states caches *LearnerState by learner name.
	states *lru.Cache

	mu        sync.Mutex
	sessionID string
	// session accumulates results recorded since the last ResetSession.
	session []Result
}

// SessionSummary totals the awards recorded in the current session.
type SessionSummary struct {
	Awards   int
	XP       int
	LevelUps int
}

// NewService creates a Service over eventRepo.
func NewService(eventRepo store.EventRepo, opts Options) (*Service, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create state cache: %w", err)
	}

	s := &Service{
		eventRepo: eventRepo,
		coach:     opts.Coach,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		now:       opts.Now,
		loc:       opts.Location,
		states:    cache,
		sessionID: uuid.NewString(),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	return s, nil
}

// ResetSession clears the session accumulator and starts a new session.
func (s *Service) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.sessionID = uuid.NewString()
}

// Session summarizes the awards recorded since the last ResetSession.
func (s *Service) Session() SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum SessionSummary
	for _, r := range s.session {
		sum.Awards++
		sum.XP += r.Breakdown.Award
		if r.LeveledUp() {
			sum.LevelUps++
		}
	}
	return sum
}

// Preview scores a without recording it.
func (s *Service) Preview(ctx context.Context, a Activity) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score(ctx, a)
}

// Record scores a, appends it to the ledger and reports the level change.
// Hooks that run after the append (coach, notifier) are logged on failure
// and never fail the record.
func (s *Service) Record(ctx context.Context, a Activity) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.score(ctx, a)
	if err != nil {
		return nil, err
	}

	rec, err := s.eventRepo.AppendActivityEvent(ctx, store.ActivityEventData{
		Learner:              res.Learner,
		SessionID:            s.sessionID,
		ActivityType:         string(a.Type),
		Difficulty:           string(a.Difficulty),
		Material:             a.Material,
		Note:                 a.Note,
		Accuracy:             a.Performance.Accuracy,
		Speed:                a.Performance.Speed,
		Creativity:           a.Performance.Creativity,
		Effort:               a.Performance.Effort,
		StreakDays:           res.Breakdown.StreakDays,
		BaseXP:               res.Breakdown.BaseXP,
		QualityMultiplier:    res.Breakdown.QualityMultiplier,
		DifficultyMultiplier: res.Breakdown.DifficultyMultiplier,
		StreakBonus:          res.Breakdown.StreakBonus,
		Award:                res.Breakdown.Award,
		Timestamp:            res.At,
	})
	if err != nil {
		return nil, fmt.Errorf("record activity: %w", err)
	}
	res.Event = rec

	s.states.Remove(res.Learner)
	s.session = append(s.session, *res)

	s.logger.Debug("activity recorded",
		"learner", res.Learner,
		"activity", string(a.Type),
		"award", res.Breakdown.Award,
		"level", res.After.Level,
	)

	if res.LeveledUp() {
		s.celebrate(ctx, a, res)
	} else if crossedMilestone(res.PreviousStreak, res.Streak) {
		s.send(ctx, notify.Notification{
			Kind:    notify.KindStreakMilestone,
			Learner: res.Learner,
			Level:   res.After.Level,
			Streak:  res.Streak,
			TotalXP: res.After.TotalXP,
		})
	}
	return res, nil
}

// score computes the result of a without side effects. Callers hold s.mu.
func (s *Service) score(ctx context.Context, a Activity) (*Result, error) {
	return s.scoreOn(ctx, a, 0, nil)
}

// scoreOn scores a as if extraXP and extraDays had already been
// recorded for the learner.
func (s *Service) scoreOn(ctx context.Context, a Activity, extraXP int, extraDays []time.Time) (*Result, error) {
	learner := strings.TrimSpace(a.Learner)
	if learner == "" {
		return nil, ErrEmptyLearner
	}

	at := a.At
	if at.IsZero() {
		at = s.now()
	}
	at = at.In(s.loc)

	total, err := s.eventRepo.TotalXP(ctx, learner)
	if err != nil {
		return nil, fmt.Errorf("load total XP: %w", err)
	}
	total += extraXP

	days, err := s.eventRepo.ActiveDays(ctx, learner, at.AddDate(0, 0, -streakLookbackDays))
	if err != nil {
		return nil, fmt.Errorf("load active days: %w", err)
	}
	days = append(days, extraDays...)
	prevStreak := streak.ConsecutiveDays(days, at)
	curStreak := streak.ConsecutiveDays(append(days, at), at)

	bd := xp.ComputeBreakdown(a.Type, a.Performance, a.Difficulty, curStreak)

	return &Result{
		Learner:        learner,
		At:             at,
		Breakdown:      bd,
		Before:         xp.ComputeLevelState(total),
		After:          xp.ComputeLevelState(total + bd.Award),
		Streak:         curStreak,
		PreviousStreak: prevStreak,
	}, nil
}

func (s *Service) celebrate(ctx context.Context, a Activity, res *Result) {
	if s.coach != nil {
		res.Message = s.coach.LevelUpMessage(ctx, coach.LevelUp{
			Learner:  res.Learner,
			Level:    res.After.Level,
			TotalXP:  res.After.TotalXP,
			Streak:   res.Streak,
			Activity: a.Type,
		})
	}
	s.send(ctx, notify.Notification{
		Kind:    notify.KindLevelUp,
		Learner: res.Learner,
		Level:   res.After.Level,
		Streak:  res.Streak,
		TotalXP: res.After.TotalXP,
		Message: res.Message,
	})
}

func (s *Service) send(ctx context.Context, n notify.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notification failed", "kind", string(n.Kind), "learner", n.Learner, "err", err)
	}
}

// crossedMilestone reports whether a streak moved past a bonus threshold.
func crossedMilestone(prev, cur int) bool {
	for _, t := range xp.StreakThresholds {
		if prev < t && cur >= t {
			return true
		}
	}
	return false
}
