package progression

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/streak"
	"github.com/abhisek/levelup/internal/xp"
)

// State returns a learner's level and streak. A cached state is reused
// only while the calendar day and the learner's newest ledger sequence
// are unchanged, so writes from other processes are picked up.
func (s *Service) State(ctx context.Context, learner string) (*LearnerState, error) {
	learner = strings.TrimSpace(learner)
	if learner == "" {
		return nil, ErrEmptyLearner
	}

	now := s.now().In(s.loc)
	today := streak.Day(now, s.loc)
	seq, err := s.latestSequence(ctx, learner)
	if err != nil {
		return nil, err
	}
	if v, ok := s.states.Get(learner); ok {
		st := v.(*LearnerState)
		if st.day.Equal(today) && st.seq == seq {
			cp := *st
			return &cp, nil
		}
	}

	total, err := s.eventRepo.TotalXP(ctx, learner)
	if err != nil {
		return nil, fmt.Errorf("load total XP: %w", err)
	}
	days, err := s.eventRepo.ActiveDays(ctx, learner, now.AddDate(0, 0, -streakLookbackDays))
	if err != nil {
		return nil, fmt.Errorf("load active days: %w", err)
	}

	n := streak.ConsecutiveDays(days, now)
	st := &LearnerState{
		Learner:       learner,
		Level:         xp.ComputeLevelState(total),
		Streak:        n,
		ActiveToday:   streak.ActiveToday(days, now),
		NextMilestone: streak.NextMilestone(n),
		day:           today,
		seq:           seq,
	}
	s.states.Add(learner, st)

	cp := *st
	return &cp, nil
}

// latestSequence returns the sequence of the learner's newest ledger
// event, or 0 when the ledger is empty.
func (s *Service) latestSequence(ctx context.Context, learner string) (int64, error) {
	newest, err := s.eventRepo.QueryActivityEvents(ctx, learner, store.QueryOpts{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("load newest event: %w", err)
	}
	if len(newest) == 0 {
		return 0, nil
	}
	return newest[0].Sequence, nil
}

// Reset deletes a learner's ledger and returns the number of removed events.
func (s *Service) Reset(ctx context.Context, learner string) (int, error) {
	learner = strings.TrimSpace(learner)
	if learner == "" {
		return 0, ErrEmptyLearner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.eventRepo.DeleteLearner(ctx, learner)
	if err != nil {
		return 0, fmt.Errorf("reset learner: %w", err)
	}
	s.states.Remove(learner)

	kept := s.session[:0]
	for _, r := range s.session {
		if r.Learner != learner {
			kept = append(kept, r)
		}
	}
	s.session = kept
	return n, nil
}

// SnapshotData captures every learner's derived state for snapshot
// persistence.
func (s *Service) SnapshotData(ctx context.Context) (*store.SnapshotData, error) {
	learners, err := s.eventRepo.Learners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}

	data := &store.SnapshotData{Version: store.SnapshotVersion}
	for _, l := range learners {
		st, err := s.State(ctx, l.Learner)
		if err != nil {
			return nil, err
		}
		lvl := xp.ComputeLevelState(l.TotalXP)
		data.Learners = append(data.Learners, store.LearnerSnapshot{
			Learner:       l.Learner,
			TotalXP:       l.TotalXP,
			Level:         lvl.Level,
			XPToNextLevel: lvl.XPToNextLevel,
			Streak:        st.Streak,
			Awards:        l.Awards,
			LastActive:    l.LastActive,
		})
	}
	return data, nil
}

// Learners lists every learner with their current state, by name.
func (s *Service) Learners(ctx context.Context) ([]LearnerState, error) {
	summaries, err := s.eventRepo.Learners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	out := make([]LearnerState, 0, len(summaries))
	for _, l := range summaries {
		st, err := s.State(ctx, l.Learner)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, nil
}
