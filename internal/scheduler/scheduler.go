// Package scheduler runs the daily background jobs of `levelup serve`.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/levelup/internal/notify"
	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/store"
)

// Defaults for Config.
const (
	DefaultSnapshotAt    = "23:55"
	DefaultReminderAt    = "18:00"
	DefaultKeepSnapshots = 30
)

// Config controls when jobs run.
type Config struct {
	// SnapshotAt and ReminderAt are "HH:MM" times in Location.
	SnapshotAt string
	ReminderAt string

	// KeepSnapshots is how many snapshots survive pruning.
	KeepSnapshots int

	Location *time.Location
}

// DefaultConfig returns the built-in schedule.
func DefaultConfig() Config {
	return Config{
		SnapshotAt:    DefaultSnapshotAt,
		ReminderAt:    DefaultReminderAt,
		KeepSnapshots: DefaultKeepSnapshots,
	}
}

// Source is the progression state the jobs read.
type Source interface {
	SnapshotData(ctx context.Context) (*store.SnapshotData, error)
	Learners(ctx context.Context) ([]progression.LearnerState, error)
}

// Scheduler owns the gocron scheduler and the job bodies.
type Scheduler struct {
	cron      *gocron.Scheduler
	cfg       Config
	source    Source
	snapshots store.SnapshotRepo
	notifier  notify.Notifier
	logger    *slog.Logger
}

// New creates a Scheduler. Jobs are registered by Start.
func New(cfg Config, source Source, snapshots store.SnapshotRepo, notifier notify.Notifier, logger *slog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.SnapshotAt == "" {
		cfg.SnapshotAt = DefaultSnapshotAt
	}
	if cfg.ReminderAt == "" {
		cfg.ReminderAt = DefaultReminderAt
	}
	if cfg.KeepSnapshots <= 0 {
		cfg.KeepSnapshots = DefaultKeepSnapshots
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:      gocron.NewScheduler(cfg.Location),
		cfg:       cfg,
		source:    source,
		snapshots: snapshots,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start registers the daily jobs and runs them in the background until
// Stop is called. Jobs receive ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.Every(1).Day().At(s.cfg.SnapshotAt).Do(func() {
		if err := s.RunSnapshot(ctx); err != nil {
			s.logger.Error("snapshot job failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule snapshot job: %w", err)
	}

	if _, err := s.cron.Every(1).Day().At(s.cfg.ReminderAt).Do(func() {
		if _, err := s.RunReminders(ctx); err != nil {
			s.logger.Error("reminder job failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}

	s.cron.StartAsync()
	s.logger.Info("scheduler started",
		"snapshot_at", s.cfg.SnapshotAt,
		"reminder_at", s.cfg.ReminderAt,
		"keep_snapshots", s.cfg.KeepSnapshots,
	)
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return s.cron.Len()
}

// RunSnapshot saves a snapshot of every learner and prunes old ones.
func (s *Scheduler) RunSnapshot(ctx context.Context) error {
	data, err := s.source.SnapshotData(ctx)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}
	if err := s.snapshots.Save(ctx, &store.Snapshot{Data: *data}); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := s.snapshots.Prune(ctx, s.cfg.KeepSnapshots); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	s.logger.Info("snapshot saved", "learners", len(data.Learners), "keep", s.cfg.KeepSnapshots)
	return nil
}

// RunReminders nudges every learner whose streak is alive but who has
// not been active today. It returns the number of reminders sent.
func (s *Scheduler) RunReminders(ctx context.Context) (int, error) {
	learners, err := s.source.Learners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list learners: %w", err)
	}

	sent := 0
	for _, l := range learners {
		if l.Streak == 0 || l.ActiveToday {
			continue
		}
		err := s.notifier.Notify(ctx, notify.Notification{
			Kind:    notify.KindStreakReminder,
			Learner: l.Learner,
			Level:   l.Level.Level,
			Streak:  l.Streak,
			TotalXP: l.Level.TotalXP,
		})
		if err != nil {
			s.logger.Warn("streak reminder failed", "learner", l.Learner, "err", err)
			continue
		}
		sent++
	}
	return sent, nil
}
