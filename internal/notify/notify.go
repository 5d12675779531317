// Package notify delivers level-up and streak messages to people outside
// the terminal.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Kind classifies a notification.
type Kind string

const (
	KindLevelUp         Kind = "level-up"
	KindStreakReminder  Kind = "streak-reminder"
	KindStreakMilestone Kind = "streak-milestone"
)

// Notification is one message about a learner.
type Notification struct {
	Kind    Kind
	Learner string
	Level   int
	Streak  int
	TotalXP int

	// Message is free text, usually from the coach. Empty means Text
	// renders a default line for the kind.
	Message string
}

// Text renders n as a single human-readable line.
func (n Notification) Text() string {
	if n.Message != "" {
		return n.Message
	}
	switch n.Kind {
	case KindLevelUp:
		return fmt.Sprintf("🎉 %s reached level %d (%d XP total)!", n.Learner, n.Level, n.TotalXP)
	case KindStreakReminder:
		return fmt.Sprintf("🔥 %s is on a %d-day streak. One activity today keeps it alive!", n.Learner, n.Streak)
	case KindStreakMilestone:
		return fmt.Sprintf("🔥 %s hit a %d-day streak!", n.Learner, n.Streak)
	default:
		return fmt.Sprintf("%s: %s", n.Kind, n.Learner)
	}
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, n.Text(),
		"kind", string(n.Kind),
		"learner", n.Learner,
		"level", n.Level,
		"streak", n.Streak,
	)
	return nil
}

// Multi fans a notification out to every notifier. All notifiers run
// even when some fail; the failures are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range m {
		if nt == nil {
			continue
		}
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }
