package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/levelup/internal/notify"
	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/xp"
)

type stubSource struct {
	learners []progression.LearnerState
	err      error
}

func (s *stubSource) SnapshotData(context.Context) (*store.SnapshotData, error) {
	if s.err != nil {
		return nil, s.err
	}
	data := &store.SnapshotData{Version: store.SnapshotVersion}
	for _, l := range s.learners {
		data.Learners = append(data.Learners, store.LearnerSnapshot{
			Learner: l.Learner,
			TotalXP: l.Level.TotalXP,
			Level:   l.Level.Level,
			Streak:  l.Streak,
		})
	}
	return data, nil
}

func (s *stubSource) Learners(context.Context) ([]progression.LearnerState, error) {
	return s.learners, s.err
}

type memSnapshots struct {
	saved []*store.Snapshot
	keep  int
}

func (m *memSnapshots) Save(_ context.Context, snap *store.Snapshot) error {
	m.saved = append(m.saved, snap)
	return nil
}

func (m *memSnapshots) Latest(context.Context) (*store.Snapshot, error) {
	if len(m.saved) == 0 {
		return nil, nil
	}
	return m.saved[len(m.saved)-1], nil
}

func (m *memSnapshots) Prune(_ context.Context, keep int) error {
	m.keep = keep
	if len(m.saved) > keep {
		m.saved = m.saved[len(m.saved)-keep:]
	}
	return nil
}

type collectNotifier struct {
	sent []notify.Notification
	fail map[string]bool
}

func (c *collectNotifier) Notify(_ context.Context, n notify.Notification) error {
	if c.fail[n.Learner] {
		return errors.New("blocked")
	}
	c.sent = append(c.sent, n)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func learner(name string, total, streak int, activeToday bool) progression.LearnerState {
	return progression.LearnerState{
		Learner:     name,
		Level:       xp.ComputeLevelState(total),
		Streak:      streak,
		ActiveToday: activeToday,
	}
}

func TestRunSnapshot(t *testing.T) {
	src := &stubSource{learners: []progression.LearnerState{
		learner("Ana", 300, 3, true),
		learner("Bo", 50, 0, false),
	}}
	snaps := &memSnapshots{}
	s := New(Config{KeepSnapshots: 2}, src, snaps, nil, quietLogger())

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RunSnapshot(context.Background()))
	}

	assert.Equal(t, 2, snaps.keep)
	require.Len(t, snaps.saved, 2)
	latest, err := snaps.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, latest.Data.Learners, 2)
	assert.Equal(t, "Ana", latest.Data.Learners[0].Learner)
	assert.Equal(t, 3, latest.Data.Learners[0].Level)
}

func TestRunSnapshotSourceError(t *testing.T) {
	snaps := &memSnapshots{}
	s := New(Config{}, &stubSource{err: errors.New("db closed")}, snaps, nil, quietLogger())

	err := s.RunSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build snapshot")
	assert.Empty(t, snaps.saved)
}

func TestRunReminders(t *testing.T) {
	src := &stubSource{learners: []progression.LearnerState{
		learner("Ana", 300, 3, true),  // already active today
		learner("Bo", 50, 0, false),   // no streak to protect
		learner("Cy", 120, 5, false),  // reminded
		learner("Di", 80, 2, false),   // notifier fails
		learner("Ed", 900, 12, false), // reminded
	}}
	n := &collectNotifier{fail: map[string]bool{"Di": true}}
	s := New(Config{}, src, &memSnapshots{}, n, quietLogger())

	sent, err := s.RunReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, n.sent, 2)
	assert.Equal(t, "Cy", n.sent[0].Learner)
	assert.Equal(t, notify.KindStreakReminder, n.sent[0].Kind)
	assert.Equal(t, 5, n.sent[0].Streak)
	assert.Equal(t, 2, n.sent[0].Level)
	assert.Equal(t, "Ed", n.sent[1].Learner)
}

func TestRunRemindersSourceError(t *testing.T) {
	s := New(Config{}, &stubSource{err: errors.New("boom")}, &memSnapshots{}, nil, quietLogger())

	_, err := s.RunReminders(context.Background())
	assert.Error(t, err)
}

func TestStartRegistersJobs(t *testing.T) {
	s := New(Config{Location: time.UTC}, &stubSource{}, &memSnapshots{}, nil, quietLogger())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 2, s.Jobs())
}

func TestStartRejectsBadTime(t *testing.T) {
	s := New(Config{SnapshotAt: "25:99", Location: time.UTC}, &stubSource{}, &memSnapshots{}, nil, quietLogger())

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule snapshot job")
}

func TestNewDefaults(t *testing.T) {
	s := New(Config{}, &stubSource{}, &memSnapshots{}, nil, nil)

	assert.Equal(t, DefaultSnapshotAt, s.cfg.SnapshotAt)
	assert.Equal(t, DefaultReminderAt, s.cfg.ReminderAt)
	assert.Equal(t, DefaultKeepSnapshots, s.cfg.KeepSnapshots)
	assert.Equal(t, time.Local, s.cfg.Location)
	assert.Equal(t, DefaultConfig().KeepSnapshots, s.cfg.KeepSnapshots)
}
