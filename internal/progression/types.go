package progression

import (
	"time"

	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/xp"
)

// Activity is one learning activity to score.
type Activity struct {
	Learner     string
	Type        xp.ActivityType
	Difficulty  xp.Difficulty
	Performance xp.Performance
	Material    string
	Note        string

	// At is when the activity happened. Zero means now.
	At time.Time
}

// Result is the outcome of scoring an activity.
type Result struct {
	Learner   string
	At        time.Time
	Breakdown xp.Breakdown

	Before xp.LevelState
	After  xp.LevelState

	// Streak counts the activity's own day; PreviousStreak does not.
	Streak         int
	PreviousStreak int

	// Message is the coach's line when the learner levelled up.
	Message string

	// Event is the stored ledger entry; nil for previews.
	Event *store.ActivityEventRecord
}

// LeveledUp reports whether the award moved the learner to a higher level.
func (r Result) LeveledUp() bool {
	return r.After.Level > r.Before.Level
}

// LevelsGained is the number of levels the award crossed.
func (r Result) LevelsGained() int {
	return r.After.Level - r.Before.Level
}

// LearnerState is a learner's derived progression.
type LearnerState struct {
	Learner     string
	Level       xp.LevelState
	Streak      int
	ActiveToday bool

	// NextMilestone is the streak length of the next bonus tier, 0 when
	// the top tier is reached.
	NextMilestone int

	// day is the calendar day the state was computed for.
	day time.Time
	// seq is the learner's newest ledger sequence at computation time.
	seq int64
}

// DaysToMilestone is how many more active days reach the next bonus tier.
func (s LearnerState) DaysToMilestone() int {
	if s.NextMilestone == 0 {
		return 0
	}
	return s.NextMilestone - s.Streak
}
