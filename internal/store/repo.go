package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup by ID matches no row.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SnapshotVersion is the current SnapshotData layout.
const SnapshotVersion = 1

// LearnerSnapshot is one learner's derived progression at snapshot time.
type LearnerSnapshot struct {
	Learner       string    `json:"learner"`
	TotalXP       int       `json:"total_xp"`
	Level         int       `json:"level"`
	XPToNextLevel int       `json:"xp_to_next_level"`
	Streak        int       `json:"streak"`
	Awards        int       `json:"awards"`
	LastActive    time.Time `json:"last_active,omitempty"`
}

// SnapshotData captures every learner's state at a point in time.
type SnapshotData struct {
	Version  int               `json:"version"`
	Learners []LearnerSnapshot `json:"learners,omitempty"`
}

// Snapshot represents a point-in-time capture of learner state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages learner state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// ActivityEventData captures a scored learning activity.
type ActivityEventData struct {
	Learner      string
	SessionID    string
	ActivityType string
	Difficulty   string
	Material     string
	Note         string

	Accuracy   float64
	Speed      float64
	Creativity float64
	Effort     float64
	StreakDays int

	BaseXP               int
	QualityMultiplier    float64
	DifficultyMultiplier float64
	StreakBonus          float64
	Award                int

	// Timestamp defaults to now when zero.
	Timestamp time.Time
}

// ActivityEventRecord is a stored activity event.
type ActivityEventRecord struct {
	ID       int
	Sequence int64
	ActivityEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM calls per purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage per model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// LearnerSummary is one learner's ledger totals.
type LearnerSummary struct {
	Learner    string
	TotalXP    int
	Awards     int
	LastActive time.Time
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendActivityEvent records a scored activity and returns its record.
	AppendActivityEvent(ctx context.Context, data ActivityEventData) (*ActivityEventRecord, error)

	// QueryActivityEvents returns a learner's events, newest first.
	// An empty learner matches every learner.
	QueryActivityEvents(ctx context.Context, learner string, opts QueryOpts) ([]ActivityEventRecord, error)

	// TotalXP sums every award in a learner's ledger.
	TotalXP(ctx context.Context, learner string) (int, error)

	// ActiveDays returns the timestamps of a learner's events at or after since.
	ActiveDays(ctx context.Context, learner string, since time.Time) ([]time.Time, error)

	// Learners lists every learner with at least one event, by name.
	Learners(ctx context.Context) ([]LearnerSummary, error)

	// DeleteLearner removes a learner's events and reports how many were removed.
	DeleteLearner(ctx context.Context, learner string) (int, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one LLM event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates calls and tokens per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates calls and tokens per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
