package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo over database/sql, building dialect-aware
// queries with ent's SQL builder and numbering events with the global
// sequence counter.
type eventRepo struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

var activityColumns = []string{
	"learner", "session_id", "activity_type", "difficulty", "material", "note",
	"accuracy", "speed", "creativity", "effort", "streak_days",
	"base_xp", "quality_multiplier", "difficulty_multiplier", "streak_bonus", "award",
	"sequence", "ts",
}

func (r *eventRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *eventRepo) AppendActivityEvent(ctx context.Context, data ActivityEventData) (*ActivityEventRecord, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("next sequence: %w", err)
	}

	if data.Timestamp.IsZero() {
		data.Timestamp = time.Now()
	}

	query, args := r.builder().Insert(tableActivityEvents).
		Columns(activityColumns...).
		Values(
			data.Learner, data.SessionID, data.ActivityType, data.Difficulty, data.Material, data.Note,
			data.Accuracy, data.Speed, data.Creativity, data.Effort, data.StreakDays,
			data.BaseXP, data.QualityMultiplier, data.DifficultyMultiplier, data.StreakBonus, data.Award,
			seqNum, data.Timestamp.UnixNano(),
		).
		Returning("id").
		Query()

	var id int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("save activity event: %w", err)
	}

	return &ActivityEventRecord{ID: id, Sequence: seqNum, ActivityEventData: data}, nil
}

func (r *eventRepo) QueryActivityEvents(ctx context.Context, learner string, opts QueryOpts) ([]ActivityEventRecord, error) {
	sel := r.builder().Select(append([]string{"id"}, activityColumns...)...).
		From(entsql.Table(tableActivityEvents))
	if learner != "" {
		sel.Where(entsql.EQ("learner", learner))
	}
	applyQueryOpts(sel, opts)
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity events: %w", err)
	}
	defer rows.Close()

	var records []ActivityEventRecord
	for rows.Next() {
		var (
			rec ActivityEventRecord
			d   = &rec.ActivityEventData
			ts  int64
		)
		err := rows.Scan(
			&rec.ID,
			&d.Learner, &d.SessionID, &d.ActivityType, &d.Difficulty, &d.Material, &d.Note,
			&d.Accuracy, &d.Speed, &d.Creativity, &d.Effort, &d.StreakDays,
			&d.BaseXP, &d.QualityMultiplier, &d.DifficultyMultiplier, &d.StreakBonus, &d.Award,
			&rec.Sequence, &ts,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		d.Timestamp = time.Unix(0, ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) TotalXP(ctx context.Context, learner string) (int, error) {
	query, args := r.builder().Select(entsql.Sum("award")).
		From(entsql.Table(tableActivityEvents)).
		Where(entsql.EQ("learner", learner)).
		Query()

	var total sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum awards: %w", err)
	}
	return int(total.Int64), nil
}

func (r *eventRepo) ActiveDays(ctx context.Context, learner string, since time.Time) ([]time.Time, error) {
	sel := r.builder().Select("ts").
		From(entsql.Table(tableActivityEvents)).
		Where(entsql.EQ("learner", learner))
	if !since.IsZero() {
		sel.Where(entsql.GTE("ts", since.UnixNano()))
	}
	sel.OrderBy(entsql.Desc("ts"))

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan active day: %w", err)
		}
		days = append(days, time.Unix(0, ts))
	}
	return days, rows.Err()
}

func (r *eventRepo) Learners(ctx context.Context) ([]LearnerSummary, error) {
	query, args := r.builder().Select(
		"learner",
		entsql.Sum("award"),
		entsql.Count("*"),
		entsql.Max("ts"),
	).
		From(entsql.Table(tableActivityEvents)).
		GroupBy("learner").
		OrderBy("learner").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	defer rows.Close()

	var learners []LearnerSummary
	for rows.Next() {
		var (
			ls    LearnerSummary
			total sql.NullInt64
			last  sql.NullInt64
		)
		if err := rows.Scan(&ls.Learner, &total, &ls.Awards, &last); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		ls.TotalXP = int(total.Int64)
		if last.Valid {
			ls.LastActive = time.Unix(0, last.Int64)
		}
		learners = append(learners, ls)
	}
	return learners, rows.Err()
}

func (r *eventRepo) DeleteLearner(ctx context.Context, learner string) (int, error) {
	query, args := r.builder().Delete(tableActivityEvents).
		Where(entsql.EQ("learner", learner)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete learner events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted events: %w", err)
	}
	return int(n), nil
}

// applyQueryOpts adds the sequence and timestamp filters of opts to sel.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts) {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("ts", opts.From.UnixNano()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("ts", opts.To.UnixNano()))
	}
}
