package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo with JSON-encoded snapshot data.
type snapshotRepo struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Data.Version == 0 {
		snap.Data.Version = SnapshotVersion
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}
	if snap.Sequence == 0 && r.seq != nil {
		cur, err := r.seq.Current(ctx)
		if err != nil {
			return err
		}
		snap.Sequence = cur
	}

	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	query, args := entsql.Dialect(r.dialect).Insert(tableSnapshots).
		Columns("sequence", "ts", "data").
		Values(snap.Sequence, snap.Timestamp.UnixNano(), string(data)).
		Returning("id").
		Query()

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&snap.ID); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	query, args := entsql.Dialect(r.dialect).Select("id", "sequence", "ts", "data").
		From(entsql.Table(tableSnapshots)).
		OrderBy(entsql.Desc("ts"), entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		snap Snapshot
		ts   int64
		data string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&snap.ID, &snap.Sequence, &ts, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &snap.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	snap.Timestamp = time.Unix(0, ts)
	return &snap, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}

	// The newest snapshot beyond the keep window sets the cutoff.
	query, args := entsql.Dialect(r.dialect).Select("id").
		From(entsql.Table(tableSnapshots)).
		OrderBy(entsql.Desc("ts"), entsql.Desc("id")).
		Limit(1).
		Offset(keep).
		Query()

	var threshold int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep snapshots exist
	}
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	query, args = entsql.Dialect(r.dialect).Delete(tableSnapshots).
		Where(entsql.LTE("id", threshold)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
