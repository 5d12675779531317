package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
)

// Table names.
const (
	tableActivityEvents = "activity_events"
	tableLLMEvents      = "llm_request_events"
	tableSnapshots      = "snapshots"
)

// migrate creates missing tables and indexes. Every statement is
// idempotent, so it runs on each Open.
func migrate(ctx context.Context, db *sql.DB, dia string) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dia == dialect.Postgres {
		id = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS global_sequence (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			next_val BIGINT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS activity_events (
			id {ID},
			sequence BIGINT NOT NULL UNIQUE,
			ts BIGINT NOT NULL,
			learner TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			activity_type TEXT NOT NULL,
			difficulty TEXT NOT NULL DEFAULT '',
			material TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			accuracy DOUBLE PRECISION NOT NULL DEFAULT 0,
			speed DOUBLE PRECISION NOT NULL DEFAULT 0,
			creativity DOUBLE PRECISION NOT NULL DEFAULT 0,
			effort DOUBLE PRECISION NOT NULL DEFAULT 0,
			streak_days INTEGER NOT NULL DEFAULT 0,
			base_xp INTEGER NOT NULL DEFAULT 0,
			quality_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1,
			difficulty_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1,
			streak_bonus DOUBLE PRECISION NOT NULL DEFAULT 1,
			award INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS activity_events_learner_ts ON activity_events (learner, ts)`,
		`CREATE TABLE IF NOT EXISTS llm_request_events (
			id {ID},
			sequence BIGINT NOT NULL UNIQUE,
			ts BIGINT NOT NULL,
			provider TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			purpose TEXT NOT NULL DEFAULT '',
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL DEFAULT FALSE,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id {ID},
			sequence BIGINT NOT NULL DEFAULT 0,
			ts BIGINT NOT NULL,
			data TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		stmt = strings.ReplaceAll(stmt, "{ID}", id)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
