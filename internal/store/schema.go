package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

const (
	tableItems           = "items"
	tableReviewStates    = "review_states"
	tableTrainingSamples = "training_samples"
	tableAttemptEvents   = "attempt_events"
	tableRecallModels    = "recall_models"
)

// schema is applied in order on every Open. Timestamps are unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		deck_id TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		prompt TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_deck ON items (deck_id, order_index)`,
	`CREATE TABLE IF NOT EXISTS review_states (
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		state TEXT NOT NULL,
		next_review_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_review_states_due ON review_states (user_id, next_review_at)`,
	`CREATE TABLE IF NOT EXISTS training_samples (
		user_id TEXT PRIMARY KEY,
		samples TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attempt_events (
		sequence INTEGER PRIMARY KEY,
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		correct INTEGER NOT NULL,
		response_ms INTEGER,
		quality INTEGER NOT NULL,
		interval_days INTEGER NOT NULL,
		attempted_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempt_events_user ON attempt_events (user_id, attempted_at)`,
	`CREATE TABLE IF NOT EXISTS recall_models (
		user_id TEXT PRIMARY KEY,
		weights BLOB NOT NULL,
		trained_at INTEGER NOT NULL,
		runs INTEGER NOT NULL DEFAULT 0
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "apply schema")
		}
	}
	return nil
}
