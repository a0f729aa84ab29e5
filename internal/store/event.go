package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"
)

// sequenceCounter manages the global monotonic sequence number assigned to
// every appended event. The mutex serializes within the process; the
// RETURNING clause makes the increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, errors.Wrap(err, "create sequence table")
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, errors.Wrap(err, "seed sequence")
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, errors.Wrap(err, "next sequence")
	}
	return seq, nil
}

// eventRepo implements EventRepo.
type eventRepo struct {
	s *Store
}

var attemptColumns = []string{
	"sequence", "user_id", "item_id", "correct", "response_ms", "quality", "interval_days", "attempted_at",
}

func (r *eventRepo) AppendAttempt(ctx context.Context, e *AttemptEvent) error {
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return err
	}

	var responseMs any
	if e.ResponseMs != nil {
		responseMs = *e.ResponseMs
	}
	insert := builder().Insert(tableAttemptEvents).
		Columns(attemptColumns...).
		Values(seq, e.UserID, e.ItemID, e.Correct, responseMs, e.Quality, e.IntervalDays, e.AttemptedAt.UnixMilli())
	if err := r.s.exec(ctx, insert); err != nil {
		return errors.Wrap(err, "save attempt event")
	}
	e.Sequence = seq
	return nil
}

func (r *eventRepo) QueryAttempts(ctx context.Context, userID string, opts QueryOpts) ([]AttemptEvent, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("attempted_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("attempted_at", opts.To.UnixMilli()))
	}

	q := builder().Select(attemptColumns...).
		From(entsql.Table(tableAttemptEvents)).
		Where(entsql.And(preds...)).
		OrderBy("sequence")
	if opts.Limit > 0 {
		q.Limit(opts.Limit)
	}

	var events []AttemptEvent
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		var (
			e          AttemptEvent
			responseMs sql.NullInt64
			at         int64
		)
		if err := rows.Scan(&e.Sequence, &e.UserID, &e.ItemID, &e.Correct, &responseMs, &e.Quality, &e.IntervalDays, &at); err != nil {
			return err
		}
		if responseMs.Valid {
			ms := int(responseMs.Int64)
			e.ResponseMs = &ms
		}
		e.AttemptedAt = time.UnixMilli(at)
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "query attempts for %s", userID)
	}
	return events, nil
}

func (r *eventRepo) AttemptTimes(ctx context.Context, userID string) ([]time.Time, error) {
	q := builder().Select("attempted_at").
		From(entsql.Table(tableAttemptEvents)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("attempted_at"))
	var times []time.Time
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		var at int64
		if err := rows.Scan(&at); err != nil {
			return err
		}
		times = append(times, time.UnixMilli(at))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "query attempt times for %s", userID)
	}
	return times, nil
}
