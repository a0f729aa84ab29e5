package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"

	"github.com/abhisek/cardwise/internal/recall"
)

// modelRepo implements ModelRepo. Weights are stored as the model's own
// serialized form.
type modelRepo struct {
	s *Store
}

func (r *modelRepo) LoadModel(ctx context.Context, userID string) (*recall.StoredModel, error) {
	q := builder().Select("weights", "trained_at", "runs").
		From(entsql.Table(tableRecallModels)).
		Where(entsql.EQ("user_id", userID))
	var found *recall.StoredModel
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		var (
			m  recall.StoredModel
			at int64
		)
		if err := rows.Scan(&m.Data, &at, &m.Runs); err != nil {
			return err
		}
		m.TrainedAt = time.UnixMilli(at)
		found = &m
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load recall model for %s", userID)
	}
	return found, nil
}

func (r *modelRepo) SaveModel(ctx context.Context, userID string, m recall.StoredModel) error {
	if len(m.Data) == 0 {
		return errors.Errorf("empty recall model for %s", userID)
	}
	insert := builder().Insert(tableRecallModels).
		Columns("user_id", "weights", "trained_at", "runs").
		Values(userID, m.Data, m.TrainedAt.UnixMilli(), m.Runs).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		)
	return errors.Wrapf(r.s.exec(ctx, insert), "save recall model for %s", userID)
}
