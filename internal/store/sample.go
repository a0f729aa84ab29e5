package store

import (
	"context"
	"encoding/json"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/cardwise/internal/recall"
)

// sampleRepo implements SampleRepo. Each user's window is one JSON array.
type sampleRepo struct {
	s *Store
}

func (r *sampleRepo) LoadSamples(ctx context.Context, userID string) ([]recall.TrainingSample, error) {
	q := builder().Select("samples").From(entsql.Table(tableTrainingSamples)).Where(entsql.EQ("user_id", userID))
	var doc string
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		return rows.Scan(&doc)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load training samples for %s", userID)
	}
	if doc == "" {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, errors.Wrapf(err, "decode training samples for %s", userID)
	}

	samples := make([]recall.TrainingSample, 0, len(raw))
	dropped := 0
	for _, entry := range raw {
		var sample recall.TrainingSample
		if err := json.Unmarshal(entry, &sample); err != nil {
			dropped++
			continue
		}
		samples = append(samples, sample)
	}
	if dropped > 0 {
		r.s.log.WithFields(logrus.Fields{"user": userID, "dropped": dropped}).
			Warn("ignoring undecodable training samples")
	}
	return samples, nil
}

func (r *sampleRepo) SaveSamples(ctx context.Context, userID string, samples []recall.TrainingSample) error {
	if samples == nil {
		samples = []recall.TrainingSample{}
	}
	doc, err := json.Marshal(samples)
	if err != nil {
		return errors.Wrap(err, "encode training samples")
	}

	insert := builder().Insert(tableTrainingSamples).
		Columns("user_id", "samples", "updated_at").
		Values(userID, string(doc), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		)
	return errors.Wrapf(r.s.exec(ctx, insert), "save training samples for %s", userID)
}
