package store

import (
	"context"
	"encoding/json"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/cardwise/internal/spacedrep"
)

// reviewRepo implements ReviewRepo. States are stored as JSON documents.
type reviewRepo struct {
	s *Store
}

func (r *reviewRepo) Load(ctx context.Context, userID, itemID string) (*spacedrep.ReviewState, error) {
	states, err := r.load(ctx, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("item_id", itemID)))
	if err != nil {
		return nil, errors.Wrapf(err, "load review state %s/%s", userID, itemID)
	}
	return states[itemID], nil
}

func (r *reviewRepo) LoadMany(ctx context.Context, userID string, itemIDs []string) (map[string]*spacedrep.ReviewState, error) {
	if len(itemIDs) == 0 {
		return map[string]*spacedrep.ReviewState{}, nil
	}
	states, err := r.load(ctx, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.In("item_id", lo.ToAnySlice(itemIDs)...),
	))
	if err != nil {
		return nil, errors.Wrapf(err, "load review states for %s", userID)
	}
	return states, nil
}

func (r *reviewRepo) LoadAll(ctx context.Context, userID string) (map[string]*spacedrep.ReviewState, error) {
	states, err := r.load(ctx, entsql.EQ("user_id", userID))
	if err != nil {
		return nil, errors.Wrapf(err, "load review states for %s", userID)
	}
	return states, nil
}

func (r *reviewRepo) Save(ctx context.Context, userID, itemID string, state *spacedrep.ReviewState) error {
	if state == nil {
		return errors.New("nil review state")
	}
	doc, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshal review state")
	}

	insert := builder().Insert(tableReviewStates).
		Columns("user_id", "item_id", "state", "next_review_at", "updated_at").
		Values(userID, itemID, string(doc), state.NextReviewAt.UnixMilli(), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("user_id", "item_id"),
			entsql.ResolveWithNewValues(),
		)
	return errors.Wrapf(r.s.exec(ctx, insert), "save review state %s/%s", userID, itemID)
}

func (r *reviewRepo) DueCount(ctx context.Context, userID string, now time.Time) (int, error) {
	q := builder().Select(entsql.Count("*")).
		From(entsql.Table(tableReviewStates)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.LTE("next_review_at", now.UnixMilli()),
		))
	var n int
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, errors.Wrapf(err, "count due items for %s", userID)
	}
	return n, nil
}

// load returns the readable states matching p. Documents that fail to decode
// or validate are skipped so the item is treated as never attempted.
func (r *reviewRepo) load(ctx context.Context, p *entsql.Predicate) (map[string]*spacedrep.ReviewState, error) {
	q := builder().Select("user_id", "item_id", "state").From(entsql.Table(tableReviewStates)).Where(p)
	states := make(map[string]*spacedrep.ReviewState)
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		var userID, itemID, doc string
		if err := rows.Scan(&userID, &itemID, &doc); err != nil {
			return err
		}
		state, err := decodeState(doc)
		if err != nil {
			r.s.log.WithError(err).WithFields(logrus.Fields{"user": userID, "item": itemID}).
				Warn("ignoring unreadable review state")
			return nil
		}
		states[itemID] = state
		return nil
	})
	return states, err
}

func decodeState(doc string) (*spacedrep.ReviewState, error) {
	var state spacedrep.ReviewState
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return nil, err
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return &state, nil
}
