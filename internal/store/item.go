package store

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// itemRepo implements ItemRepo.
type itemRepo struct {
	s *Store
}

var itemColumns = []string{"id", "deck_id", "order_index", "prompt", "answer", "created_at"}

func (r *itemRepo) Upsert(ctx context.Context, items ...Item) error {
	if len(items) == 0 {
		return nil
	}
	insert := builder().Insert(tableItems).Columns(itemColumns...)
	for _, it := range items {
		if it.ID == "" {
			return errors.New("item id is required")
		}
		if it.DeckID == "" {
			return errors.Errorf("item %s: deck id is required", it.ID)
		}
		created := it.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		insert.Values(it.ID, it.DeckID, it.Order, it.Prompt, it.Answer, created.UnixMilli())
	}
	insert.OnConflict(
		entsql.ConflictColumns("id"),
		entsql.ResolveWith(func(u *entsql.UpdateSet) {
			u.SetExcluded("deck_id")
			u.SetExcluded("order_index")
			u.SetExcluded("prompt")
			u.SetExcluded("answer")
		}),
	)
	return errors.Wrap(r.s.exec(ctx, insert), "upsert items")
}

func (r *itemRepo) Get(ctx context.Context, id string) (*Item, error) {
	q := builder().Select(itemColumns...).From(entsql.Table(tableItems)).Where(entsql.EQ("id", id))
	var found *Item
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		it, err := scanItem(rows)
		found = &it
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get item %s", id)
	}
	return found, nil
}

func (r *itemRepo) ListByDeck(ctx context.Context, deckID string) ([]Item, error) {
	q := builder().Select(itemColumns...).
		From(entsql.Table(tableItems)).
		Where(entsql.EQ("deck_id", deckID)).
		OrderBy("order_index", "id")
	var items []Item
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		it, err := scanItem(rows)
		items = append(items, it)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list deck %s", deckID)
	}
	return items, nil
}

func (r *itemRepo) ListDecks(ctx context.Context) ([]DeckSummary, error) {
	q := builder().Select("deck_id", entsql.Count("*")).
		From(entsql.Table(tableItems)).
		GroupBy("deck_id").
		OrderBy("deck_id")
	var decks []DeckSummary
	err := r.s.query(ctx, q, func(rows *entsql.Rows) error {
		var d DeckSummary
		if err := rows.Scan(&d.DeckID, &d.Items); err != nil {
			return err
		}
		decks = append(decks, d)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list decks")
	}
	return decks, nil
}

func (r *itemRepo) DeleteDeck(ctx context.Context, deckID string) (int, error) {
	var ids []string
	err := r.s.withTx(ctx, func(tx dialect.Tx) error {
		query, args := builder().Select("id").From(entsql.Table(tableItems)).Where(entsql.EQ("deck_id", deckID)).Query()
		var rows entsql.Rows
		if err := tx.Query(ctx, query, args, &rows); err != nil {
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		query, args = builder().Delete(tableReviewStates).Where(entsql.In("item_id", lo.ToAnySlice(ids)...)).Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return errors.Wrap(err, "delete review states")
		}
		query, args = builder().Delete(tableItems).Where(entsql.EQ("deck_id", deckID)).Query()
		return tx.Exec(ctx, query, args, nil)
	})
	if err != nil {
		return 0, errors.Wrapf(err, "delete deck %s", deckID)
	}
	return len(ids), nil
}

func scanItem(rows *entsql.Rows) (Item, error) {
	var it Item
	var created int64
	if err := rows.Scan(&it.ID, &it.DeckID, &it.Order, &it.Prompt, &it.Answer, &created); err != nil {
		return it, err
	}
	it.CreatedAt = time.UnixMilli(created)
	return it, nil
}
