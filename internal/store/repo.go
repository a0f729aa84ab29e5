package store

import (
	"context"
	"time"

	"github.com/abhisek/cardwise/internal/recall"
	"github.com/abhisek/cardwise/internal/spacedrep"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Item is a reviewable unit in a deck.
type Item struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deck_id"`
	Order     int       `json:"order"`
	Prompt    string    `json:"prompt"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// DeckSummary is a deck and its item count.
type DeckSummary struct {
	DeckID string `json:"deck_id"`
	Items  int    `json:"items"`
}

// AttemptEvent is one recorded answer.
type AttemptEvent struct {
	Sequence     int64     `json:"sequence"`
	UserID       string    `json:"user_id"`
	ItemID       string    `json:"item_id"`
	Correct      bool      `json:"correct"`
	ResponseMs   *int      `json:"response_ms,omitempty"`
	Quality      int       `json:"quality"`
	IntervalDays int       `json:"interval_days"`
	AttemptedAt  time.Time `json:"attempted_at"`
}

// ItemRepo manages deck items.
type ItemRepo interface {
	// Upsert inserts or replaces items by ID.
	Upsert(ctx context.Context, items ...Item) error

	// Get returns the item, or nil if it does not exist.
	Get(ctx context.Context, id string) (*Item, error)

	// ListByDeck returns a deck's items ordered by Order then ID.
	ListByDeck(ctx context.Context, deckID string) ([]Item, error)

	// ListDecks returns every deck with its item count.
	ListDecks(ctx context.Context) ([]DeckSummary, error)

	// DeleteDeck removes a deck's items and every user's review state for
	// them. It returns the number of items removed.
	DeleteDeck(ctx context.Context, deckID string) (int, error)
}

// ReviewRepo persists per-user review states. Missing or unreadable states
// load as nil.
type ReviewRepo interface {
	// Load returns the state for one item, or nil.
	Load(ctx context.Context, userID, itemID string) (*spacedrep.ReviewState, error)

	// LoadMany returns the states found for itemIDs, keyed by item ID.
	LoadMany(ctx context.Context, userID string, itemIDs []string) (map[string]*spacedrep.ReviewState, error)

	// LoadAll returns every state of the user, keyed by item ID.
	LoadAll(ctx context.Context, userID string) (map[string]*spacedrep.ReviewState, error)

	// Save stores the state, replacing any previous one.
	Save(ctx context.Context, userID, itemID string, state *spacedrep.ReviewState) error

	// DueCount returns how many of the user's items are due at now.
	DueCount(ctx context.Context, userID string, now time.Time) (int, error)
}

// SampleRepo persists each user's training sample window.
type SampleRepo interface {
	recall.SampleStore
}

// ModelRepo persists each user's trained recall model.
type ModelRepo interface {
	recall.ModelStore
}

// EventRepo provides append and query access to attempt events.
type EventRepo interface {
	// AppendAttempt assigns the next global sequence and stores the event.
	AppendAttempt(ctx context.Context, e *AttemptEvent) error

	// QueryAttempts returns the user's events ordered by sequence.
	QueryAttempts(ctx context.Context, userID string, opts QueryOpts) ([]AttemptEvent, error)

	// AttemptTimes returns when the user answered, newest first.
	AttemptTimes(ctx context.Context, userID string) ([]time.Time, error)
}
