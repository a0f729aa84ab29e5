// Package study ties scheduling, ranking, persistence and recall prediction
// together into the operations a learner client calls.
package study

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/cardwise/internal/ranking"
	"github.com/abhisek/cardwise/internal/recall"
	"github.com/abhisek/cardwise/internal/session"
	"github.com/abhisek/cardwise/internal/spacedrep"
	"github.com/abhisek/cardwise/internal/store"
)

// ErrInvalidAttempt is returned for attempts that fail validation.
var ErrInvalidAttempt = errors.New("invalid attempt")

// Attempt is one answer submitted by a learner.
type Attempt struct {
	UserID     string
	ItemID     string
	Correct    bool
	ResponseMs *int
	// At defaults to the service clock.
	At time.Time
}

func (a Attempt) validate() error {
	switch {
	case a.UserID == "":
		return fmt.Errorf("%w: user id is required", ErrInvalidAttempt)
	case a.ItemID == "":
		return fmt.Errorf("%w: item id is required", ErrInvalidAttempt)
	case a.ResponseMs != nil && *a.ResponseMs < 0:
		return fmt.Errorf("%w: negative response time %d", ErrInvalidAttempt, *a.ResponseMs)
	}
	return nil
}

// Result is the outcome of a recorded attempt.
type Result struct {
	// Previous is the state before the attempt, nil for a first attempt.
	Previous *spacedrep.ReviewState
	State    spacedrep.ReviewState
	Quality  int
	// ForgetInDays is the predicted number of days until the item is forgotten.
	ForgetInDays int
	// TrainingScheduled reports whether this attempt started a training run.
	TrainingScheduled bool
	// Sequence is the attempt event's sequence number, 0 if it was not stored.
	Sequence int64
}

// Service implements the study operations. It is safe for concurrent use;
// attempts on the same user and item are applied one at a time.
type Service struct {
	items   store.ItemRepo
	reviews store.ReviewRepo
	samples store.SampleRepo
	events  store.EventRepo
	users   userDeleter

	predictor *recall.Predictor
	planner   session.Planner
	log       logrus.FieldLogger
	now       func() time.Time
	locks     *keyedMutex
}

type userDeleter interface {
	DeleteUser(ctx context.Context, userID string) error
}

// Option configures a Service.
type Option func(*Service)

// WithPlanner sets the session planner.
func WithPlanner(p session.Planner) Option {
	return func(s *Service) { s.planner = p }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over st. predictor receives every attempt
// and serves forecasts.
func NewService(st *store.Store, predictor *recall.Predictor, opts ...Option) *Service {
	s := &Service{
		items:     st.ItemRepo(),
		reviews:   st.ReviewRepo(),
		samples:   st.SampleRepo(),
		events:    st.EventRepo(),
		users:     st,
		predictor: predictor,
		planner:   session.NewPlanner(session.DefaultSessionSize, 0),
		now:       time.Now,
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	return s
}

// RecordAttempt applies an answer to the item's review state, persists it,
// feeds the recall predictor and appends an attempt event.
func (s *Service) RecordAttempt(ctx context.Context, a Attempt) (*Result, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	at := a.At
	if at.IsZero() {
		at = s.now()
	}
	log := s.log.WithFields(logrus.Fields{"user": a.UserID, "item": a.ItemID})

	unlock := s.locks.Lock(a.UserID + "\x00" + a.ItemID)
	defer unlock()

	prev, err := s.reviews.Load(ctx, a.UserID, a.ItemID)
	if err != nil {
		return nil, fmt.Errorf("load review state: %w", err)
	}

	update := spacedrep.CalculateUpdate(prev, a.Correct, a.ResponseMs, at)
	if err := s.reviews.Save(ctx, a.UserID, a.ItemID, &update.State); err != nil {
		return nil, fmt.Errorf("save review state: %w", err)
	}

	res := &Result{
		Previous: prev,
		State:    update.State,
		Quality:  update.Quality,
	}
	res.TrainingScheduled = s.predictor.RecordAttempt(ctx, a.UserID, prev, a.Correct, at)

	event := &store.AttemptEvent{
		UserID:       a.UserID,
		ItemID:       a.ItemID,
		Correct:      a.Correct,
		ResponseMs:   a.ResponseMs,
		Quality:      update.Quality,
		IntervalDays: update.State.IntervalDays,
		AttemptedAt:  at,
	}
	if err := s.events.AppendAttempt(ctx, event); err != nil {
		log.WithError(err).Warn("failed to append attempt event")
	} else {
		res.Sequence = event.Sequence
	}

	res.ForgetInDays = s.predictor.PredictForgetInDays(ctx, a.UserID, &update.State, at)

	log.WithFields(logrus.Fields{
		"quality":  update.Quality,
		"interval": update.State.IntervalDays,
		"level":    update.State.Level,
	}).Debug("attempt recorded")
	return res, nil
}

// BuildSession ranks the deck's items for the user and plans the next session.
func (s *Service) BuildSession(ctx context.Context, userID, deckID string) (*session.Plan, error) {
	items, err := s.items.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	states, err := s.reviews.LoadMany(ctx, userID, lo.Map(items, func(it store.Item, _ int) string {
		return it.ID
	}))
	if err != nil {
		return nil, err
	}

	candidates := lo.Map(items, func(it store.Item, _ int) ranking.Candidate {
		return ranking.Candidate{ItemID: it.ID, Order: it.Order, State: states[it.ID]}
	})
	return s.planner.BuildPlan(userID, deckID, candidates, s.now())
}

// Forecast describes when an item is due and when it is likely forgotten.
type Forecast struct {
	ItemID       string                 `json:"item_id"`
	State        *spacedrep.ReviewState `json:"state,omitempty"`
	Status       spacedrep.ReviewStatus `json:"status,omitempty"`
	DueInDays    int                    `json:"due_in_days"`
	ForgetInDays int                    `json:"forget_in_days"`
	Recall       recall.UserInfo        `json:"recall"`
}

// Forecast returns the item's review forecast for the user.
func (s *Service) Forecast(ctx context.Context, userID, itemID string) (*Forecast, error) {
	state, err := s.reviews.Load(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	f := &Forecast{
		ItemID:       itemID,
		State:        state,
		ForgetInDays: s.predictor.PredictForgetInDays(ctx, userID, state, now),
		Recall:       s.predictor.Info(ctx, userID),
	}
	if state != nil {
		f.Status = state.Status(now)
		f.DueInDays = state.DaysUntilReview(now)
	}
	return f, nil
}

// DeleteUser removes all of the user's data and predictor state.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.predictor.Forget(userID)
	s.log.WithField("user", userID).Info("user data deleted")
	return nil
}
