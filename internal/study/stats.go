package study

import (
	"context"
	"time"

	"github.com/abhisek/cardwise/internal/recall"
	"github.com/abhisek/cardwise/internal/spacedrep"
	"github.com/abhisek/cardwise/internal/store"
)

// Stats summarizes a user's review progress.
type Stats struct {
	UserID string `json:"user_id"`
	DeckID string `json:"deck_id,omitempty"`
	// TotalItems is the deck size, or the number of attempted items when no
	// deck is given.
	TotalItems    int             `json:"total_items"`
	Attempted     int             `json:"attempted"`
	New           int             `json:"new"`
	Due           int             `json:"due"`
	Mastered      int             `json:"mastered"`
	TotalReviews  int             `json:"total_reviews"`
	Accuracy      float64         `json:"accuracy"` // percentage
	ReviewedToday int             `json:"reviewed_today"`
	StreakDays    int             `json:"streak_days"`
	Recall        recall.UserInfo `json:"recall"`
}

// Stats computes the user's statistics, optionally restricted to a deck.
func (s *Service) Stats(ctx context.Context, userID, deckID string) (*Stats, error) {
	now := s.now()
	states, err := s.reviews.LoadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{UserID: userID, DeckID: deckID, TotalItems: len(states)}
	if deckID != "" {
		items, err := s.items.ListByDeck(ctx, deckID)
		if err != nil {
			return nil, err
		}
		inDeck := make(map[string]*spacedrep.ReviewState, len(items))
		for _, it := range items {
			if st, ok := states[it.ID]; ok {
				inDeck[it.ID] = st
			}
		}
		states = inDeck
		stats.TotalItems = len(items)
	}

	correct := 0
	for _, st := range states {
		stats.Attempted++
		stats.TotalReviews += st.Attempts()
		correct += st.CorrectCount
		if st.IsDue(now) {
			stats.Due++
		}
		if st.IsMastered() {
			stats.Mastered++
		}
	}
	stats.New = stats.TotalItems - stats.Attempted
	if stats.TotalReviews > 0 {
		stats.Accuracy = float64(correct) * 100 / float64(stats.TotalReviews)
	}

	times, err := s.events.AttemptTimes(ctx, userID)
	if err != nil {
		return nil, err
	}
	days := make(map[string]bool, len(times))
	today := now.Format(time.DateOnly)
	for _, t := range times {
		day := t.In(now.Location()).Format(time.DateOnly)
		days[day] = true
		if day == today {
			stats.ReviewedToday++
		}
	}
	stats.StreakDays = calculateStreak(days, now)
	stats.Recall = s.predictor.Info(ctx, userID)
	return stats, nil
}

// calculateStreak counts consecutive days with reviews ending today or
// yesterday. reviewDays is keyed by time.DateOnly.
func calculateStreak(reviewDays map[string]bool, today time.Time) int {
	check := today
	if !reviewDays[check.Format(time.DateOnly)] {
		check = check.AddDate(0, 0, -1)
		if !reviewDays[check.Format(time.DateOnly)] {
			return 0
		}
	}

	streak := 0
	for reviewDays[check.Format(time.DateOnly)] {
		streak++
		check = check.AddDate(0, 0, -1)
	}
	return streak
}

// Export is everything stored about one user.
type Export struct {
	UserID     string                            `json:"user_id"`
	ExportedAt time.Time                         `json:"exported_at"`
	States     map[string]*spacedrep.ReviewState `json:"states"`
	Samples    []recall.TrainingSample           `json:"samples"`
	Attempts   []store.AttemptEvent              `json:"attempts"`
}

// Export collects the user's review states, training samples and attempts.
func (s *Service) Export(ctx context.Context, userID string) (*Export, error) {
	states, err := s.reviews.LoadAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	samples, err := s.samples.LoadSamples(ctx, userID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.events.QueryAttempts(ctx, userID, store.QueryOpts{})
	if err != nil {
		return nil, err
	}
	return &Export{
		UserID:     userID,
		ExportedAt: s.now(),
		States:     states,
		Samples:    samples,
		Attempts:   attempts,
	}, nil
}
