// Package ranking orders items for a review session.
package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/cardwise/internal/spacedrep"
)

// Score weights.
const (
	dueWeight        = 40.0
	upcomingWeight   = 20.0
	levelWeight      = 8.0
	difficultyWeight = 18.0
	errorWeight      = 12.0
	stalenessWeight  = 0.4
	maxStalenessDays = 30.0

	// unknownErrorRatio is the error ratio prior for items never attempted.
	unknownErrorRatio = 0.5
)

// Candidate is an item offered to the ranker.
type Candidate struct {
	ItemID string
	// Order is the item's display position; lower sorts first among equal scores.
	Order int
	// State is nil for items the user has never attempted.
	State *spacedrep.ReviewState
}

// Ranked is a candidate with its computed score.
type Ranked struct {
	Candidate
	Score float64
}

// Score returns the review priority of an item; higher is more urgent.
//
// A nil state scores 0, which places never-seen items after any attempted
// item with a positive score.
func Score(state *spacedrep.ReviewState, now time.Time) float64 {
	if state == nil {
		return 0
	}

	dueInDays := math.Ceil(state.NextReviewAt.Sub(now).Hours() / 24.0)
	var dueScore float64
	if dueInDays <= 0 {
		dueScore = dueWeight
	} else {
		dueScore = math.Max(0, upcomingWeight-dueInDays)
	}

	sinceDays := math.Min(math.Max(state.DaysSinceAttempt(now), 0), maxStalenessDays)

	errorRatio := unknownErrorRatio
	if total := state.Attempts(); total > 0 {
		errorRatio = float64(state.IncorrectCount) / float64(total)
	}

	return dueScore +
		float64(spacedrep.MaxLevel-state.Level)*levelWeight +
		(state.Difficulty-0.5)*difficultyWeight +
		errorRatio*errorWeight +
		sinceDays*stalenessWeight
}

// Sort returns the candidates ordered by descending score, ties broken by
// ascending Order and then by item ID. The input slice is not modified.
func Sort(candidates []Candidate, now time.Time) []Ranked {
	ranked := lo.Map(candidates, func(c Candidate, _ int) Ranked {
		return Ranked{Candidate: c, Score: Score(c.State, now)}
	})

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Order != ranked[j].Order {
			return ranked[i].Order < ranked[j].Order
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})
	return ranked
}

// Candidates strips scores, returning the ranked items in order.
func Candidates(ranked []Ranked) []Candidate {
	return lo.Map(ranked, func(r Ranked, _ int) Candidate { return r.Candidate })
}
