package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/cardwise/internal/ranking"
	"github.com/abhisek/cardwise/internal/spacedrep"
)

// Planner builds a session plan from the current learner state.
type Planner interface {
	// BuildPlan creates a session plan.
	BuildPlan(userID, deckID string, candidates []ranking.Candidate, now time.Time) (*Plan, error)
}

// DefaultPlanner fills a session with the highest priority items.
type DefaultPlanner struct {
	// Size caps the number of slots. Zero means DefaultSessionSize.
	Size int
	// NewLimit caps never-attempted items per session. Zero means no cap.
	NewLimit int
}

// NewPlanner creates a new DefaultPlanner.
func NewPlanner(size, newLimit int) *DefaultPlanner {
	return &DefaultPlanner{Size: size, NewLimit: newLimit}
}

// BuildPlan ranks the candidates and keeps the first Size of them.
// Never-attempted items score zero, so they only fill slots left over after
// every attempted item with a positive score.
func (p *DefaultPlanner) BuildPlan(userID, deckID string, candidates []ranking.Candidate, now time.Time) (*Plan, error) {
	size := p.Size
	if size <= 0 {
		size = DefaultSessionSize
	}

	plan := &Plan{
		ID:        uuid.NewString(),
		UserID:    userID,
		DeckID:    deckID,
		CreatedAt: now,
	}

	newCount := 0
	for _, r := range ranking.Sort(candidates, now) {
		if len(plan.Slots) == size {
			break
		}
		category := categorize(r.State, now)
		if category == CategoryNew {
			if p.NewLimit > 0 && newCount >= p.NewLimit {
				continue
			}
			newCount++
		}
		plan.Slots = append(plan.Slots, PlanSlot{
			ItemID:   r.ItemID,
			Order:    r.Order,
			Score:    r.Score,
			Category: category,
		})
	}
	return plan, nil
}

// categorize returns the slot category for an item's review state.
func categorize(state *spacedrep.ReviewState, now time.Time) PlanCategory {
	switch {
	case state == nil:
		return CategoryNew
	case state.IsDue(now):
		return CategoryDue
	case !state.IsMastered():
		return CategoryLearning
	default:
		return CategoryAhead
	}
}
