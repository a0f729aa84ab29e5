package session

import (
	"time"
)

// PlanCategory represents the reason an item was included in the plan.
type PlanCategory string

const (
	CategoryDue      PlanCategory = "due"
	CategoryLearning PlanCategory = "learning"
	CategoryAhead    PlanCategory = "ahead"
	CategoryNew      PlanCategory = "new"
)

// PlanSlot is a single item in the session plan.
type PlanSlot struct {
	ItemID   string
	Order    int
	Score    float64
	Category PlanCategory
}

// Plan is the ordered list of items for a session.
type Plan struct {
	ID        string
	UserID    string
	DeckID    string
	CreatedAt time.Time
	Slots     []PlanSlot
}

// Count returns how many slots fall in the given category.
func (p *Plan) Count(c PlanCategory) int {
	n := 0
	for _, s := range p.Slots {
		if s.Category == c {
			n++
		}
	}
	return n
}

// ItemIDs returns the planned item IDs in presentation order.
func (p *Plan) ItemIDs() []string {
	ids := make([]string, len(p.Slots))
	for i, s := range p.Slots {
		ids[i] = s.ItemID
	}
	return ids
}

// DefaultSessionSize is the default number of items in a session plan.
const DefaultSessionSize = 20
