package spacedrep

import (
	"fmt"
	"math"
	"time"
)

// ReviewState holds the spaced repetition state of one item for one user.
type ReviewState struct {
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"`
	NextReviewAt   time.Time `json:"next_review_at"`
	LastAttemptAt  time.Time `json:"last_attempt_at"`
	LastQuality    int       `json:"last_quality"`
	LastResponseMs *int      `json:"last_response_ms,omitempty"`
	Difficulty     float64   `json:"difficulty"`
	Level          int       `json:"level"`
	CorrectCount   int       `json:"correct_count"`
	IncorrectCount int       `json:"incorrect_count"`
}

// NewReviewState returns the state of an item that has never been attempted.
func NewReviewState() ReviewState {
	return ReviewState{
		EaseFactor: DefaultEaseFactor,
		Difficulty: DefaultDifficulty,
	}
}

// Attempts returns the total number of recorded attempts.
func (rs *ReviewState) Attempts() int {
	return rs.CorrectCount + rs.IncorrectCount
}

// IsDue returns true if the item is due for review (at or past the review date).
func (rs *ReviewState) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReviewAt)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (rs *ReviewState) OverdueDays(now time.Time) float64 {
	if now.Before(rs.NextReviewAt) {
		return 0
	}
	return now.Sub(rs.NextReviewAt).Hours() / 24.0
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (rs *ReviewState) DaysUntilReview(now time.Time) int {
	if rs.IsDue(now) {
		return 0
	}
	return int(math.Ceil(rs.NextReviewAt.Sub(now).Hours() / 24.0))
}

// DaysSinceAttempt returns the fractional days elapsed since the last attempt.
// Returns 0 when no attempt time is recorded or the clock went backwards.
func (rs *ReviewState) DaysSinceAttempt(now time.Time) float64 {
	if rs.LastAttemptAt.IsZero() || now.Before(rs.LastAttemptAt) {
		return 0
	}
	return now.Sub(rs.LastAttemptAt).Hours() / 24.0
}

// IsMastered reports whether the item reached the top level.
func (rs *ReviewState) IsMastered() bool {
	return rs.Level >= MaxLevel
}

// ReviewStatus describes an item's review status for display.
type ReviewStatus string

const (
	ReviewNotDue   ReviewStatus = "not_due"
	ReviewDue      ReviewStatus = "due"
	ReviewOverdue  ReviewStatus = "overdue"
	ReviewMastered ReviewStatus = "mastered"
)

// Status returns the review status for display. An item is overdue once it
// has waited more than half its interval past the review date.
func (rs *ReviewState) Status(now time.Time) ReviewStatus {
	if !rs.IsDue(now) {
		if rs.IsMastered() {
			return ReviewMastered
		}
		return ReviewNotDue
	}
	graceHours := float64(max(rs.IntervalDays, 1)) * 0.5 * 24.0
	threshold := rs.NextReviewAt.Add(time.Duration(graceHours * float64(time.Hour)))
	if now.After(threshold) {
		return ReviewOverdue
	}
	return ReviewDue
}

// Clone returns a deep copy.
func (rs *ReviewState) Clone() *ReviewState {
	if rs == nil {
		return nil
	}
	c := *rs
	if rs.LastResponseMs != nil {
		ms := *rs.LastResponseMs
		c.LastResponseMs = &ms
	}
	return &c
}

// Validate checks the stored invariants. Loaders use it to discard
// documents that were written by something other than CalculateUpdate.
func (rs *ReviewState) Validate() error {
	switch {
	case math.IsNaN(rs.EaseFactor) || rs.EaseFactor < MinEaseFactor || rs.EaseFactor > MaxEaseFactor:
		return fmt.Errorf("ease factor %v out of range", rs.EaseFactor)
	case rs.IntervalDays < 0:
		return fmt.Errorf("negative interval %d", rs.IntervalDays)
	case rs.Repetitions < 0:
		return fmt.Errorf("negative repetitions %d", rs.Repetitions)
	case rs.Repetitions > 0 && rs.IntervalDays < 1:
		return fmt.Errorf("interval %d with %d repetitions", rs.IntervalDays, rs.Repetitions)
	case rs.LastQuality < 0 || rs.LastQuality > QualityFast:
		return fmt.Errorf("quality %d out of range", rs.LastQuality)
	case rs.LastResponseMs != nil && *rs.LastResponseMs < 0:
		return fmt.Errorf("negative response time %d", *rs.LastResponseMs)
	case math.IsNaN(rs.Difficulty) || rs.Difficulty < 0 || rs.Difficulty > 1:
		return fmt.Errorf("difficulty %v out of range", rs.Difficulty)
	case rs.Level < 0 || rs.Level > MaxLevel:
		return fmt.Errorf("level %d out of range", rs.Level)
	case rs.CorrectCount < 0 || rs.IncorrectCount < 0:
		return fmt.Errorf("negative attempt counters")
	}
	return nil
}
