// Package spacedrep implements the review scheduler: an SM-2 variant that
// also tracks a continuous difficulty estimate and a coarse mastery level.
package spacedrep

import (
	"math"
	"time"
)

// Update is the result of scheduling one attempt.
type Update struct {
	State   ReviewState
	Quality int
}

// ComputeQuality maps an attempt to an SM-2 quality score in [0,5].
// Incorrect answers score 2 rather than 0 so that a wrong attempt lowers the
// ease factor moderately. A nil responseMs means no timing information.
func ComputeQuality(correct bool, responseMs *int) int {
	if !correct {
		return QualityIncorrect
	}
	if responseMs == nil {
		return QualityGood
	}
	ms := *responseMs
	switch {
	case ms <= FastResponseMs:
		return QualityFast
	case ms <= GoodResponseMs:
		return QualityGood
	case ms <= SlowResponseMs:
		return QualitySlow
	default:
		// Slower than SlowResponseMs still counts as a pass at quality 3.
		return QualitySlow
	}
}

// CalculateUpdate computes the state that follows prev after one attempt at
// now. A nil prev is treated as a never-attempted item. It does not modify
// prev and has no hidden state, so equal inputs give equal outputs.
//
// Callers must serialize updates for the same item: each call reads prev
// and the caller stores the result.
func CalculateUpdate(prev *ReviewState, correct bool, responseMs *int, now time.Time) Update {
	next := normalize(prev)
	quality := ComputeQuality(correct, responseMs)

	if quality < PassingQuality {
		next.Repetitions = 0
		next.IntervalDays = FirstIntervalDays
	} else {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.IntervalDays = FirstIntervalDays
		case 2:
			next.IntervalDays = SecondIntervalDays
		default:
			grown := math.Round(float64(max(next.IntervalDays, 1)) * next.EaseFactor)
			next.IntervalDays = max(1, int(math.Min(grown, MaxIntervalDays)))
		}
	}

	q := float64(5 - quality)
	next.EaseFactor = clamp(next.EaseFactor+0.1-q*(0.08+q*0.02), MinEaseFactor, MaxEaseFactor)

	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	next.LastAttemptAt = now
	next.LastQuality = quality
	if responseMs != nil {
		ms := *responseMs
		next.LastResponseMs = &ms
	}
	next.Difficulty = UpdateDifficulty(next.Difficulty, correct, responseMs)

	if correct {
		next.CorrectCount++
		next.Level = min(next.Level+1, MaxLevel)
	} else {
		next.IncorrectCount++
		next.Level = 0
	}

	return Update{State: next, Quality: quality}
}

// UpdateDifficulty moves the difficulty estimate after an attempt. Slow
// responses raise difficulty even when the answer was correct.
func UpdateDifficulty(difficulty float64, correct bool, responseMs *int) float64 {
	if correct {
		difficulty -= correctStep
	} else {
		difficulty += incorrectStep
	}
	if responseMs != nil {
		difficulty += math.Min(1, float64(*responseMs)/ResponseScaleMs) * slowResponseStep
	}
	return clamp(difficulty, 0, 1)
}

// normalize returns a copy of prev with defaults applied and stored values
// pulled back into range.
func normalize(prev *ReviewState) ReviewState {
	if prev == nil {
		return NewReviewState()
	}
	rs := *prev.Clone()
	if rs.EaseFactor <= 0 || math.IsNaN(rs.EaseFactor) {
		rs.EaseFactor = DefaultEaseFactor
	}
	rs.EaseFactor = clamp(rs.EaseFactor, MinEaseFactor, MaxEaseFactor)
	if math.IsNaN(rs.Difficulty) {
		rs.Difficulty = DefaultDifficulty
	}
	rs.Difficulty = clamp(rs.Difficulty, 0, 1)
	rs.IntervalDays = min(max(rs.IntervalDays, 0), MaxIntervalDays)
	rs.Repetitions = max(rs.Repetitions, 0)
	rs.Level = min(max(rs.Level, 0), MaxLevel)
	rs.CorrectCount = max(rs.CorrectCount, 0)
	rs.IncorrectCount = max(rs.IncorrectCount, 0)
	return rs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
