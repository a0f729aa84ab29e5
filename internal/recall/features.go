package recall

import (
	"math"

	"github.com/abhisek/cardwise/internal/spacedrep"
)

// FeatureCount is the length of every feature vector.
const FeatureCount = 6

// Normalization scales.
const (
	maxElapsedDays  = 60.0
	maxRepetitions  = 10.0
	responseScaleMs = spacedrep.ResponseScaleMs

	// neutralResponse stands in for a missing response time.
	neutralResponse = 0.5
)

// Feature indices.
const (
	FeatureElapsed = iota
	FeatureEase
	FeatureRepetitions
	FeatureDifficulty
	FeatureResponse
	FeatureLevel
)

// Features builds the normalized feature vector for recalling an item in
// the given state after elapsedDays without review. A nil state is the
// never-attempted default. Every component lies in [0,1].
func Features(state *spacedrep.ReviewState, elapsedDays float64) []float64 {
	rs := spacedrep.NewReviewState()
	if state != nil {
		rs = *state
	}

	response := neutralResponse
	if rs.LastResponseMs != nil {
		response = unit(float64(*rs.LastResponseMs) / responseScaleMs)
	}

	f := make([]float64, FeatureCount)
	f[FeatureElapsed] = unit(elapsedDays / maxElapsedDays)
	f[FeatureEase] = unit((rs.EaseFactor - spacedrep.MinEaseFactor) / (spacedrep.MaxEaseFactor - spacedrep.MinEaseFactor))
	f[FeatureRepetitions] = unit(float64(rs.Repetitions) / maxRepetitions)
	f[FeatureDifficulty] = unit(rs.Difficulty)
	f[FeatureResponse] = response
	f[FeatureLevel] = unit(float64(rs.Level) / spacedrep.MaxLevel)
	return f
}

func unit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
