package spacedrep

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(v int) *int { return &v }

func TestComputeQuality(t *testing.T) {
	tests := []struct {
		name    string
		correct bool
		ms      *int
		want    int
	}{
		{"incorrect untimed", false, nil, 2},
		{"incorrect fast", false, ms(500), 2},
		{"correct untimed", true, nil, 4},
		{"correct instant", true, ms(0), 5},
		{"correct 2000ms", true, ms(2000), 5},
		{"correct 2001ms", true, ms(2001), 4},
		{"correct 5000ms", true, ms(5000), 4},
		{"correct 5001ms", true, ms(5001), 3},
		{"correct 9000ms", true, ms(9000), 3},
		{"correct very slow", true, ms(60000), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeQuality(tt.correct, tt.ms))
		})
	}
}

func TestCalculateUpdate_FirstCorrectFastAttempt(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	u := CalculateUpdate(nil, true, ms(1500), now)

	assert.Equal(t, 5, u.Quality)
	assert.Equal(t, 1, u.State.Repetitions)
	assert.Equal(t, 1, u.State.IntervalDays)
	assert.Greater(t, u.State.EaseFactor, DefaultEaseFactor)
	assert.LessOrEqual(t, u.State.EaseFactor, MaxEaseFactor)
	assert.True(t, u.State.NextReviewAt.Equal(now.AddDate(0, 0, 1)))
	assert.True(t, u.State.LastAttemptAt.Equal(now))
	assert.Equal(t, 1, u.State.Level)
	assert.Equal(t, 1, u.State.CorrectCount)
	assert.Equal(t, 0, u.State.IncorrectCount)
	require.NotNil(t, u.State.LastResponseMs)
	assert.Equal(t, 1500, *u.State.LastResponseMs)
	assert.InDelta(t, 0.4575, u.State.Difficulty, 1e-9)
}

func TestCalculateUpdate_ThirdRepetitionGrowsByEase(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := &ReviewState{Repetitions: 2, IntervalDays: 6, EaseFactor: 2.5, Difficulty: 0.5}

	u := CalculateUpdate(prev, true, ms(3000), now)

	assert.Equal(t, 4, u.Quality)
	assert.Equal(t, 3, u.State.Repetitions)
	assert.Equal(t, 15, u.State.IntervalDays)
	assert.InDelta(t, 2.5, u.State.EaseFactor, 1e-9)
	assert.True(t, u.State.NextReviewAt.Equal(now.AddDate(0, 0, 15)))
}

func TestCalculateUpdate_SecondRepetitionIsSixDays(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := &ReviewState{Repetitions: 1, IntervalDays: 1, EaseFactor: 2.5, Difficulty: 0.5}

	u := CalculateUpdate(prev, true, nil, now)

	assert.Equal(t, 2, u.State.Repetitions)
	assert.Equal(t, 6, u.State.IntervalDays)
}

func TestCalculateUpdate_FailureResets(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := &ReviewState{Repetitions: 5, IntervalDays: 30, EaseFactor: 2.0, Difficulty: 0.5, Level: 3, CorrectCount: 5}

	u := CalculateUpdate(prev, false, nil, now)

	assert.Equal(t, 2, u.Quality)
	assert.Equal(t, 0, u.State.Repetitions)
	assert.Equal(t, 1, u.State.IntervalDays)
	assert.Less(t, u.State.EaseFactor, 2.0)
	assert.GreaterOrEqual(t, u.State.EaseFactor, MinEaseFactor)
	assert.InDelta(t, 1.68, u.State.EaseFactor, 1e-9)
	assert.Equal(t, 0, u.State.Level)
	assert.Equal(t, 1, u.State.IncorrectCount)
	assert.Equal(t, 5, u.State.CorrectCount)
	assert.InDelta(t, 0.62, u.State.Difficulty, 1e-9)
}

func TestCalculateUpdate_DoesNotMutatePrevious(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := &ReviewState{Repetitions: 2, IntervalDays: 6, EaseFactor: 2.5, Difficulty: 0.5, LastResponseMs: ms(800)}
	snapshot := *prev.Clone()

	_ = CalculateUpdate(prev, true, ms(4000), now)

	assert.Equal(t, snapshot.Repetitions, prev.Repetitions)
	assert.Equal(t, snapshot.IntervalDays, prev.IntervalDays)
	assert.Equal(t, 800, *prev.LastResponseMs)
}

func TestCalculateUpdate_Deterministic(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := &ReviewState{Repetitions: 3, IntervalDays: 15, EaseFactor: 2.2, Difficulty: 0.4, Level: 2}

	a := CalculateUpdate(prev, true, ms(6100), now)
	b := CalculateUpdate(prev, true, ms(6100), now)

	assert.Equal(t, a, b)
}

func TestCalculateUpdate_LevelCapsAtMax(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var rs *ReviewState
	for i := 0; i < 6; i++ {
		u := CalculateUpdate(rs, true, nil, now)
		rs = &u.State
		now = rs.NextReviewAt
	}
	assert.Equal(t, MaxLevel, rs.Level)
}

func TestCalculateUpdate_NormalizesStoredValues(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := &ReviewState{EaseFactor: 0, Difficulty: 4, Level: 9}

	u := CalculateUpdate(prev, true, nil, now)

	assert.InDelta(t, 2.5, u.State.EaseFactor, 1e-9)
	assert.LessOrEqual(t, u.State.Difficulty, 1.0)
	assert.Equal(t, MaxLevel, u.State.Level)
}

func TestUpdateDifficulty(t *testing.T) {
	tests := []struct {
		name    string
		start   float64
		correct bool
		ms      *int
		want    float64
	}{
		{"correct untimed", 0.5, true, nil, 0.45},
		{"incorrect untimed", 0.5, false, nil, 0.62},
		{"correct slow saturates", 0.5, true, ms(24000), 0.51},
		{"correct half scale", 0.5, true, ms(6000), 0.48},
		{"floor", 0.01, true, nil, 0},
		{"ceiling", 0.95, false, ms(12000), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, UpdateDifficulty(tt.start, tt.correct, tt.ms), 1e-9)
		})
	}
}

// Random attempt sequences must keep every bounded field in range.
func TestCalculateUpdate_InvariantsHoldOverSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for run := 0; run < 200; run++ {
		var rs *ReviewState
		for step := 0; step < 60; step++ {
			correct := rng.IntN(3) > 0
			var resp *int
			if rng.IntN(4) > 0 {
				resp = ms(rng.IntN(20000))
			}
			now = now.Add(time.Duration(rng.IntN(72)) * time.Hour)
			u := CalculateUpdate(rs, correct, resp, now)

			require.GreaterOrEqual(t, u.State.EaseFactor, MinEaseFactor)
			require.LessOrEqual(t, u.State.EaseFactor, MaxEaseFactor)
			require.GreaterOrEqual(t, u.State.Difficulty, 0.0)
			require.LessOrEqual(t, u.State.Difficulty, 1.0)
			require.GreaterOrEqual(t, u.State.Level, 0)
			require.LessOrEqual(t, u.State.Level, MaxLevel)
			require.GreaterOrEqual(t, u.Quality, 0)
			require.LessOrEqual(t, u.Quality, 5)
			if u.Quality < PassingQuality {
				require.Equal(t, 0, u.State.Repetitions)
				require.Equal(t, 1, u.State.IntervalDays)
			}
			if u.State.Repetitions > 0 {
				require.GreaterOrEqual(t, u.State.IntervalDays, 1)
			}
			require.NoError(t, u.State.Validate())
			rs = &u.State
		}
	}
}

func TestCalculateUpdate_RepeatedExtremesStayClamped(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var rs *ReviewState
	for i := 0; i < 50; i++ {
		u := CalculateUpdate(rs, true, ms(100), now)
		rs = &u.State
	}
	assert.Equal(t, MaxEaseFactor, rs.EaseFactor)

	for i := 0; i < 50; i++ {
		u := CalculateUpdate(rs, false, ms(30000), now)
		rs = &u.State
	}
	assert.Equal(t, MinEaseFactor, rs.EaseFactor)
	assert.Equal(t, 1.0, rs.Difficulty)
}

// A long run of fast correct answers must keep the review date encodable.
func TestCalculateUpdate_LongStreakCapsInterval(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var rs *ReviewState
	for i := 0; i < 200; i++ {
		u := CalculateUpdate(rs, true, ms(1000), now)
		require.GreaterOrEqual(t, u.State.IntervalDays, 1)
		require.LessOrEqual(t, u.State.IntervalDays, MaxIntervalDays)
		_, err := json.Marshal(u.State)
		require.NoError(t, err, "attempt %d", i+1)
		rs = &u.State
	}
	assert.Equal(t, MaxIntervalDays, rs.IntervalDays)
	assert.Equal(t, now.AddDate(0, 0, MaxIntervalDays), rs.NextReviewAt)
}

func TestCalculateUpdate_ClampsStoredOversizedInterval(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := &ReviewState{EaseFactor: 2.5, Repetitions: 9, IntervalDays: 5_000_000}

	u := CalculateUpdate(prev, true, ms(1000), now)
	assert.Equal(t, MaxIntervalDays, u.State.IntervalDays)
}
