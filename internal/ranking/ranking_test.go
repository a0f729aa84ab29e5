package ranking

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cardwise/internal/spacedrep"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestScore_NilState(t *testing.T) {
	assert.Equal(t, 0.0, Score(nil, now))
}

func TestScore(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name  string
		state spacedrep.ReviewState
		want  float64
	}{
		{
			name: "due untrained unknown history",
			state: spacedrep.ReviewState{
				NextReviewAt: now.Add(-day), Difficulty: 0.5,
			},
			// 40 + 3*8 + 0 + 0.5*12 + 0
			want: 70,
		},
		{
			name: "due exactly now",
			state: spacedrep.ReviewState{
				NextReviewAt: now, Difficulty: 0.5, Level: 3, CorrectCount: 4,
			},
			// 40 + 0 + 0 + 0 + 0
			want: 40,
		},
		{
			name: "due in five days",
			state: spacedrep.ReviewState{
				NextReviewAt: now.Add(5 * day), Difficulty: 0.5, Level: 1, CorrectCount: 3, IncorrectCount: 1,
				LastAttemptAt: now.Add(-2 * day),
			},
			// 15 + 16 + 0 + 3 + 0.8
			want: 34.8,
		},
		{
			name: "partial day rounds up",
			state: spacedrep.ReviewState{
				NextReviewAt: now.Add(time.Hour), Difficulty: 0.5, Level: 3, CorrectCount: 1,
			},
			// 19 + 0 + 0 + 0 + 0
			want: 19,
		},
		{
			name: "far future floors at zero",
			state: spacedrep.ReviewState{
				NextReviewAt: now.Add(40 * day), Difficulty: 1, Level: 3, IncorrectCount: 2,
			},
			// 0 + 0 + 9 + 12 + 0
			want: 21,
		},
		{
			name: "staleness clamps at thirty days",
			state: spacedrep.ReviewState{
				NextReviewAt: now.Add(-day), Difficulty: 0, Level: 2, CorrectCount: 1,
				LastAttemptAt: now.Add(-100 * day),
			},
			// 40 + 8 - 9 + 0 + 12
			want: 51,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(&tt.state, now), 1e-9)
		})
	}
}

func TestSort_OrdersByScoreThenOrderIndex(t *testing.T) {
	due := &spacedrep.ReviewState{NextReviewAt: now.Add(-time.Hour), Difficulty: 0.5}
	later := &spacedrep.ReviewState{NextReviewAt: now.Add(72 * time.Hour), Difficulty: 0.5, Level: 3, CorrectCount: 2}

	in := []Candidate{
		{ItemID: "new-b", Order: 4},
		{ItemID: "later", Order: 1, State: later},
		{ItemID: "due-2", Order: 3, State: due},
		{ItemID: "new-a", Order: 2},
		{ItemID: "due-1", Order: 0, State: due},
	}

	got := Sort(in, now)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ItemID
	}
	assert.Equal(t, []string{"due-1", "due-2", "later", "new-a", "new-b"}, ids)
	assert.Equal(t, "new-b", in[0].ItemID, "input must not be reordered")
}

func TestSort_IndependentOfInputOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	var candidates []Candidate
	for i := 0; i < 60; i++ {
		c := Candidate{ItemID: string(rune('a'+i%26)) + string(rune('A'+i/26)), Order: rng.IntN(20)}
		if rng.IntN(5) > 0 {
			c.State = &spacedrep.ReviewState{
				NextReviewAt:   now.Add(time.Duration(rng.IntN(240)-120) * time.Hour),
				LastAttemptAt:  now.Add(-time.Duration(rng.IntN(900)) * time.Hour),
				Difficulty:     float64(rng.IntN(11)) / 10,
				Level:          rng.IntN(4),
				CorrectCount:   rng.IntN(5),
				IncorrectCount: rng.IntN(5),
			}
		}
		candidates = append(candidates, c)
	}

	first := Sort(candidates, now)
	for i := 1; i < len(first); i++ {
		a, b := first[i-1], first[i]
		require.GreaterOrEqual(t, a.Score, b.Score)
		if a.Score == b.Score {
			require.LessOrEqual(t, a.Order, b.Order)
		}
	}

	shuffled := append([]Candidate(nil), candidates...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	second := Sort(shuffled, now)
	assert.Equal(t, Candidates(first), Candidates(second))
}

func TestSort_Empty(t *testing.T) {
	assert.Empty(t, Sort(nil, now))
}
