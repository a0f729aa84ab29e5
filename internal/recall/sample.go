package recall

import (
	"fmt"
	"math"
	"time"
)

// TrainingSample is one labelled attempt: the item's features before the
// attempt and whether it was answered correctly.
type TrainingSample struct {
	Features  []float64 `json:"features"`
	Label     int       `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate reports whether the sample can be fed to a model.
func (s TrainingSample) Validate() error {
	if len(s.Features) != FeatureCount {
		return fmt.Errorf("%w: got %d features, want %d", ErrFeatureMismatch, len(s.Features), FeatureCount)
	}
	for i, v := range s.Features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("feature %d is not finite", i)
		}
	}
	if s.Label != 0 && s.Label != 1 {
		return fmt.Errorf("label %d is not 0 or 1", s.Label)
	}
	return nil
}

// ValidSamples returns the samples that pass Validate, in their original order.
func ValidSamples(samples []TrainingSample) []TrainingSample {
	out := make([]TrainingSample, 0, len(samples))
	for _, s := range samples {
		if s.Validate() == nil {
			out = append(out, s)
		}
	}
	return out
}

// SampleBuffer keeps the newest samples up to a fixed capacity.
// It is not safe for concurrent use.
type SampleBuffer struct {
	buf   []TrainingSample
	start int
	size  int
}

// NewSampleBuffer creates a buffer holding at most capacity samples.
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity <= 0 {
		capacity = DefaultMaxSamples
	}
	return &SampleBuffer{buf: make([]TrainingSample, capacity)}
}

// Append adds a sample, evicting the oldest when full.
func (b *SampleBuffer) Append(s TrainingSample) {
	capacity := len(b.buf)
	if b.size < capacity {
		b.buf[(b.start+b.size)%capacity] = s
		b.size++
		return
	}
	b.buf[b.start] = s
	b.start = (b.start + 1) % capacity
}

// Load appends samples in order. Only the newest ones survive if there are
// more than the capacity.
func (b *SampleBuffer) Load(samples []TrainingSample) {
	for _, s := range samples {
		b.Append(s)
	}
}

// Len returns the number of retained samples.
func (b *SampleBuffer) Len() int {
	return b.size
}

// Cap returns the capacity.
func (b *SampleBuffer) Cap() int {
	return len(b.buf)
}

// Samples returns a copy of the retained samples, oldest first.
func (b *SampleBuffer) Samples() []TrainingSample {
	out := make([]TrainingSample, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.buf[(b.start+i)%len(b.buf)]
	}
	return out
}
