package recall

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	// ErrModelUnavailable is returned when no classifier backend can serve.
	ErrModelUnavailable = errors.New("recall model unavailable")

	// ErrFeatureMismatch is returned for feature vectors of the wrong length.
	ErrFeatureMismatch = errors.New("feature count mismatch")

	// ErrNoSamples is returned when training is asked to fit an empty set.
	ErrNoSamples = errors.New("no training samples")
)

// Model is a binary classifier estimating the probability that an item is
// recalled correctly.
type Model interface {
	// Train fits the model on samples. A model is trained at most once.
	Train(ctx context.Context, samples []TrainingSample) error
	// Predict returns the recall probability for a feature vector.
	Predict(features []float64) (float64, error)
	// Dispose releases the model. Predict fails afterwards.
	Dispose()
}

// ModelFactory creates an untrained model for one training run.
type ModelFactory func() Model

// ModelDecoder restores a trained model from the bytes its MarshalBinary
// produced.
type ModelDecoder func(data []byte) (Model, error)

// StoredModel is a trained model in serialized form.
type StoredModel struct {
	Data      []byte
	TrainedAt time.Time
	Runs      int
}

// ModelStore persists each user's trained model. Models that implement
// encoding.BinaryMarshaler are saved after every successful run.
type ModelStore interface {
	// LoadModel returns the user's model, or nil if none is stored.
	LoadModel(ctx context.Context, userID string) (*StoredModel, error)
	SaveModel(ctx context.Context, userID string, m StoredModel) error
}

// NopModelFactory creates models that refuse to train, leaving every user on
// the heuristic forecast.
func NopModelFactory() Model {
	return nopModel{}
}

type nopModel struct{}

func (nopModel) Train(context.Context, []TrainingSample) error { return ErrModelUnavailable }
func (nopModel) Predict([]float64) (float64, error) { return 0, ErrModelUnavailable }
func (nopModel) Dispose() {}

// HeuristicForgetDays is the forecast used without a trained model: a little
// under the current interval, never less than one day.
func HeuristicForgetDays(intervalDays int) int {
	return max(1, int(math.Round(float64(max(1, intervalDays))*0.9)))
}
