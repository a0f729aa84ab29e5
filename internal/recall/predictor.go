// Package recall forecasts how many days a learner will keep an item in
// memory, using a per-user classifier trained in the background on the
// learner's own attempt history.
package recall

import (
	"context"
	"encoding"
	"fmt"
	"io"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/cardwise/internal/spacedrep"
)

// Status describes where a user is in the training lifecycle.
type Status string

const (
	StatusUntrained  Status = "untrained"
	StatusCollecting Status = "collecting"
	StatusTraining   Status = "training"
	StatusTrained    Status = "trained"
	StatusRetraining Status = "retraining"
)

// SampleStore persists each user's sample window.
type SampleStore interface {
	LoadSamples(ctx context.Context, userID string) ([]TrainingSample, error)
	SaveSamples(ctx context.Context, userID string, samples []TrainingSample) error
}

// UserInfo is a snapshot of a user's predictor state.
type UserInfo struct {
	Status    Status    `json:"status"`
	Samples   int       `json:"samples"`
	TrainedAt time.Time `json:"trained_at,omitzero"`
	Runs      int       `json:"runs"`
}

// Predictor records attempts, schedules training and forecasts forgetting.
// It is safe for concurrent use.
type Predictor struct {
	cfg     Config
	store   SampleStore
	models  ModelStore
	decode  ModelDecoder
	factory ModelFactory
	log     logrus.FieldLogger

	trainer *Trainer
	users   *lru.Cache[string, *userState]
	loads   singleflight.Group
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithSampleStore persists samples through s.
func WithSampleStore(s SampleStore) Option {
	return func(p *Predictor) { p.store = s }
}

// WithModelStore persists trained models through s and restores them with
// decode when a user is loaded.
func WithModelStore(s ModelStore, decode ModelDecoder) Option {
	return func(p *Predictor) {
		p.models = s
		p.decode = decode
	}
}

// WithModelFactory sets the classifier backend. Without it every forecast
// uses the heuristic.
func WithModelFactory(f ModelFactory) Option {
	return func(p *Predictor) { p.factory = f }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Predictor) { p.log = l }
}

// NewPredictor creates a Predictor and starts its training workers.
func NewPredictor(cfg Config, opts ...Option) (*Predictor, error) {
	p := &Predictor{cfg: cfg.withDefaults(), factory: NopModelFactory}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l
	}

	users, err := lru.NewWithEvict(p.cfg.CacheSize, func(_ string, u *userState) {
		u.evict()
	})
	if err != nil {
		return nil, err
	}
	p.users = users
	p.trainer = NewTrainer(p.factory, p.cfg.Workers, p.log)
	return p, nil
}

// RecordAttempt turns an attempt into a training sample and schedules a
// training run once enough samples exist and none is pending. prev is the
// item's state before the attempt. It reports whether a run was scheduled.
// Persistence failures are logged, never returned. When the user's stored
// samples cannot be read the attempt is dropped rather than overwriting them.
func (p *Predictor) RecordAttempt(ctx context.Context, userID string, prev *spacedrep.ReviewState, correct bool, at time.Time) bool {
	elapsed := 0.0
	if prev != nil {
		elapsed = prev.DaysSinceAttempt(at)
	}
	label := 0
	if correct {
		label = 1
	}
	sample := TrainingSample{Features: Features(prev, elapsed), Label: label, Timestamp: at}

	u, err := p.user(ctx, userID)
	if err != nil {
		p.log.WithError(err).WithField("user", userID).Warn("training samples unavailable, attempt not recorded")
		return false
	}

	// Saves are ordered per user so an older window never overwrites a newer one.
	u.saveMu.Lock()
	u.mu.Lock()
	u.samples.Append(sample)
	snapshot := u.samples.Samples()
	u.mu.Unlock()
	if p.store != nil {
		if err := p.store.SaveSamples(ctx, userID, snapshot); err != nil {
			p.log.WithError(err).WithField("user", userID).Warn("failed to save training samples")
		}
	}
	u.saveMu.Unlock()

	if len(snapshot) < p.cfg.MinTrainSamples {
		return false
	}
	return p.schedule(userID, u, snapshot)
}

// PredictForgetInDays returns the number of days from now until the item's
// predicted recall probability drops below one half, searching up to the
// configured horizon. Without a usable model it falls back to
// HeuristicForgetDays.
func (p *Predictor) PredictForgetInDays(ctx context.Context, userID string, state *spacedrep.ReviewState, now time.Time) int {
	heuristic := 0
	if state != nil {
		heuristic = state.IntervalDays
	}

	u, err := p.user(ctx, userID)
	if err != nil {
		p.log.WithError(err).WithField("user", userID).Warn("recall state unavailable")
		return HeuristicForgetDays(heuristic)
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.model == nil {
		return HeuristicForgetDays(heuristic)
	}

	since := 0.0
	if state != nil {
		since = state.DaysSinceAttempt(now)
	}
	for d := 0; d <= p.cfg.HorizonDays; d++ {
		prob, err := u.model.Predict(Features(state, since+float64(d)))
		if err != nil {
			p.log.WithError(err).WithField("user", userID).Warn("recall prediction failed")
			return HeuristicForgetDays(heuristic)
		}
		if prob < forgetThreshold {
			return d
		}
	}
	return p.cfg.HorizonDays
}

// Info returns the user's training lifecycle snapshot.
func (p *Predictor) Info(ctx context.Context, userID string) UserInfo {
	u, err := p.user(ctx, userID)
	if err != nil {
		p.log.WithError(err).WithField("user", userID).Warn("recall state unavailable")
		return UserInfo{Status: StatusUntrained}
	}
	pending := p.trainer.Pending(userID)

	u.mu.RLock()
	defer u.mu.RUnlock()
	info := UserInfo{Samples: u.samples.Len(), TrainedAt: u.trainedAt, Runs: u.runs}
	switch {
	case u.model != nil && pending:
		info.Status = StatusRetraining
	case u.model != nil:
		info.Status = StatusTrained
	case pending:
		info.Status = StatusTraining
	case info.Samples > 0:
		info.Status = StatusCollecting
	default:
		info.Status = StatusUntrained
	}
	return info
}

// Forget drops the user's in-memory state and model. Persisted samples are
// left to the caller.
func (p *Predictor) Forget(userID string) {
	p.users.Remove(userID)
}

// Wait blocks until every scheduled training run has finished.
func (p *Predictor) Wait() {
	p.trainer.Wait()
}

// Close finishes queued runs, stops the workers and disposes every model.
func (p *Predictor) Close() {
	p.trainer.Close()
	p.users.Purge()
}

// user returns the cached state for userID, loading it on a miss.
// Concurrent misses for one user share a single load. A failed load is not
// cached, so the next call retries it.
func (p *Predictor) user(ctx context.Context, userID string) (*userState, error) {
	if u, ok := p.users.Get(userID); ok {
		return u, nil
	}
	v, err, _ := p.loads.Do(userID, func() (any, error) {
		if u, ok := p.users.Get(userID); ok {
			return u, nil
		}
		u, err := p.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		p.users.Add(userID, u)
		p.resume(userID, u)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*userState), nil
}

// load reads the user's persisted samples and model. Malformed samples are
// dropped; an unreadable model is discarded so the user falls back to the
// heuristic until the next run.
func (p *Predictor) load(ctx context.Context, userID string) (*userState, error) {
	log := p.log.WithField("user", userID)
	u := newUserState(p.cfg.MaxSamples)

	if p.store != nil {
		samples, err := p.store.LoadSamples(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load training samples: %w", err)
		}
		valid := ValidSamples(samples)
		if dropped := len(samples) - len(valid); dropped > 0 {
			log.WithField("dropped", dropped).Warn("dropped malformed training samples")
		}
		u.samples.Load(valid)
	}

	if p.models != nil && p.decode != nil {
		stored, err := p.models.LoadModel(ctx, userID)
		switch {
		case err != nil:
			log.WithError(err).Warn("failed to load recall model")
		case stored != nil:
			m, err := p.decode(stored.Data)
			if err != nil {
				log.WithError(err).Warn("discarding unreadable recall model")
				break
			}
			u.model = m
			u.trainedAt = stored.TrainedAt
			u.runs = stored.Runs
		}
	}
	return u, nil
}

// resume schedules training for a freshly loaded user that already has
// enough samples but no model.
func (p *Predictor) resume(userID string, u *userState) {
	u.mu.RLock()
	ready := u.model == nil && u.samples.Len() >= p.cfg.MinTrainSamples
	snapshot := u.samples.Samples()
	u.mu.RUnlock()
	if ready {
		p.schedule(userID, u, snapshot)
	}
}

func (p *Predictor) schedule(userID string, u *userState, samples []TrainingSample) bool {
	return p.trainer.Schedule(userID, samples, func(m Model) {
		p.install(userID, u, m)
	})
}

// install makes m the user's model and persists it when possible.
func (p *Predictor) install(userID string, u *userState, m Model) {
	log := p.log.WithField("user", userID)

	var data []byte
	if bm, ok := m.(encoding.BinaryMarshaler); ok && p.models != nil {
		var err error
		if data, err = bm.MarshalBinary(); err != nil {
			log.WithError(err).Warn("failed to encode recall model")
			data = nil
		}
	}

	at := time.Now()
	runs, ok := u.install(m, at)
	if !ok || data == nil {
		return
	}
	if err := p.models.SaveModel(context.Background(), userID, StoredModel{Data: data, TrainedAt: at, Runs: runs}); err != nil {
		log.WithError(err).Warn("failed to save recall model")
	}
}

type userState struct {
	// saveMu orders sample persistence; it is taken before mu.
	saveMu    sync.Mutex
	mu        sync.RWMutex
	samples   *SampleBuffer
	model     Model
	trainedAt time.Time
	runs      int
	evicted   bool
}

func newUserState(capacity int) *userState {
	return &userState{samples: NewSampleBuffer(capacity)}
}

// install swaps in a freshly trained model and disposes the previous one,
// returning the run count. A state evicted while training discards the new
// model instead and reports false.
func (u *userState) install(m Model, at time.Time) (int, bool) {
	u.mu.Lock()
	if u.evicted {
		u.mu.Unlock()
		m.Dispose()
		return 0, false
	}
	old := u.model
	u.model = m
	u.trainedAt = at
	u.runs++
	runs := u.runs
	u.mu.Unlock()

	if old != nil {
		old.Dispose()
	}
	return runs, true
}

func (u *userState) evict() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.evicted = true
	if u.model != nil {
		u.model.Dispose()
		u.model = nil
	}
}
