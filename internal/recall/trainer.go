package recall

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// trainQueueSize bounds jobs waiting for a worker.
const trainQueueSize = 64

// Trainer runs training jobs on a fixed pool of workers with at most one job
// per user queued or running at a time.
type Trainer struct {
	factory ModelFactory
	log     logrus.FieldLogger

	jobs chan trainJob
	wg   sync.WaitGroup

	mu      sync.Mutex
	idle    *sync.Cond
	pending map[string]struct{}
	closed  bool
}

type trainJob struct {
	userID  string
	samples []TrainingSample
	done    func(Model)
}

// NewTrainer starts workers goroutines that build models with factory.
func NewTrainer(factory ModelFactory, workers int, log logrus.FieldLogger) *Trainer {
	if factory == nil {
		factory = NopModelFactory
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	t := &Trainer{
		factory: factory,
		log:     log,
		jobs:    make(chan trainJob, trainQueueSize),
		pending: make(map[string]struct{}),
	}
	t.idle = sync.NewCond(&t.mu)

	t.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go t.processLoop()
	}
	return t
}

// Schedule queues a training run for userID unless one is already pending.
// done receives the trained model; it is not called when training fails.
// Schedule reports whether a run was queued.
func (t *Trainer) Schedule(userID string, samples []TrainingSample, done func(Model)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	if _, ok := t.pending[userID]; ok {
		return false
	}

	select {
	case t.jobs <- trainJob{userID: userID, samples: samples, done: done}:
		t.pending[userID] = struct{}{}
		return true
	default:
		t.log.WithField("user", userID).Warn("training queue full, skipping run")
		return false
	}
}

// Pending reports whether a run for userID is queued or in progress.
func (t *Trainer) Pending(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[userID]
	return ok
}

// Wait blocks until no run is queued or in progress.
func (t *Trainer) Wait() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for len(t.pending) > 0 {
		t.idle.Wait()
	}
}

// Close stops accepting runs, lets queued runs finish and stops the workers.
func (t *Trainer) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.jobs)
	t.mu.Unlock()

	t.wg.Wait()
}

func (t *Trainer) processLoop() {
	defer t.wg.Done()
	for job := range t.jobs {
		t.run(job)
	}
}

func (t *Trainer) run(job trainJob) {
	log := t.log.WithFields(logrus.Fields{"user": job.userID, "samples": len(job.samples)})
	defer t.finish(job.userID)

	start := time.Now()
	model, err := t.train(job.samples)
	if errors.Is(err, ErrModelUnavailable) {
		log.Debug("no recall model backend")
		return
	}
	if err != nil {
		log.WithError(err).Warn("recall training failed")
		return
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debug("recall model trained")
	job.done(model)
}

func (t *Trainer) train(samples []TrainingSample) (model Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("training panicked: %v", r)
		}
		if err != nil && model != nil {
			model.Dispose()
			model = nil
		}
	}()
	model = t.factory()
	err = model.Train(context.Background(), samples)
	return model, err
}

func (t *Trainer) finish(userID string) {
	t.mu.Lock()
	delete(t.pending, userID)
	if len(t.pending) == 0 {
		t.idle.Broadcast()
	}
	t.mu.Unlock()
}
