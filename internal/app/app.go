// Package app wires configuration, storage, the recall predictor and the
// study service into one value the commands share.
package app

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/cardwise/internal/config"
	"github.com/abhisek/cardwise/internal/recall"
	"github.com/abhisek/cardwise/internal/session"
	"github.com/abhisek/cardwise/internal/store"
	"github.com/abhisek/cardwise/internal/study"
)

// Options configures New.
type Options struct {
	Config *config.Config
	// DBPath is the SQLite DSN. Empty means Config.DB.Path, then
	// store.DefaultDBPath.
	DBPath string
	// LogOutput receives log lines. Nil means io.Discard.
	LogOutput io.Writer
	// SessionSize overrides Config.Session.Size when positive.
	SessionSize int
}

// App holds the opened collaborators. Close releases them.
type App struct {
	Config    *config.Config
	Log       *logrus.Logger
	Store     *store.Store
	Predictor *recall.Predictor
	Study     *study.Service
}

// New opens the store and builds the services.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	out := opts.LogOutput
	if out == nil {
		out = io.Discard
	}
	logger, err := config.NewLogger(cfg.Log, out)
	if err != nil {
		return nil, err
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = cfg.DB.Path
	}
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	st, err := store.Open(dbPath, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	recallOpts := []recall.Option{
		recall.WithSampleStore(st.SampleRepo()),
		recall.WithLogger(logger),
	}
	if cfg.Recall.Enabled {
		recallOpts = append(recallOpts,
			recall.WithModelFactory(recall.NewMLPFactory(cfg.Recall.Predictor())),
			recall.WithModelStore(st.ModelRepo(), recall.NewMLPDecoder(cfg.Recall.Predictor())),
		)
	}
	predictor, err := recall.NewPredictor(cfg.Recall.Predictor(), recallOpts...)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("create predictor: %w", err)
	}

	size := cfg.Session.Size
	if opts.SessionSize > 0 {
		size = opts.SessionSize
	}
	svc := study.NewService(st, predictor,
		study.WithPlanner(session.NewPlanner(size, cfg.Session.NewLimit)),
		study.WithLogger(logger),
	)

	logger.WithField("db", dbPath).Debug("app initialized")
	return &App{
		Config:    cfg,
		Log:       logger,
		Store:     st,
		Predictor: predictor,
		Study:     svc,
	}, nil
}

// Close waits for queued training runs, which persist their models, and
// closes the store.
func (a *App) Close() error {
	a.Predictor.Close()
	return a.Store.Close()
}
