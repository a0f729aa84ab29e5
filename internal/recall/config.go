package recall

// Defaults.
const (
	DefaultMinTrainSamples = 50
	DefaultMaxSamples      = 800
	DefaultEpochs          = 30
	DefaultBatchSize       = 32
	DefaultLearningRate    = 0.01
	DefaultHorizonDays     = 60
	DefaultCacheSize       = 256
	DefaultWorkers         = 2
	DefaultSeed            = 42

	// forgetThreshold is the recall probability below which an item counts
	// as forgotten.
	forgetThreshold = 0.5
)

// Config controls sample retention, training and forecasting.
type Config struct {
	// MinTrainSamples is the sample count at which training starts.
	MinTrainSamples int
	// MaxSamples caps the per-user sample window.
	MaxSamples int
	// Epochs is the fixed number of passes per training run.
	Epochs int
	// BatchSize is the mini-batch size.
	BatchSize int
	// LearningRate is the initial Adam learning rate.
	LearningRate float64
	// HorizonDays bounds the forecast search.
	HorizonDays int
	// CacheSize bounds the number of users kept in memory.
	CacheSize int
	// Workers is the number of concurrent training runs.
	Workers int
	// Seed makes weight initialization and shuffling reproducible.
	Seed uint64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MinTrainSamples: DefaultMinTrainSamples,
		MaxSamples:      DefaultMaxSamples,
		Epochs:          DefaultEpochs,
		BatchSize:       DefaultBatchSize,
		LearningRate:    DefaultLearningRate,
		HorizonDays:     DefaultHorizonDays,
		CacheSize:       DefaultCacheSize,
		Workers:         DefaultWorkers,
		Seed:            DefaultSeed,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinTrainSamples <= 0 {
		c.MinTrainSamples = d.MinTrainSamples
	}
	if c.MaxSamples <= 0 {
		c.MaxSamples = d.MaxSamples
	}
	if c.Epochs <= 0 {
		c.Epochs = d.Epochs
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = d.HorizonDays
	}
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}
