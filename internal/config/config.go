// Package config loads application settings from an optional config file,
// CARDWISE_ environment variables and built-in defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/abhisek/cardwise/internal/recall"
	"github.com/abhisek/cardwise/internal/session"
)

// EnvPrefix prefixes every environment variable, e.g. CARDWISE_LOG_LEVEL.
const EnvPrefix = "CARDWISE"

// Config holds all configuration for the application.
type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
	Recall  RecallConfig  `mapstructure:"recall"`
}

// DBConfig holds database configuration.
type DBConfig struct {
	// Path is the SQLite file. Empty means store.DefaultDBPath.
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig holds study session configuration.
type SessionConfig struct {
	Size     int `mapstructure:"size"`
	NewLimit int `mapstructure:"new_limit"`
}

// RecallConfig holds recall predictor configuration.
type RecallConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	MinTrainSamples int     `mapstructure:"min_train_samples"`
	MaxSamples      int     `mapstructure:"max_samples"`
	Epochs          int     `mapstructure:"epochs"`
	BatchSize       int     `mapstructure:"batch_size"`
	LearningRate    float64 `mapstructure:"learning_rate"`
	HorizonDays     int     `mapstructure:"horizon_days"`
	CacheSize       int     `mapstructure:"cache_size"`
	Workers         int     `mapstructure:"workers"`
	Seed            uint64  `mapstructure:"seed"`
}

// Predictor converts the settings to a recall.Config.
func (c RecallConfig) Predictor() recall.Config {
	return recall.Config{
		MinTrainSamples: c.MinTrainSamples,
		MaxSamples:      c.MaxSamples,
		Epochs:          c.Epochs,
		BatchSize:       c.BatchSize,
		LearningRate:    c.LearningRate,
		HorizonDays:     c.HorizonDays,
		CacheSize:       c.CacheSize,
		Workers:         c.Workers,
		Seed:            c.Seed,
	}
}

// Load reads configuration. configFile may be empty, in which case
// cardwise.yaml is looked up in the working directory and
// $XDG_CONFIG_HOME/cardwise; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cardwise")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir + "/cardwise")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetDefault("session.size", session.DefaultSessionSize)
	v.SetDefault("session.new_limit", 0)

	d := recall.DefaultConfig()
	v.SetDefault("recall.enabled", true)
	v.SetDefault("recall.min_train_samples", d.MinTrainSamples)
	v.SetDefault("recall.max_samples", d.MaxSamples)
	v.SetDefault("recall.epochs", d.Epochs)
	v.SetDefault("recall.batch_size", d.BatchSize)
	v.SetDefault("recall.learning_rate", d.LearningRate)
	v.SetDefault("recall.horizon_days", d.HorizonDays)
	v.SetDefault("recall.cache_size", d.CacheSize)
	v.SetDefault("recall.workers", d.Workers)
	v.SetDefault("recall.seed", d.Seed)
}

// NewLogger builds a logrus logger writing to w from the log settings.
func NewLogger(cfg LogConfig, w io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(w)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return logger, nil
}
