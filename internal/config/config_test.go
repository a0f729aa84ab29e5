package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cardwise/internal/recall"
	"github.com/abhisek/cardwise/internal/session"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, session.DefaultSessionSize, cfg.Session.Size)
	assert.True(t, cfg.Recall.Enabled)
	assert.Equal(t, recall.DefaultConfig(), cfg.Recall.Predictor())
	assert.Equal(t, cfg, Default())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CARDWISE_LOG_LEVEL", "debug")
	t.Setenv("CARDWISE_SESSION_SIZE", "7")
	t.Setenv("CARDWISE_RECALL_ENABLED", "false")
	t.Setenv("CARDWISE_RECALL_MIN_TRAIN_SAMPLES", "80")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Session.Size)
	assert.False(t, cfg.Recall.Enabled)
	assert.Equal(t, 80, cfg.Recall.MinTrainSamples)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "db:\n  path: /tmp/x.db\nlog:\n  format: json\nrecall:\n  epochs: 5\n  learning_rate: 0.05\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/x.db", cfg.DB.Path)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Recall.Epochs)
	assert.Equal(t, 0.05, cfg.Recall.LearningRate)
	assert.Equal(t, recall.DefaultBatchSize, cfg.Recall.BatchSize)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger.WithField("user", "u1").Info("hello")
	assert.Contains(t, buf.String(), `"user":"u1"`)

	_, err = NewLogger(LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}
