package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/agentry/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
workers: 4
metrics:
  enabled: true
  addr: ":9100"
routine:
  interval: 250ms
  time_limit: 2s
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
	assert.Equal(t, "agentry", cfg.Metrics.Namespace, "unset keys keep their default")
	assert.Equal(t, 250*time.Millisecond, cfg.Routine.Interval)
	assert.Equal(t, 2*time.Second, cfg.Routine.TimeLimit)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"workers": 2, "routine": {"interval": "1m"}}`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.Routine.Interval)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wrokers: 3\n"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestApply_Overrides(t *testing.T) {
	cfg := config.Default()
	overrides, err := config.ParseOverrides([]string{
		"workers=8",
		"metrics.enabled=true",
		"routine.time_limit=1500ms",
	})
	require.NoError(t, err)

	require.NoError(t, cfg.Apply(overrides))
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.Routine.TimeLimit)
	assert.Equal(t, time.Second, cfg.Routine.Interval)
}

func TestParseOverrides_Invalid(t *testing.T) {
	_, err := config.ParseOverrides([]string{"novalue"})
	assert.Error(t, err)
}
