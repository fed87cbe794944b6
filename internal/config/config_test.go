package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scheduler_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFromPath_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/scheduler
redisAddr: localhost:6379
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/scheduler", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30, cfg.OfferWindowMinutes)
	assert.Equal(t, 60, cfg.SweepIntervalSeconds)
	assert.Equal(t, 120, cfg.MinShiftDurationMinutes)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadFromPath_ExplicitValuesOverrideDefaults(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/scheduler
redisAddr: localhost:6379
offerWindowMinutes: 15
sweepIntervalSeconds: 10
minShiftDurationMinutes: 60
metricsAddr: ":9090"
timezone: Europe/London
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.OfferWindow())
	assert.Equal(t, 10*time.Second, cfg.SweepInterval())
	assert.Equal(t, time.Hour, cfg.MinShiftDuration())
	assert.Equal(t, ":9090", cfg.MetricsAddr)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", loc.String())
}

func TestLoadFromPath_MissingDatabaseURLFails(t *testing.T) {
	path := writeConfig(t, `
redisAddr: localhost:6379
`)

	_, err := LoadFromPath(path)

	assert.ErrorContains(t, err, "config validation failed")
}

func TestLoadFromPath_MissingRedisAddrFails(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/scheduler
`)

	_, err := LoadFromPath(path)

	assert.ErrorContains(t, err, "config validation failed")
}

func TestLoadFromPath_InvalidTimezoneFails(t *testing.T) {
	path := writeConfig(t, `
databaseURL: postgres://localhost:5432/scheduler
redisAddr: localhost:6379
timezone: Mars/Olympus_Mons
`)

	_, err := LoadFromPath(path)

	assert.ErrorContains(t, err, "invalid timezone")
}

func TestLoadFromPath_MalformedYAMLFails(t *testing.T) {
	path := writeConfig(t, "databaseURL: [unterminated")

	_, err := LoadFromPath(path)

	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadFromPath_MissingFileFails(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorContains(t, err, "failed to read config file")
}
