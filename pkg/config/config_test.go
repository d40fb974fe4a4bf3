package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/debugpanel/internal/entity"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.PoolSize)
	assert.Equal(t, ThreadPool, cfg.PoolType)
	assert.Equal(t, entity.DefaultDepth, cfg.Depth)
	assert.Equal(t, "simple", cfg.TableFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("DEBUGPANEL_POOL_SIZE", "8")
	t.Setenv("DEBUGPANEL_POOL_TYPE", ProcessPool)
	t.Setenv("DEBUGPANEL_USERNAME", "admin")
	t.Setenv("DEBUGPANEL_WAIT", "250ms")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.PoolSize)
	assert.Equal(t, ProcessPool, cfg.PoolType)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, 250*time.Millisecond, cfg.Wait)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debugpanel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool_size: 3\ntable_format: csv\ntimeout: 10s\n"), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.PoolSize)
	assert.Equal(t, "csv", cfg.TableFormat)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("DEBUGPANEL_POOL_SIZE", "-2")
	_, err := Load(New(), "")
	var sizeErr *entity.InvalidPoolSizeError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, -2, sizeErr.Size)
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestLoadRejectsPoolType(t *testing.T) {
	t.Setenv("DEBUGPANEL_POOL_TYPE", "fiber-pool")
	_, err := Load(New(), "")
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestCallerDefaultsSurviveLoad(t *testing.T) {
	v := New()
	v.SetDefault("log_level", "info")
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestStringHidesPassword(t *testing.T) {
	cfg := Config{Username: "u", Password: "secret"}
	assert.NotContains(t, cfg.String(), "secret")
	assert.Contains(t, cfg.String(), "u")
}

func TestParseWait(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{"0.5", 500 * time.Millisecond},
		{"250ms", 250 * time.Millisecond},
	}
	for _, tt := range tests {
		d, err := ParseWait(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, d, tt.in)
	}
	_, err := ParseWait("-1")
	assert.ErrorIs(t, err, entity.ErrConfiguration)
	_, err = ParseWait("soon")
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestWaitAcceptsSecondsFromEverySource(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		t.Setenv("DEBUGPANEL_WAIT", "2")
		cfg, err := Load(New(), "")
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.Wait)
	})
	t.Run("integer in file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "debugpanel.yaml")
		require.NoError(t, os.WriteFile(path, []byte("wait: 2\n"), 0o600))
		cfg, err := Load(New(), path)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.Wait)
	})
	t.Run("fraction in file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "debugpanel.yaml")
		require.NoError(t, os.WriteFile(path, []byte("wait: 1.5\n"), 0o600))
		cfg, err := Load(New(), path)
		require.NoError(t, err)
		assert.Equal(t, 1500*time.Millisecond, cfg.Wait)
	})
	t.Run("invalid", func(t *testing.T) {
		t.Setenv("DEBUGPANEL_WAIT", "soon")
		_, err := Load(New(), "")
		assert.ErrorIs(t, err, entity.ErrConfiguration)
	})
}
