package control

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStoreDefaults(t *testing.T) {
	cs := NewConfigStore()
	cfg := cs.Config()
	assert.Equal(t, 0, cfg.Engine.Workers)
	assert.False(t, cfg.Engine.PinCPUs)
	assert.Equal(t, 1024, cfg.Engine.QueueCapacity)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "hioload_transport", cfg.Metrics.Namespace)
}

func TestConfigStoreEnvOverride(t *testing.T) {
	t.Setenv("HIOLOAD_ENGINE_WORKERS", "3")
	t.Setenv("HIOLOAD_LOG_LEVEL", "debug")
	cs := NewConfigStore()
	cfg := cs.Config()
	assert.Equal(t, 3, cfg.Engine.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfigStoreLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hioload.yaml")
	body := []byte("engine:\n  workers: 2\n  queue_capacity: 64\nlog:\n  development: true\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cs := NewConfigStore()
	var seen []Config
	cs.OnReload(func(c Config) { seen = append(seen, c) })
	require.NoError(t, cs.LoadFile(path))

	cfg := cs.Config()
	assert.Equal(t, 2, cfg.Engine.Workers)
	assert.Equal(t, 64, cfg.Engine.QueueCapacity)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, "info", cfg.Log.Level)
	require.Len(t, seen, 1)
	assert.Equal(t, cfg, seen[0])
}

func TestConfigStoreLoadMissingFile(t *testing.T) {
	cs := NewConfigStore()
	err := cs.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigStoreSetNotifies(t *testing.T) {
	cs := NewConfigStore()
	var got Config
	cs.OnReload(func(c Config) { got = c })
	require.NoError(t, cs.Set("log.level", "warn"))
	assert.Equal(t, "warn", got.Log.Level)
	assert.Equal(t, "warn", cs.Config().Log.Level)

	snap := cs.GetSnapshot()
	logSection, ok := snap["log"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "warn", logSection["level"])
}
