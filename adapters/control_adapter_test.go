package adapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-transport/adapters"
	"github.com/momentics/hioload-transport/control"
)

func TestControlAdapterResizesOnReload(t *testing.T) {
	engine := adapters.NewEngineAdapter(adapters.EngineConfig{Workers: 1})
	defer engine.Close()
	ctrl := adapters.NewControlAdapter(control.NewConfigStore(), control.NewDebugProbes(), engine, nil)

	require.NoError(t, ctrl.SetConfig("engine.workers", 3))
	assert.Equal(t, 3, engine.NumWorkers())

	// Zero means "keep the current size".
	require.NoError(t, ctrl.SetConfig("engine.workers", 0))
	assert.Equal(t, 3, engine.NumWorkers())
}

func TestControlAdapterStats(t *testing.T) {
	engine := adapters.NewEngineAdapter(adapters.EngineConfig{Workers: 2})
	defer engine.Close()
	ctrl := adapters.NewControlAdapter(control.NewConfigStore(), control.NewDebugProbes(), engine, nil)
	ctrl.RegisterDebugProbe("answer", func() any { return 42 })

	stats := ctrl.Stats()
	assert.Equal(t, 42, stats["debug.answer"])
	engineStats, ok := stats["debug.engine"].(map[string]int64)
	require.True(t, ok)
	assert.Equal(t, int64(2), engineStats["num_workers"])
	assert.Contains(t, stats, "debug.config")
}
