package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterProbe("b", func() any { return 2 })
	dp.RegisterProbe("a", func() any { return "one" })
	assert.Equal(t, []string{"a", "b"}, dp.Names())

	state := dp.DumpState()
	assert.Equal(t, "one", state["a"])
	assert.Equal(t, 2, state["b"])

	dp.RegisterProbe("a", func() any { return "replaced" })
	dp.UnregisterProbe("b")
	assert.Equal(t, map[string]any{"a": "replaced"}, dp.DumpState())
}
