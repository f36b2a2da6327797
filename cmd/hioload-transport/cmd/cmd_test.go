package cmd

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-transport/control"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestFailQueueListsCompletionsInOrder(t *testing.T) {
	out, err := run(t, "fail", "--variant", "queue", "--phases", "on_complete,recv_message")
	require.NoError(t, err)

	msg := strings.Index(out, "failing recv_message_ready")
	done := strings.Index(out, "failing on_complete")
	require.True(t, msg >= 0 && done >= 0, out)
	assert.Less(t, msg, done, "recv_message must precede on_complete")
	assert.Contains(t, out, "stream closed (code=CANCELLED)")
}

func TestFailAllVariants(t *testing.T) {
	out, err := run(t, "fail", "--code", "unavailable", "--message", "gone", "--standalone")
	require.NoError(t, err)
	assert.Contains(t, out, control.VariantImmediate)
	assert.Contains(t, out, control.VariantCombiner)
	assert.Contains(t, out, "gone (code=UNAVAILABLE)")
}

func TestFailRejectsBadInput(t *testing.T) {
	_, err := run(t, "fail", "--variant", "sideways")
	assert.Error(t, err)
	_, err = run(t, "fail", "--phases", "send_message")
	assert.Error(t, err)
	_, err = run(t, "fail", "--code", "NOT_A_CODE")
	assert.Error(t, err)
}

func TestRunFailureOrders(t *testing.T) {
	failure, err := parseFailure("CANCELLED", "stream closed")
	require.NoError(t, err)
	for _, variant := range []string{control.VariantImmediate, control.VariantCombiner} {
		for _, standalone := range []bool{false, true} {
			rows := runFailure(variant, allPhases, standalone, failure)
			names := make([]string, len(rows))
			for i, r := range rows {
				names[i] = r.name
				assert.Same(t, failure, r.err)
			}
			assert.Equal(t, []string{
				"recv_initial_metadata_ready", "recv_message_ready", "recv_trailing_metadata_ready", "on_complete",
			}, names, "variant=%s standalone=%v", variant, standalone)
		}
	}
}

func TestTeardown(t *testing.T) {
	out, err := run(t, "teardown", "--streams", "2", "--refs", "4", "--resource-loop", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "internal_thread")
	assert.Contains(t, out, "destroyed")
	assert.Contains(t, out, "pollset")
	if runtime.GOOS == "linux" {
		assert.Contains(t, out, "descriptors ready before teardown: 2")
	}

	out, err = run(t, "teardown", "--streams", "1", "--refs", "3", "--bind", "pollset_set")
	require.NoError(t, err)
	assert.Contains(t, out, "none")
	assert.Contains(t, out, "pollset_set")
	assert.NotContains(t, out, "internal_thread")
}

func TestTeardownEmptyEntityBindsNothing(t *testing.T) {
	out, err := run(t, "teardown", "--streams", "3", "--refs", "1", "--bind", "empty")
	require.NoError(t, err)
	assert.Contains(t, out, "descriptors ready before teardown: 0")
	assert.Contains(t, out, "empty")

	_, err = run(t, "teardown", "--bind", "kqueue")
	assert.Error(t, err)
}
