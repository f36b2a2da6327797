package control

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics("test", reg)
	require.NoError(t, err)

	m.StreamDestroyed(DestroyEngine)
	m.StreamDestroyed(DestroyEngine)
	m.StreamDestroyed(DestroyInline)
	m.BatchFailed(VariantCombiner, []string{"recv_message", "on_complete"})
	m.StandaloneAllocated(KindStreamBatch)
	m.StandaloneAllocated(KindStreamBatch)
	m.StandaloneReleased(KindStreamBatch)
	m.EngineTask("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.streamsDestroyed.WithLabelValues(DestroyEngine)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.streamsDestroyed.WithLabelValues(DestroyInline)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchFailures.WithLabelValues(VariantCombiner)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchCompletions.WithLabelValues("on_complete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.standaloneLive.WithLabelValues(KindStreamBatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.engineTasks.WithLabelValues("ok")))
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics("dup", reg)
	require.NoError(t, err)
	_, err = NewMetrics("dup", reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.StreamDestroyed(DestroyInline)
		m.BatchFailed(VariantQueue, []string{"on_complete"})
		m.StandaloneAllocated(KindTransportOp)
		m.StandaloneReleased(KindTransportOp)
		m.EngineTask("ok")
	})
}
