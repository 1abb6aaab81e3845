package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSubmissionMetrics(t *testing.T) {
	t.Run("SubmitAttempts", func(t *testing.T) {
		before := testutil.ToFloat64(SubmitAttempts.WithLabelValues("engine", "busy"))
		SubmitAttempts.WithLabelValues("engine", "busy").Inc()
		SubmitAttempts.WithLabelValues("engine", "busy").Inc()
		value := testutil.ToFloat64(SubmitAttempts.WithLabelValues("engine", "busy"))
		assert.Equal(t, before+2, value)
	})

	t.Run("SubmitDuration", func(t *testing.T) {
		assert.NotPanics(t, func() {
			SubmitDuration.Observe(0.5)
			WaitDuration.Observe(12.25)
		})
	})

	t.Run("WaitStatus", func(t *testing.T) {
		before := testutil.ToFloat64(WaitStatus.WithLabelValues("complete"))
		WaitStatus.WithLabelValues("complete").Inc()
		assert.Equal(t, before+1, testutil.ToFloat64(WaitStatus.WithLabelValues("complete")))
	})
}

func TestMemoryMetrics(t *testing.T) {
	MemoryObjectsLive.Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(MemoryObjectsLive))

	MemoryObjectBytes.Set(4096)
	MemoryObjectBytes.Add(8192)
	assert.Equal(t, float64(12288), testutil.ToFloat64(MemoryObjectBytes))
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		SubmitAttempts,
		SubmitBusyRetries,
		SubmitDuration,
		WaitDuration,
		WaitStatus,
		CommandBytes,
		MemoryObjectsLive,
		MemoryObjectBytes,
	}

	for _, c := range collectors {
		// Already registered through promauto, so registering again must fail.
		err := prometheus.Register(c)
		assert.Error(t, err)
	}
}

func BenchmarkMetricsObservation(b *testing.B) {
	b.Run("ObserveDuration", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			SubmitDuration.Observe(float64(i % 1000))
		}
	})

	b.Run("IncCounter", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			CommandBytes.WithLabelValues("nop").Add(8)
		}
	})
}
