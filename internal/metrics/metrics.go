package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submission Metrics
	SubmitAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cmdstream_submit_attempts_total",
		Help: "The total number of submission attempts by path and outcome",
	}, []string{"path", "outcome"})

	SubmitBusyRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cmdstream_submit_busy_retries_total",
		Help: "The total number of engine submissions retried after a busy device",
	})

	SubmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cmdstream_submit_duration_ms",
		Help:    "Duration of engine submission including busy retries in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 18), // 10us to ~1.3s
	})

	// Completion Metrics
	WaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cmdstream_wait_duration_ms",
		Help:    "Duration of blocking completion waits in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 20),
	})

	WaitStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cmdstream_wait_status_total",
		Help: "The total number of completed waits by device job status",
	}, []string{"status"})

	// Encoder Metrics
	CommandBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cmdstream_command_bytes_total",
		Help: "The total number of encoded command bytes by command type",
	}, []string{"command"})

	// Memory Metrics
	MemoryObjectsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cmdstream_memory_objects_live",
		Help: "Memory objects currently backed by device memory",
	})

	MemoryObjectBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cmdstream_memory_object_bytes",
		Help: "Device memory currently held by live memory objects in bytes",
	})
)
