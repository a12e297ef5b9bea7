package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

var (
	batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "batchgen",
			Subsystem: "engine",
			Name:      "batches_total",
			Help:      "Total number of batched generation calls",
		},
		[]string{"runtime", "outcome"},
	)

	generatedTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "batchgen",
			Subsystem: "engine",
			Name:      "generated_tokens_total",
			Help:      "Total number of tokens generated across all batches",
		},
		[]string{"runtime"},
	)

	batchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "batchgen",
			Subsystem: "engine",
			Name:      "batch_duration_seconds",
			Help:      "Wall-clock duration of batched generation calls",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"runtime", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(batchesTotal, generatedTokensTotal, batchDuration)
}

// Collectors returns the engine metrics so callers can push them to a gateway.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{batchesTotal, generatedTokensTotal, batchDuration}
}

func observeBatch(runtime, outcome string, dur time.Duration, tokens int) {
	batchesTotal.WithLabelValues(runtime, outcome).Inc()
	batchDuration.WithLabelValues(runtime, outcome).Observe(dur.Seconds())
	if tokens > 0 {
		generatedTokensTotal.WithLabelValues(runtime).Add(float64(tokens))
	}
}
