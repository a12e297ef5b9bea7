package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"batchgen/internal/engine"
	"batchgen/internal/throughput"
)

var (
	lastBatchTokens = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "batchgen",
		Subsystem: "pipeline",
		Name:      "last_batch_tokens",
		Help:      "Tokens generated by the most recent batch",
	})

	lastBatchSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "batchgen",
		Subsystem: "pipeline",
		Name:      "last_batch_seconds",
		Help:      "Wall-clock seconds of the most recent batch",
	})

	lastBatchRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "batchgen",
		Subsystem: "pipeline",
		Name:      "last_batch_tokens_per_second",
		Help:      "Throughput of the most recent batch; unchanged when the rate is undefined",
	})

	completionTokens = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "batchgen",
		Subsystem: "pipeline",
		Name:      "completion_tokens",
		Help:      "Generated tokens per completion",
		Buckets:   prometheus.ExponentialBuckets(16, 2, 8),
	})
)

func init() {
	prometheus.MustRegister(lastBatchTokens, lastBatchSeconds, lastBatchRate, completionTokens)
}

// Collectors returns the pipeline metrics so callers can push them to a gateway.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{lastBatchTokens, lastBatchSeconds, lastBatchRate, completionTokens}
}

// MetricsObserver records completions and reports into Prometheus collectors.
type MetricsObserver struct{}

func (MetricsObserver) OnCompletion(c engine.Completion) {
	completionTokens.Observe(float64(c.Tokens))
}

func (MetricsObserver) OnReport(r throughput.Report) {
	lastBatchTokens.Set(float64(r.Tokens))
	lastBatchSeconds.Set(r.Seconds())
	if r.RateDefined {
		lastBatchRate.Set(r.Rate)
	}
}
