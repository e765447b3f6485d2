package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(providerCallsLatencyMs, providerThrottledTotal)
}

var (
	providerCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_provider_calls_latency_ms",
			Help:    "Video provider call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"provider", "op", "success"},
	)

	providerThrottledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_provider_throttled_total",
			Help: "Calls that waited on the client-side provider rate limit.",
		},
		[]string{"provider"},
	)
)

// ObserveProviderCall records one Submit/PollStatus round trip.
func ObserveProviderCall(provider, op string, latencyMs int64, success bool) {
	providerCallsLatencyMs.WithLabelValues(norm(provider), norm(op), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncProviderThrottled(provider string) {
	providerThrottledTotal.WithLabelValues(norm(provider)).Inc()
}
