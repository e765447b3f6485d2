package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(httpRequestsTotal, submitRateLimitedTotal) }

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		},
		[]string{"route", "code"},
	)

	submitRateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "submit_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited on submit.",
		},
	)
)

func IncHTTPRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func IncRateLimitTriggered() { submitRateLimitedTotal.Inc() }
