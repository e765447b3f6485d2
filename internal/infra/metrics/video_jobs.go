package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		videoJobsSubmittedTotal,
		videoJobsTransitionsTotal,
		videoPollErrorsTotal,
		videoPollExhaustedTotal,
		videoActiveLoops,
		videoJobsSweptTotal,
	)
}

var (
	videoJobsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_jobs_submitted_total",
			Help: "Submission attempts by outcome.",
		},
		[]string{"result"}, // 'accepted', 'rejected', 'rate_limited', 'provider_error'
	)

	videoJobsTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_jobs_transitions_total",
			Help: "Terminal transitions written for video jobs, labeled by status.",
		},
		[]string{"status"},
	)

	videoPollErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "video_poll_errors_total",
			Help: "Polls that failed at the transport level and stopped a tracking loop.",
		},
	)

	videoPollExhaustedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "video_poll_exhausted_total",
			Help: "Tracking loops that used their whole attempt budget.",
		},
	)

	videoActiveLoops = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_active_loops",
			Help: "Number of tracking loops currently running.",
		},
	)

	videoJobsSweptTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_jobs_swept_total",
			Help: "Stale processing jobs handled by the sweeper.",
		},
		[]string{"action"}, // 'rearmed', 'expired'
	)
)

func IncVideoSubmitted(result string) {
	videoJobsSubmittedTotal.WithLabelValues(norm(result)).Inc()
}

func IncVideoTransition(status string) {
	videoJobsTransitionsTotal.WithLabelValues(norm(status)).Inc()
}

func IncPollError() { videoPollErrorsTotal.Inc() }

func IncPollExhausted() { videoPollExhaustedTotal.Inc() }

func SetActiveLoops(n int) { videoActiveLoops.Set(float64(n)) }

func IncSwept(action string, count int) {
	videoJobsSweptTotal.WithLabelValues(norm(action)).Add(float64(count))
}
