package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(videoNotificationsTotal) }

var videoNotificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "video_notifications_total",
		Help: "Completion notifications by channel and result.",
	},
	[]string{"channel", "result"}, // result: 'sent', 'failed', 'skipped'
)

func IncNotification(channel, result string) {
	videoNotificationsTotal.WithLabelValues(norm(channel), norm(result)).Inc()
}
