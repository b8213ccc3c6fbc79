package reminders

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "subwatch"

var (
	reminderQueueSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "queue_size",
			Help:      "Number of reminders in queue by status",
		},
		[]string{"status"},
	)

	remindersScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "scheduled_total",
			Help:      "Total reminders enqueued",
		},
	)

	remindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Total reminder deliveries by outcome",
		},
		[]string{"channel", "status"},
	)

	remindersFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "queue_fetched_total",
			Help:      "Total reminders fetched from queue (before delivery attempt)",
		},
	)

	reminderSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "send_duration_seconds",
			Help:      "Time to deliver a reminder",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)
)

// RecordQueueStats updates the queue size gauges.
func RecordQueueStats(stats *QueueStats) {
	reminderQueueSize.WithLabelValues(string(StatusPending)).Set(float64(stats.Pending))
	reminderQueueSize.WithLabelValues(string(StatusProcessing)).Set(float64(stats.Processing))
	reminderQueueSize.WithLabelValues(string(StatusSent)).Set(float64(stats.Sent))
	reminderQueueSize.WithLabelValues(string(StatusFailed)).Set(float64(stats.Failed))
	reminderQueueSize.WithLabelValues(string(StatusCancelled)).Set(float64(stats.Cancelled))
}

func recordQueueFetched(n int) {
	remindersFetched.Add(float64(n))
}

func recordReminderScheduled() {
	remindersScheduled.Inc()
}

func recordReminderSent(channel, status string) {
	remindersSent.WithLabelValues(channel, status).Inc()
}

func recordReminderDuration(channel string, duration time.Duration) {
	reminderSendDuration.WithLabelValues(channel).Observe(duration.Seconds())
}
