package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "subwatch"

var (
	subscriptionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "subscriptions_created_total",
			Help:      "Total subscriptions created",
		},
		[]string{"cadence"},
	)

	subscriptionsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "subscriptions_deleted_total",
			Help:      "Total subscriptions deleted",
		},
	)
)

func recordSubscriptionCreated(annual bool) {
	cadence := "monthly"
	if annual {
		cadence = "annual"
	}
	subscriptionsCreated.WithLabelValues(cadence).Inc()
}

func recordSubscriptionDeleted() {
	subscriptionsDeleted.Inc()
}
