// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDeliveredTotal counts notifications stored by the dispatcher.
// Label:
//   - type: info, success, warning or error
var NotificationsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_total",
		Help:      "Total number of notifications delivered to user inboxes.",
	},
	[]string{"type"},
)

// NotificationsErrorsTotal counts notifications that could not be delivered.
// Label:
//   - reason: "dropped" (queue full) or "store_failed"
var NotificationsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_errors_total",
		Help:      "Total number of notifications that failed delivery.",
	},
	[]string{"reason"},
)

// NotificationQueueDepth tracks pending notifications per dispatcher worker.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDeliveryDuration measures dequeue-to-store latency.
var NotificationDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Duration of notification delivery from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Job metrics ───────────────────────────────────────────────────────────────

// JobsCreatedTotal counts newly posted jobs by category.
var JobsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total number of jobs created, by category.",
	},
	[]string{"category"},
)

// JobTransitionsTotal counts successful job status changes.
// Label:
//   - to: the new status
var JobTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_transitions_total",
		Help:      "Total number of job status transitions, by target status.",
	},
	[]string{"to"},
)

// IdempotentReplaysTotal counts create requests answered from the idempotency store.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of job creations answered with an existing job.",
	},
)

// ── Chat metrics ──────────────────────────────────────────────────────────────

var ChatMessagesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_messages_total",
		Help:      "Total number of chat messages sent.",
	},
)

var ChatRateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_rate_limited_total",
		Help:      "Total number of chat messages rejected by the per-sender rate limit.",
	},
)

// ChatSubscribers is the number of open live chat connections.
var ChatSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chat_subscribers",
		Help:      "Current number of live chat subscribers.",
	},
)

// ── Marketplace snapshot ──────────────────────────────────────────────────────

// Snapshot gauges are refreshed by the statistics scheduler.
// Label:
//   - state: "total", "active", "blocked", "completed"
var (
	UsersGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "users",
			Help:      "Number of users by state, as of the last statistics refresh.",
		},
		[]string{"state"},
	)

	JobsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs",
			Help:      "Number of jobs by state, as of the last statistics refresh.",
		},
		[]string{"state"},
	)

	ReportsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reports",
			Help:      "Number of reports, as of the last statistics refresh.",
		},
	)
)
