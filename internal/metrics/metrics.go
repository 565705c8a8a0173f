// Package metrics defines and registers the custom Prometheus metrics of the
// home-care portal. It is the single source of truth for metric names, labels
// and help strings.
//
// All metrics register with the default Prometheus registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "careportal"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionOperationsTotal counts session operations by outcome.
// Labels:
//   - operation: "login", "register", "logout", "update_profile", "restore"
//   - result: "success", or a short failure reason (e.g. "invalid_credentials",
//     "email_exists", "in_flight", "reset", "malformed", "error")
var SessionOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_operations_total",
		Help:      "Total number of session operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// SessionOperationDuration measures how long a mutating session operation takes.
var SessionOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_operation_duration_seconds",
		Help:      "Duration of session operations from start to commit.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// SessionAuthenticated is 1 while an identity is signed in, 0 otherwise.
var SessionAuthenticated = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "Whether the process session currently holds an identity.",
	},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard decisions.
// Label:
//   - outcome: "render", "redirect_anonymous", "redirect_role_default"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDeliveredTotal counts notifications handed to the feed.
// Label:
//   - result: "delivered", "dropped" (worker queue full), "error"
var NotificationsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_total",
		Help:      "Total number of notifications processed by the dispatcher, by result.",
	},
	[]string{"result"},
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
