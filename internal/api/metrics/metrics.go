// Package metrics defines and registers all custom Prometheus metrics for the
// client manager API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors register with the default Prometheus registry on package load;
// the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid_request", "rate_limited" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts successful self-registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of accounts created through registration.",
	},
)

// TokenRejectionsTotal counts requests refused by the auth gate.
// Label:
//   - reason: "no_token", "invalid", "expired", "revoked", "unknown_user", "inactive", "unidentified" or "role"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by authentication or authorization.",
	},
	[]string{"reason"},
)

// ── Client metrics ────────────────────────────────────────────────────────────

// ClientOperationsTotal counts successful client mutations.
// Label:
//   - op: "create", "update", "contact" or "delete"
var ClientOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_operations_total",
		Help:      "Total number of client records mutated, by operation.",
	},
	[]string{"op"},
)

// UsersDeletedTotal counts accounts removed by administrators.
var UsersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_users_deleted_total",
		Help:      "Total number of user accounts deleted by administrators.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification outcomes.
// Label:
//   - result: "sent", "failed" or "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications handled by the dispatcher, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks the notifications waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationSendDuration measures how long a single delivery takes.
var NotificationSendDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_send_duration_seconds",
		Help:      "Duration of a single notification delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Maintenance metrics ───────────────────────────────────────────────────────

// ResetTokensPurgedTotal counts expired password reset tokens cleared by the scheduler.
var ResetTokensPurgedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_tokens_purged_total",
		Help:      "Total number of expired password reset tokens cleared.",
	},
)
