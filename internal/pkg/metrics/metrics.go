// Package metrics defines the custom Prometheus metrics of the accounts API.
// Metrics are registered on the default registry at package init through
// promauto and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Registration metrics ──────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - result: "created", "invalid", "conflict", "unauthorized" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationDuration measures the full registration request, including the
// token exchange.
var RegistrationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "registration_duration_seconds",
		Help:      "Duration of registration requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Token metrics ─────────────────────────────────────────────────────────────

// TokensIssuedTotal counts user tokens issued by grant type.
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of OAuth2 tokens issued, by grant type.",
	},
	[]string{"grant_type"},
)

// BearerRejectedTotal counts bearer tokens refused by the auth middleware.
// Label:
//   - reason: "missing", "malformed", "unknown", "revoked", "expired" or "scope"
var BearerRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bearer_rejected_total",
		Help:      "Total number of rejected bearer tokens, by reason.",
	},
	[]string{"reason"},
)

// ── Confirmation metrics ──────────────────────────────────────────────────────

var ConfirmationsQueued = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "confirmations_queued_total",
		Help:      "Total number of confirmation deliveries queued.",
	},
)

var ConfirmationsDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "confirmations_dropped_total",
		Help:      "Total number of confirmation deliveries dropped because the queue was full.",
	},
)

// ConfirmationsDelivered counts finished deliveries.
// Label:
//   - result: "ok" or "error"
var ConfirmationsDelivered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "confirmations_delivered_total",
		Help:      "Total number of confirmation deliveries attempted by workers, by result.",
	},
	[]string{"result"},
)

// ConfirmationQueueDepth tracks pending deliveries in each worker channel.
// Label:
//   - worker_id: numeric worker index
var ConfirmationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "confirmation_queue_depth",
		Help:      "Current number of confirmation deliveries pending in each worker channel.",
	},
	[]string{"worker_id"},
)
