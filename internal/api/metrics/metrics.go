// Package metrics defines and registers all custom Prometheus metrics for the
// registry API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cadastrahub"

// ── Identity metrics ──────────────────────────────────────────────────────────

// AuthAttemptsTotal counts registration and login attempts by outcome.
// Labels:
//   - operation: "register", "register_admin" or "login"
//   - result: "success", "invalid", "conflict", "unauthorized" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of registration and login attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// AuthorizationDenialsTotal counts requests rejected by the route gates.
// Labels:
//   - gate: "user", "admin" or "bootstrap"
//   - reason: "missing_token", "invalid_token", "role", "disabled" or "bootstrap"
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of requests denied by an authorization gate.",
	},
	[]string{"gate", "reason"},
)

// ── Lot metrics ───────────────────────────────────────────────────────────────

// LotsCreatedTotal counts stored material lots.
// Label:
//   - type: the material type (e.g. "ALUMINUM")
var LotsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lots_created_total",
		Help:      "Total number of material lots created, by material type.",
	},
	[]string{"type"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events through the dispatcher.
// Labels:
//   - kind: the audit event kind (e.g. "login.failed")
//   - result: "written", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events handled, by kind and result.",
	},
	[]string{"kind", "result"},
)

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteDuration measures how long persisting one audit event takes.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of a single audit event write.",
		Buckets:   prometheus.DefBuckets,
	},
)
