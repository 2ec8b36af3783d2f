// Package metrics defines and registers all custom Prometheus metrics for the
// produce custody API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "produce_chain"

// ── OTP metrics ───────────────────────────────────────────────────────────────

// OTPSentTotal counts one-time codes handed to the notifier for delivery.
// Label:
//   - role: the role the challenge is bound to ("farmer", "distributor", "retailer")
var OTPSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_sent_total",
		Help:      "Total number of one-time codes sent, by bound role.",
	},
	[]string{"role"},
)

// OTPVerifiedTotal counts verification attempts by outcome.
// Label:
//   - result: "ok", "no_challenge", "expired", or "mismatch"
var OTPVerifiedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verified_total",
		Help:      "Total number of OTP verification attempts, by outcome.",
	},
	[]string{"result"},
)

// ── Custody metrics ───────────────────────────────────────────────────────────

// ProducesRegisteredTotal counts produce registrations accepted by the ledger.
// Label:
//   - produce_type: the registered produce type (e.g. "Wheat")
var ProducesRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "produces_registered_total",
		Help:      "Total number of produces registered on the ledger, by type.",
	},
	[]string{"produce_type"},
)

// TransfersTotal counts custody transfer attempts.
// Label:
//   - result: "ok" or "illegal_transition"
var TransfersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_total",
		Help:      "Total number of custody transfer attempts, by result.",
	},
	[]string{"result"},
)

// LedgerErrorsTotal counts failed ledger calls.
// Labels:
//   - op: "register", "transfer", "trace", "query", or "scan"
//   - reason: "rejected" (ledger refused the request) or "unavailable"
var LedgerErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_errors_total",
		Help:      "Total number of failed ledger calls, by operation and reason.",
	},
	[]string{"op", "reason"},
)

// ── Dispatcher metrics ────────────────────────────────────────────────────────

// NotificationsQueueDepth tracks the current number of messages waiting in
// each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of messages pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
