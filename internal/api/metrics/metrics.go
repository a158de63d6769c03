// Package metrics defines and registers all custom Prometheus metrics for the
// QuickGram auth service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Account metrics ───────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "success", "conflict", "invalid" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Token metrics ─────────────────────────────────────────────────────────────

// TokensIssuedTotal counts minted session tokens.
// Label:
//   - reason: "signup", "login" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of session tokens issued, by reason.",
	},
	[]string{"reason"},
)

// TokenVerificationFailuresTotal counts rejected tokens.
// Label:
//   - reason: "malformed", "signature", "issuer", "expired", "revoked" or "missing"
var TokenVerificationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verification_failures_total",
		Help:      "Total number of session tokens that failed verification, by reason.",
	},
	[]string{"reason"},
)

// ── Hashing metrics ───────────────────────────────────────────────────────────

// PasswordHashDuration measures bcrypt work, including time queued in the pool.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hash and verify operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// HashQueueDepth tracks jobs waiting for a hashing worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password hashing jobs waiting for a worker.",
	},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// RateLimitedTotal counts requests rejected with 429.
// Label:
//   - route: the echo route path (e.g. "/auth/login")
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter, by route.",
	},
	[]string{"route"},
)

// HTTPRequestsTotal counts served requests.
// Labels:
//   - method: HTTP method
//   - route:  the echo route template, "unmatched" for unknown paths
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency including error rendering.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method and route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
