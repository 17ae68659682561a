package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records sign-in and sign-up attempts by flow (sign_in|sign_up) and result.
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamkit_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"flow", "result"},
	)

	// ActionResults counts form action outcomes (success|redirect|validation|auth|conflict|state|error).
	ActionResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamkit_action_results_total",
			Help: "Total number of form action results by outcome",
		},
		[]string{"action", "outcome"},
	)

	// SessionRejections counts session cookies rejected by reason (invalid_signature|expired).
	SessionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamkit_session_rejections_total",
			Help: "Total number of rejected session cookies",
		},
		[]string{"reason"},
	)

	// ActiveUsers tracks users that have not been soft deleted.
	ActiveUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teamkit_active_users",
			Help: "Number of active (not deleted) users",
		},
	)

	// Teams tracks the number of teams.
	Teams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teamkit_teams",
			Help: "Number of teams",
		},
	)

	// PendingInvitations tracks invitations awaiting acceptance.
	PendingInvitations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teamkit_pending_invitations",
			Help: "Number of pending team invitations",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teamkit_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
