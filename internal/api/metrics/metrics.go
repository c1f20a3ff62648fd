// Package metrics defines the custom Prometheus metrics of the helpdesk API.
// It is the single source of truth for metric names, labels and help
// strings. All metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "helpdesk"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_password", "user_not_found" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer tokens checked by the authentication gate.
// Label:
//   - result: "ok", "missing", "expired", "invalid" or "unknown_user"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of session token checks, by result.",
	},
	[]string{"result"},
)

// AuthorizationDenialsTotal counts requests rejected by a role policy.
// Label:
//   - policy: "admin", "agent_or_admin" or "user_update"
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of requests denied by an authorization policy.",
	},
	[]string{"policy"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UsersCreatedTotal counts identities created through registration or by an admin.
// Labels:
//   - role: the role the new user received
//   - via:  "register" or "admin"
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created, by role and entry point.",
	},
	[]string{"role", "via"},
)
