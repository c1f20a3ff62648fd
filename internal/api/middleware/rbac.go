package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/helpdesk/helpdesk-api/internal/api/metrics"
	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// Authorize admits the request when allow holds for the authenticated
// caller and fails with deny otherwise. It must run after Authenticate; a
// request without a Principal is rejected as unauthenticated.
func Authorize(policy string, allow func(*domain.User) bool, deny error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if !allow(p.User()) {
				metrics.AuthorizationDenialsTotal.WithLabelValues(policy).Inc()
				return deny
			}
			return next(c)
		}
	}
}

// AdminOnly restricts a route to administrators.
func AdminOnly() echo.MiddlewareFunc {
	return Authorize("admin", domain.IsAdmin, domain.ErrAdminRequired)
}

// AgentOrAdmin restricts a route to agents and administrators.
func AgentOrAdmin() echo.MiddlewareFunc {
	return Authorize("agent_or_admin", domain.IsAgentOrAdmin, domain.ErrAgentOrAdminRequired)
}
