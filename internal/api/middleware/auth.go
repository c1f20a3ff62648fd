package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/helpdesk-api/internal/api/metrics"
	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

const principalKey = "principal"

// Principal is the authenticated caller of a request. It can only be
// produced by the authentication gate, so any handler that holds one is
// running behind it.
type Principal struct {
	user domain.User
}

// User returns a copy of the caller's stored identity.
func (p Principal) User() *domain.User {
	u := p.user
	return &u
}

// IdentityResolver loads the user a verified token refers to.
type IdentityResolver interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

// PrincipalFrom returns the principal attached by Authenticate, if any.
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// Authenticate requires a valid bearer token that refers to an existing
// user, and attaches that user to the request as its Principal.
func Authenticate(verifier ports.TokenVerifier, users IdentityResolver) echo.MiddlewareFunc {
	return gate(verifier, users, false)
}

// OptionalAuthenticate lets requests without an Authorization header pass
// anonymously. A header that is present is checked exactly as Authenticate
// does.
func OptionalAuthenticate(verifier ports.TokenVerifier, users IdentityResolver) echo.MiddlewareFunc {
	return gate(verifier, users, true)
}

func gate(verifier ports.TokenVerifier, users IdentityResolver, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" && optional {
				return next(c)
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthenticated
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
					return domain.ErrTokenExpired
				}
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrTokenInvalid
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.TokenVerificationsTotal.WithLabelValues("unknown_user").Inc()
					return domain.ErrUserNotFound
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching user details.").SetInternal(err)
			}

			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
			c.Set(principalKey, Principal{user: *user})
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
