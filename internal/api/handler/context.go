package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/helpdesk/helpdesk-api/internal/api/middleware"
	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// actor returns the authenticated caller. Routes behind Authenticate
// always have one; reaching a handler without it is a wiring bug and is
// reported as unauthenticated.
func actor(c echo.Context) (*domain.User, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return p.User(), nil
}

// optionalActor returns the caller behind OptionalAuthenticate, or nil for
// anonymous requests.
func optionalActor(c echo.Context) *domain.User {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil
	}
	return p.User()
}
