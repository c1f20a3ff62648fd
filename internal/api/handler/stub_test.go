package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/helpdesk-api/internal/api/middleware"
	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in domain.NewUser, actor *domain.User) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in domain.NewUser, actor *domain.User) (*domain.User, error) {
	return s.registerFn(ctx, in, actor)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

type stubUserService struct {
	listFn   func(ctx context.Context) ([]*domain.User, error)
	getFn    func(ctx context.Context, id uint) (*ports.UserProfile, error)
	createFn func(ctx context.Context, in domain.NewUser, actor *domain.User) (*domain.User, error)
	updateFn func(ctx context.Context, actor *domain.User, id uint, patch domain.UserPatch) (*domain.User, error)
	deleteFn func(ctx context.Context, id uint) error
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Get(ctx context.Context, id uint) (*ports.UserProfile, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Create(ctx context.Context, in domain.NewUser, actor *domain.User) (*domain.User, error) {
	return s.createFn(ctx, in, actor)
}

func (s *stubUserService) Update(ctx context.Context, actor *domain.User, id uint, patch domain.UserPatch) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, patch)
}

func (s *stubUserService) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type stubTeamService struct {
	listFn   func(ctx context.Context) ([]*domain.Team, error)
	getFn    func(ctx context.Context, id uint) (*domain.Team, error)
	createFn func(ctx context.Context, in domain.NewTeam) (*domain.Team, error)
	updateFn func(ctx context.Context, id uint, patch domain.TeamPatch) (*domain.Team, error)
	deleteFn func(ctx context.Context, id uint) error
}

func (s *stubTeamService) List(ctx context.Context) ([]*domain.Team, error) {
	return s.listFn(ctx)
}

func (s *stubTeamService) Get(ctx context.Context, id uint) (*domain.Team, error) {
	return s.getFn(ctx, id)
}

func (s *stubTeamService) Create(ctx context.Context, in domain.NewTeam) (*domain.Team, error) {
	return s.createFn(ctx, in)
}

func (s *stubTeamService) Update(ctx context.Context, id uint, patch domain.TeamPatch) (*domain.Team, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubTeamService) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// callerGate authenticates every request as u.
type callerGate struct{ u *domain.User }

func (g callerGate) Verify(string) (*domain.Claims, error) {
	return &domain.Claims{UserID: g.u.ID, Email: g.u.Email, Role: g.u.Role}, nil
}

func (g callerGate) FindByID(context.Context, uint) (*domain.User, error) {
	return g.u, nil
}

// asCaller runs h behind the authentication gate with u as the principal.
func asCaller(u *domain.User, h echo.HandlerFunc) echo.HandlerFunc {
	g := callerGate{u: u}
	return middleware.Authenticate(g, g)(h)
}

// newContext builds a request context. The caller's token is a placeholder:
// asCaller accepts any bearer token.
func newContext(t *testing.T, method, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer test-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if len(params) > 0 {
		c.SetParamNames("id")
		c.SetParamValues(params[0])
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

// assertHTTPError checks that err is an *echo.HTTPError with the given code
// and message.
func assertHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code || he.Message != msg {
		t.Fatalf("expected %d %q, got %d %v", code, msg, he.Code, he.Message)
	}
}

var (
	adminUser  = &domain.User{ID: 1, FirstName: "Ada", LastName: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, PasswordHash: "$2a$10$hash"}
	clientUser = &domain.User{ID: 2, FirstName: "Carl", LastName: "Client", Email: "carl@example.com", Role: domain.RoleClient, PasswordHash: "$2a$10$hash"}
)
