package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/helpdesk-api/internal/api/metrics"
	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// updateUserRequest distinguishes absent fields (nil) from present ones.
type updateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"    validate:"omitnil,email"`
	Password  *string `json:"password" validate:"omitnil,max=72"`
	Role      *string `json:"role"     validate:"omitnil,oneof=admin agent client"`
}

func (r updateUserRequest) patch() domain.UserPatch {
	p := domain.UserPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}

// List returns every user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]userResponse}
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return failed("Error fetching users.", err)
	}
	return ok(c, http.StatusOK, "", newUserResponses(users))
}

// Get returns a user with its teams.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  Envelope{data=userProfileResponse}
// @Failure      404  {object}  Envelope
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	profile, err := h.users.Get(c.Request().Context(), pathID(c))
	if err != nil {
		return failed("Error fetching user.", err)
	}
	return ok(c, http.StatusOK, "", newUserProfileResponse(profile))
}

// Create lets an admin add a user with any role.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "New user"
// @Success      201   {object}  Envelope{data=userResponse}
// @Failure      400   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	caller, err := actor(c)
	if err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), domain.NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      domain.Role(req.Role),
	}, caller)
	if err != nil {
		return failed("Error creating user.", err)
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(user.Role), "admin").Inc()
	return ok(c, http.StatusCreated, "User created successfully.", newUserResponse(user))
}

// Update changes the supplied fields. Callers may update themselves; only
// admins may update others or change roles.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=userResponse}
// @Failure      400   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	caller, err := actor(c)
	if err != nil {
		return err
	}

	user, err := h.users.Update(c.Request().Context(), caller, pathID(c), req.patch())
	if err != nil {
		return failed("Error updating user.", err)
	}
	return ok(c, http.StatusOK, "User updated successfully.", newUserResponse(user))
}

// Delete removes a user and its team memberships.
//
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), pathID(c)); err != nil {
		return failed("Error deleting user.", err)
	}
	return ok(c, http.StatusOK, "User deleted successfully.", nil)
}
