package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

type TeamHandler struct {
	teams ports.TeamService
}

func NewTeamHandler(teams ports.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

type createTeamRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description"`
	UserIDs     []uint `json:"userIds"`
}

// updateTeamRequest: a present userIds (even empty) replaces the members.
type updateTeamRequest struct {
	Name        *string `json:"name"        validate:"omitnil,max=100"`
	Description *string `json:"description"`
	UserIDs     *[]uint `json:"userIds"`
}

func (r updateTeamRequest) patch() domain.TeamPatch {
	p := domain.TeamPatch{Name: r.Name, Description: r.Description}
	if r.UserIDs != nil {
		p.MemberIDs = *r.UserIDs
		if p.MemberIDs == nil {
			p.MemberIDs = []uint{}
		}
	}
	return p
}

// List returns every team with its members.
//
// @Summary      List teams
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]domain.Team}
// @Failure      401  {object}  Envelope
// @Router       /teams [get]
func (h *TeamHandler) List(c echo.Context) error {
	teams, err := h.teams.List(c.Request().Context())
	if err != nil {
		return failed("Error fetching teams.", err)
	}
	return ok(c, http.StatusOK, "", teams)
}

// Get returns a team with its members.
//
// @Summary      Get team
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Team ID"
// @Success      200  {object}  Envelope{data=domain.Team}
// @Failure      404  {object}  Envelope
// @Router       /teams/{id} [get]
func (h *TeamHandler) Get(c echo.Context) error {
	team, err := h.teams.Get(c.Request().Context(), pathID(c))
	if err != nil {
		return failed("Error fetching team.", err)
	}
	return ok(c, http.StatusOK, "", team)
}

// Create adds a team and assigns the listed users to it.
//
// @Summary      Create team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTeamRequest  true  "New team"
// @Success      201   {object}  Envelope{data=domain.Team}
// @Failure      400   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Router       /teams [post]
func (h *TeamHandler) Create(c echo.Context) error {
	var req createTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	team, err := h.teams.Create(c.Request().Context(), domain.NewTeam{
		Name:        req.Name,
		Description: req.Description,
		MemberIDs:   req.UserIDs,
	})
	if err != nil {
		return failed("Error creating team.", err)
	}
	return ok(c, http.StatusCreated, "Team created successfully.", team)
}

// Update changes the supplied fields of a team.
//
// @Summary      Update team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Team ID"
// @Param        body  body      updateTeamRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=domain.Team}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /teams/{id} [put]
func (h *TeamHandler) Update(c echo.Context) error {
	var req updateTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	team, err := h.teams.Update(c.Request().Context(), pathID(c), req.patch())
	if err != nil {
		return failed("Error updating team.", err)
	}
	return ok(c, http.StatusOK, "Team updated successfully.", team)
}

// Delete removes a team. Its members are kept.
//
// @Summary      Delete team
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Team ID"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /teams/{id} [delete]
func (h *TeamHandler) Delete(c echo.Context) error {
	if err := h.teams.Delete(c.Request().Context(), pathID(c)); err != nil {
		return failed("Error deleting team.", err)
	}
	return ok(c, http.StatusOK, "Team deleted successfully.", nil)
}
