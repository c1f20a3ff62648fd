package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
	User    any    `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// failed tags err with the message shown to clients when err is not a
// known domain error. The central error handler unwraps it to match domain
// errors first.
func failed(message string, err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, message).SetInternal(err)
}

// pathID parses the :id route parameter. A malformed id yields 0, which
// matches no stored record.
func pathID(c echo.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
