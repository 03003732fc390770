package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travel/internal/chapa"
	"travel/internal/domain"
	"travel/internal/middleware"
	"travel/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Unclassified errors are reported with a generic message.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.JSON(code, ErrorResponse{Error: msg})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// badRequest sends a 400 with msg.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidReference):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrPermission):
		return http.StatusForbidden

	case errors.Is(err, service.ErrState),
		errors.Is(err, service.ErrConflict):
		return http.StatusConflict

	// Circuit open is checked before the generic gateway case.
	case errors.Is(err, chapa.ErrCircuitOpen):
		return http.StatusServiceUnavailable

	case errors.Is(err, service.ErrGateway):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// actorID returns the caller set by middleware.RequireActor.
func actorID(c *gin.Context) string {
	return middleware.ActorID(c)
}

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(s string) (time.Time, error) {
	return time.Parse(domain.DateLayout, s)
}
