package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
)

type ErrorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func RespondError(c *gin.Context, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(statusForError(err), ErrorEnvelope{
		Status:  "error",
		Message: msg,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// statusForError maps the pipeline's sentinel errors onto HTTP statuses.
// Transient upstream conditions use 5xx codes that invite a retry.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrTranscriptNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrTranscriptUpstream):
		return http.StatusBadGateway
	case errors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperr.ErrBackendTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, apperr.ErrBackendUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, apperr.ErrMalformedResult):
		return http.StatusBadGateway
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
