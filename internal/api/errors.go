package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"
	"alcyxob/ecofit/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// errorStatus maps service and domain errors to HTTP status codes. The first
// match wins.
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvitationInvalid, http.StatusBadRequest},
	{service.ErrInvalidResetToken, http.StatusBadRequest},
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrInvalidPlanKind, http.StatusBadRequest},
	{service.ErrInvalidTarget, http.StatusBadRequest},
	{service.ErrRangeTooLong, http.StatusBadRequest},
	{service.ErrWorkoutEmpty, http.StatusBadRequest},
	{service.ErrNotScheduledYesterday, http.StatusBadRequest},
	{domain.ErrPlanNameRequired, http.StatusBadRequest},
	{domain.ErrInvalidPlanDates, http.StatusBadRequest},
	{domain.ErrPlanNotAssigned, http.StatusBadRequest},
	{domain.ErrInvalidRole, http.StatusBadRequest},
	{domain.ErrInvalidEmail, http.StatusBadRequest},
	{domain.ErrInvalidRequestType, http.StatusBadRequest},

	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},

	{service.ErrForbidden, http.StatusForbidden},

	{service.ErrClientNotFound, http.StatusNotFound},
	{service.ErrProfileNotFound, http.StatusNotFound},
	{service.ErrPlanNotFound, http.StatusNotFound},
	{service.ErrPlanRequestNotFound, http.StatusNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrMediaNotFound, http.StatusNotFound},
	{service.ErrWorkoutNotAvailable, http.StatusNotFound},
	{repository.ErrNotFound, http.StatusNotFound},

	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrSessionAlreadyComplete, http.StatusConflict},
	{domain.ErrInvalidTransition, http.StatusConflict},
	{domain.ErrPlanLocked, http.StatusConflict},
	{domain.ErrActivePlanExists, http.StatusConflict},
	{domain.ErrOpenRequestExists, http.StatusConflict},
	{domain.ErrRequestNotOpen, http.StatusConflict},
	{domain.ErrRequestAlreadyClaimed, http.StatusConflict},
	{repository.ErrConflict, http.StatusConflict},

	{service.ErrDraftRejected, http.StatusBadGateway},
	{service.ErrAIUpstream, http.StatusBadGateway},

	{service.ErrAIUnavailable, http.StatusServiceUnavailable},
	{service.ErrMediaUnavailable, http.StatusServiceUnavailable},
}

func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": msg}. Client errors echo the cause; upstream and
// internal failures are logged and answered with a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	switch {
	case status == http.StatusBadGateway:
		logger.WarnContext(c.Request.Context(), "upstream failure", "path", c.FullPath(), "error", err)
		abortWithError(c, status, "The AI provider could not produce a usable draft.")
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		abortWithError(c, status, "An unexpected error occurred.")
	default:
		abortWithError(c, status, err.Error())
	}
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return uuid.Nil, false
	}
	return id, true
}

// parseDate reads an optional YYYY-MM-DD value.
func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", service.ErrInvalidInput, field)
	}
	return &t, nil
}
