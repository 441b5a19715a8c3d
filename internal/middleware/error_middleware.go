package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzajac/examflow/internal/app/models/dto"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
	"github.com/mzajac/examflow/internal/pkg/logger"
)

// HandleAPIError maps application errors to HTTP responses. Conflict-family
// errors map to 409, illegal transitions to 422, everything unrecognized to
// a logged 500.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)

	// Surface structured context (violated rules, conflict dimensions) when
	// the error carries it.
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		if custom.Message != "" {
			detail.Message = custom.Message
		}
		if custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
		}
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Bad request")
	case errors.Is(err, apperrors.ErrRejectionReasonRequired):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeRejectionReasonMissing, "Rejection reason is required")

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Account is disabled")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")

	case errors.Is(err, apperrors.ErrTermNotFound),
		errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrRoomNotFound),
		errors.Is(err, apperrors.ErrCourseNotFound),
		errors.Is(err, apperrors.ErrGroupNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Resource already exists")
	case errors.Is(err, apperrors.ErrSchedulingConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeSchedulingConflict, "Scheduling conflict")
	case errors.Is(err, apperrors.ErrConcurrentModification):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConcurrentModification, "Term was modified concurrently, retry the operation")
	case errors.Is(err, apperrors.ErrSessionImmutable):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeSessionImmutable, "Session bounds cannot change while terms exist")
	case errors.Is(err, apperrors.ErrSessionOverlap):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeSessionOverlap, "Session overlaps an existing session")

	case errors.Is(err, apperrors.ErrIllegalTransition):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeIllegalTransition, "Illegal status transition")

	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
