package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/logger"
)

// HandleAPIError maps application errors to HTTP responses. Controllers call
// this with whatever their service returned; the mapping from sentinel to
// status code and error code lives in one place.
func HandleAPIError(c *gin.Context, err error) {
	var status int
	var detail *dto.ErrorDetail

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		status = http.StatusBadRequest
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
		var customErr *apperrors.CustomError
		if errors.As(err, &customErr) && customErr.Details != nil {
			detail = detail.WithDetails(customErr.Details)
		}

	case errors.Is(err, apperrors.ErrBadRequest):
		status = http.StatusBadRequest
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, err.Error())

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid email or password")

	case errors.Is(err, apperrors.ErrTokenExpired):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token has expired")

	case errors.Is(err, apperrors.ErrTokenNotFound),
		errors.Is(err, apperrors.ErrTokenRevoked),
		errors.Is(err, apperrors.ErrTokenInvalid):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid or revoked token")

	case errors.Is(err, apperrors.ErrPermissionDenied):
		status = http.StatusForbidden
		detail = dto.NewErrorDetail(dto.ErrorCodeForbidden, err.Error())

	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrOrganizationNotFound),
		errors.Is(err, apperrors.ErrOpportunityNotFound),
		errors.Is(err, apperrors.ErrSignupNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		status = http.StatusNotFound
		detail = dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())

	case errors.Is(err, apperrors.ErrEmailExists),
		errors.Is(err, apperrors.ErrNetIDExists),
		errors.Is(err, apperrors.ErrUserExists),
		errors.Is(err, apperrors.ErrOrganizationNameTaken),
		errors.Is(err, apperrors.ErrOpportunityTitleTaken):
		status = http.StatusConflict
		detail = dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, err.Error())

	case errors.Is(err, apperrors.ErrAlreadySignedUp):
		status = http.StatusConflict
		detail = dto.NewErrorDetail(dto.ErrorCodeAlreadySignedUp, err.Error())

	case errors.Is(err, apperrors.ErrCapacityReached):
		status = http.StatusConflict
		detail = dto.NewErrorDetail(dto.ErrorCodeCapacityReached, err.Error())

	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
		detail = dto.NewErrorDetail(dto.ErrorCodeConflict, err.Error())

	case errors.Is(err, apperrors.ErrUpstream):
		status = http.StatusBadGateway
		detail = dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, err.Error())

	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		status = http.StatusInternalServerError
		detail = dto.NewErrorDetail(dto.ErrorCodeInternalServer, "An unexpected error occurred")
	}

	c.JSON(status, dto.NewErrorResponse(detail))
}

// HandleBindingError reports a malformed request body or form
func HandleBindingError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request: "+err.Error())
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
