package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/pkg/apperrors"
	"github.com/commune-social/commune/internal/pkg/logger"
)

// HandleAPIError maps application errors to HTTP responses. Services speak
// in apperrors sentinels; this is the single place they become status codes.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrCommunityNotFound,
		apperrors.ErrPostNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrModeratorNotFound,
		apperrors.ErrNotMember,
		apperrors.ErrResourceNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, errMessage(err, "Resource not found"))

	case apperrors.Is(err, apperrors.ErrCommunityNameExists,
		apperrors.ErrAlreadyMember,
		apperrors.ErrResourceAlreadyExists,
		apperrors.ErrConflict):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, errMessage(err, "Conflict"))

	case apperrors.Is(err, apperrors.ErrUserBanned,
		apperrors.ErrMembershipRequired,
		apperrors.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, errMessage(err, "Permission denied"))

	case apperrors.Is(err, apperrors.ErrOwnerCannotLeave,
		apperrors.ErrCannotBanOwner,
		apperrors.ErrBadRequest):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, errMessage(err, "Bad request"))

	case errors.Is(err, apperrors.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")

	case apperrors.Is(err, apperrors.ErrTokenInvalid,
		apperrors.ErrTokenNotFound,
		apperrors.ErrInvalidFormat):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error in request")
		respondError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// errMessage prefers the message a CustomError carries over the fallback
func errMessage(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

func respondError(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
