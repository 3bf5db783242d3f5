package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/logger"
)

// pictureErrors are validation failures reported with the invalid-file code
var pictureErrors = []error{
	apperrors.ErrPictureMissing,
	apperrors.ErrPictureTooLarge,
	apperrors.ErrPictureBadExtension,
	apperrors.ErrPictureBadMimeType,
	apperrors.ErrPictureBadDimensions,
}

// publicMessage prefers the message carried by the error over fallback
func publicMessage(err error, fallback string) string {
	if msg := apperrors.PublicMessage(err); msg != "" {
		return msg
	}
	return fallback
}

func errorDetails(err error) map[string]interface{} {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && len(custom.Details) > 0 {
		return custom.Details
	}
	return nil
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classifyError(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error while serving request")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func classifyError(err error) (int, *dto.ErrorDetail) {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge,
			dto.NewErrorDetail(dto.ErrorCodePayloadTooLarge, "Request body too large").WithDetails(map[string]interface{}{"limit": maxBytesErr.Limit})
	case apperrors.Is(err, pictureErrors[0], pictureErrors[1:]...):
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidFile, publicMessage(err, "Invalid file")).WithField("profile_pic")
		if details := errorDetails(err); details != nil {
			detail.WithDetails(details)
		}
		return http.StatusBadRequest, detail
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, publicMessage(err, "Validation failed"))
		if details := errorDetails(err); details != nil {
			detail.WithDetails(details)
		}
		return http.StatusBadRequest, detail
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, publicMessage(err, "Resource not found"))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, publicMessage(err, "Permission denied"))
	case apperrors.Is(err, apperrors.ErrConflict, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, publicMessage(err, "Resource already exists"))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "No active account found with the given credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrTokenRevoked):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Token revoked")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrStorageFault):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Internal server error")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
