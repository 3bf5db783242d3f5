package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
)

// BindJSON decodes and validates the request body into obj. On failure it
// writes the error response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	return bindWith(c, obj, binding.JSON)
}

// BindForm binds multipart or urlencoded form fields into obj
func BindForm(c *gin.Context, obj interface{}) bool {
	return bindWith(c, obj, binding.FormMultipart)
}

func bindWith(c *gin.Context, obj interface{}, b binding.Binding) bool {
	err := c.ShouldBindWith(obj, b)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
	case errors.Is(err, io.EOF):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Request body is required")))
	case apperrors.Is(err, apperrors.ErrValidationFailed):
		HandleAPIError(c, err)
	default:
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			HandleAPIError(c, err)
			break
		}
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
	}
	return false
}

// IsMultipart reports whether the request carries multipart form data
func IsMultipart(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEMultipartPOSTForm
}
