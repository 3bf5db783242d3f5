// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/middleware"
)

// parseID reads a positive numeric path parameter, answering 400 otherwise
func parseID(ctx *gin.Context, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(param), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID").
			WithDetails(label + " ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// currentIdentity returns the caller set by the JWT middleware
func currentIdentity(ctx *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.GetIdentity(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return models.Identity{}, false
	}
	return identity, true
}
