// Package controllers handles HTTP request handling
package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyshare/backend/internal/app/models"
)

// currentUserID reads the authenticated user's ID placed in the context by
// the auth middleware.
func currentUserID(ctx *gin.Context) (int64, bool) {
	value, exists := ctx.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := value.(int64)
	return userID, ok
}

// currentUserRole reads the authenticated user's role from the context.
func currentUserRole(ctx *gin.Context) models.Role {
	value, exists := ctx.Get("role")
	if !exists {
		return ""
	}
	roleStr, ok := value.(string)
	if !ok {
		return ""
	}
	return models.Role(roleStr)
}

// pathID parses a numeric path parameter.
func pathID(ctx *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(ctx.Param(name), 10, 64)
}
