package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"instra/internal/shared/constants"
	"instra/internal/shared/errors"
)

// currentUserID reads the authenticated user's ID set by the auth
// middleware. Routes behind RequireAuth always have it.
func currentUserID(c *gin.Context) uint {
	return c.GetUint(constants.ContextKeyUserID)
}

func activeRole(c *gin.Context) string {
	return c.GetString(constants.ContextKeyActiveRole)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return 0, errors.NewValidationError("invalid " + name + " parameter")
	}
	return uint(value), nil
}

func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.DefaultPage)))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))
	if page < 1 {
		page = constants.DefaultPage
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}
	return page, pageSize
}
