package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"project-tracker-api/internal/middleware"
	"project-tracker-api/internal/repository"
	"project-tracker-api/internal/response"
)

// currentUser extracts the authenticated user id set by the auth middleware.
// It writes a 401 and returns false when absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userUUID, true
}

// pathID parses the :id route parameter, writing a 400 on failure
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// listOptions builds paging and column filters from the query string.
// filters maps accepted query parameters to columns; anything else is ignored.
func listOptions(c *gin.Context, filters map[string]string) (repository.ListOptions, error) {
	opts := repository.ListOptions{Filters: map[string]interface{}{}}

	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return opts, response.NewValidationError("Invalid page", v)
		}
		opts.Page = page
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return opts, response.NewValidationError("Invalid limit", v)
		}
		opts.Limit = limit
	}

	for param, column := range filters {
		raw, ok := c.GetQuery(param)
		if !ok || raw == "" {
			continue
		}
		value, err := filterValue(column, raw)
		if err != nil {
			return opts, response.NewValidationError("Invalid "+param, raw)
		}
		opts.Filters[column] = value
	}

	// order stays empty so the service can apply its own
	paged := opts.Normalize()
	opts.Page, opts.Limit = paged.Page, paged.Limit
	return opts, nil
}

func filterValue(column, raw string) (interface{}, error) {
	if column == "id" || strings.HasSuffix(column, "_id") {
		return uuid.Parse(raw)
	}
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if strings.HasSuffix(column, "status") || column == "priority" || column == "type" || column == "role" || column == "entity_type" || column == "resource_type" {
		return strings.ToUpper(raw), nil
	}
	return raw, nil
}
