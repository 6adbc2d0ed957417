package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"bookable-backend/services"
	"bookable-backend/utils"

	"github.com/gin-gonic/gin"
)

// uintParam parses a numeric path parameter; responds 400 and returns false
// when it is missing or malformed.
func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "path parameter "+name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// parseQueryUint reads an optional numeric query parameter.
func parseQueryUint(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// respondServiceError maps the service error taxonomy onto HTTP statuses with
// a specific reason code per outcome. Conflicts additionally carry the
// blocking records so the UI can show why a slot is taken.
func respondServiceError(c *gin.Context, err error) {
	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "error.slotUnavailable",
				"message": "the requested window overlaps an existing booking or hold",
			},
			"conflicts": conflictErr.Conflicts,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.notFound", err.Error())
	case errors.Is(err, services.ErrInvalidWindow):
		utils.JSONError(c, http.StatusBadRequest, "error.invalidWindow", err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.JSONError(c, http.StatusUnprocessableEntity, "error.invalidTransition", err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		utils.JSONError(c, http.StatusForbidden, "error.unauthorized", err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "error.conflict", err.Error())
	case errors.Is(err, services.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "an internal error occurred")
	}
}
