package controllers

import (
	"errors"
	"net/http"

	"mealtracker/services"

	"github.com/gin-gonic/gin"
)

// writeError maps the service error taxonomy onto HTTP: validation →
// 400, auth → 401, anything else (store failures) → 500.
func writeError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	var aErr *services.AuthError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
	case errors.As(err, &aErr):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
