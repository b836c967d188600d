package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharma-elog-backend/internal/apperr"
)

// writeError maps the shared error taxonomy onto HTTP statuses. Persistence
// details are logged server-side and never echoed to the client.
func writeError(c *gin.Context, err error) {
	var validation *apperr.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
		return
	}

	var authn *apperr.AuthenticationError
	if errors.As(err, &authn) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": authn.Message})
		return
	}

	var authz *apperr.AuthorizationError
	if errors.As(err, &authz) {
		c.JSON(http.StatusForbidden, gin.H{"error": authz.Error()})
		return
	}

	var notFound *apperr.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}

	var conflict *apperr.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Message})
		return
	}

	log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
