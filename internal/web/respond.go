package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
)

// Fail writes err with the status from apperr.HTTPStatus. Validation errors
// render as field maps; anything unexpected is logged and hidden.
func Fail(c *gin.Context, log *logger.Logger, action string, err error) {
	status := apperr.HTTPStatus(err)
	requestID := RequestID(c)

	var validation *apperr.ValidationError
	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(status, validation.Body())
	case status == http.StatusBadRequest:
		c.AbortWithStatusJSON(status, gin.H{apperr.NonFieldKey: []string{err.Error()}})
	case status == http.StatusInternalServerError:
		log.Error(action, "Request failed", requestID, err, map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		})
		c.AbortWithStatusJSON(status, gin.H{
			"error":      "Internal server error",
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"request_id": requestID,
		})
	default:
		c.AbortWithStatusJSON(status, gin.H{"detail": err.Error()})
	}
}

// Message writes a {"message": ...} body
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// IDParam parses the named path parameter as a positive id. A malformed
// id cannot name a record, so it reports resource as not found.
func IDParam(c *gin.Context, name, resource string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound(resource)
	}
	return id, nil
}
