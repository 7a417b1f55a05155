// Package web holds the gin plumbing shared by every service handler:
// identity resolution, throttling, request logging and response rendering.
package web

import (
	"github.com/gin-gonic/gin"

	"github.com/ashfaq-akash/LittleLemonApi/internal/access"
	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
)

const (
	principalKey = "principal"
	requestIDKey = "request_id"

	// RequestIDHeader is echoed back on every response
	RequestIDHeader = "X-Request-ID"
)

// Principal returns the authenticated caller. ok is false for anonymous requests.
func Principal(c *gin.Context) (p access.Principal, ok bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return access.Principal{}, false
	}
	p, ok = v.(access.Principal)
	return p, ok
}

// MustPrincipal returns the caller or the unauthenticated error
func MustPrincipal(c *gin.Context) (access.Principal, error) {
	p, ok := Principal(c)
	if !ok {
		return access.Principal{}, apperr.Unauthenticated("Authentication credentials were not provided.")
	}
	return p, nil
}

func setPrincipal(c *gin.Context, p access.Principal) {
	c.Set(principalKey, p)
}

// RequestID returns the identifier assigned to the request
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
