package web

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashfaq-akash/LittleLemonApi/internal/access"
	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
)

// Authenticator resolves an API token into the caller's principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (access.Principal, error)
}

// WithLogging assigns a request ID and logs each request when it completes
func WithLogging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = logger.GenerateRequestID()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		log.Debug("request_started",
			fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"remote_addr": c.ClientIP(),
				"user_agent":  c.Request.UserAgent(),
			})

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if p, ok := Principal(c); ok {
			fields["user_id"] = p.UserID
		}
		msg := fmt.Sprintf("%s %s - %d", c.Request.Method, c.Request.URL.Path, status)
		if status >= 500 {
			log.Warn("request_completed", msg, requestID, fields)
			return
		}
		log.Info("request_completed", msg, requestID, fields)
	}
}

// Authenticate resolves "Authorization: Token <key>" (or Bearer) into a
// principal. Requests without the header stay anonymous; an unknown key
// is rejected with 401.
func Authenticate(auth Authenticator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}

		scheme, key, found := strings.Cut(header, " ")
		key = strings.TrimSpace(key)
		if !found || key == "" || (!strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer")) {
			Fail(c, log, "authenticate", apperr.Unauthenticated("Invalid token header."))
			return
		}

		p, err := auth.Authenticate(c.Request.Context(), key)
		if err != nil {
			Fail(c, log, "authenticate", err)
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests
func RequireAuth(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := MustPrincipal(c); err != nil {
			Fail(c, log, "require_auth", err)
			return
		}
		c.Next()
	}
}
