package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/observability"
	"alcyxob/ecofit/internal/service"

	"github.com/gin-gonic/gin"
)

// Constants for context keys
const (
	ContextPrincipalKey = "principal"
	RequestIDHeader     = "X-Request-ID"
)

// TokenParser turns a bearer token into the caller it was issued to.
type TokenParser interface {
	ParseToken(token string) (service.Principal, error)
}

// RequestLogger assigns a request id, stores it in the request context for
// downstream log records and logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := observability.WithRequestID(c.Request.Context(), c.GetHeader(RequestIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, observability.RequestIDFromContext(ctx))

		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		principal, err := tokens.ParseToken(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Request = c.Request.WithContext(observability.WithUserID(c.Request.Context(), principal.ID.String()))
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := principalFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "User principal not found in context")
			return
		}

		for _, allowed := range allowedRoles {
			if principal.Role == allowed {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, "Access denied: role '"+string(principal.Role)+"' does not have permission")
	}
}

func principalFromContext(c *gin.Context) (service.Principal, error) {
	raw, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return service.Principal{}, errors.New("principal not found in context")
	}
	principal, ok := raw.(service.Principal)
	if !ok {
		return service.Principal{}, errors.New("invalid principal type in context")
	}
	return principal, nil
}

// mustPrincipal reads the caller or aborts with 401. Handlers return when ok is false.
func mustPrincipal(c *gin.Context) (service.Principal, bool) {
	principal, err := principalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller from token.")
		return service.Principal{}, false
	}
	return principal, true
}
