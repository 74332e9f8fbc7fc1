package rest

import (
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/service"

	"github.com/gin-gonic/gin"
)

// userIDKey is the gin context key holding the authenticated user's ID.
const userIDKey = "userID"

// authenticate checks the Authorization header for a bearer token and puts
// the token's user ID into the request context. Missing or invalid tokens
// abort with 401.
func authenticate(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			abortError(c, service.ErrUnauthenticated)
			return
		}

		userID, err := tokens.Parse(raw)
		if err != nil {
			abortError(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// currentUserID returns the user ID set by authenticate. Handlers behind the
// middleware can rely on it being present.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
