package middleware

import (
	"net/http"
	"strings"

	"github.com/azerckid/C-Stay-tinder/internal/service"
	"github.com/gin-gonic/gin"
)

// Context keys for storing auth claims in the request context.
const (
	// ContextKeyUserID stores the authenticated user's ID.
	ContextKeyUserID = "auth_user_id"
	// ContextKeyEmail stores the authenticated user's email.
	ContextKeyEmail = "auth_email"
)

// JWTAuth returns a Gin middleware that validates a Bearer token from the
// Authorization header using the provided AuthService.
//
// On success, user claims are stored in the Gin context under ContextKey* keys.
// On failure, the request is aborted with a 401 response.
func JWTAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format; expected 'Bearer <token>'"})
			return
		}

		claims, err := authService.ValidateAccessToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		// Store claims in context for downstream handlers.
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)

		c.Next()
	}
}

// UserID extracts the authenticated user's ID set by JWTAuth. ok is false
// when the middleware did not run on this route.
func UserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
