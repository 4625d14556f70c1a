package util

import (
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// GetUserIDFromContext extracts the user ID from the Gin context.
// Returns the user ID and true if found, or empty string and false if not authenticated.
// If the user is not authenticated, it automatically responds with 401 Unauthorized.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		RespondUnauthorized(c, "unauthorized")
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		RespondUnauthorized(c, "unauthorized")
		return "", false
	}
	return userIDStr, true
}

// GetUsernameFromContext returns the username claim of the verified token, if any
func GetUsernameFromContext(c *gin.Context) string {
	return c.GetString(ContextUsername)
}
