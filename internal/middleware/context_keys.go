package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the acting user's ID in the Gin context.
// Using a custom type prevents collisions.
const userIDKey = contextKey("userID")

// ActingUserHeader names the header callers use to identify themselves for
// audit attribution.
const ActingUserHeader = "X-User-ID"

// defaultActingUser is attributed when no caller identity is provided, such as
// posts made by background jobs or local tooling.
const defaultActingUser = "system"

// ActingUserMiddleware captures the caller identity header into the context
// so handlers can stamp audit fields.
func ActingUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(ActingUserHeader)
		if userID == "" {
			userID = defaultActingUser
		}
		c.Set(string(userIDKey), userID)
		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		userIdVal := c.Request.Context().Value(userIDKey)
		if userIdVal != nil {
			return userIdVal.(string), true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}

	return userID, true
}
