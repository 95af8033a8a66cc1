package middleware

import (
	"strings"

	"github.com/fttn/logproxy/internal/models"
	"github.com/fttn/logproxy/internal/services"
	"github.com/fttn/logproxy/internal/utils"
	"github.com/fttn/logproxy/pkg/response"
	"github.com/gin-gonic/gin"
)

const contextPrincipal = "principal"

// AuthRequired resolves the session token into a Principal and stores it
// in the request context. No valid token, no access.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(contextPrincipal, &services.Principal{
			ID:          claims.UserID,
			Username:    claims.Username,
			DisplayName: claims.DisplayName,
			Role:        claims.Role,
		})

		c.Next()
	}
}

// AdminRequired rejects requests whose principal is not an admin. Must
// run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !services.RequireRole(GetPrincipal(c), models.RoleAdmin) {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated principal from the request
// context, or nil when the request is unauthenticated.
func GetPrincipal(c *gin.Context) *services.Principal {
	if v, exists := c.Get(contextPrincipal); exists {
		if p, ok := v.(*services.Principal); ok {
			return p
		}
	}
	return nil
}
