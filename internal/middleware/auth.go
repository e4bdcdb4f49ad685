package middleware

import (
	"strings"

	"github.com/estatedesk/portal/internal/utils"
	"github.com/estatedesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "user_id"
	ContextSubjectID = "subject_id"
	ContextRole      = "role"
)

// AuthRequired is a middleware that checks for a valid JWT token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, response.NewUnauthorized("authorization header required"))
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abort(c, response.NewUnauthorized("invalid authorization header format"))
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			abort(c, response.NewUnauthorized("invalid or expired token"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextSubjectID, claims.SubjectID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// AdminRequired is a middleware that checks for admin role
func AdminRequired() gin.HandlerFunc {
	return RoleRequired(utils.RoleAdmin)
}

// RoleRequired lets the request through when the caller has one of roles.
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abort(c, response.NewForbidden(strings.Join(roles, " or ")+" access required"))
	}
}

func abort(c *gin.Context, err *response.AppError) {
	response.Error(c, err)
	c.Abort()
}

func getString(c *gin.Context, key string) string {
	if v, exists := c.Get(key); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) string {
	return getString(c, ContextUserID)
}

// GetSubjectID returns the consultant or client ID the caller acts as.
func GetSubjectID(c *gin.Context) string {
	return getString(c, ContextSubjectID)
}

// GetRole gets the current user role from context
func GetRole(c *gin.Context) string {
	return getString(c, ContextRole)
}
