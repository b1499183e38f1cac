package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dcreceiving/internal/pkg/jwt"
	"dcreceiving/internal/pkg/response"
)

const (
	ctxOperatorID = "operator_id"
	ctxRole       = "role"
)

// JWTAuth requires a valid bearer token and stores the operator id and role
// on the context.
func JWTAuth(j *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}
		if !strings.HasPrefix(h, "Bearer ") {
			abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Empty token")
			return
		}

		claims, err := j.ValidateToken(tokenStr)
		if err != nil {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ctxOperatorID, claims.OperatorID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireRole lets the request through when the token role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}
		if !allowed[role] {
			abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}
		c.Next()
	}
}

// OperatorID returns the authenticated operator, or false if JWTAuth did not
// run.
func OperatorID(c *gin.Context) (int64, bool) {
	id := c.GetInt64(ctxOperatorID)
	return id, id != 0
}

func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func abort(c *gin.Context, status int, code, message string) {
	response.Error(c, status, code, message)
	c.Abort()
}
