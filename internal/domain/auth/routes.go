package auth

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.POST("/auth/login", h.Login)
}

// RegisterProtectedRoutes expects protected to already run JWT auth; admin
// guards account management.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup, admin gin.HandlerFunc) {
	protected.GET("/auth/me", h.Me)
	protected.POST("/auth/operators", admin, h.CreateOperator)
}
