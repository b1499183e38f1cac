package workflow

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the scanning endpoints behind the write guard.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, write gin.HandlerFunc) {
	rg.POST("/verifications", write, h.Verify)
	rg.POST("/equipment/:id/unverify", write, h.Unverify)

	session := rg.Group("/delivery-notes/:id/session", write)
	{
		session.GET("", h.GetSession)
		session.POST("/photo", h.StagePhoto)
		session.DELETE("/photo", h.DiscardPhoto)
		session.POST("/scan", h.Scan)
	}
}
