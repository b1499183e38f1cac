package inventory

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the hierarchy endpoints. write guards mutating routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, write gin.HandlerFunc) {
	rg.GET("/projects", h.ListProjects)
	rg.POST("/projects", write, h.CreateProject)
	rg.GET("/projects/:id", h.GetProject)

	rg.GET("/projects/:id/orders", h.ListOrders)
	rg.POST("/projects/:id/orders", write, h.CreateOrder)
	rg.GET("/orders/:id", h.GetOrder)

	rg.GET("/orders/:id/delivery-notes", h.ListDeliveryNotes)
	rg.POST("/orders/:id/delivery-notes", write, h.CreateDeliveryNote)
	rg.GET("/delivery-notes/:id", h.GetDeliveryNote)

	rg.GET("/delivery-notes/:id/equipment", h.ListEquipment)
	rg.POST("/delivery-notes/:id/equipment", write, h.CreateEquipment)
	rg.GET("/equipment/:id", h.GetEquipment)
}
