package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dcreceiving/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListByEquipment serves GET /equipment/:id/audit.
func (h *Handler) ListByEquipment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid equipment id")
		return
	}
	entries, err := h.service.ListByEquipment(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load audit trail")
		return
	}
	response.Success(c, http.StatusOK, entries)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/equipment/:id/audit", h.ListByEquipment)
}
