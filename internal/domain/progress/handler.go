package progress

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dcreceiving/internal/domain/inventory"
	"dcreceiving/internal/pkg/response"
)

type Handler struct {
	aggregator *Aggregator
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// Get serves GET /progress/:level/:id.
func (h *Handler) Get(c *gin.Context) {
	level := Level(c.Param("level"))
	if !level.Valid() {
		response.Error(c, http.StatusBadRequest, "INVALID_LEVEL", "level must be project, order or delivery-note")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return
	}

	report, err := h.aggregator.Report(c.Request.Context(), level, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", string(level)+" not found")
		case errors.Is(err, inventory.ErrStoreUnavailable):
			_ = c.Error(err)
			response.Error(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Storage is unavailable, try again later")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
		}
		return
	}
	response.Success(c, http.StatusOK, report)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/progress/:level/:id", h.Get)
}
