package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dcreceiving/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetByID returns evidence metadata and its public URL.
func (h *Handler) GetByID(c *gin.Context) {
	upload, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrUploadNotFound) {
			response.Error(c, http.StatusNotFound, "UPLOAD_NOT_FOUND", "Upload not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
		return
	}
	response.Success(c, http.StatusOK, upload)
}

// WriteError maps photo validation errors for handlers that accept uploads.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, "EMPTY_FILE", err.Error())
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrInvalidMimeType):
		response.Error(c, http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusBadRequest, "INVALID_FILE", "Could not read uploaded file")
	}
}
