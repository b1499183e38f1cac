package workflow

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dcreceiving/internal/domain/inventory"
	"dcreceiving/internal/domain/upload"
	"dcreceiving/internal/domain/verification"
	"dcreceiving/internal/middleware"
	"dcreceiving/internal/pkg/response"
	"dcreceiving/internal/pkg/validator"
)

type PhotoReader interface {
	ReadPhoto(fileHeader *multipart.FileHeader) (*upload.Photo, error)
}

type VerifyRequest struct {
	SerialNumber   string `json:"serial_number" form:"serial_number" validate:"max=128"`
	DeliveryNoteID int64  `json:"delivery_note_id" form:"delivery_note_id" validate:"required,gt=0"`
}

type ScanRequest struct {
	SerialNumber string `json:"serial_number" validate:"max=128"`
}

type Handler struct {
	controller *Controller
	sessions   *SessionManager
	photos     PhotoReader
}

func NewHandler(controller *Controller, sessions *SessionManager, photos PhotoReader) *Handler {
	return &Handler{controller: controller, sessions: sessions, photos: photos}
}

// Verify serves POST /verifications as JSON or multipart with an optional
// photo file.
func (h *Handler) Verify(c *gin.Context) {
	operatorID, ok := mustOperatorID(c)
	if !ok {
		return
	}

	var req VerifyRequest
	var photo *upload.Photo
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
			return
		}
		if photo, ok = h.formPhoto(c); !ok {
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input", fields)
		return
	}

	out, err := h.controller.Attempt(c.Request.Context(), operatorID, req.DeliveryNoteID, req.SerialNumber, photo)
	if err != nil {
		writeAttemptError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// formPhoto reads the optional photo part. Only a missing part means "no
// photo"; a part that cannot be read is reported and ok is false.
func (h *Handler) formPhoto(c *gin.Context) (*upload.Photo, bool) {
	fh, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PHOTO", "Photo could not be read")
		return nil, false
	}
	photo, err := h.photos.ReadPhoto(fh)
	if err != nil {
		upload.WriteError(c, err)
		return nil, false
	}
	return photo, true
}

// Unverify serves POST /equipment/:id/unverify.
func (h *Handler) Unverify(c *gin.Context) {
	operatorID, ok := mustOperatorID(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	out, err := h.controller.Undo(c.Request.Context(), operatorID, id)
	if err != nil {
		writeAttemptError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := s.Snapshot(c.Request.Context())
	if err != nil {
		writeAttemptError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

func (h *Handler) StagePhoto(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "No photo provided")
		return
	}
	photo, err := h.photos.ReadPhoto(fh)
	if err != nil {
		upload.WriteError(c, err)
		return
	}
	if err := s.StagePhoto(photo); err != nil {
		writeAttemptError(c, err)
		return
	}
	h.respondSnapshot(c, s)
}

func (h *Handler) DiscardPhoto(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.DiscardPhoto(); err != nil {
		writeAttemptError(c, err)
		return
	}
	h.respondSnapshot(c, s)
}

func (h *Handler) Scan(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	out, err := s.Submit(c.Request.Context(), req.SerialNumber)
	if err != nil {
		writeAttemptError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) respondSnapshot(c *gin.Context, s *Session) {
	snap, err := s.Snapshot(c.Request.Context())
	if err != nil {
		writeAttemptError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// session resolves the caller's session for the :id delivery note. The note
// must exist before a session is opened.
func (h *Handler) session(c *gin.Context) (*Session, bool) {
	operatorID, ok := mustOperatorID(c)
	if !ok {
		return nil, false
	}
	noteID, ok := paramID(c)
	if !ok {
		return nil, false
	}
	if s, ok := h.sessions.Lookup(operatorID, noteID); ok {
		return s, true
	}
	if err := h.controller.engine.RequireDeliveryNote(c.Request.Context(), noteID); err != nil {
		writeAttemptError(c, err)
		return nil, false
	}
	return h.sessions.Get(operatorID, noteID), true
}

func writeAttemptError(c *gin.Context, err error) {
	n := NoticeFor(err)
	notice := response.Notice{Level: string(n.Level), Title: n.Title, Message: n.Message}
	switch {
	case errors.Is(err, verification.ErrEmptySerial):
		response.ErrorWithNotice(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", notice)
	case errors.Is(err, verification.ErrSerialNotFound):
		response.ErrorWithNotice(c, http.StatusNotFound, "SERIAL_NOT_FOUND", notice)
	case errors.Is(err, verification.ErrDeliveryNoteNotFound):
		response.ErrorWithNotice(c, http.StatusNotFound, "DELIVERY_NOTE_NOT_FOUND", notice)
	case errors.Is(err, verification.ErrEquipmentNotFound):
		response.ErrorWithNotice(c, http.StatusNotFound, "EQUIPMENT_NOT_FOUND", notice)
	case errors.Is(err, verification.ErrAlreadyVerified):
		response.ErrorWithNotice(c, http.StatusConflict, "ALREADY_VERIFIED", notice)
	case errors.Is(err, ErrSubmitInProgress):
		response.ErrorWithNotice(c, http.StatusConflict, "SUBMIT_IN_PROGRESS", notice)
	case errors.Is(err, ErrEvidenceUploadFailed):
		_ = c.Error(err)
		response.ErrorWithNotice(c, http.StatusBadGateway, "EVIDENCE_UPLOAD_FAILED", notice)
	case errors.Is(err, inventory.ErrStoreUnavailable):
		_ = c.Error(err)
		response.ErrorWithNotice(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", notice)
	default:
		_ = c.Error(err)
		response.ErrorWithNotice(c, http.StatusInternalServerError, "INTERNAL_ERROR", notice)
	}
}

func mustOperatorID(c *gin.Context) (int64, bool) {
	id, ok := middleware.OperatorID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return 0, false
	}
	return id, true
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}
