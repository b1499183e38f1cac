package workflow

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"dcreceiving/internal/domain/inventory"
	"dcreceiving/internal/domain/verification"
)

type Kind string

const (
	KindVerified             Kind = "verified"
	KindUnverified           Kind = "unverified"
	KindSerialNotFound       Kind = "serial_not_found"
	KindAlreadyVerified      Kind = "already_verified"
	KindEvidenceUploadFailed Kind = "evidence_upload_failed"
	KindStoreUnavailable     Kind = "store_unavailable"
	KindInvalidSerial        Kind = "invalid_serial"
	KindDeliveryNoteNotFound Kind = "delivery_note_not_found"
	KindEquipmentNotFound    Kind = "equipment_not_found"
	KindSubmitInProgress     Kind = "submit_in_progress"
	KindFailed               Kind = "failed"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is the operator-facing outcome of one attempt.
type Notice struct {
	Kind    Kind      `json:"kind"`
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier is the single outlet for attempt outcomes.
type Notifier interface {
	Notify(n Notice)
}

// LogNotifier writes notices to the structured log.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(notice Notice) {
	fields := []zap.Field{
		zap.String("kind", string(notice.Kind)),
		zap.String("title", notice.Title),
		zap.String("message", notice.Message),
	}
	switch notice.Level {
	case LevelError:
		n.log.Error("operator notice", fields...)
	case LevelWarning:
		n.log.Warn("operator notice", fields...)
	default:
		n.log.Info("operator notice", fields...)
	}
}

// SuccessNotice describes a completed verification.
func SuccessNotice(item *inventory.EquipmentItem, withPhoto bool) Notice {
	msg := "Serial " + item.SerialNumber + " marked as received."
	if withPhoto {
		msg = "Serial " + item.SerialNumber + " marked as received with photo evidence."
	}
	return Notice{Kind: KindVerified, Level: LevelSuccess, Title: "Equipment verified", Message: msg}
}

func unverifiedNotice(item *inventory.EquipmentItem) Notice {
	return Notice{Kind: KindUnverified, Level: LevelInfo, Title: "Verification undone", Message: "Serial " + item.SerialNumber + " is no longer marked as received."}
}

// NoticeFor translates an attempt error into what the operator sees.
func NoticeFor(err error) Notice {
	switch {
	case errors.Is(err, verification.ErrEmptySerial):
		return Notice{Kind: KindInvalidSerial, Level: LevelWarning, Title: "Serial number required", Message: "Scan or type a serial number before submitting."}
	case errors.Is(err, verification.ErrSerialNotFound):
		return Notice{Kind: KindSerialNotFound, Level: LevelError, Title: "Serial not found", Message: "This serial number does not belong to this delivery note."}
	case errors.Is(err, verification.ErrAlreadyVerified):
		return Notice{Kind: KindAlreadyVerified, Level: LevelWarning, Title: "Already verified", Message: "This item has already been marked as received."}
	case errors.Is(err, verification.ErrDeliveryNoteNotFound):
		return Notice{Kind: KindDeliveryNoteNotFound, Level: LevelError, Title: "Delivery note not found", Message: "The delivery note no longer exists."}
	case errors.Is(err, verification.ErrEquipmentNotFound):
		return Notice{Kind: KindEquipmentNotFound, Level: LevelError, Title: "Equipment not found", Message: "The equipment item no longer exists."}
	case errors.Is(err, ErrEvidenceUploadFailed):
		return Notice{Kind: KindEvidenceUploadFailed, Level: LevelError, Title: "Photo upload failed", Message: "The photo could not be saved and the item was not verified. Scan the serial again with the photo to retry."}
	case errors.Is(err, ErrSubmitInProgress):
		return Notice{Kind: KindSubmitInProgress, Level: LevelWarning, Title: "Scan in progress", Message: "Wait for the current scan to finish."}
	case errors.Is(err, inventory.ErrStoreUnavailable):
		return Notice{Kind: KindStoreUnavailable, Level: LevelError, Title: "Storage unavailable", Message: "The receiving database could not be reached. Nothing was changed."}
	}
	return Notice{Kind: KindFailed, Level: LevelError, Title: "Verification failed", Message: "The scan could not be processed."}
}
