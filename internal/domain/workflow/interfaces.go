package workflow

import (
	"context"

	"dcreceiving/internal/domain/audit"
	"dcreceiving/internal/domain/inventory"
	"dcreceiving/internal/domain/live"
	"dcreceiving/internal/domain/progress"
	"dcreceiving/internal/domain/upload"
)

// EvidenceStore persists photos and can remove one again when the
// verification it belonged to did not go through.
type EvidenceStore interface {
	Save(ctx context.Context, operatorID int64, photo *upload.Photo) (*upload.Upload, error)
	Discard(ctx context.Context, id string) error
}

type AuditRecorder interface {
	Record(ctx context.Context, operatorID int64, action audit.Action, before, after *inventory.EquipmentItem) error
}

type Publisher interface {
	Publish(topic string, event *live.Event) int
}

// Attempter is what a Session drives.
type Attempter interface {
	Attempt(ctx context.Context, operatorID, deliveryNoteID int64, serial string, photo *upload.Photo) (*Outcome, error)
	Progress(ctx context.Context, deliveryNoteID int64) (progress.Progress, error)
}
