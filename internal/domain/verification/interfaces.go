package verification

import (
	"context"

	"dcreceiving/internal/domain/inventory"
)

// Store is the slice of inventory.Store the engine needs.
type Store interface {
	GetDeliveryNote(ctx context.Context, id int64) (*inventory.DeliveryNote, error)
	GetEquipment(ctx context.Context, id int64) (*inventory.EquipmentItem, error)
	ListEquipmentByDeliveryNote(ctx context.Context, deliveryNoteID int64) ([]inventory.EquipmentItem, error)
	UpdateEquipmentVerification(ctx context.Context, id int64, isVerified bool, photoPath *string) (*inventory.EquipmentItem, error)
}
