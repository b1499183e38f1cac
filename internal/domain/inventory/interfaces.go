package inventory

import "context"

// Reader is the read side of the entity store: lookups by id and by parent.
type Reader interface {
	GetProject(ctx context.Context, id int64) (*Project, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetDeliveryNote(ctx context.Context, id int64) (*DeliveryNote, error)
	GetEquipment(ctx context.Context, id int64) (*EquipmentItem, error)

	ListProjects(ctx context.Context) ([]Project, error)
	ListOrdersByProject(ctx context.Context, projectID int64) ([]Order, error)
	ListDeliveryNotesByOrder(ctx context.Context, orderID int64) ([]DeliveryNote, error)
	ListEquipmentByDeliveryNote(ctx context.Context, deliveryNoteID int64) ([]EquipmentItem, error)
}

// Store is the entity store. Implementations are chosen once at startup and
// never swapped while serving.
type Store interface {
	Reader

	CreateProject(ctx context.Context, p *Project) error
	CreateOrder(ctx context.Context, o *Order) error
	CreateDeliveryNote(ctx context.Context, n *DeliveryNote) error
	CreateEquipment(ctx context.Context, e *EquipmentItem) error

	// UpdateEquipmentVerification sets the verification fields of one item.
	// Setting isVerified=true only succeeds if the item is currently
	// unverified; otherwise ErrVerificationConflict is returned and nothing
	// changes. Setting false is unconditional.
	UpdateEquipmentVerification(ctx context.Context, id int64, isVerified bool, photoPath *string) (*EquipmentItem, error)
}
