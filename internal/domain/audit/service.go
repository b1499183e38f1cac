package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"dcreceiving/internal/domain/inventory"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores a snapshot of an item around a verification change. before or
// after may be nil.
func (s *Service) Record(ctx context.Context, operatorID int64, action Action, before, after *inventory.EquipmentItem) error {
	ref := after
	if ref == nil {
		ref = before
	}
	if ref == nil {
		return fmt.Errorf("audit %s: no equipment snapshot", action)
	}

	beforeJSON, err := snapshot(before)
	if err != nil {
		return err
	}
	afterJSON, err := snapshot(after)
	if err != nil {
		return err
	}

	entry := &Entry{
		OperatorID:     operatorID,
		EquipmentID:    ref.ID,
		DeliveryNoteID: ref.DeliveryNoteID,
		Action:         action,
		Description:    fmt.Sprintf("%s %s", action, ref.SerialNumber),
		Before:         beforeJSON,
		After:          afterJSON,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("audit log could not be saved: %w", err)
	}
	return nil
}

func (s *Service) ListByEquipment(ctx context.Context, equipmentID int64) ([]Entry, error) {
	return s.repo.ListByEquipment(ctx, equipmentID)
}

func snapshot(item *inventory.EquipmentItem) (datatypes.JSON, error) {
	if item == nil {
		return datatypes.JSON("null"), nil
	}
	b, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("marshal audit snapshot: %w", err)
	}
	return datatypes.JSON(b), nil
}
