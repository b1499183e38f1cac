package verification

import (
	"context"
	"errors"
	"strings"

	"dcreceiving/internal/domain/inventory"
)

// Engine flips the verified flag of a single equipment item. It holds no
// state of its own; concurrent callers are serialised by the store's
// conditional update.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Verify marks the item with the given serial on the given delivery note as
// received. Serials are compared exactly after trimming, ignoring case, and
// only against items of that note. evidenceRef may be empty.
func (e *Engine) Verify(ctx context.Context, serialNumber string, deliveryNoteID int64, evidenceRef string) (*inventory.EquipmentItem, error) {
	serial := strings.TrimSpace(serialNumber)
	if serial == "" {
		return nil, ErrEmptySerial
	}

	if err := e.RequireDeliveryNote(ctx, deliveryNoteID); err != nil {
		return nil, err
	}

	items, err := e.store.ListEquipmentByDeliveryNote(ctx, deliveryNoteID)
	if err != nil {
		return nil, err
	}

	var match *inventory.EquipmentItem
	for i := range items {
		if items[i].MatchesSerial(serial) {
			match = &items[i]
			break
		}
	}
	if match == nil {
		return nil, ErrSerialNotFound
	}
	if match.IsVerified {
		return nil, ErrAlreadyVerified
	}

	var ref *string
	if evidenceRef != "" {
		ref = &evidenceRef
	}
	updated, err := e.store.UpdateEquipmentVerification(ctx, match.ID, true, ref)
	switch {
	case errors.Is(err, inventory.ErrVerificationConflict):
		// another scanner won between the read and the update
		return nil, ErrAlreadyVerified
	case errors.Is(err, inventory.ErrNotFound):
		return nil, ErrSerialNotFound
	case err != nil:
		return nil, err
	}
	return updated, nil
}

// Unverify clears verification on one item. Clearing an unverified item is a
// no-op that still succeeds.
func (e *Engine) Unverify(ctx context.Context, equipmentID int64) (*inventory.EquipmentItem, error) {
	item, err := e.store.UpdateEquipmentVerification(ctx, equipmentID, false, nil)
	if errors.Is(err, inventory.ErrNotFound) {
		return nil, ErrEquipmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Equipment loads one item, translating a miss to ErrEquipmentNotFound.
func (e *Engine) Equipment(ctx context.Context, equipmentID int64) (*inventory.EquipmentItem, error) {
	item, err := e.store.GetEquipment(ctx, equipmentID)
	if errors.Is(err, inventory.ErrNotFound) {
		return nil, ErrEquipmentNotFound
	}
	return item, err
}

// RequireDeliveryNote reports ErrDeliveryNoteNotFound when the note is absent.
func (e *Engine) RequireDeliveryNote(ctx context.Context, deliveryNoteID int64) error {
	_, err := e.store.GetDeliveryNote(ctx, deliveryNoteID)
	if errors.Is(err, inventory.ErrNotFound) {
		return ErrDeliveryNoteNotFound
	}
	return err
}
