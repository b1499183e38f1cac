package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes the store distinguishes.
const (
	pgErrUniqueViolation = "23505"

	constraintProjectRITM     = "idx_projects_ritm"
	constraintEquipmentSerial = "idx_equipment_note_serial"
)

// GormStore is the relational Store backed by PostgreSQL or SQLite.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetProject(ctx context.Context, id int64) (*Project, error) {
	var p Project
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, wrapErr("get project", err)
	}
	return &p, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, wrapErr("get order", err)
	}
	return &o, nil
}

func (s *GormStore) GetDeliveryNote(ctx context.Context, id int64) (*DeliveryNote, error) {
	var n DeliveryNote
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, wrapErr("get delivery note", err)
	}
	return &n, nil
}

func (s *GormStore) GetEquipment(ctx context.Context, id int64) (*EquipmentItem, error) {
	var e EquipmentItem
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, wrapErr("get equipment", err)
	}
	return &e, nil
}

func (s *GormStore) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrapErr("list projects", err)
	}
	return out, nil
}

func (s *GormStore) ListOrdersByProject(ctx context.Context, projectID int64) ([]Order, error) {
	var out []Order
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrapErr("list orders", err)
	}
	return out, nil
}

func (s *GormStore) ListDeliveryNotesByOrder(ctx context.Context, orderID int64) ([]DeliveryNote, error) {
	var out []DeliveryNote
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrapErr("list delivery notes", err)
	}
	return out, nil
}

func (s *GormStore) ListEquipmentByDeliveryNote(ctx context.Context, deliveryNoteID int64) ([]EquipmentItem, error) {
	var out []EquipmentItem
	if err := s.db.WithContext(ctx).Where("delivery_note_id = ?", deliveryNoteID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrapErr("list equipment", err)
	}
	return out, nil
}

func (s *GormStore) CreateProject(ctx context.Context, p *Project) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueConstraintError(err, constraintProjectRITM) {
			return ErrDuplicateRITM
		}
		return wrapErr("create project", err)
	}
	return nil
}

func (s *GormStore) CreateOrder(ctx context.Context, o *Order) error {
	return wrapErr("create order", s.db.WithContext(ctx).Create(o).Error)
}

func (s *GormStore) CreateDeliveryNote(ctx context.Context, n *DeliveryNote) error {
	return wrapErr("create delivery note", s.db.WithContext(ctx).Create(n).Error)
}

func (s *GormStore) CreateEquipment(ctx context.Context, e *EquipmentItem) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		if isUniqueConstraintError(err, constraintEquipmentSerial) {
			return ErrDuplicateSerial
		}
		return wrapErr("create equipment", err)
	}
	return nil
}

func (s *GormStore) UpdateEquipmentVerification(ctx context.Context, id int64, isVerified bool, photoPath *string) (*EquipmentItem, error) {
	now := time.Now().UTC()

	var photo, verifiedAt interface{}
	if photoPath != nil {
		photo = *photoPath
	}
	if isVerified {
		verifiedAt = now
	}

	q := s.db.WithContext(ctx).Model(&EquipmentItem{}).Where("id = ?", id)
	if isVerified {
		// compare-and-set: only one concurrent verifier can flip the flag
		q = q.Where("is_verified = ?", false)
	}
	res := q.Updates(map[string]interface{}{
		"is_verified":             isVerified,
		"verification_photo_path": photo,
		"verified_at":             verifiedAt,
		"updated_at":              now,
	})
	if res.Error != nil {
		return nil, wrapErr("update equipment verification", res.Error)
	}

	item, err := s.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && isVerified {
		return item, ErrVerificationConflict
	}
	return item, nil
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// isUniqueConstraintError matches PostgreSQL unique violations by constraint
// name and falls back to the driver message for SQLite.
func isUniqueConstraintError(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique constraint") && !strings.Contains(msg, "duplicate") {
		return false
	}
	switch constraint {
	case constraintProjectRITM:
		return strings.Contains(msg, "ritm")
	case constraintEquipmentSerial:
		return strings.Contains(msg, "serial_key")
	}
	return true
}
