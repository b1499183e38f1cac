package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, op *Operator) error
	GetByID(ctx context.Context, id int64) (*Operator, error)
	GetByUsername(ctx context.Context, username string) (*Operator, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, op *Operator) error {
	err := r.db.WithContext(ctx).Create(op).Error
	if err != nil && isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Operator, error) {
	var op Operator
	err := r.db.WithContext(ctx).First(&op, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*Operator, error) {
	var op Operator
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&Operator{}).Where("id = ?", id).Updates(fields).Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
