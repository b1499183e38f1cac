package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

type tokenIssuer interface {
	GenerateToken(operatorID int64, role string) (string, error)
}

type Service struct {
	repo Repository
	jwt  tokenIssuer
	now  func() time.Time
}

func NewService(repo Repository, jwt tokenIssuer) *Service {
	return &Service{repo: repo, jwt: jwt, now: time.Now}
}

type LoginResult struct {
	Token    string    `json:"token"`
	Operator *Operator `json:"operator"`
}

// Login checks credentials and issues an access token. Repeated failures lock
// the account for lockoutDuration.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	op, err := s.repo.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, ErrOperatorNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if op.Disabled {
		return nil, ErrAccountDisabled
	}
	if op.LockedUntil != nil && op.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, op.PasswordHash); err != nil {
		failed := op.FailedLoginAttempts + 1
		updates := map[string]any{"failed_login_attempts": failed}
		if failed >= maxFailedLoginAttempts {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if updateErr := s.repo.Update(ctx, op.ID, updates); updateErr != nil {
			return nil, updateErr
		}
		if failed >= maxFailedLoginAttempts {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.Update(ctx, op.ID, map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}); err != nil {
		return nil, err
	}
	op.FailedLoginAttempts = 0
	op.LockedUntil = nil
	op.LastLoginAt = &now

	token, err := s.jwt.GenerateToken(op.ID, string(op.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Operator: op}, nil
}

func (s *Service) Me(ctx context.Context, operatorID int64) (*Operator, error) {
	return s.repo.GetByID(ctx, operatorID)
}

type CreateOperatorRequest struct {
	Username    string `json:"username" validate:"required,notblank,max=64"`
	DisplayName string `json:"display_name" validate:"max=128"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        Role   `json:"role" validate:"required"`
}

func (s *Service) CreateOperator(ctx context.Context, req CreateOperatorRequest) (*Operator, error) {
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	op := &Operator{
		Username:     normalizeUsername(req.Username),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.repo.Create(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

// EnsureOperator creates the operator unless the username is already taken.
// The bool reports whether a new account was created.
func (s *Service) EnsureOperator(ctx context.Context, req CreateOperatorRequest) (*Operator, bool, error) {
	existing, err := s.repo.GetByUsername(ctx, normalizeUsername(req.Username))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrOperatorNotFound) {
		return nil, false, err
	}
	op, err := s.CreateOperator(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return op, true, nil
}

func normalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}
