package auth

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// CanWrite reports whether the role may verify or create records.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleOperator
}

// Operator is a warehouse user who scans equipment.
type Operator struct {
	ID                  int64      `json:"id" gorm:"primaryKey"`
	Username            string     `json:"username" gorm:"uniqueIndex;size:64;not null"`
	DisplayName         string     `json:"display_name" gorm:"size:128"`
	PasswordHash        string     `json:"-" gorm:"not null"`
	Role                Role       `json:"role" gorm:"size:16;not null"`
	Disabled            bool       `json:"disabled"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Operator) TableName() string { return "operators" }

// Models lists the tables owned by this package.
func Models() []any {
	return []any{&Operator{}}
}
