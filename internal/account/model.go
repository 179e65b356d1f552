package account

import (
	"time"

	"github.com/google/uuid"
)

// Roles an account may hold.
const (
	RoleAdministrator = "administrator"
	RoleOperator      = "operator"
	RoleMaintenance   = "maintenance"
	RoleDev           = "dev"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Roles and Statuses are the closed value sets accepted by the
// operation schemas.
var (
	Roles    = []string{RoleAdministrator, RoleOperator, RoleMaintenance, RoleDev}
	Statuses = []string{StatusActive, StatusInactive}
)

// Account represents a row in the accounts table.
type Account struct {
	ID           uuid.UUID
	Fullname     string
	Role         string
	Username     string
	PasswordHash string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
	DeletedAt    *time.Time
}

// UpdateFields holds updatable fields on an account. Nil fields are
// left unchanged. PasswordHash must already be hashed.
type UpdateFields struct {
	Fullname     *string
	Role         *string
	Username     *string
	PasswordHash *string
	Status       *string
}
