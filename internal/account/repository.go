package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an account record is not found.
var ErrNotFound = errors.New("account not found")

// ErrUsernameTaken is returned when a username is already in use by a
// non-deleted account.
var ErrUsernameTaken = errors.New("username already exists")

// Repository provides operations on the accounts table. Reads and
// mutations other than the deleted-view methods see non-deleted rows
// only.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Account, error)
	// SoftDelete marks the account deleted and reports how many rows
	// changed; deleting an already-deleted or missing id affects zero
	// rows and is not an error.
	SoftDelete(ctx context.Context, id uuid.UUID) (int64, error)
	// HardDelete removes the row unconditionally, deleted or not.
	HardDelete(ctx context.Context, id uuid.UUID) (int64, error)
	// Recover clears deleted_at; only currently soft-deleted rows are
	// affected, reported through the row count.
	Recover(ctx context.Context, id uuid.UUID) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	GetDeleted(ctx context.Context, id uuid.UUID) (*Account, error)
	ListDeleted(ctx context.Context) ([]Account, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
