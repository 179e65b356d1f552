package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a catalog entry is not found.
var ErrNotFound = errors.New("entry not found")

// ErrDuplicateValue is returned when an entry with the same inner
// value already exists under the category.
var ErrDuplicateValue = errors.New("value already exists")

// Repository provides operations on one catalog table. Delete is
// physical; catalog kinds have no recovery path.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	// List returns entries, optionally restricted to one category,
	// ordered by category then value title.
	List(ctx context.Context, category *string) ([]Entry, error)
	// GetByList resolves a batch of named ids; missing ids map to nil.
	GetByList(ctx context.Context, ids map[string]uuid.UUID) (map[string]*Entry, error)
}
