// Package catalog implements the category/value entity store shared by
// the data-reference and enum managers. Both kinds are the same store
// over different tables; neither supports soft delete.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Value is the JSONB payload of an entry: an arbitrary value plus its
// human-facing title.
type Value struct {
	Value any    `json:"value"`
	Title string `json:"title"`
}

// Entry represents a row in a catalog table. The inner value is
// unique within a category.
type Entry struct {
	ID          uuid.UUID
	Category    string
	Value       Value
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
