package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/aaeducates/backend/internal/pkg/apperrors"
)

// ErrNotFound is returned when a row is absent or outside the caller's filter
var ErrNotFound = apperrors.ErrResourceNotFound

// Store is the persistence surface every resource service works against.
type Store[T any] interface {
	List(ctx context.Context, filter Filter, page Page) ([]*T, int64, error)
	Get(ctx context.Context, filter Filter, id int64) (*T, error)
	FindOne(ctx context.Context, filter Filter) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	// UpdateWhere writes item only while its stored row still matches filter.
	// A row that no longer matches reports ErrNotFound.
	UpdateWhere(ctx context.Context, filter Filter, item *T) error
	Delete(ctx context.Context, id int64) error
}

// Link is a many-to-many edge stored in a join table.
type Link[T any] struct {
	Field     string
	Table     string
	OwnerCol  string
	TargetCol string
	Get       func(*T) []int64
	Set       func(*T, []int64)
}

// Unique describes a uniqueness constraint and the field error it maps to.
type Unique struct {
	Constraint string
	Columns    []string
	Field      string
	Message    string
}

// Schema maps an entity onto its table.
type Schema[T any] struct {
	Table string
	// Columns excludes the id column and matches the order of Values and Scan.
	Columns []string
	// OrderBy is applied to lists; rows are newest first when NewestFirst is set.
	OrderBy     string
	NewestFirst bool

	ID     func(*T) *int64
	Values func(*T) []interface{}
	// Scan returns scan targets for id followed by Columns.
	Scan func(*T) []interface{}
	// Loaded runs after a row is read, before it is returned.
	Loaded func(*T) error
	// Stamp sets timestamps before a row is written.
	Stamp func(item *T, now time.Time, creating bool)

	Links  []Link[T]
	Unique []Unique
}

func (s *Schema[T]) selectColumns() []string {
	return append([]string{"id"}, s.Columns...)
}

func (s *Schema[T]) uniqueFor(constraint string) (Unique, bool) {
	for _, u := range s.Unique {
		if u.Constraint == constraint {
			return u, true
		}
	}
	return Unique{}, false
}

func (s *Schema[T]) conflict(u Unique) error {
	field := u.Field
	if field == "" {
		field = apperrors.NonFieldErrors
	}
	return apperrors.NewValidationError(field, u.Message)
}

// IsNotFound reports whether err means a missing row
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
