// Package polyref implements the generic (kind, id) references used for
// post and comment authors and workbook purchasers.
//
// Each reference field accepts a closed set of kinds. Clients name a kind
// with a "<namespace>.<KindName>" tag; the namespace must match exactly and
// the kind name is compared lower-cased. The persisted identifier is the
// namespace followed by the lower-cased kind name.
package polyref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aaeducates/backend/internal/pkg/apperrors"
)

// Kind is the persisted identifier of a reference target kind.
type Kind string

const (
	KindStudentProfile Kind = "users.studentprofile"
	KindMentorProfile  Kind = "mentorship.mentorprofile"
	KindParentProfile  Kind = "users.parentprofile"
	KindSchoolProfile  Kind = "users.schoolprofile"
)

// ErrBrokenReference is returned when a stored reference no longer resolves.
var ErrBrokenReference = errors.New("reference target does not exist")

// tags maps each kind to the tag clients use for it.
var tags = map[Kind]string{
	KindStudentProfile: "users.StudentProfile",
	KindMentorProfile:  "mentorship.MentorProfile",
	KindParentProfile:  "users.ParentProfile",
	KindSchoolProfile:  "users.SchoolProfile",
}

// Tag returns the client-facing tag for k.
func (k Kind) Tag() string {
	if t, ok := tags[k]; ok {
		return t
	}
	return string(k)
}

// Ref is a stored polymorphic reference. The zero value means "no reference".
type Ref struct {
	Kind Kind  `json:"content_type"`
	ID   int64 `json:"object_id"`
}

// IsZero reports whether r is empty.
func (r Ref) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Field describes one reference field and the kinds it may point to.
type Field struct {
	Name    string
	Allowed []Kind
	Message string
}

var (
	// AuthorField is the author of a post or comment.
	AuthorField = Field{
		Name:    "author_type",
		Allowed: []Kind{KindStudentProfile, KindMentorProfile},
		Message: "Invalid author_type. Use users.StudentProfile or mentorship.MentorProfile",
	}

	// PurchaserField is the purchaser of a workbook.
	PurchaserField = Field{
		Name:    "purchaser_type",
		Allowed: []Kind{KindParentProfile, KindSchoolProfile},
		Message: "Invalid type. Use users.ParentProfile or users.SchoolProfile",
	}
)

// Allows reports whether k is in the field's allow-list.
func (f Field) Allows(k Kind) bool {
	for _, allowed := range f.Allowed {
		if allowed == k {
			return true
		}
	}
	return false
}

// ParseKind turns a client tag into a kind from the field's allow-list.
func (f Field) ParseKind(tag string) (Kind, error) {
	parts := strings.Split(strings.TrimSpace(tag), ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", apperrors.NewValidationError(f.Name, f.Message)
	}

	kind := Kind(parts[0] + "." + strings.ToLower(parts[1]))
	if !f.Allows(kind) {
		return "", apperrors.NewValidationError(f.Name, f.Message)
	}
	return kind, nil
}

// Parse resolves a (tag, id) pair into a reference. The target row is not
// looked up; a dangling id is accepted.
func (f Field) Parse(tag string, id int64) (Ref, error) {
	kind, err := f.ParseKind(tag)
	if err != nil {
		return Ref{}, err
	}
	if id <= 0 {
		idField := strings.TrimSuffix(f.Name, "_type") + "_id"
		return Ref{}, apperrors.NewValidationError(idField, "A valid integer is required.")
	}
	return Ref{Kind: kind, ID: id}, nil
}

// Load validates a reference read back from storage against the field.
func (f Field) Load(kind string, id int64) (Ref, error) {
	if kind == "" && id == 0 {
		return Ref{}, nil
	}
	k := Kind(kind)
	if !f.Allows(k) {
		return Ref{}, fmt.Errorf("stored kind %q is not valid for %s", kind, f.Name)
	}
	return Ref{Kind: k, ID: id}, nil
}

// Target is the read-side rendering of a resolved reference.
type Target struct {
	Type    string `json:"type"`
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Display string `json:"display"`
}

// LookupFunc resolves one kind. It returns ErrBrokenReference when the row is gone.
type LookupFunc func(ctx context.Context, id int64) (*Target, error)

// Resolver dispatches stored references to the lookup registered for their kind.
type Resolver struct {
	lookups map[Kind]LookupFunc
}

// NewResolver creates a resolver from one lookup per kind.
func NewResolver(lookups map[Kind]LookupFunc) *Resolver {
	copied := make(map[Kind]LookupFunc, len(lookups))
	for k, fn := range lookups {
		copied[k] = fn
	}
	return &Resolver{lookups: copied}
}

// Resolve returns the target of ref or ErrBrokenReference.
func (r *Resolver) Resolve(ctx context.Context, ref Ref) (*Target, error) {
	if ref.IsZero() {
		return nil, ErrBrokenReference
	}
	lookup, ok := r.lookups[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("no lookup registered for %s", ref.Kind)
	}
	target, err := lookup(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	target.Type = ref.Kind.Tag()
	target.ID = ref.ID
	return target, nil
}

// ResolveOptional resolves ref and reports a broken reference as nil.
func (r *Resolver) ResolveOptional(ctx context.Context, ref Ref) (*Target, error) {
	target, err := r.Resolve(ctx, ref)
	if errors.Is(err, ErrBrokenReference) {
		return nil, nil
	}
	return target, err
}

// MarshalJSON renders the kind with its client tag.
func (k Kind) MarshalJSON() ([]byte, error) {
	if k == "" {
		return []byte("null"), nil
	}
	return json.Marshal(k.Tag())
}
