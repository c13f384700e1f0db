package services

import (
	"context"
	"fmt"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/polyref"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
)

// NewReferenceResolver registers one lookup per polymorphic target kind
func NewReferenceResolver(stores *repositories.Stores) *polyref.Resolver {
	display := func(ctx context.Context, userID int64) string {
		user, err := stores.Users.Get(ctx, repositories.All(), userID)
		if err != nil {
			return ""
		}
		return user.Email
	}

	return polyref.NewResolver(map[polyref.Kind]polyref.LookupFunc{
		polyref.KindStudentProfile: func(ctx context.Context, id int64) (*polyref.Target, error) {
			p, err := stores.Students.Get(ctx, repositories.All(), id)
			if err != nil {
				return nil, broken(err)
			}
			return &polyref.Target{UserID: p.UserID, Display: display(ctx, p.UserID)}, nil
		},
		polyref.KindMentorProfile: func(ctx context.Context, id int64) (*polyref.Target, error) {
			p, err := stores.Mentors.Get(ctx, repositories.All(), id)
			if err != nil {
				return nil, broken(err)
			}
			return &polyref.Target{UserID: p.UserID, Display: display(ctx, p.UserID)}, nil
		},
		polyref.KindParentProfile: func(ctx context.Context, id int64) (*polyref.Target, error) {
			p, err := stores.Parents.Get(ctx, repositories.All(), id)
			if err != nil {
				return nil, broken(err)
			}
			return &polyref.Target{UserID: p.UserID, Display: display(ctx, p.UserID)}, nil
		},
		polyref.KindSchoolProfile: func(ctx context.Context, id int64) (*polyref.Target, error) {
			p, err := stores.Schools.Get(ctx, repositories.All(), id)
			if err != nil {
				return nil, broken(err)
			}
			return &polyref.Target{UserID: p.UserID, Display: p.Name}, nil
		},
	})
}

func broken(err error) error {
	if repositories.IsNotFound(err) {
		return polyref.ErrBrokenReference
	}
	return err
}

// refCheck accumulates "row does not exist" field errors for one write
type refCheck struct {
	ctx  context.Context
	verr *apperrors.ValidationError
	err  error
}

func newRefCheck(ctx context.Context) *refCheck {
	return &refCheck{ctx: ctx, verr: &apperrors.ValidationError{}}
}

// checkRef verifies that every id names a row in store
func checkRef[R any](c *refCheck, store repositories.Store[R], field string, ids ...int64) {
	if c.err != nil {
		return
	}
	for _, id := range ids {
		if _, err := store.Get(c.ctx, repositories.All(), id); err != nil {
			if repositories.IsNotFound(err) {
				c.verr.Add(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
				continue
			}
			c.err = err
			return
		}
	}
}

// checkRequired verifies a mandatory reference
func checkRequired[R any](c *refCheck, store repositories.Store[R], field string, id int64) {
	if id == 0 {
		c.verr.Add(field, "This field is required.")
		return
	}
	checkRef(c, store, field, id)
}

// checkOptional verifies a nullable reference
func checkOptional[R any](c *refCheck, store repositories.Store[R], field string, id *int64) {
	if id != nil {
		checkRef(c, store, field, *id)
	}
}

func (c *refCheck) result() error {
	if c.err != nil {
		return c.err
	}
	if c.verr.HasErrors() {
		return c.verr
	}
	return nil
}

// profileDefaults resolves the caller's own profiles for creator defaults
type profileDefaults struct {
	dir *repositories.ProfileDirectory
}

// student returns the caller's student profile id, or 0 when the caller is
// an admin or has no student profile
func (p profileDefaults) student(ctx context.Context, actor *authz.Actor) (int64, error) {
	if actor.Role != models.RoleStudent {
		return 0, nil
	}
	profile, err := p.dir.StudentByUser(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return 0, apperrors.NewValidationError("student", "Create a student profile first.")
		}
		return 0, err
	}
	return profile.ID, nil
}

func (p profileDefaults) partner(ctx context.Context, actor *authz.Actor) (int64, error) {
	if actor.Role != models.RoleCorporatePartner {
		return 0, nil
	}
	profile, err := p.dir.PartnerByUser(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return 0, apperrors.NewValidationError("created_by", "Create a corporate partner profile first.")
		}
		return 0, err
	}
	return profile.ID, nil
}

// admin returns the caller's admin profile id when it has one
func (p profileDefaults) admin(ctx context.Context, actor *authz.Actor) (*int64, error) {
	if !actor.IsAdmin() {
		return nil, nil
	}
	profile, err := p.dir.AdminByUser(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &profile.ID, nil
}

// author resolves the profile a post or comment is written as when the
// client names none: the caller's student profile, else its mentor profile.
func (p profileDefaults) author(ctx context.Context, actor *authz.Actor) (polyref.Ref, error) {
	student, err := p.dir.StudentByUser(ctx, actor.UserID)
	if err == nil {
		return polyref.Ref{Kind: polyref.KindStudentProfile, ID: student.ID}, nil
	}
	if !repositories.IsNotFound(err) {
		return polyref.Ref{}, err
	}
	mentor, err := p.dir.MentorByUser(ctx, actor.UserID)
	if err == nil {
		return polyref.Ref{Kind: polyref.KindMentorProfile, ID: mentor.ID}, nil
	}
	if !repositories.IsNotFound(err) {
		return polyref.Ref{}, err
	}
	return polyref.Ref{}, apperrors.NewValidationError(polyref.AuthorField.Name, "This field is required.")
}

// purchaser resolves the caller's parent profile, else its school profile
func (p profileDefaults) purchaser(ctx context.Context, actor *authz.Actor) (polyref.Ref, error) {
	parent, err := p.dir.ParentByUser(ctx, actor.UserID)
	if err == nil {
		return polyref.Ref{Kind: polyref.KindParentProfile, ID: parent.ID}, nil
	}
	if !repositories.IsNotFound(err) {
		return polyref.Ref{}, err
	}
	school, err := p.dir.SchoolByUser(ctx, actor.UserID)
	if err == nil {
		return polyref.Ref{Kind: polyref.KindSchoolProfile, ID: school.ID}, nil
	}
	if !repositories.IsNotFound(err) {
		return polyref.Ref{}, err
	}
	return polyref.Ref{}, apperrors.NewValidationError("purchaser", "No Parent or School profile found for the current user.")
}
