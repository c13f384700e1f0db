package authz

import (
	"context"

	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/polyref"
	"github.com/aaeducates/backend/internal/app/repositories"
)

// Self limits rows to those whose column holds the actor's user id
func Self(column string) ScopeFunc {
	return func(_ context.Context, _ Directory, actor *Actor) (repositories.Filter, error) {
		if !actor.Authenticated() {
			return repositories.NoRows(), nil
		}
		return repositories.Where(column, actor.UserID), nil
	}
}

// StudentLinked limits rows whose column is a student profile id to the
// actor's own profile, a parent's linked students or a school's students.
func StudentLinked(column string) ScopeFunc {
	return func(ctx context.Context, dir Directory, actor *Actor) (repositories.Filter, error) {
		if !actor.Authenticated() {
			return repositories.NoRows(), nil
		}
		switch actor.Role {
		case models.RoleStudent:
			student, err := dir.StudentByUser(ctx, actor.UserID)
			if err != nil {
				return noProfile(err)
			}
			return repositories.Where(column, student.ID), nil
		case models.RoleParent:
			parent, err := dir.ParentByUser(ctx, actor.UserID)
			if err != nil {
				return noProfile(err)
			}
			return repositories.WhereIDs(column, parent.Students), nil
		case models.RoleSchool:
			school, err := dir.SchoolByUser(ctx, actor.UserID)
			if err != nil {
				return noProfile(err)
			}
			ids, err := dir.StudentIDsBySchool(ctx, school.ID)
			if err != nil {
				return repositories.NoRows(), err
			}
			return repositories.WhereIDs(column, ids), nil
		}
		return repositories.NoRows(), nil
	}
}

// Either applies first and falls back to second when first yields no rows
func Either(first, second ScopeFunc) ScopeFunc {
	return func(ctx context.Context, dir Directory, actor *Actor) (repositories.Filter, error) {
		filter, err := first(ctx, dir, actor)
		if err != nil || !filter.None {
			return filter, err
		}
		return second(ctx, dir, actor)
	}
}

// PartnerOwned limits rows to the acting corporate partner's profile
func PartnerOwned(column string) ScopeFunc {
	return func(ctx context.Context, dir Directory, actor *Actor) (repositories.Filter, error) {
		if !actor.Authenticated() || actor.Role != models.RoleCorporatePartner {
			return repositories.NoRows(), nil
		}
		partner, err := dir.PartnerByUser(ctx, actor.UserID)
		if err != nil {
			return noProfile(err)
		}
		return repositories.Where(column, partner.ID), nil
	}
}

// PartnerOwnedOrAll narrows corporate partners to their own rows and leaves
// every row visible to other roles.
func PartnerOwnedOrAll(column string) ScopeFunc {
	owned := PartnerOwned(column)
	return func(ctx context.Context, dir Directory, actor *Actor) (repositories.Filter, error) {
		if actor.Authenticated() && actor.Role == models.RoleCorporatePartner {
			return owned(ctx, dir, actor)
		}
		return repositories.All(), nil
	}
}

// PartnerProjects limits rows to those attached to the acting partner's projects
func PartnerProjects(column string) ScopeFunc {
	return func(ctx context.Context, dir Directory, actor *Actor) (repositories.Filter, error) {
		if !actor.Authenticated() || actor.Role != models.RoleCorporatePartner {
			return repositories.NoRows(), nil
		}
		partner, err := dir.PartnerByUser(ctx, actor.UserID)
		if err != nil {
			return noProfile(err)
		}
		ids, err := dir.ProjectIDsByPartner(ctx, partner.ID)
		if err != nil {
			return repositories.NoRows(), err
		}
		return repositories.WhereIDs(column, ids), nil
	}
}

// MentorOwned limits rows to the actor's mentor profile
func MentorOwned(column string) ScopeFunc {
	return func(ctx context.Context, dir Directory, actor *Actor) (repositories.Filter, error) {
		if !actor.Authenticated() {
			return repositories.NoRows(), nil
		}
		mentor, err := dir.MentorByUser(ctx, actor.UserID)
		if err != nil {
			return noProfile(err)
		}
		return repositories.Where(column, mentor.ID), nil
	}
}

// MentorSessions limits rows to those attached to the actor's mentoring sessions
func MentorSessions(column string) ScopeFunc {
	return func(ctx context.Context, dir Directory, actor *Actor) (repositories.Filter, error) {
		if !actor.Authenticated() {
			return repositories.NoRows(), nil
		}
		mentor, err := dir.MentorByUser(ctx, actor.UserID)
		if err != nil {
			return noProfile(err)
		}
		ids, err := dir.SessionIDsByMentor(ctx, mentor.ID)
		if err != nil {
			return repositories.NoRows(), err
		}
		return repositories.WhereIDs(column, ids), nil
	}
}

// PublishedOnly hides unpublished rows from non-admins
func PublishedOnly(column string) ScopeFunc {
	return func(context.Context, Directory, *Actor) (repositories.Filter, error) {
		return repositories.Where(column, true), nil
	}
}

// Purchaser limits rows to purchases made by the actor's parent or school profile
func Purchaser(kindColumn, idColumn string) ScopeFunc {
	return func(ctx context.Context, dir Directory, actor *Actor) (repositories.Filter, error) {
		if !actor.Authenticated() {
			return repositories.NoRows(), nil
		}
		switch actor.Role {
		case models.RoleParent:
			parent, err := dir.ParentByUser(ctx, actor.UserID)
			if err != nil {
				return noProfile(err)
			}
			return repositories.Where(kindColumn, string(polyref.KindParentProfile)).And(idColumn, parent.ID), nil
		case models.RoleSchool:
			school, err := dir.SchoolByUser(ctx, actor.UserID)
			if err != nil {
				return noProfile(err)
			}
			return repositories.Where(kindColumn, string(polyref.KindSchoolProfile)).And(idColumn, school.ID), nil
		}
		return repositories.NoRows(), nil
	}
}

// noProfile turns a missing profile into an empty scope
func noProfile(err error) (repositories.Filter, error) {
	if repositories.IsNotFound(err) {
		return repositories.NoRows(), nil
	}
	return repositories.NoRows(), err
}
