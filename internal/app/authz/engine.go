// Package authz decides who may do what to which rows.
//
// Every decision starts with the admin override: staff identities and
// identities with the ADMIN role are allowed everything. Past that, each
// resource kind is governed by one Rule from an immutable Policy. The rule
// answers three questions: may the actor attempt the operation at all
// (HasPermission), which rows may the actor see (Scope), and may the actor
// act on one visible row (HasObjectPermission).
package authz

import (
	"context"

	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/polyref"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/logger"
	"github.com/rs/zerolog"
)

// Directory resolves the profiles held by an identity. Lookups return
// repositories.ErrNotFound when the profile is absent.
type Directory interface {
	StudentByUser(ctx context.Context, userID int64) (*models.StudentProfile, error)
	StudentByID(ctx context.Context, id int64) (*models.StudentProfile, error)
	ParentByUser(ctx context.Context, userID int64) (*models.ParentProfile, error)
	SchoolByUser(ctx context.Context, userID int64) (*models.SchoolProfile, error)
	PartnerByUser(ctx context.Context, userID int64) (*models.CorporatePartnerProfile, error)
	MentorByUser(ctx context.Context, userID int64) (*models.MentorProfile, error)
	StudentIDsBySchool(ctx context.Context, schoolID int64) ([]int64, error)
	ProjectIDsByPartner(ctx context.Context, partnerID int64) ([]int64, error)
	SessionIDsByMentor(ctx context.Context, mentorID int64) ([]int64, error)
}

// Engine evaluates a Policy
type Engine struct {
	policy Policy
	dir    Directory
	log    zerolog.Logger
}

// NewEngine creates an engine over a private copy of policy
func NewEngine(policy Policy, dir Directory) *Engine {
	copied := make(Policy, len(policy))
	for kind, rule := range policy {
		rule.WriteRoles = append([]models.Role(nil), rule.WriteRoles...)
		rule.ReadRoles = append([]models.Role(nil), rule.ReadRoles...)
		copied[kind] = rule
	}
	return &Engine{
		policy: copied,
		dir:    dir,
		log:    logger.Component("authz"),
	}
}

// Rule returns the rule registered for kind
func (e *Engine) Rule(kind ResourceKind) (Rule, bool) {
	rule, ok := e.policy[kind]
	return rule, ok
}

// HasPermission decides whether actor may attempt op on kind at all
func (e *Engine) HasPermission(_ context.Context, actor *Actor, kind ResourceKind, op Operation) bool {
	if actor.IsAdmin() {
		return true
	}
	rule, ok := e.policy[kind]
	if !ok {
		return false
	}

	if op.IsSafe() {
		if rule.PublicRead {
			return true
		}
		if !actor.Authenticated() {
			return false
		}
		return len(rule.ReadRoles) == 0 || hasRole(rule.ReadRoles, actor.Role)
	}

	if !actor.Authenticated() {
		return false
	}
	return rule.AnyWriter || hasRole(rule.WriteRoles, actor.Role)
}

// HasObjectPermission decides whether actor may apply op to the row owned by owner.
// Callers only ask about rows that are already inside the actor's scope.
func (e *Engine) HasObjectPermission(ctx context.Context, actor *Actor, kind ResourceKind, op Operation, owner OwnerRef) bool {
	if actor.IsAdmin() {
		return true
	}
	rule, ok := e.policy[kind]
	if !ok {
		return false
	}

	if op.IsSafe() {
		if rule.PublicRead || rule.Ownership != OwnedByStudentLink {
			return true
		}
		return e.canReadStudentRow(ctx, actor, owner)
	}

	if !actor.Authenticated() {
		return false
	}

	switch rule.Ownership {
	case OwnedByUserField:
		return owner.UserID != 0 && owner.UserID == actor.UserID
	case OwnedByCreatedByChain:
		return e.isPartner(ctx, actor, owner.PartnerID)
	case OwnedByGenericAuthor:
		// Mentor-authored rows are admin-only to edit.
		return owner.Ref.Kind == polyref.KindStudentProfile && e.isStudent(ctx, actor, owner.Ref.ID)
	case OwnedByGenericPurchaser:
		return e.isPurchaser(ctx, actor, owner.Ref)
	case OwnedByStudentLink:
		return e.isStudent(ctx, actor, owner.StudentID)
	}
	return false
}

// Scope returns the filter of rows of kind that actor may see
func (e *Engine) Scope(ctx context.Context, actor *Actor, kind ResourceKind) (repositories.Filter, error) {
	if actor.IsAdmin() {
		return repositories.All(), nil
	}
	rule, ok := e.policy[kind]
	if !ok {
		return repositories.NoRows(), nil
	}
	if rule.Scope == nil {
		return repositories.All(), nil
	}
	return rule.Scope(ctx, e.dir, actor)
}

func (e *Engine) canReadStudentRow(ctx context.Context, actor *Actor, owner OwnerRef) bool {
	if !actor.Authenticated() {
		return false
	}
	if owner.UserID != 0 && owner.UserID == actor.UserID {
		return true
	}

	switch actor.Role {
	case models.RoleStudent:
		if e.isStudent(ctx, actor, owner.StudentID) {
			return true
		}
	case models.RoleParent:
		parent, err := e.dir.ParentByUser(ctx, actor.UserID)
		if err != nil {
			e.lookupFailed(err, actor, "parent")
			return false
		}
		return parent.HasStudent(owner.StudentID)
	case models.RoleSchool:
		school, err := e.dir.SchoolByUser(ctx, actor.UserID)
		if err != nil {
			e.lookupFailed(err, actor, "school")
			return false
		}
		student, err := e.dir.StudentByID(ctx, owner.StudentID)
		if err != nil {
			e.lookupFailed(err, actor, "student")
			return false
		}
		return student.SchoolID != nil && *student.SchoolID == school.ID
	case models.RoleCorporatePartner:
		if owner.PartnerID != 0 && e.isPartner(ctx, actor, owner.PartnerID) {
			return true
		}
	}

	return owner.MentorID != 0 && e.isMentor(ctx, actor, owner.MentorID)
}

func (e *Engine) isStudent(ctx context.Context, actor *Actor, studentID int64) bool {
	if studentID == 0 {
		return false
	}
	student, err := e.dir.StudentByUser(ctx, actor.UserID)
	if err != nil {
		e.lookupFailed(err, actor, "student")
		return false
	}
	return student.ID == studentID
}

func (e *Engine) isPartner(ctx context.Context, actor *Actor, partnerID int64) bool {
	if partnerID == 0 {
		return false
	}
	partner, err := e.dir.PartnerByUser(ctx, actor.UserID)
	if err != nil {
		e.lookupFailed(err, actor, "corporate partner")
		return false
	}
	return partner.ID == partnerID
}

func (e *Engine) isMentor(ctx context.Context, actor *Actor, mentorID int64) bool {
	mentor, err := e.dir.MentorByUser(ctx, actor.UserID)
	if err != nil {
		e.lookupFailed(err, actor, "mentor")
		return false
	}
	return mentor.ID == mentorID
}

func (e *Engine) isPurchaser(ctx context.Context, actor *Actor, ref polyref.Ref) bool {
	switch ref.Kind {
	case polyref.KindParentProfile:
		parent, err := e.dir.ParentByUser(ctx, actor.UserID)
		if err != nil {
			e.lookupFailed(err, actor, "parent")
			return false
		}
		return parent.ID == ref.ID
	case polyref.KindSchoolProfile:
		school, err := e.dir.SchoolByUser(ctx, actor.UserID)
		if err != nil {
			e.lookupFailed(err, actor, "school")
			return false
		}
		return school.ID == ref.ID
	}
	return false
}

// lookupFailed logs unexpected directory errors; a missing profile is a normal denial
func (e *Engine) lookupFailed(err error, actor *Actor, profile string) {
	if repositories.IsNotFound(err) {
		return
	}
	e.log.Error().Err(err).Int64("userID", actor.UserID).Str("profile", profile).Msg("Profile lookup failed during authorization")
}
