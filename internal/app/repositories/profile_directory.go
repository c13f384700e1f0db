package repositories

import (
	"context"

	"github.com/aaeducates/backend/internal/app/models"
)

// ProfileDirectory answers "which profile does this identity hold" questions.
// Every lookup returns ErrNotFound when the identity has no profile of that kind.
type ProfileDirectory struct {
	stores *Stores
}

// NewProfileDirectory creates a directory over stores
func NewProfileDirectory(stores *Stores) *ProfileDirectory {
	return &ProfileDirectory{stores: stores}
}

// StudentByUser returns the student profile of userID
func (d *ProfileDirectory) StudentByUser(ctx context.Context, userID int64) (*models.StudentProfile, error) {
	return d.stores.Students.FindOne(ctx, Where("user_id", userID))
}

// StudentByID returns the student profile with id
func (d *ProfileDirectory) StudentByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	return d.stores.Students.Get(ctx, All(), id)
}

// ParentByUser returns the parent profile of userID with its linked students
func (d *ProfileDirectory) ParentByUser(ctx context.Context, userID int64) (*models.ParentProfile, error) {
	return d.stores.Parents.FindOne(ctx, Where("user_id", userID))
}

// SchoolByUser returns the school profile of userID
func (d *ProfileDirectory) SchoolByUser(ctx context.Context, userID int64) (*models.SchoolProfile, error) {
	return d.stores.Schools.FindOne(ctx, Where("user_id", userID))
}

// PartnerByUser returns the corporate partner profile of userID
func (d *ProfileDirectory) PartnerByUser(ctx context.Context, userID int64) (*models.CorporatePartnerProfile, error) {
	return d.stores.CorporatePartners.FindOne(ctx, Where("user_id", userID))
}

// MentorByUser returns the mentor profile of userID
func (d *ProfileDirectory) MentorByUser(ctx context.Context, userID int64) (*models.MentorProfile, error) {
	return d.stores.Mentors.FindOne(ctx, Where("user_id", userID))
}

// AdminByUser returns the admin marker profile of userID
func (d *ProfileDirectory) AdminByUser(ctx context.Context, userID int64) (*models.AdminProfile, error) {
	return d.stores.Admins.FindOne(ctx, Where("user_id", userID))
}

// StudentIDsBySchool returns the ids of the student profiles attached to schoolID
func (d *ProfileDirectory) StudentIDsBySchool(ctx context.Context, schoolID int64) ([]int64, error) {
	students, _, err := d.stores.Students.List(ctx, Where("school_id", schoolID), Page{})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// ProjectIDsByPartner returns the ids of the projects created by partnerID
func (d *ProfileDirectory) ProjectIDsByPartner(ctx context.Context, partnerID int64) ([]int64, error) {
	projects, _, err := d.stores.Projects.List(ctx, Where("created_by_id", partnerID), Page{})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// SessionIDsByMentor returns the ids of the sessions booked with mentorID
func (d *ProfileDirectory) SessionIDsByMentor(ctx context.Context, mentorID int64) ([]int64, error) {
	sessions, _, err := d.stores.Sessions.List(ctx, Where("mentor_id", mentorID), Page{})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// ProfileID returns the id of the profile matching user's role, or nil when
// the identity has none.
func (d *ProfileDirectory) ProfileID(ctx context.Context, user *models.User) (*int64, error) {
	var (
		id  int64
		err error
	)
	switch user.Role {
	case models.RoleStudent:
		var p *models.StudentProfile
		if p, err = d.StudentByUser(ctx, user.ID); err == nil {
			id = p.ID
		}
	case models.RoleParent:
		var p *models.ParentProfile
		if p, err = d.ParentByUser(ctx, user.ID); err == nil {
			id = p.ID
		}
	case models.RoleSchool:
		var p *models.SchoolProfile
		if p, err = d.SchoolByUser(ctx, user.ID); err == nil {
			id = p.ID
		}
	case models.RoleCorporatePartner:
		var p *models.CorporatePartnerProfile
		if p, err = d.PartnerByUser(ctx, user.ID); err == nil {
			id = p.ID
		}
	case models.RoleAdmin:
		var p *models.AdminProfile
		if p, err = d.AdminByUser(ctx, user.ID); err == nil {
			id = p.ID
		}
	default:
		return nil, nil
	}

	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}
