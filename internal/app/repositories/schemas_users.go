package repositories

import (
	"time"

	"github.com/aaeducates/backend/internal/app/models"
)

func setIfZero(t *time.Time, now time.Time) {
	if t.IsZero() {
		*t = now
	}
}

// UserSchema maps identities onto the users table
var UserSchema = Schema[models.User]{
	Table: "users",
	Columns: []string{"email", "username", "password", "first_name", "last_name", "role",
		"is_staff", "is_superuser", "is_active", "is_verified", "date_joined"},
	OrderBy:     "date_joined DESC",
	NewestFirst: true,
	ID:          func(u *models.User) *int64 { return &u.ID },
	Values: func(u *models.User) []interface{} {
		return []interface{}{u.Email, u.Username, u.Password, u.FirstName, u.LastName, string(u.Role),
			u.IsStaff, u.IsSuperuser, u.IsActive, u.IsVerified, u.DateJoined}
	},
	Scan: func(u *models.User) []interface{} {
		return []interface{}{&u.ID, &u.Email, &u.Username, &u.Password, &u.FirstName, &u.LastName, &u.Role,
			&u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.IsVerified, &u.DateJoined}
	},
	Stamp: func(u *models.User, now time.Time, creating bool) {
		if creating {
			setIfZero(&u.DateJoined, now)
		}
	},
	Unique: []Unique{
		{Constraint: "users_email_key", Columns: []string{"email"}, Field: "email", Message: "User with this email already exists"},
		{Constraint: "users_username_key", Columns: []string{"username"}, Field: "username", Message: "Username already taken"},
	},
}

// RefreshTokenSchema maps refresh credentials onto refresh_tokens
var RefreshTokenSchema = Schema[models.RefreshToken]{
	Table:   "refresh_tokens",
	Columns: []string{"token", "user_id", "expires_at", "revoked", "created_at"},
	ID:      func(t *models.RefreshToken) *int64 { return &t.ID },
	Values: func(t *models.RefreshToken) []interface{} {
		return []interface{}{t.Token, t.UserID, t.ExpiresAt, t.Revoked, t.CreatedAt}
	},
	Scan: func(t *models.RefreshToken) []interface{} {
		return []interface{}{&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.Revoked, &t.CreatedAt}
	},
	Stamp: func(t *models.RefreshToken, now time.Time, creating bool) {
		if creating {
			setIfZero(&t.CreatedAt, now)
		}
	},
	Unique: []Unique{
		{Constraint: "refresh_tokens_token_key", Columns: []string{"token"}, Message: "Token already issued"},
	},
}

func profileUnique(table, kind string) []Unique {
	return []Unique{{
		Constraint: table + "_user_id_key",
		Columns:    []string{"user_id"},
		Field:      "user",
		Message:    kind + " with this user already exists.",
	}}
}

// StudentProfileSchema maps student profiles and their skill, badge and certificate edges
var StudentProfileSchema = Schema[models.StudentProfile]{
	Table:   "student_profiles",
	Columns: []string{"user_id", "school_id", "bio", "cv", "portfolio_link"},
	ID:      func(p *models.StudentProfile) *int64 { return &p.ID },
	Values: func(p *models.StudentProfile) []interface{} {
		return []interface{}{p.UserID, p.SchoolID, p.Bio, p.CV, p.PortfolioLink}
	},
	Scan: func(p *models.StudentProfile) []interface{} {
		return []interface{}{&p.ID, &p.UserID, &p.SchoolID, &p.Bio, &p.CV, &p.PortfolioLink}
	},
	Links: []Link[models.StudentProfile]{
		{
			Field: "skills", Table: "student_profile_skills", OwnerCol: "student_profile_id", TargetCol: "skill_id",
			Get: func(p *models.StudentProfile) []int64 { return p.Skills },
			Set: func(p *models.StudentProfile, ids []int64) { p.Skills = ids },
		},
		{
			Field: "badges", Table: "student_profile_badges", OwnerCol: "student_profile_id", TargetCol: "badge_id",
			Get: func(p *models.StudentProfile) []int64 { return p.Badges },
			Set: func(p *models.StudentProfile, ids []int64) { p.Badges = ids },
		},
		{
			Field: "certificates", Table: "student_profile_certificates", OwnerCol: "student_profile_id", TargetCol: "certificate_id",
			Get: func(p *models.StudentProfile) []int64 { return p.Certificates },
			Set: func(p *models.StudentProfile, ids []int64) { p.Certificates = ids },
		},
	},
	Unique: profileUnique("student_profiles", "student profile"),
}

// ParentProfileSchema maps parent profiles and their linked students
var ParentProfileSchema = Schema[models.ParentProfile]{
	Table:   "parent_profiles",
	Columns: []string{"user_id"},
	ID:      func(p *models.ParentProfile) *int64 { return &p.ID },
	Values:  func(p *models.ParentProfile) []interface{} { return []interface{}{p.UserID} },
	Scan:    func(p *models.ParentProfile) []interface{} { return []interface{}{&p.ID, &p.UserID} },
	Links: []Link[models.ParentProfile]{{
		Field: "students", Table: "parent_profile_students", OwnerCol: "parent_profile_id", TargetCol: "student_profile_id",
		Get: func(p *models.ParentProfile) []int64 { return p.Students },
		Set: func(p *models.ParentProfile, ids []int64) { p.Students = ids },
	}},
	Unique: profileUnique("parent_profiles", "parent profile"),
}

// SchoolProfileSchema maps school profiles
var SchoolProfileSchema = Schema[models.SchoolProfile]{
	Table:   "school_profiles",
	Columns: []string{"user_id", "name", "address"},
	ID:      func(p *models.SchoolProfile) *int64 { return &p.ID },
	Values: func(p *models.SchoolProfile) []interface{} {
		return []interface{}{p.UserID, p.Name, p.Address}
	},
	Scan: func(p *models.SchoolProfile) []interface{} {
		return []interface{}{&p.ID, &p.UserID, &p.Name, &p.Address}
	},
	Unique: profileUnique("school_profiles", "school profile"),
}

// CorporatePartnerProfileSchema maps corporate partner profiles
var CorporatePartnerProfileSchema = Schema[models.CorporatePartnerProfile]{
	Table:   "corporate_partner_profiles",
	Columns: []string{"user_id", "company_name", "industry", "website", "csr_report_link", "logo"},
	ID:      func(p *models.CorporatePartnerProfile) *int64 { return &p.ID },
	Values: func(p *models.CorporatePartnerProfile) []interface{} {
		return []interface{}{p.UserID, p.CompanyName, p.Industry, p.Website, p.CSRReportLink, p.Logo}
	},
	Scan: func(p *models.CorporatePartnerProfile) []interface{} {
		return []interface{}{&p.ID, &p.UserID, &p.CompanyName, &p.Industry, &p.Website, &p.CSRReportLink, &p.Logo}
	},
	Unique: profileUnique("corporate_partner_profiles", "corporate partner profile"),
}

// AdminProfileSchema maps admin marker profiles
var AdminProfileSchema = Schema[models.AdminProfile]{
	Table:   "admin_profiles",
	Columns: []string{"user_id"},
	ID:      func(p *models.AdminProfile) *int64 { return &p.ID },
	Values:  func(p *models.AdminProfile) []interface{} { return []interface{}{p.UserID} },
	Scan:    func(p *models.AdminProfile) []interface{} { return []interface{}{&p.ID, &p.UserID} },
	Unique:  profileUnique("admin_profiles", "admin profile"),
}

// MentorProfileSchema maps mentor profiles
var MentorProfileSchema = Schema[models.MentorProfile]{
	Table:   "mentor_profiles",
	Columns: []string{"user_id", "corporate_partner_id", "bio", "skills", "availability"},
	ID:      func(p *models.MentorProfile) *int64 { return &p.ID },
	Values: func(p *models.MentorProfile) []interface{} {
		return []interface{}{p.UserID, p.CorporatePartnerID, p.Bio, p.Skills, p.Availability}
	},
	Scan: func(p *models.MentorProfile) []interface{} {
		return []interface{}{&p.ID, &p.UserID, &p.CorporatePartnerID, &p.Bio, &p.Skills, &p.Availability}
	},
	Unique: profileUnique("mentor_profiles", "mentor profile"),
}
