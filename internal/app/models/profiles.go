package models

// StudentProfile is the profile of a STUDENT identity
type StudentProfile struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"user"`
	SchoolID      *int64  `json:"school"`
	Bio           string  `json:"bio"`
	CV            string  `json:"cv" validate:"omitempty,url"`
	PortfolioLink string  `json:"portfolio_link" validate:"omitempty,url"`
	Skills        []int64 `json:"skills"`
	Badges        []int64 `json:"badges"`
	Certificates  []int64 `json:"certificates"`
}

// ParentProfile is the profile of a PARENT identity and its linked students
type ParentProfile struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user"`
	Students []int64 `json:"students"`
}

// HasStudent reports whether the student profile is linked to this parent
func (p *ParentProfile) HasStudent(studentID int64) bool {
	for _, id := range p.Students {
		if id == studentID {
			return true
		}
	}
	return false
}

// SchoolProfile is the profile of a SCHOOL identity
type SchoolProfile struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user"`
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address"`
}

// CorporatePartnerProfile is the profile of a CORPORATE_PARTNER identity
type CorporatePartnerProfile struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user"`
	CompanyName   string `json:"company_name" validate:"required,max=255"`
	Industry      string `json:"industry" validate:"max=255"`
	Website       string `json:"website" validate:"omitempty,url"`
	CSRReportLink string `json:"csr_report_link" validate:"omitempty,url"`
	Logo          string `json:"logo"`
}

// AdminProfile marks an ADMIN identity
type AdminProfile struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user"`
}

// MentorProfile is a mentor, optionally sponsored by a corporate partner
type MentorProfile struct {
	ID                 int64  `json:"id"`
	UserID             int64  `json:"user"`
	CorporatePartnerID *int64 `json:"corporate_partner"`
	Bio                string `json:"bio"`
	Skills             string `json:"skills"`
	Availability       string `json:"availability"`
}
