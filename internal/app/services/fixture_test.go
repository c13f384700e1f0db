package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/auth"
	"github.com/aaeducates/backend/internal/pkg/logger"
	"github.com/aaeducates/backend/internal/pkg/metrics"
	"github.com/aaeducates/backend/internal/pkg/payments"
	"github.com/aaeducates/backend/internal/pkg/revocation"
	"golang.org/x/crypto/bcrypt"
)

// recordingBroadcaster keeps every broadcast message
type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []*models.Message
}

func (b *recordingBroadcaster) BroadcastMessage(msg *models.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, msg)
}

// platformSuite wires every service over in-memory stores and seeds one
// identity per role
type platformSuite struct {
	suite.Suite
	ctx         context.Context
	stores      *repositories.Stores
	dir         *repositories.ProfileDirectory
	catalog     *Catalog
	community   CommunityService
	auth        *AuthService
	payments    *PaymentService
	gateway     *payments.SandboxGateway
	broadcaster *recordingBroadcaster

	admin, student, otherStudent, parent, school, partner, mentor, profileless *authz.Actor

	studentProfile      *models.StudentProfile
	otherStudentProfile *models.StudentProfile
	parentProfile       *models.ParentProfile
	schoolProfile       *models.SchoolProfile
	partnerProfile      *models.CorporatePartnerProfile
	mentorProfile       *models.MentorProfile
	adminProfile        *models.AdminProfile
}

func (s *platformSuite) SetupSuite() {
	logger.Configure(logger.Config{Level: logger.Disabled})
	auth.BcryptCost = bcrypt.MinCost
}

func (s *platformSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = repositories.NewMemoryStores()
	s.dir = repositories.NewProfileDirectory(s.stores)
	engine := authz.NewEngine(authz.DefaultPolicy(), s.dir)
	resolver := NewReferenceResolver(s.stores)
	m := metrics.New()

	s.broadcaster = &recordingBroadcaster{}
	s.catalog = NewCatalog(s.stores, engine, s.dir, resolver, s.broadcaster, m)
	s.community = NewCommunityService(s.catalog, s.stores)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	s.auth = NewAuthService(s.stores, s.dir, jwtService, revocation.NewMemoryList(), m)

	s.gateway = payments.NewSandboxGateway("http://sandbox.local")
	s.payments = NewPaymentService(s.stores, s.dir, resolver, s.gateway,
		PaymentConfig{FrontendURL: "http://localhost:3000"}, m)

	s.admin = s.seedUser("admin@test.com", models.RoleAdmin)
	s.student = s.seedUser("student@test.com", models.RoleStudent)
	s.otherStudent = s.seedUser("other@test.com", models.RoleStudent)
	s.parent = s.seedUser("parent@test.com", models.RoleParent)
	s.school = s.seedUser("school@test.com", models.RoleSchool)
	s.partner = s.seedUser("partner@test.com", models.RoleCorporatePartner)
	s.mentor = s.seedUser("mentor@test.com", models.RoleStudent)
	s.profileless = s.seedUser("new@test.com", models.RoleStudent)

	s.adminProfile = &models.AdminProfile{UserID: s.admin.UserID}
	s.Require().NoError(s.stores.Admins.Create(s.ctx, s.adminProfile))

	s.schoolProfile = &models.SchoolProfile{UserID: s.school.UserID, Name: "Riverside"}
	s.Require().NoError(s.stores.Schools.Create(s.ctx, s.schoolProfile))

	s.studentProfile = &models.StudentProfile{UserID: s.student.UserID}
	s.Require().NoError(s.stores.Students.Create(s.ctx, s.studentProfile))

	s.otherStudentProfile = &models.StudentProfile{UserID: s.otherStudent.UserID, SchoolID: &s.schoolProfile.ID}
	s.Require().NoError(s.stores.Students.Create(s.ctx, s.otherStudentProfile))

	s.parentProfile = &models.ParentProfile{UserID: s.parent.UserID, Students: []int64{s.studentProfile.ID}}
	s.Require().NoError(s.stores.Parents.Create(s.ctx, s.parentProfile))

	s.partnerProfile = &models.CorporatePartnerProfile{UserID: s.partner.UserID, CompanyName: "Acme"}
	s.Require().NoError(s.stores.CorporatePartners.Create(s.ctx, s.partnerProfile))

	s.mentorProfile = &models.MentorProfile{UserID: s.mentor.UserID}
	s.Require().NoError(s.stores.Mentors.Create(s.ctx, s.mentorProfile))
}

func (s *platformSuite) seedUser(email string, role models.Role) *authz.Actor {
	hash, err := auth.HashPassword("secret123")
	s.Require().NoError(err)
	username := email
	user := &models.User{Email: email, Username: &username, Password: hash, Role: role, IsActive: true}
	s.Require().NoError(s.stores.Users.Create(s.ctx, user))
	return authz.ActorFromUser(user)
}

func (s *platformSuite) project(title string) *models.Project {
	p := &models.Project{Title: title, CreatedBy: s.partnerProfile.ID, Status: models.ProjectOpen}
	s.Require().NoError(s.stores.Projects.Create(s.ctx, p))
	return p
}

func (s *platformSuite) workbook(price float64) *models.Workbook {
	w := &models.Workbook{Title: "Numeracy", Price: price}
	s.Require().NoError(s.stores.Workbooks.Create(s.ctx, w))
	return w
}

func (s *platformSuite) requireFieldError(err error, field string) {
	verr, ok := apperrors.AsValidationError(err)
	s.Require().True(ok, "expected validation error, got %v", err)
	s.Contains(verr.Fields, field)
}
