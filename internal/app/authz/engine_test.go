package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/polyref"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/logger"
)

type EngineSuite struct {
	suite.Suite
	ctx    context.Context
	stores *repositories.Stores
	engine *Engine

	student      *models.StudentProfile
	otherStudent *models.StudentProfile
	parent       *models.ParentProfile
	school       *models.SchoolProfile
	partner      *models.CorporatePartnerProfile
	mentor       *models.MentorProfile
}

const (
	studentUser int64 = iota + 1
	otherStudentUser
	parentUser
	schoolUser
	partnerUser
	mentorUser
	adminUser
	profilelessUser
)

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupSuite() {
	logger.Configure(logger.Config{Level: logger.Disabled})
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = repositories.NewMemoryStores()
	s.engine = NewEngine(DefaultPolicy(), repositories.NewProfileDirectory(s.stores))

	s.school = &models.SchoolProfile{UserID: schoolUser, Name: "Riverside"}
	s.Require().NoError(s.stores.Schools.Create(s.ctx, s.school))

	s.student = &models.StudentProfile{UserID: studentUser}
	s.Require().NoError(s.stores.Students.Create(s.ctx, s.student))

	s.otherStudent = &models.StudentProfile{UserID: otherStudentUser, SchoolID: &s.school.ID}
	s.Require().NoError(s.stores.Students.Create(s.ctx, s.otherStudent))

	s.parent = &models.ParentProfile{UserID: parentUser, Students: []int64{s.student.ID}}
	s.Require().NoError(s.stores.Parents.Create(s.ctx, s.parent))

	s.partner = &models.CorporatePartnerProfile{UserID: partnerUser, CompanyName: "Acme"}
	s.Require().NoError(s.stores.CorporatePartners.Create(s.ctx, s.partner))

	s.mentor = &models.MentorProfile{UserID: mentorUser}
	s.Require().NoError(s.stores.Mentors.Create(s.ctx, s.mentor))
}

func (s *EngineSuite) actor(userID int64, role models.Role) *Actor {
	return &Actor{UserID: userID, Role: role}
}

func (s *EngineSuite) TestAdminOverride() {
	ownerships := []OwnerRef{
		{},
		{UserID: 999},
		{PartnerID: 999},
		{StudentID: 999},
		{Ref: polyref.Ref{Kind: polyref.KindMentorProfile, ID: 999}},
		{Ref: polyref.Ref{Kind: polyref.KindSchoolProfile, ID: 999}},
	}

	admins := []*Actor{{UserID: adminUser, Role: models.RoleAdmin}}
	for _, role := range models.Roles {
		admins = append(admins, &Actor{UserID: adminUser, Role: role, IsStaff: true})
	}

	for _, admin := range admins {
		for kind := range DefaultPolicy() {
			for _, op := range Operations {
				s.True(s.engine.HasPermission(s.ctx, admin, kind, op), "%s %s %s", admin.Role, kind, op)
				for _, owner := range ownerships {
					s.True(s.engine.HasObjectPermission(s.ctx, admin, kind, op, owner), "%s %s %s %+v", admin.Role, kind, op, owner)
				}
			}
			filter, err := s.engine.Scope(s.ctx, admin, kind)
			s.Require().NoError(err)
			s.Equal(repositories.All(), filter)
		}
	}
}

func (s *EngineSuite) TestParentSeesExactlyLinkedStudents() {
	parent := s.actor(parentUser, models.RoleParent)
	for _, student := range []*models.StudentProfile{s.student, s.otherStudent} {
		owner := OwnerRef{UserID: student.UserID, StudentID: student.ID}
		s.Equal(s.parent.HasStudent(student.ID), s.engine.HasObjectPermission(s.ctx, parent, KindStudents, OpRetrieve, owner))
		s.False(s.engine.HasObjectPermission(s.ctx, parent, KindStudents, OpUpdate, owner))
	}

	filter, err := s.engine.Scope(s.ctx, parent, KindStudents)
	s.Require().NoError(err)
	rows, total, err := s.stores.Students.List(s.ctx, filter, repositories.Page{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(s.student.ID, rows[0].ID)

	_, err = s.stores.Students.Get(s.ctx, filter, s.otherStudent.ID)
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *EngineSuite) TestStudentScope() {
	s.Run("student sees only itself", func() {
		filter, err := s.engine.Scope(s.ctx, s.actor(studentUser, models.RoleStudent), KindStudents)
		s.Require().NoError(err)
		rows, _, err := s.stores.Students.List(s.ctx, filter, repositories.Page{})
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal(s.student.ID, rows[0].ID)
	})

	s.Run("school sees its own students", func() {
		filter, err := s.engine.Scope(s.ctx, s.actor(schoolUser, models.RoleSchool), KindStudents)
		s.Require().NoError(err)
		rows, _, err := s.stores.Students.List(s.ctx, filter, repositories.Page{})
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal(s.otherStudent.ID, rows[0].ID)
	})

	s.Run("corporate partner sees none", func() {
		filter, err := s.engine.Scope(s.ctx, s.actor(partnerUser, models.RoleCorporatePartner), KindStudents)
		s.Require().NoError(err)
		s.True(filter.None)
	})

	s.Run("identity without profile sees none", func() {
		filter, err := s.engine.Scope(s.ctx, s.actor(profilelessUser, models.RoleStudent), KindStudents)
		s.Require().NoError(err)
		s.True(filter.None)
	})
}

func (s *EngineSuite) TestViewPermissions() {
	anonymous := &Actor{}
	student := s.actor(studentUser, models.RoleStudent)

	s.True(s.engine.HasPermission(s.ctx, anonymous, KindPosts, OpList))
	s.False(s.engine.HasPermission(s.ctx, anonymous, KindPosts, OpCreate))
	s.False(s.engine.HasPermission(s.ctx, anonymous, KindStudents, OpList))

	s.True(s.engine.HasPermission(s.ctx, student, KindPosts, OpCreate))
	s.True(s.engine.HasPermission(s.ctx, student, KindSubmissions, OpCreate))
	s.False(s.engine.HasPermission(s.ctx, student, KindProjects, OpCreate))
	s.False(s.engine.HasPermission(s.ctx, student, KindAdmins, OpList))
	s.False(s.engine.HasPermission(s.ctx, student, KindCRMContactLogs, OpRetrieve))
	s.False(s.engine.HasPermission(s.ctx, student, ResourceKind("unknown"), OpList))
}

func (s *EngineSuite) TestOwnershipRules() {
	student := s.actor(studentUser, models.RoleStudent)
	partner := s.actor(partnerUser, models.RoleCorporatePartner)
	parent := s.actor(parentUser, models.RoleParent)

	s.Run("user field", func() {
		s.True(s.engine.HasObjectPermission(s.ctx, student, KindMessages, OpUpdate, OwnerRef{UserID: studentUser}))
		s.False(s.engine.HasObjectPermission(s.ctx, student, KindMessages, OpDelete, OwnerRef{UserID: parentUser}))
	})

	s.Run("created by chain", func() {
		s.True(s.engine.HasObjectPermission(s.ctx, partner, KindProjects, OpUpdate, OwnerRef{PartnerID: s.partner.ID}))
		s.False(s.engine.HasObjectPermission(s.ctx, partner, KindProjects, OpUpdate, OwnerRef{PartnerID: s.partner.ID + 1}))
	})

	s.Run("generic author", func() {
		own := OwnerRef{Ref: polyref.Ref{Kind: polyref.KindStudentProfile, ID: s.student.ID}}
		other := OwnerRef{Ref: polyref.Ref{Kind: polyref.KindStudentProfile, ID: s.otherStudent.ID}}
		mentored := OwnerRef{Ref: polyref.Ref{Kind: polyref.KindMentorProfile, ID: s.mentor.ID}}

		s.True(s.engine.HasObjectPermission(s.ctx, student, KindPosts, OpUpdate, own))
		s.False(s.engine.HasObjectPermission(s.ctx, student, KindPosts, OpDelete, other))
		s.False(s.engine.HasObjectPermission(s.ctx, s.actor(mentorUser, models.RoleCorporatePartner), KindPosts, OpUpdate, mentored))
		s.True(s.engine.HasObjectPermission(s.ctx, &Actor{}, KindPosts, OpRetrieve, other))
	})

	s.Run("generic purchaser", func() {
		own := OwnerRef{Ref: polyref.Ref{Kind: polyref.KindParentProfile, ID: s.parent.ID}}
		school := OwnerRef{Ref: polyref.Ref{Kind: polyref.KindSchoolProfile, ID: s.parent.ID}}

		s.True(s.engine.HasObjectPermission(s.ctx, parent, KindWorkbookPurchases, OpUpdate, own))
		s.False(s.engine.HasObjectPermission(s.ctx, parent, KindWorkbookPurchases, OpUpdate, school))
	})

	s.Run("student link writes stay with the owner", func() {
		own := OwnerRef{StudentID: s.student.ID}
		s.True(s.engine.HasObjectPermission(s.ctx, student, KindSubmissions, OpUpdate, own))
		s.False(s.engine.HasObjectPermission(s.ctx, student, KindSubmissions, OpUpdate, OwnerRef{StudentID: s.otherStudent.ID}))
		s.True(s.engine.HasObjectPermission(s.ctx, parent, KindSubmissions, OpRetrieve, own))
		s.False(s.engine.HasObjectPermission(s.ctx, parent, KindSubmissions, OpDelete, own))
	})

	s.Run("nobody", func() {
		s.False(s.engine.HasObjectPermission(s.ctx, student, KindSkills, OpUpdate, OwnerRef{UserID: studentUser}))
	})
}

func (s *EngineSuite) TestPurchaserScope() {
	purchase := &models.WorkbookPurchase{
		WorkbookID: 1,
		Purchaser:  polyref.Ref{Kind: polyref.KindParentProfile, ID: s.parent.ID},
	}
	s.Require().NoError(s.stores.WorkbookPurchases.Create(s.ctx, purchase))
	schoolPurchase := &models.WorkbookPurchase{
		WorkbookID: 1,
		Purchaser:  polyref.Ref{Kind: polyref.KindSchoolProfile, ID: s.parent.ID},
	}
	s.Require().NoError(s.stores.WorkbookPurchases.Create(s.ctx, schoolPurchase))

	filter, err := s.engine.Scope(s.ctx, s.actor(parentUser, models.RoleParent), KindWorkbookPurchases)
	s.Require().NoError(err)
	rows, _, err := s.stores.WorkbookPurchases.List(s.ctx, filter, repositories.Page{})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(purchase.ID, rows[0].ID)
}

func (s *EngineSuite) TestPolicyIsCopied() {
	policy := DefaultPolicy()
	engine := NewEngine(policy, repositories.NewProfileDirectory(s.stores))

	policy[KindSkills] = Rule{AnyWriter: true}
	s.False(engine.HasPermission(s.ctx, s.actor(studentUser, models.RoleStudent), KindSkills, OpCreate))
}
