package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/polyref"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
)

type ResourceSuite struct {
	platformSuite
}

func TestResourceSuite(t *testing.T) {
	suite.Run(t, new(ResourceSuite))
}

func (s *ResourceSuite) submit(actor *authz.Actor, project *models.Project) *models.StudentProjectSubmission {
	sub, err := s.catalog.Submissions.Create(s.ctx, actor, &models.StudentProjectSubmission{ProjectID: project.ID})
	s.Require().NoError(err)
	return sub
}

func (s *ResourceSuite) TestSubmissionDefaultsToCallerProfile() {
	project := s.project("Bridges")
	sub := s.submit(s.student, project)

	s.Equal(s.studentProfile.ID, sub.StudentID)
	s.Equal(models.SubmissionSubmitted, sub.Status)
	s.False(sub.SubmittedAt.IsZero())
}

func (s *ResourceSuite) TestSubmissionIsUniquePerStudentAndProject() {
	project := s.project("Bridges")
	s.submit(s.student, project)

	_, err := s.catalog.Submissions.Create(s.ctx, s.student, &models.StudentProjectSubmission{ProjectID: project.ID})
	s.requireFieldError(err, apperrors.NonFieldErrors)
	verr, _ := apperrors.AsValidationError(err)
	s.Equal([]string{"The fields student, project must make a unique set."}, verr.Fields[apperrors.NonFieldErrors])

	// a different student may still submit
	s.submit(s.otherStudent, project)
}

func (s *ResourceSuite) TestStudentWithoutProfileCannotSubmit() {
	project := s.project("Bridges")
	_, err := s.catalog.Submissions.Create(s.ctx, s.profileless, &models.StudentProjectSubmission{ProjectID: project.ID})
	s.requireFieldError(err, "student")
}

func (s *ResourceSuite) TestSubmissionListScoping() {
	project := s.project("Bridges")
	own := s.submit(s.student, project)
	other := s.submit(s.otherStudent, project)

	tests := []struct {
		name  string
		actor *authz.Actor
		want  []int64
	}{
		{"admin sees everything", s.admin, []int64{other.ID, own.ID}},
		{"student sees own", s.student, []int64{own.ID}},
		{"parent sees linked student", s.parent, []int64{own.ID}},
		{"school sees its students", s.school, []int64{other.ID}},
		{"partner sees submissions to its projects", s.partner, []int64{other.ID, own.ID}},
		{"student without profile sees nothing", s.profileless, []int64{}},
		{"anonymous sees nothing", &authz.Actor{}, []int64{}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			items, page, err := s.catalog.Submissions.List(s.ctx, tt.actor, 1, 10)
			s.Require().NoError(err)
			ids := make([]int64, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			s.Equal(tt.want, ids)
			s.Equal(int64(len(tt.want)), page.TotalItems)
		})
	}
}

func (s *ResourceSuite) TestRetrieveOutsideScopeIsNotFound() {
	project := s.project("Bridges")
	sub := s.submit(s.student, project)

	_, err := s.catalog.Submissions.Get(s.ctx, s.otherStudent, sub.ID)
	s.ErrorIs(err, apperrors.ErrResourceNotFound)

	got, err := s.catalog.Submissions.Get(s.ctx, s.parent, sub.ID)
	s.Require().NoError(err)
	s.Equal(sub.ID, got.ID)
}

func (s *ResourceSuite) TestWriteWithoutRoleIsForbidden() {
	project := s.project("Bridges")
	sub := s.submit(s.student, project)

	_, err := s.catalog.Submissions.Update(s.ctx, s.parent, sub.ID, func(item *models.StudentProjectSubmission) error {
		item.Feedback = "nice"
		return nil
	})
	s.ErrorIs(err, apperrors.ErrPermissionDenied)

	err = s.catalog.Submissions.Delete(s.ctx, s.partner, sub.ID)
	s.ErrorIs(err, apperrors.ErrPermissionDenied)
}

func (s *ResourceSuite) TestStudentUpdatesOwnSubmissionOnly() {
	project := s.project("Bridges")
	sub := s.submit(s.student, project)

	updated, err := s.catalog.Submissions.Update(s.ctx, s.student, sub.ID, func(item *models.StudentProjectSubmission) error {
		item.SubmissionLink = "https://example.com/work"
		item.StudentID = s.otherStudentProfile.ID
		return nil
	})
	s.Require().NoError(err)
	s.Equal("https://example.com/work", updated.SubmissionLink)
	s.Equal(s.studentProfile.ID, updated.StudentID)

	_, err = s.catalog.Submissions.Update(s.ctx, s.otherStudent, sub.ID, func(*models.StudentProjectSubmission) error { return nil })
	s.ErrorIs(err, apperrors.ErrResourceNotFound)
}

func (s *ResourceSuite) TestListWithoutViewPermissionIsEmpty() {
	_, err := s.catalog.CRMContactLogs.Create(s.ctx, s.admin, &models.CRMContactLog{
		CorporatePartnerID: s.partnerProfile.ID,
		ContactMethod:      models.ContactEmail,
	})
	s.Require().NoError(err)

	items, page, err := s.catalog.CRMContactLogs.List(s.ctx, s.student, 1, 10)
	s.Require().NoError(err)
	s.Empty(items)
	s.Equal(int64(0), page.TotalItems)

	items, _, err = s.catalog.CRMContactLogs.List(s.ctx, s.admin, 1, 10)
	s.Require().NoError(err)
	s.Len(items, 1)
}

func (s *ResourceSuite) TestRetrieveWithoutViewPermissionIsNotFound() {
	log, err := s.catalog.CRMContactLogs.Create(s.ctx, s.admin, &models.CRMContactLog{
		CorporatePartnerID: s.partnerProfile.ID,
		ContactMethod:      models.ContactPhone,
	})
	s.Require().NoError(err)

	_, err = s.catalog.CRMContactLogs.Get(s.ctx, s.partner, log.ID)
	s.ErrorIs(err, apperrors.ErrResourceNotFound)

	err = s.catalog.CRMContactLogs.Delete(s.ctx, s.partner, log.ID)
	s.ErrorIs(err, apperrors.ErrPermissionDenied)
}

func (s *ResourceSuite) TestPartnerProjectsDefaultAndScope() {
	created, err := s.catalog.Projects.Create(s.ctx, s.partner, &models.Project{Title: "Solar"})
	s.Require().NoError(err)
	s.Equal(s.partnerProfile.ID, created.CreatedBy)
	s.Equal(models.ProjectDraft, created.Status)

	other := &models.CorporatePartnerProfile{UserID: s.admin.UserID, CompanyName: "Other"}
	s.Require().NoError(s.stores.CorporatePartners.Create(s.ctx, other))
	foreign := &models.Project{Title: "Wind", CreatedBy: other.ID}
	s.Require().NoError(s.stores.Projects.Create(s.ctx, foreign))

	items, _, err := s.catalog.Projects.List(s.ctx, s.partner, 1, 10)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(created.ID, items[0].ID)

	items, _, err = s.catalog.Projects.List(s.ctx, s.student, 1, 10)
	s.Require().NoError(err)
	s.Len(items, 2)
}

func (s *ResourceSuite) TestReferenceCheckRejectsMissingRows() {
	_, err := s.catalog.Projects.Create(s.ctx, s.partner, &models.Project{Title: "Solar", SkillsRequired: []int64{999}})
	s.requireFieldError(err, "skills_required")
	verr, _ := apperrors.AsValidationError(err)
	s.Equal([]string{`Invalid pk "999" - object does not exist.`}, verr.Fields["skills_required"])
}

func (s *ResourceSuite) TestUserRoleIsImmutable() {
	updated, err := s.catalog.Users.Update(s.ctx, s.admin, s.student.UserID, func(u *models.User) error {
		u.Role = models.RoleAdmin
		u.FirstName = "Ada"
		return nil
	})
	s.Require().NoError(err)
	s.Equal(models.RoleStudent, updated.Role)
	s.Equal("Ada", updated.FirstName)
	s.Require().NotNil(updated.ProfileID)
	s.Equal(s.studentProfile.ID, *updated.ProfileID)
}

func (s *ResourceSuite) TestUserWithoutProfileHasNullProfileID() {
	user, err := s.catalog.Users.Get(s.ctx, s.profileless, s.profileless.UserID)
	s.Require().NoError(err)
	s.Nil(user.ProfileID)

	_, err = s.catalog.Users.Get(s.ctx, s.profileless, s.student.UserID)
	s.ErrorIs(err, apperrors.ErrResourceNotFound)
}

func (s *ResourceSuite) TestModulesHideUnpublishedFromNonAdmins() {
	draft, err := s.catalog.Modules.Create(s.ctx, s.admin, &models.Module{Title: "Draft"})
	s.Require().NoError(err)
	s.Require().NotNil(draft.CreatedBy)
	s.Equal(s.adminProfile.ID, *draft.CreatedBy)

	published, err := s.catalog.Modules.Create(s.ctx, s.admin, &models.Module{Title: "Live", IsPublished: true})
	s.Require().NoError(err)

	items, _, err := s.catalog.Modules.List(s.ctx, s.student, 1, 10)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(published.ID, items[0].ID)

	items, _, err = s.catalog.Modules.List(s.ctx, s.admin, 1, 10)
	s.Require().NoError(err)
	s.Len(items, 2)
}

func (s *ResourceSuite) TestPostAuthorDefaultsToStudentProfile() {
	post, err := s.catalog.Posts.Create(s.ctx, s.student, &models.Post{Content: "hello"})
	s.Require().NoError(err)
	s.Equal(polyref.Ref{Kind: polyref.KindStudentProfile, ID: s.studentProfile.ID}, post.Author)
	s.Require().NotNil(post.AuthorDetail)
	s.Equal("users.StudentProfile", post.AuthorDetail.Type)
	s.Equal("student@test.com", post.AuthorDetail.Display)
	s.Empty(post.AuthorType)

	mentorPost, err := s.catalog.Posts.Create(s.ctx, s.mentor, &models.Post{Content: "tips"})
	s.Require().NoError(err)
	s.Equal(polyref.KindMentorProfile, mentorPost.Author.Kind)
}

func (s *ResourceSuite) TestPostAcceptsDanglingAuthor() {
	post, err := s.catalog.Posts.Create(s.ctx, s.student, &models.Post{
		Content:    "ghost",
		AuthorType: "mentorship.MentorProfile",
		AuthorID:   4242,
	})
	s.Require().NoError(err)
	s.Equal(polyref.Ref{Kind: polyref.KindMentorProfile, ID: 4242}, post.Author)
	s.Nil(post.AuthorDetail)

	got, err := s.catalog.Posts.Get(s.ctx, &authz.Actor{}, post.ID)
	s.Require().NoError(err)
	s.Nil(got.AuthorDetail)
}

func (s *ResourceSuite) TestPostRejectsUnknownAuthorType() {
	_, err := s.catalog.Posts.Create(s.ctx, s.student, &models.Post{
		Content:    "bad",
		AuthorType: "users.ParentProfile",
		AuthorID:   s.parentProfile.ID,
	})
	s.requireFieldError(err, "author_type")
}

func (s *ResourceSuite) TestPostOwnership() {
	post, err := s.catalog.Posts.Create(s.ctx, s.student, &models.Post{Content: "hello"})
	s.Require().NoError(err)

	_, err = s.catalog.Posts.Update(s.ctx, s.otherStudent, post.ID, func(p *models.Post) error {
		p.Content = "hijack"
		return nil
	})
	s.ErrorIs(err, apperrors.ErrPermissionDenied)

	mentorPost, err := s.catalog.Posts.Create(s.ctx, s.mentor, &models.Post{Content: "tips"})
	s.Require().NoError(err)
	err = s.catalog.Posts.Delete(s.ctx, s.mentor, mentorPost.ID)
	s.ErrorIs(err, apperrors.ErrPermissionDenied)

	s.NoError(s.catalog.Posts.Delete(s.ctx, s.student, post.ID))
}

func (s *ResourceSuite) TestToggleLike() {
	post, err := s.catalog.Posts.Create(s.ctx, s.student, &models.Post{Content: "hello"})
	s.Require().NoError(err)

	liked, isLiked, err := s.community.ToggleLike(s.ctx, s.parent, post.ID)
	s.Require().NoError(err)
	s.True(isLiked)
	s.Equal([]int64{s.parent.UserID}, liked.Likes)

	unliked, isLiked, err := s.community.ToggleLike(s.ctx, s.parent, post.ID)
	s.Require().NoError(err)
	s.False(isLiked)
	s.Empty(unliked.Likes)

	_, _, err = s.community.ToggleLike(s.ctx, &authz.Actor{}, post.ID)
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *ResourceSuite) TestConcurrentLikesAreAllKept() {
	post, err := s.catalog.Posts.Create(s.ctx, s.student, &models.Post{Content: "hello"})
	s.Require().NoError(err)

	likers := []*authz.Actor{s.admin, s.student, s.otherStudent, s.parent, s.school, s.partner, s.mentor}
	var wg sync.WaitGroup
	for _, actor := range likers {
		wg.Add(1)
		go func(actor *authz.Actor) {
			defer wg.Done()
			_, liked, err := s.community.ToggleLike(s.ctx, actor, post.ID)
			s.NoError(err)
			s.True(liked)
		}(actor)
	}
	wg.Wait()

	stored, err := s.stores.Posts.Get(s.ctx, repositories.All(), post.ID)
	s.Require().NoError(err)
	s.Len(stored.Likes, len(likers))
	for _, actor := range likers {
		s.True(stored.LikedBy(actor.UserID))
	}
}

func (s *ResourceSuite) TestMessagesRequireMembershipAndBroadcast() {
	chat, err := s.catalog.GroupChats.Create(s.ctx, s.admin, &models.GroupChat{
		Name:    "Mentors",
		Members: []int64{s.student.UserID, s.mentor.UserID},
	})
	s.Require().NoError(err)

	_, err = s.catalog.Messages.Create(s.ctx, s.parent, &models.Message{ChatID: chat.ID, Content: "hi"})
	s.requireFieldError(err, "chat")
	s.Empty(s.broadcaster.sent)

	msg, err := s.catalog.Messages.Create(s.ctx, s.student, &models.Message{ChatID: chat.ID, Content: "hi", SenderID: s.mentor.UserID})
	s.Require().NoError(err)
	s.Equal(s.student.UserID, msg.SenderID)
	s.Require().Len(s.broadcaster.sent, 1)
	s.Equal(msg.ID, s.broadcaster.sent[0].ID)

	_, err = s.community.JoinChat(s.ctx, s.parent, chat.ID)
	s.ErrorIs(err, apperrors.ErrPermissionDenied)
	joined, err := s.community.JoinChat(s.ctx, s.mentor, chat.ID)
	s.Require().NoError(err)
	s.Equal(chat.ID, joined.ID)
}

func (s *ResourceSuite) TestSessionVisibleToMentor() {
	session, err := s.catalog.Sessions.Create(s.ctx, s.student, &models.MentorshipSession{
		MentorID: s.mentorProfile.ID,
		DateTime: time.Now().Add(24 * time.Hour),
	})
	s.Require().NoError(err)
	s.Equal(models.SessionOneToOne, session.SessionType)
	s.Equal(models.SessionBooked, session.Status)

	items, _, err := s.catalog.Sessions.List(s.ctx, s.mentor, 1, 10)
	s.Require().NoError(err)
	s.Require().Len(items, 1)

	got, err := s.catalog.Sessions.Get(s.ctx, s.mentor, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, got.ID)

	_, err = s.catalog.Sessions.Update(s.ctx, s.mentor, session.ID, func(m *models.MentorshipSession) error {
		m.Status = models.SessionCompleted
		return nil
	})
	s.ErrorIs(err, apperrors.ErrPermissionDenied)
}

func (s *ResourceSuite) TestProfileCreationBindsCaller() {
	user := s.seedUser("fresh-parent@test.com", models.RoleParent)
	profile, err := s.catalog.Parents.Create(s.ctx, user, &models.ParentProfile{UserID: s.admin.UserID, Students: []int64{s.studentProfile.ID}})
	s.Require().NoError(err)
	s.Equal(user.UserID, profile.UserID)

	_, err = s.catalog.Parents.Create(s.ctx, user, &models.ParentProfile{})
	s.requireFieldError(err, "user")
}

func (s *ResourceSuite) TestRejectedPatchLeavesStoredRowUntouched() {
	schoolID := s.schoolProfile.ID

	_, err := s.catalog.Students.Update(s.ctx, s.otherStudent, s.otherStudentProfile.ID, func(p *models.StudentProfile) error {
		return json.Unmarshal([]byte(`{"school": 99999}`), p)
	})
	s.requireFieldError(err, "school")

	stored, err := s.stores.Students.Get(s.ctx, repositories.All(), s.otherStudentProfile.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.SchoolID)
	s.Equal(schoolID, *stored.SchoolID)
	s.Equal(schoolID, s.schoolProfile.ID)
}

func (s *ResourceSuite) TestPatchCannotRewriteModuleCreator() {
	otherAdmin := s.seedUser("admin2@test.com", models.RoleAdmin)
	otherAdminProfile := &models.AdminProfile{UserID: otherAdmin.UserID}
	s.Require().NoError(s.stores.Admins.Create(s.ctx, otherAdminProfile))

	module, err := s.catalog.Modules.Create(s.ctx, s.admin, &models.Module{Title: "Fractions"})
	s.Require().NoError(err)
	s.Require().NotNil(module.CreatedBy)
	s.Equal(s.adminProfile.ID, *module.CreatedBy)

	body := fmt.Sprintf(`{"created_by": %d, "title": "Decimals"}`, otherAdminProfile.ID)
	updated, err := s.catalog.Modules.Update(s.ctx, s.admin, module.ID, func(m *models.Module) error {
		return json.Unmarshal([]byte(body), m)
	})
	s.Require().NoError(err)
	s.Equal("Decimals", updated.Title)
	s.Require().NotNil(updated.CreatedBy)
	s.Equal(s.adminProfile.ID, *updated.CreatedBy)

	stored, err := s.stores.Modules.Get(s.ctx, repositories.All(), module.ID)
	s.Require().NoError(err)
	s.Equal(s.adminProfile.ID, *stored.CreatedBy)
}

func (s *ResourceSuite) TestWorkbookPurchaseExplicitPurchaser() {
	book := s.workbook(12.5)

	purchase, err := s.catalog.WorkbookPurchases.Create(s.ctx, s.parent, &models.WorkbookPurchase{
		WorkbookID:    book.ID,
		PurchaserType: "users.ParentProfile",
		PurchaserID:   s.parentProfile.ID,
	})
	s.Require().NoError(err)

	got, err := s.catalog.WorkbookPurchases.Get(s.ctx, s.parent, purchase.ID)
	s.Require().NoError(err)
	s.Equal(polyref.Ref{Kind: polyref.KindParentProfile, ID: s.parentProfile.ID}, got.Purchaser)
	s.Require().NotNil(got.PurchaserInfo)
	s.Equal("users.ParentProfile", got.PurchaserInfo.Type)
	s.Equal(s.parentProfile.ID, got.PurchaserInfo.ID)
	s.Equal(s.parent.UserID, got.PurchaserInfo.UserID)
	s.Equal(models.PurchasePending, got.PaymentStatus)
}

func (s *ResourceSuite) TestWorkbookPurchaseRejectsUnknownPurchaserType() {
	book := s.workbook(12.5)

	_, err := s.catalog.WorkbookPurchases.Create(s.ctx, s.parent, &models.WorkbookPurchase{
		WorkbookID:    book.ID,
		PurchaserType: "bogus.Thing",
		PurchaserID:   s.parentProfile.ID,
	})
	s.requireFieldError(err, "purchaser_type")

	purchases, total, err := s.stores.WorkbookPurchases.List(s.ctx, repositories.All(), repositories.Page{})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(purchases)
}
