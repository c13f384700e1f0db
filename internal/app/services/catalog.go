package services

import (
	"context"
	"strings"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/polyref"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/metrics"
)

// MessageBroadcaster delivers stored chat messages to live subscribers
type MessageBroadcaster interface {
	BroadcastMessage(msg *models.Message)
}

// Catalog holds one resource service per resource kind
type Catalog struct {
	Users             *ResourceService[models.User]
	Students          *ResourceService[models.StudentProfile]
	Parents           *ResourceService[models.ParentProfile]
	Schools           *ResourceService[models.SchoolProfile]
	CorporatePartners *ResourceService[models.CorporatePartnerProfile]
	Admins            *ResourceService[models.AdminProfile]

	Projects    *ResourceService[models.Project]
	Submissions *ResourceService[models.StudentProjectSubmission]

	Mentors         *ResourceService[models.MentorProfile]
	Sessions        *ResourceService[models.MentorshipSession]
	SessionFeedback *ResourceService[models.SessionFeedback]

	Modules           *ResourceService[models.Module]
	Resources         *ResourceService[models.Resource]
	Workbooks         *ResourceService[models.Workbook]
	WorkbookPurchases *ResourceService[models.WorkbookPurchase]

	PaymentTransactions *ResourceService[models.PaymentTransaction]
	CRMContactLogs      *ResourceService[models.CRMContactLog]

	Posts      *ResourceService[models.Post]
	Comments   *ResourceService[models.Comment]
	GroupChats *ResourceService[models.GroupChat]
	Messages   *ResourceService[models.Message]

	Skills       *ResourceService[models.Skill]
	Badges       *ResourceService[models.Badge]
	Certificates *ResourceService[models.Certificate]

	Progress       *ResourceService[models.ProgressTracker]
	EngagementLogs *ResourceService[models.EngagementLog]
	ImpactReports  *ResourceService[models.ImpactReport]
}

// catalogBuilder carries the collaborators shared by every definition
type catalogBuilder struct {
	stores      *repositories.Stores
	dir         *repositories.ProfileDirectory
	resolver    *polyref.Resolver
	defaults    profileDefaults
	broadcaster MessageBroadcaster
}

// NewCatalog wires every resource kind to its store and the authorization engine
func NewCatalog(stores *repositories.Stores, engine *authz.Engine, dir *repositories.ProfileDirectory,
	resolver *polyref.Resolver, broadcaster MessageBroadcaster, m *metrics.Metrics) *Catalog {
	b := &catalogBuilder{
		stores:      stores,
		dir:         dir,
		resolver:    resolver,
		defaults:    profileDefaults{dir: dir},
		broadcaster: broadcaster,
	}

	return &Catalog{
		Users:             NewResourceService(b.users(), stores.Users, engine, m),
		Students:          NewResourceService(b.students(), stores.Students, engine, m),
		Parents:           NewResourceService(b.parents(), stores.Parents, engine, m),
		Schools:           NewResourceService(b.schools(), stores.Schools, engine, m),
		CorporatePartners: NewResourceService(b.corporatePartners(), stores.CorporatePartners, engine, m),
		Admins:            NewResourceService(b.admins(), stores.Admins, engine, m),

		Projects:    NewResourceService(b.projects(), stores.Projects, engine, m),
		Submissions: NewResourceService(b.submissions(), stores.Submissions, engine, m),

		Mentors:         NewResourceService(b.mentors(), stores.Mentors, engine, m),
		Sessions:        NewResourceService(b.sessions(), stores.Sessions, engine, m),
		SessionFeedback: NewResourceService(b.sessionFeedback(), stores.SessionFeedback, engine, m),

		Modules:           NewResourceService(b.modules(), stores.Modules, engine, m),
		Resources:         NewResourceService(b.resources(), stores.Resources, engine, m),
		Workbooks:         NewResourceService(b.workbooks(), stores.Workbooks, engine, m),
		WorkbookPurchases: NewResourceService(b.workbookPurchases(), stores.WorkbookPurchases, engine, m),

		PaymentTransactions: NewResourceService(b.paymentTransactions(), stores.PaymentTransactions, engine, m),
		CRMContactLogs:      NewResourceService(b.crmContactLogs(), stores.CRMContactLogs, engine, m),

		Posts:      NewResourceService(b.posts(), stores.Posts, engine, m),
		Comments:   NewResourceService(b.comments(), stores.Comments, engine, m),
		GroupChats: NewResourceService(b.groupChats(), stores.GroupChats, engine, m),
		Messages:   NewResourceService(b.messages(), stores.Messages, engine, m),

		Skills:       NewResourceService(b.skills(), stores.Skills, engine, m),
		Badges:       NewResourceService(b.badges(), stores.Badges, engine, m),
		Certificates: NewResourceService(b.certificates(), stores.Certificates, engine, m),

		Progress:       NewResourceService(b.progress(), stores.Progress, engine, m),
		EngagementLogs: NewResourceService(b.engagementLogs(), stores.EngagementLogs, engine, m),
		ImpactReports:  NewResourceService(b.impactReports(), stores.ImpactReports, engine, m),
	}
}

// bindUser points a profile at the caller unless an admin creates it for someone else
func bindUser(actor *authz.Actor, userID *int64) {
	if !actor.IsAdmin() || *userID == 0 {
		*userID = actor.UserID
	}
}

func userOwner[T any](userID func(*T) int64) func(context.Context, *T) (authz.OwnerRef, error) {
	return func(_ context.Context, item *T) (authz.OwnerRef, error) {
		return authz.OwnerRef{UserID: userID(item)}, nil
	}
}

// --- users ---

func (b *catalogBuilder) users() Definition[models.User] {
	return Definition[models.User]{
		Kind:  authz.KindUsers,
		ID:    repositories.UserSchema.ID,
		Owner: userOwner(func(u *models.User) int64 { return u.ID }),
		Prepare: func(_ context.Context, _ *authz.Actor, u *models.User) error {
			u.Email = strings.ToLower(strings.TrimSpace(u.Email))
			if u.Role == "" {
				u.Role = models.RoleStudent
			}
			u.IsActive = true
			return nil
		},
		Merge: func(stored, incoming *models.User) {
			incoming.Role = stored.Role
			incoming.Password = stored.Password
			incoming.IsSuperuser = stored.IsSuperuser
			incoming.DateJoined = stored.DateJoined
			incoming.Email = strings.ToLower(strings.TrimSpace(incoming.Email))
		},
		Decorate: func(ctx context.Context, u *models.User) error {
			id, err := b.dir.ProfileID(ctx, u)
			if err != nil {
				return err
			}
			u.ProfileID = id
			return nil
		},
	}
}

func (b *catalogBuilder) students() Definition[models.StudentProfile] {
	return Definition[models.StudentProfile]{
		Kind: authz.KindStudents,
		ID:   repositories.StudentProfileSchema.ID,
		Owner: func(_ context.Context, p *models.StudentProfile) (authz.OwnerRef, error) {
			return authz.OwnerRef{UserID: p.UserID, StudentID: p.ID}, nil
		},
		Prepare: func(_ context.Context, actor *authz.Actor, p *models.StudentProfile) error {
			bindUser(actor, &p.UserID)
			return nil
		},
		Merge: func(stored, incoming *models.StudentProfile) {
			incoming.UserID = stored.UserID
		},
		Check: func(ctx context.Context, p *models.StudentProfile) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Users, "user", p.UserID)
			checkOptional(c, b.stores.Schools, "school", p.SchoolID)
			checkRef(c, b.stores.Skills, "skills", p.Skills...)
			checkRef(c, b.stores.Badges, "badges", p.Badges...)
			checkRef(c, b.stores.Certificates, "certificates", p.Certificates...)
			return c.result()
		},
	}
}

func (b *catalogBuilder) parents() Definition[models.ParentProfile] {
	return Definition[models.ParentProfile]{
		Kind:  authz.KindParents,
		ID:    repositories.ParentProfileSchema.ID,
		Owner: userOwner(func(p *models.ParentProfile) int64 { return p.UserID }),
		Prepare: func(_ context.Context, actor *authz.Actor, p *models.ParentProfile) error {
			bindUser(actor, &p.UserID)
			return nil
		},
		Merge: func(stored, incoming *models.ParentProfile) {
			incoming.UserID = stored.UserID
		},
		Check: func(ctx context.Context, p *models.ParentProfile) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Users, "user", p.UserID)
			checkRef(c, b.stores.Students, "students", p.Students...)
			return c.result()
		},
	}
}

func (b *catalogBuilder) schools() Definition[models.SchoolProfile] {
	return Definition[models.SchoolProfile]{
		Kind:  authz.KindSchools,
		ID:    repositories.SchoolProfileSchema.ID,
		Owner: userOwner(func(p *models.SchoolProfile) int64 { return p.UserID }),
		Prepare: func(_ context.Context, actor *authz.Actor, p *models.SchoolProfile) error {
			bindUser(actor, &p.UserID)
			return nil
		},
		Merge: func(stored, incoming *models.SchoolProfile) {
			incoming.UserID = stored.UserID
		},
		Check: func(ctx context.Context, p *models.SchoolProfile) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Users, "user", p.UserID)
			return c.result()
		},
	}
}

func (b *catalogBuilder) corporatePartners() Definition[models.CorporatePartnerProfile] {
	return Definition[models.CorporatePartnerProfile]{
		Kind:  authz.KindCorporatePartners,
		ID:    repositories.CorporatePartnerProfileSchema.ID,
		Owner: userOwner(func(p *models.CorporatePartnerProfile) int64 { return p.UserID }),
		Prepare: func(_ context.Context, actor *authz.Actor, p *models.CorporatePartnerProfile) error {
			bindUser(actor, &p.UserID)
			return nil
		},
		Merge: func(stored, incoming *models.CorporatePartnerProfile) {
			incoming.UserID = stored.UserID
		},
		Check: func(ctx context.Context, p *models.CorporatePartnerProfile) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Users, "user", p.UserID)
			return c.result()
		},
	}
}

func (b *catalogBuilder) admins() Definition[models.AdminProfile] {
	return Definition[models.AdminProfile]{
		Kind: authz.KindAdmins,
		ID:   repositories.AdminProfileSchema.ID,
		Prepare: func(_ context.Context, actor *authz.Actor, p *models.AdminProfile) error {
			bindUser(actor, &p.UserID)
			return nil
		},
		Merge: func(stored, incoming *models.AdminProfile) {
			incoming.UserID = stored.UserID
		},
		Check: func(ctx context.Context, p *models.AdminProfile) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Users, "user", p.UserID)
			return c.result()
		},
	}
}

// --- projects ---

func (b *catalogBuilder) projects() Definition[models.Project] {
	return Definition[models.Project]{
		Kind: authz.KindProjects,
		ID:   repositories.ProjectSchema.ID,
		Owner: func(_ context.Context, p *models.Project) (authz.OwnerRef, error) {
			return authz.OwnerRef{PartnerID: p.CreatedBy}, nil
		},
		Prepare: func(ctx context.Context, actor *authz.Actor, p *models.Project) error {
			partnerID, err := b.defaults.partner(ctx, actor)
			if err != nil {
				return err
			}
			if partnerID != 0 {
				p.CreatedBy = partnerID
				p.ApprovedBy = nil
			}
			if p.Status == "" {
				p.Status = models.ProjectDraft
			}
			return nil
		},
		Merge: func(stored, incoming *models.Project) {
			incoming.CreatedBy = stored.CreatedBy
			incoming.CreatedAt = stored.CreatedAt
			if incoming.Status == "" {
				incoming.Status = stored.Status
			}
		},
		Check: func(ctx context.Context, p *models.Project) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.CorporatePartners, "created_by", p.CreatedBy)
			checkOptional(c, b.stores.Admins, "approved_by", p.ApprovedBy)
			checkRef(c, b.stores.Skills, "skills_required", p.SkillsRequired...)
			return c.result()
		},
	}
}

func (b *catalogBuilder) submissions() Definition[models.StudentProjectSubmission] {
	return Definition[models.StudentProjectSubmission]{
		Kind: authz.KindSubmissions,
		ID:   repositories.SubmissionSchema.ID,
		Owner: func(ctx context.Context, s *models.StudentProjectSubmission) (authz.OwnerRef, error) {
			owner := authz.OwnerRef{StudentID: s.StudentID}
			project, err := b.stores.Projects.Get(ctx, repositories.All(), s.ProjectID)
			if err == nil {
				owner.PartnerID = project.CreatedBy
			} else if !repositories.IsNotFound(err) {
				return owner, err
			}
			return owner, nil
		},
		Prepare: func(ctx context.Context, actor *authz.Actor, s *models.StudentProjectSubmission) error {
			studentID, err := b.defaults.student(ctx, actor)
			if err != nil {
				return err
			}
			if studentID != 0 {
				s.StudentID = studentID
			}
			if s.Status == "" {
				s.Status = models.SubmissionSubmitted
			}
			return nil
		},
		Merge: func(stored, incoming *models.StudentProjectSubmission) {
			incoming.StudentID = stored.StudentID
			incoming.ProjectID = stored.ProjectID
			incoming.SubmittedAt = stored.SubmittedAt
			if incoming.Status == "" {
				incoming.Status = stored.Status
			}
		},
		Check: func(ctx context.Context, s *models.StudentProjectSubmission) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Students, "student", s.StudentID)
			checkRequired(c, b.stores.Projects, "project", s.ProjectID)
			return c.result()
		},
	}
}

// --- mentorship ---

func (b *catalogBuilder) mentors() Definition[models.MentorProfile] {
	return Definition[models.MentorProfile]{
		Kind:  authz.KindMentors,
		ID:    repositories.MentorProfileSchema.ID,
		Owner: userOwner(func(p *models.MentorProfile) int64 { return p.UserID }),
		Prepare: func(_ context.Context, actor *authz.Actor, p *models.MentorProfile) error {
			bindUser(actor, &p.UserID)
			return nil
		},
		Merge: func(stored, incoming *models.MentorProfile) {
			incoming.UserID = stored.UserID
		},
		Check: func(ctx context.Context, p *models.MentorProfile) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Users, "user", p.UserID)
			checkOptional(c, b.stores.CorporatePartners, "corporate_partner", p.CorporatePartnerID)
			return c.result()
		},
	}
}

func (b *catalogBuilder) sessions() Definition[models.MentorshipSession] {
	return Definition[models.MentorshipSession]{
		Kind: authz.KindSessions,
		ID:   repositories.SessionSchema.ID,
		Owner: func(_ context.Context, s *models.MentorshipSession) (authz.OwnerRef, error) {
			return authz.OwnerRef{StudentID: s.StudentID, MentorID: s.MentorID}, nil
		},
		Prepare: func(ctx context.Context, actor *authz.Actor, s *models.MentorshipSession) error {
			studentID, err := b.defaults.student(ctx, actor)
			if err != nil {
				return err
			}
			if studentID != 0 {
				s.StudentID = studentID
			}
			if s.SessionType == "" {
				s.SessionType = models.SessionOneToOne
			}
			if s.Status == "" {
				s.Status = models.SessionBooked
			}
			return nil
		},
		Merge: func(stored, incoming *models.MentorshipSession) {
			incoming.StudentID = stored.StudentID
			incoming.CreatedAt = stored.CreatedAt
			if incoming.SessionType == "" {
				incoming.SessionType = stored.SessionType
			}
			if incoming.Status == "" {
				incoming.Status = stored.Status
			}
		},
		Check: func(ctx context.Context, s *models.MentorshipSession) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Mentors, "mentor", s.MentorID)
			checkRequired(c, b.stores.Students, "student", s.StudentID)
			return c.result()
		},
	}
}

func (b *catalogBuilder) sessionFeedback() Definition[models.SessionFeedback] {
	return Definition[models.SessionFeedback]{
		Kind: authz.KindSessionFeedback,
		ID:   repositories.SessionFeedbackSchema.ID,
		Owner: func(ctx context.Context, f *models.SessionFeedback) (authz.OwnerRef, error) {
			owner := authz.OwnerRef{StudentID: f.StudentID}
			session, err := b.stores.Sessions.Get(ctx, repositories.All(), f.SessionID)
			if err == nil {
				owner.MentorID = session.MentorID
			} else if !repositories.IsNotFound(err) {
				return owner, err
			}
			return owner, nil
		},
		Prepare: func(ctx context.Context, actor *authz.Actor, f *models.SessionFeedback) error {
			studentID, err := b.defaults.student(ctx, actor)
			if err != nil {
				return err
			}
			if studentID != 0 {
				f.StudentID = studentID
			}
			return nil
		},
		Merge: func(stored, incoming *models.SessionFeedback) {
			incoming.SessionID = stored.SessionID
			incoming.StudentID = stored.StudentID
			incoming.CreatedAt = stored.CreatedAt
		},
		Check: func(ctx context.Context, f *models.SessionFeedback) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Sessions, "session", f.SessionID)
			checkRequired(c, b.stores.Students, "student", f.StudentID)
			return c.result()
		},
	}
}

// --- learning ---

func (b *catalogBuilder) modules() Definition[models.Module] {
	return Definition[models.Module]{
		Kind: authz.KindModules,
		ID:   repositories.ModuleSchema.ID,
		Prepare: func(ctx context.Context, actor *authz.Actor, m *models.Module) error {
			if m.CreatedBy != nil {
				return nil
			}
			adminID, err := b.defaults.admin(ctx, actor)
			m.CreatedBy = adminID
			return err
		},
		Merge: func(stored, incoming *models.Module) {
			incoming.CreatedBy = stored.CreatedBy
			incoming.CreatedAt = stored.CreatedAt
		},
		Check: func(ctx context.Context, m *models.Module) error {
			c := newRefCheck(ctx)
			checkOptional(c, b.stores.Admins, "created_by", m.CreatedBy)
			return c.result()
		},
	}
}

func (b *catalogBuilder) resources() Definition[models.Resource] {
	return Definition[models.Resource]{
		Kind: authz.KindResources,
		ID:   repositories.ResourceSchema.ID,
		Merge: func(stored, incoming *models.Resource) {
			incoming.UploadedAt = stored.UploadedAt
		},
		Check: func(ctx context.Context, r *models.Resource) error {
			c := newRefCheck(ctx)
			checkOptional(c, b.stores.Modules, "module", r.ModuleID)
			return c.result()
		},
	}
}

func (b *catalogBuilder) workbooks() Definition[models.Workbook] {
	return Definition[models.Workbook]{
		Kind: authz.KindWorkbooks,
		ID:   repositories.WorkbookSchema.ID,
		Prepare: func(ctx context.Context, actor *authz.Actor, w *models.Workbook) error {
			if w.CreatedBy != nil {
				return nil
			}
			adminID, err := b.defaults.admin(ctx, actor)
			w.CreatedBy = adminID
			return err
		},
		Merge: func(stored, incoming *models.Workbook) {
			incoming.CreatedBy = stored.CreatedBy
			incoming.CreatedAt = stored.CreatedAt
		},
		Check: func(ctx context.Context, w *models.Workbook) error {
			c := newRefCheck(ctx)
			checkOptional(c, b.stores.Admins, "created_by", w.CreatedBy)
			return c.result()
		},
	}
}

func (b *catalogBuilder) workbookPurchases() Definition[models.WorkbookPurchase] {
	return Definition[models.WorkbookPurchase]{
		Kind: authz.KindWorkbookPurchases,
		ID:   repositories.WorkbookPurchaseSchema.ID,
		Owner: func(_ context.Context, p *models.WorkbookPurchase) (authz.OwnerRef, error) {
			return authz.OwnerRef{Ref: p.Purchaser}, nil
		},
		Prepare: func(ctx context.Context, actor *authz.Actor, p *models.WorkbookPurchase) error {
			var err error
			if p.PurchaserType != "" {
				p.Purchaser, err = polyref.PurchaserField.Parse(p.PurchaserType, p.PurchaserID)
			} else {
				p.Purchaser, err = b.defaults.purchaser(ctx, actor)
			}
			if err != nil {
				return err
			}
			p.PurchaserType, p.PurchaserID = "", 0
			if p.PaymentStatus == "" {
				p.PaymentStatus = models.PurchasePending
			}
			return nil
		},
		Merge: func(stored, incoming *models.WorkbookPurchase) {
			incoming.Purchaser = stored.Purchaser
			incoming.PurchaserType, incoming.PurchaserID = "", 0
			incoming.PurchaseDate = stored.PurchaseDate
			if incoming.PaymentStatus == "" {
				incoming.PaymentStatus = stored.PaymentStatus
			}
		},
		Check: func(ctx context.Context, p *models.WorkbookPurchase) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Workbooks, "workbook", p.WorkbookID)
			return c.result()
		},
		Decorate: func(ctx context.Context, p *models.WorkbookPurchase) error {
			target, err := b.resolver.ResolveOptional(ctx, p.Purchaser)
			if err != nil {
				return err
			}
			p.PurchaserInfo = target
			return nil
		},
	}
}

// --- payments ---

func (b *catalogBuilder) paymentTransactions() Definition[models.PaymentTransaction] {
	return Definition[models.PaymentTransaction]{
		Kind: authz.KindPaymentTransactions,
		ID:   repositories.PaymentTransactionSchema.ID,
		Owner: func(_ context.Context, t *models.PaymentTransaction) (authz.OwnerRef, error) {
			if t.UserID == nil {
				return authz.OwnerRef{}, nil
			}
			return authz.OwnerRef{UserID: *t.UserID}, nil
		},
		Prepare: func(_ context.Context, actor *authz.Actor, t *models.PaymentTransaction) error {
			if t.UserID == nil {
				userID := actor.UserID
				t.UserID = &userID
			}
			applyTransactionDefaults(t)
			return nil
		},
		Merge: func(stored, incoming *models.PaymentTransaction) {
			incoming.CreatedAt = stored.CreatedAt
			applyTransactionDefaults(incoming)
		},
		Check: func(ctx context.Context, t *models.PaymentTransaction) error {
			c := newRefCheck(ctx)
			checkOptional(c, b.stores.Users, "user", t.UserID)
			checkOptional(c, b.stores.Workbooks, "workbook", t.WorkbookID)
			return c.result()
		},
	}
}

func applyTransactionDefaults(t *models.PaymentTransaction) {
	if t.Provider == "" {
		t.Provider = models.ProviderStripe
	}
	if t.Currency == "" {
		t.Currency = DefaultCurrency
	}
	if t.Status == "" {
		t.Status = models.PaymentPending
	}
	if t.PaymentType == "" {
		t.PaymentType = models.PaymentTypeOther
	}
}

func (b *catalogBuilder) crmContactLogs() Definition[models.CRMContactLog] {
	return Definition[models.CRMContactLog]{
		Kind: authz.KindCRMContactLogs,
		ID:   repositories.CRMContactLogSchema.ID,
		Merge: func(stored, incoming *models.CRMContactLog) {
			incoming.Timestamp = stored.Timestamp
		},
		Check: func(ctx context.Context, l *models.CRMContactLog) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.CorporatePartners, "corporate_partner", l.CorporatePartnerID)
			return c.result()
		},
	}
}

// --- community ---

// authorRef parses the write-only author inputs or falls back to the caller's own profile
func (b *catalogBuilder) authorRef(ctx context.Context, actor *authz.Actor, tag string, id int64) (polyref.Ref, error) {
	if tag != "" {
		return polyref.AuthorField.Parse(tag, id)
	}
	return b.defaults.author(ctx, actor)
}

func (b *catalogBuilder) authorDetail(ctx context.Context, ref polyref.Ref) (*polyref.Target, error) {
	return b.resolver.ResolveOptional(ctx, ref)
}

func (b *catalogBuilder) posts() Definition[models.Post] {
	return Definition[models.Post]{
		Kind: authz.KindPosts,
		ID:   repositories.PostSchema.ID,
		Owner: func(_ context.Context, p *models.Post) (authz.OwnerRef, error) {
			return authz.OwnerRef{Ref: p.Author}, nil
		},
		Prepare: func(ctx context.Context, actor *authz.Actor, p *models.Post) error {
			ref, err := b.authorRef(ctx, actor, p.AuthorType, p.AuthorID)
			if err != nil {
				return err
			}
			p.Author = ref
			p.AuthorType, p.AuthorID = "", 0
			p.Likes = []int64{}
			return nil
		},
		Merge: func(stored, incoming *models.Post) {
			incoming.Author = stored.Author
			incoming.AuthorType, incoming.AuthorID = "", 0
			incoming.Likes = stored.Likes
			incoming.CreatedAt = stored.CreatedAt
		},
		Decorate: func(ctx context.Context, p *models.Post) error {
			detail, err := b.authorDetail(ctx, p.Author)
			p.AuthorDetail = detail
			return err
		},
	}
}

func (b *catalogBuilder) comments() Definition[models.Comment] {
	return Definition[models.Comment]{
		Kind: authz.KindComments,
		ID:   repositories.CommentSchema.ID,
		Owner: func(_ context.Context, c *models.Comment) (authz.OwnerRef, error) {
			return authz.OwnerRef{Ref: c.Author}, nil
		},
		Prepare: func(ctx context.Context, actor *authz.Actor, c *models.Comment) error {
			ref, err := b.authorRef(ctx, actor, c.AuthorType, c.AuthorID)
			if err != nil {
				return err
			}
			c.Author = ref
			c.AuthorType, c.AuthorID = "", 0
			return nil
		},
		Merge: func(stored, incoming *models.Comment) {
			incoming.PostID = stored.PostID
			incoming.Author = stored.Author
			incoming.AuthorType, incoming.AuthorID = "", 0
			incoming.CreatedAt = stored.CreatedAt
		},
		Check: func(ctx context.Context, cm *models.Comment) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Posts, "post", cm.PostID)
			return c.result()
		},
		Decorate: func(ctx context.Context, c *models.Comment) error {
			detail, err := b.authorDetail(ctx, c.Author)
			c.AuthorDetail = detail
			return err
		},
	}
}

func (b *catalogBuilder) groupChats() Definition[models.GroupChat] {
	return Definition[models.GroupChat]{
		Kind: authz.KindGroupChats,
		ID:   repositories.GroupChatSchema.ID,
		Merge: func(stored, incoming *models.GroupChat) {
			incoming.CreatedAt = stored.CreatedAt
		},
		Check: func(ctx context.Context, g *models.GroupChat) error {
			c := newRefCheck(ctx)
			checkRef(c, b.stores.Users, "members", g.Members...)
			return c.result()
		},
	}
}

func (b *catalogBuilder) messages() Definition[models.Message] {
	return Definition[models.Message]{
		Kind:  authz.KindMessages,
		ID:    repositories.MessageSchema.ID,
		Owner: userOwner(func(m *models.Message) int64 { return m.SenderID }),
		Prepare: func(ctx context.Context, actor *authz.Actor, m *models.Message) error {
			bindUser(actor, &m.SenderID)
			if actor.IsAdmin() || m.ChatID == 0 {
				return nil
			}
			chat, err := b.stores.GroupChats.Get(ctx, repositories.All(), m.ChatID)
			if err != nil {
				if repositories.IsNotFound(err) {
					return nil
				}
				return err
			}
			if !chat.HasMember(actor.UserID) {
				return apperrors.NewValidationError("chat", "You are not a member of this chat.")
			}
			return nil
		},
		Merge: func(stored, incoming *models.Message) {
			incoming.ChatID = stored.ChatID
			incoming.SenderID = stored.SenderID
			incoming.Timestamp = stored.Timestamp
		},
		Check: func(ctx context.Context, m *models.Message) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.GroupChats, "chat", m.ChatID)
			checkRequired(c, b.stores.Users, "sender", m.SenderID)
			return c.result()
		},
		Created: func(_ context.Context, m *models.Message) {
			if b.broadcaster != nil {
				b.broadcaster.BroadcastMessage(m)
			}
		},
	}
}

// --- achievements ---

func (b *catalogBuilder) skills() Definition[models.Skill] {
	return Definition[models.Skill]{
		Kind: authz.KindSkills,
		ID:   repositories.SkillSchema.ID,
	}
}

func (b *catalogBuilder) badges() Definition[models.Badge] {
	return Definition[models.Badge]{
		Kind: authz.KindBadges,
		ID:   repositories.BadgeSchema.ID,
		Check: func(ctx context.Context, badge *models.Badge) error {
			c := newRefCheck(ctx)
			checkOptional(c, b.stores.Skills, "skill", badge.SkillID)
			return c.result()
		},
	}
}

func (b *catalogBuilder) certificates() Definition[models.Certificate] {
	return Definition[models.Certificate]{
		Kind: authz.KindCertificates,
		ID:   repositories.CertificateSchema.ID,
		Owner: func(_ context.Context, cert *models.Certificate) (authz.OwnerRef, error) {
			return authz.OwnerRef{StudentID: cert.IssuedTo}, nil
		},
		Prepare: func(ctx context.Context, actor *authz.Actor, cert *models.Certificate) error {
			if cert.IssuedBy != nil {
				return nil
			}
			adminID, err := b.defaults.admin(ctx, actor)
			cert.IssuedBy = adminID
			return err
		},
		Merge: func(stored, incoming *models.Certificate) {
			incoming.IssueDate = stored.IssueDate
		},
		Check: func(ctx context.Context, cert *models.Certificate) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Students, "issued_to", cert.IssuedTo)
			checkOptional(c, b.stores.Admins, "issued_by", cert.IssuedBy)
			return c.result()
		},
	}
}

// --- analytics ---

func (b *catalogBuilder) progress() Definition[models.ProgressTracker] {
	return Definition[models.ProgressTracker]{
		Kind: authz.KindProgress,
		ID:   repositories.ProgressTrackerSchema.ID,
		Owner: func(_ context.Context, p *models.ProgressTracker) (authz.OwnerRef, error) {
			return authz.OwnerRef{StudentID: p.StudentID}, nil
		},
		Prepare: func(ctx context.Context, actor *authz.Actor, p *models.ProgressTracker) error {
			studentID, err := b.defaults.student(ctx, actor)
			if err != nil {
				return err
			}
			if studentID != 0 {
				p.StudentID = studentID
			}
			return nil
		},
		Merge: func(stored, incoming *models.ProgressTracker) {
			incoming.StudentID = stored.StudentID
		},
		Check: func(ctx context.Context, p *models.ProgressTracker) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Students, "student", p.StudentID)
			checkOptional(c, b.stores.Projects, "project", p.ProjectID)
			checkOptional(c, b.stores.Modules, "module", p.ModuleID)
			return c.result()
		},
	}
}

func (b *catalogBuilder) engagementLogs() Definition[models.EngagementLog] {
	return Definition[models.EngagementLog]{
		Kind:  authz.KindEngagementLogs,
		ID:    repositories.EngagementLogSchema.ID,
		Owner: userOwner(func(l *models.EngagementLog) int64 { return l.UserID }),
		Prepare: func(_ context.Context, actor *authz.Actor, l *models.EngagementLog) error {
			bindUser(actor, &l.UserID)
			return nil
		},
		Merge: func(stored, incoming *models.EngagementLog) {
			incoming.UserID = stored.UserID
			incoming.Timestamp = stored.Timestamp
		},
		Check: func(ctx context.Context, l *models.EngagementLog) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.Users, "user", l.UserID)
			return c.result()
		},
	}
}

func (b *catalogBuilder) impactReports() Definition[models.ImpactReport] {
	return Definition[models.ImpactReport]{
		Kind: authz.KindImpactReports,
		ID:   repositories.ImpactReportSchema.ID,
		Owner: func(_ context.Context, r *models.ImpactReport) (authz.OwnerRef, error) {
			return authz.OwnerRef{PartnerID: r.CorporatePartnerID}, nil
		},
		Merge: func(stored, incoming *models.ImpactReport) {
			incoming.GeneratedAt = stored.GeneratedAt
		},
		Check: func(ctx context.Context, r *models.ImpactReport) error {
			c := newRefCheck(ctx)
			checkRequired(c, b.stores.CorporatePartners, "corporate_partner", r.CorporatePartnerID)
			return c.result()
		},
	}
}
