package repositories

import (
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/db"
)

// Stores holds one store per entity kind
type Stores struct {
	Users         Store[models.User]
	RefreshTokens Store[models.RefreshToken]

	Students          Store[models.StudentProfile]
	Parents           Store[models.ParentProfile]
	Schools           Store[models.SchoolProfile]
	CorporatePartners Store[models.CorporatePartnerProfile]
	Admins            Store[models.AdminProfile]
	Mentors           Store[models.MentorProfile]

	Projects    Store[models.Project]
	Submissions Store[models.StudentProjectSubmission]

	Sessions        Store[models.MentorshipSession]
	SessionFeedback Store[models.SessionFeedback]

	Modules           Store[models.Module]
	Resources         Store[models.Resource]
	Workbooks         Store[models.Workbook]
	WorkbookPurchases Store[models.WorkbookPurchase]

	PaymentTransactions Store[models.PaymentTransaction]
	CRMContactLogs      Store[models.CRMContactLog]

	Posts      Store[models.Post]
	Comments   Store[models.Comment]
	GroupChats Store[models.GroupChat]
	Messages   Store[models.Message]

	Skills       Store[models.Skill]
	Badges       Store[models.Badge]
	Certificates Store[models.Certificate]

	Progress       Store[models.ProgressTracker]
	EngagementLogs Store[models.EngagementLog]
	ImpactReports  Store[models.ImpactReport]
}

// NewPostgresStores initializes every store against PostgreSQL
func NewPostgresStores(database *db.PostgresDB) *Stores {
	return &Stores{
		Users:               NewPgTable(database, UserSchema),
		RefreshTokens:       NewPgTable(database, RefreshTokenSchema),
		Students:            NewPgTable(database, StudentProfileSchema),
		Parents:             NewPgTable(database, ParentProfileSchema),
		Schools:             NewPgTable(database, SchoolProfileSchema),
		CorporatePartners:   NewPgTable(database, CorporatePartnerProfileSchema),
		Admins:              NewPgTable(database, AdminProfileSchema),
		Mentors:             NewPgTable(database, MentorProfileSchema),
		Projects:            NewPgTable(database, ProjectSchema),
		Submissions:         NewPgTable(database, SubmissionSchema),
		Sessions:            NewPgTable(database, SessionSchema),
		SessionFeedback:     NewPgTable(database, SessionFeedbackSchema),
		Modules:             NewPgTable(database, ModuleSchema),
		Resources:           NewPgTable(database, ResourceSchema),
		Workbooks:           NewPgTable(database, WorkbookSchema),
		WorkbookPurchases:   NewPgTable(database, WorkbookPurchaseSchema),
		PaymentTransactions: NewPgTable(database, PaymentTransactionSchema),
		CRMContactLogs:      NewPgTable(database, CRMContactLogSchema),
		Posts:               NewPgTable(database, PostSchema),
		Comments:            NewPgTable(database, CommentSchema),
		GroupChats:          NewPgTable(database, GroupChatSchema),
		Messages:            NewPgTable(database, MessageSchema),
		Skills:              NewPgTable(database, SkillSchema),
		Badges:              NewPgTable(database, BadgeSchema),
		Certificates:        NewPgTable(database, CertificateSchema),
		Progress:            NewPgTable(database, ProgressTrackerSchema),
		EngagementLogs:      NewPgTable(database, EngagementLogSchema),
		ImpactReports:       NewPgTable(database, ImpactReportSchema),
	}
}

// NewMemoryStores initializes every store in process memory
func NewMemoryStores() *Stores {
	return &Stores{
		Users:               NewMemoryTable(UserSchema),
		RefreshTokens:       NewMemoryTable(RefreshTokenSchema),
		Students:            NewMemoryTable(StudentProfileSchema),
		Parents:             NewMemoryTable(ParentProfileSchema),
		Schools:             NewMemoryTable(SchoolProfileSchema),
		CorporatePartners:   NewMemoryTable(CorporatePartnerProfileSchema),
		Admins:              NewMemoryTable(AdminProfileSchema),
		Mentors:             NewMemoryTable(MentorProfileSchema),
		Projects:            NewMemoryTable(ProjectSchema),
		Submissions:         NewMemoryTable(SubmissionSchema),
		Sessions:            NewMemoryTable(SessionSchema),
		SessionFeedback:     NewMemoryTable(SessionFeedbackSchema),
		Modules:             NewMemoryTable(ModuleSchema),
		Resources:           NewMemoryTable(ResourceSchema),
		Workbooks:           NewMemoryTable(WorkbookSchema),
		WorkbookPurchases:   NewMemoryTable(WorkbookPurchaseSchema),
		PaymentTransactions: NewMemoryTable(PaymentTransactionSchema),
		CRMContactLogs:      NewMemoryTable(CRMContactLogSchema),
		Posts:               NewMemoryTable(PostSchema),
		Comments:            NewMemoryTable(CommentSchema),
		GroupChats:          NewMemoryTable(GroupChatSchema),
		Messages:            NewMemoryTable(MessageSchema),
		Skills:              NewMemoryTable(SkillSchema),
		Badges:              NewMemoryTable(BadgeSchema),
		Certificates:        NewMemoryTable(CertificateSchema),
		Progress:            NewMemoryTable(ProgressTrackerSchema),
		EngagementLogs:      NewMemoryTable(EngagementLogSchema),
		ImpactReports:       NewMemoryTable(ImpactReportSchema),
	}
}
