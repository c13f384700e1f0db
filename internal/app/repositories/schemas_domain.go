package repositories

import (
	"encoding/json"
	"time"

	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/polyref"
)

// ProjectSchema maps projects and their required skills
var ProjectSchema = Schema[models.Project]{
	Table:       "projects",
	Columns:     []string{"title", "description", "status", "created_by_id", "approved_by_id", "created_at", "updated_at"},
	OrderBy:     "created_at DESC",
	NewestFirst: true,
	ID:          func(p *models.Project) *int64 { return &p.ID },
	Values: func(p *models.Project) []interface{} {
		return []interface{}{p.Title, p.Description, string(p.Status), p.CreatedBy, p.ApprovedBy, p.CreatedAt, p.UpdatedAt}
	},
	Scan: func(p *models.Project) []interface{} {
		return []interface{}{&p.ID, &p.Title, &p.Description, &p.Status, &p.CreatedBy, &p.ApprovedBy, &p.CreatedAt, &p.UpdatedAt}
	},
	Stamp: func(p *models.Project, now time.Time, creating bool) {
		if creating {
			setIfZero(&p.CreatedAt, now)
		}
		p.UpdatedAt = now
	},
	Links: []Link[models.Project]{{
		Field: "skills_required", Table: "project_skills", OwnerCol: "project_id", TargetCol: "skill_id",
		Get: func(p *models.Project) []int64 { return p.SkillsRequired },
		Set: func(p *models.Project, ids []int64) { p.SkillsRequired = ids },
	}},
}

// SubmissionSchema maps project submissions
var SubmissionSchema = Schema[models.StudentProjectSubmission]{
	Table:       "student_project_submissions",
	Columns:     []string{"student_id", "project_id", "submission_link", "status", "feedback", "grade", "submitted_at"},
	OrderBy:     "submitted_at DESC",
	NewestFirst: true,
	ID:          func(s *models.StudentProjectSubmission) *int64 { return &s.ID },
	Values: func(s *models.StudentProjectSubmission) []interface{} {
		return []interface{}{s.StudentID, s.ProjectID, s.SubmissionLink, string(s.Status), s.Feedback, s.Grade, s.SubmittedAt}
	},
	Scan: func(s *models.StudentProjectSubmission) []interface{} {
		return []interface{}{&s.ID, &s.StudentID, &s.ProjectID, &s.SubmissionLink, &s.Status, &s.Feedback, &s.Grade, &s.SubmittedAt}
	},
	Stamp: func(s *models.StudentProjectSubmission, now time.Time, creating bool) {
		if creating {
			setIfZero(&s.SubmittedAt, now)
		}
	},
	Unique: []Unique{{
		Constraint: "student_project_submissions_student_id_project_id_key",
		Columns:    []string{"student_id", "project_id"},
		Message:    "The fields student, project must make a unique set.",
	}},
}

// SessionSchema maps mentorship sessions
var SessionSchema = Schema[models.MentorshipSession]{
	Table:       "mentorship_sessions",
	Columns:     []string{"mentor_id", "student_id", "session_type", "status", "date_time", "duration_minutes", "meeting_link", "created_at"},
	OrderBy:     "date_time DESC",
	NewestFirst: true,
	ID:          func(s *models.MentorshipSession) *int64 { return &s.ID },
	Values: func(s *models.MentorshipSession) []interface{} {
		return []interface{}{s.MentorID, s.StudentID, string(s.SessionType), string(s.Status), s.DateTime, s.DurationMinutes, s.MeetingLink, s.CreatedAt}
	},
	Scan: func(s *models.MentorshipSession) []interface{} {
		return []interface{}{&s.ID, &s.MentorID, &s.StudentID, &s.SessionType, &s.Status, &s.DateTime, &s.DurationMinutes, &s.MeetingLink, &s.CreatedAt}
	},
	Stamp: func(s *models.MentorshipSession, now time.Time, creating bool) {
		if creating {
			setIfZero(&s.CreatedAt, now)
		}
	},
}

// SessionFeedbackSchema maps session feedback
var SessionFeedbackSchema = Schema[models.SessionFeedback]{
	Table:       "session_feedback",
	Columns:     []string{"session_id", "student_id", "rating", "comments", "created_at"},
	OrderBy:     "created_at DESC",
	NewestFirst: true,
	ID:          func(f *models.SessionFeedback) *int64 { return &f.ID },
	Values: func(f *models.SessionFeedback) []interface{} {
		return []interface{}{f.SessionID, f.StudentID, f.Rating, f.Comments, f.CreatedAt}
	},
	Scan: func(f *models.SessionFeedback) []interface{} {
		return []interface{}{&f.ID, &f.SessionID, &f.StudentID, &f.Rating, &f.Comments, &f.CreatedAt}
	},
	Stamp: func(f *models.SessionFeedback, now time.Time, creating bool) {
		if creating {
			setIfZero(&f.CreatedAt, now)
		}
	},
	Unique: []Unique{{
		Constraint: "session_feedback_session_id_student_id_key",
		Columns:    []string{"session_id", "student_id"},
		Message:    "The fields session, student must make a unique set.",
	}},
}

// ModuleSchema maps learning modules
var ModuleSchema = Schema[models.Module]{
	Table:       "modules",
	Columns:     []string{"title", "description", "video_url", "resource_file", "created_by_id", "is_published", "created_at"},
	OrderBy:     "created_at DESC",
	NewestFirst: true,
	ID:          func(m *models.Module) *int64 { return &m.ID },
	Values: func(m *models.Module) []interface{} {
		return []interface{}{m.Title, m.Description, m.VideoURL, m.ResourceFile, m.CreatedBy, m.IsPublished, m.CreatedAt}
	},
	Scan: func(m *models.Module) []interface{} {
		return []interface{}{&m.ID, &m.Title, &m.Description, &m.VideoURL, &m.ResourceFile, &m.CreatedBy, &m.IsPublished, &m.CreatedAt}
	},
	Stamp: func(m *models.Module, now time.Time, creating bool) {
		if creating {
			setIfZero(&m.CreatedAt, now)
		}
	},
}

// ResourceSchema maps learning resources
var ResourceSchema = Schema[models.Resource]{
	Table:   "resources",
	Columns: []string{"title", "file", "category", "module_id", "uploaded_at"},
	ID:      func(r *models.Resource) *int64 { return &r.ID },
	Values: func(r *models.Resource) []interface{} {
		return []interface{}{r.Title, r.File, r.Category, r.ModuleID, r.UploadedAt}
	},
	Scan: func(r *models.Resource) []interface{} {
		return []interface{}{&r.ID, &r.Title, &r.File, &r.Category, &r.ModuleID, &r.UploadedAt}
	},
	Stamp: func(r *models.Resource, now time.Time, creating bool) {
		if creating {
			setIfZero(&r.UploadedAt, now)
		}
	},
}

// WorkbookSchema maps workbooks
var WorkbookSchema = Schema[models.Workbook]{
	Table:       "workbooks",
	Columns:     []string{"title", "description", "price", "pdf_file", "created_by_id", "created_at"},
	OrderBy:     "created_at DESC",
	NewestFirst: true,
	ID:          func(w *models.Workbook) *int64 { return &w.ID },
	Values: func(w *models.Workbook) []interface{} {
		return []interface{}{w.Title, w.Description, w.Price, w.PDFFile, w.CreatedBy, w.CreatedAt}
	},
	Scan: func(w *models.Workbook) []interface{} {
		return []interface{}{&w.ID, &w.Title, &w.Description, &w.Price, &w.PDFFile, &w.CreatedBy, &w.CreatedAt}
	},
	Stamp: func(w *models.Workbook, now time.Time, creating bool) {
		if creating {
			setIfZero(&w.CreatedAt, now)
		}
	},
}

// WorkbookPurchaseSchema maps workbook purchases; the purchaser is a (kind, id) pair
var WorkbookPurchaseSchema = Schema[models.WorkbookPurchase]{
	Table: "workbook_purchases",
	Columns: []string{"workbook_id", "purchaser_content_type", "purchaser_object_id",
		"purchase_date", "payment_status", "transaction_id"},
	OrderBy:     "purchase_date DESC",
	NewestFirst: true,
	ID:          func(p *models.WorkbookPurchase) *int64 { return &p.ID },
	Values: func(p *models.WorkbookPurchase) []interface{} {
		return []interface{}{p.WorkbookID, string(p.Purchaser.Kind), p.Purchaser.ID,
			p.PurchaseDate, string(p.PaymentStatus), p.TransactionID}
	},
	Scan: func(p *models.WorkbookPurchase) []interface{} {
		return []interface{}{&p.ID, &p.WorkbookID, &p.Purchaser.Kind, &p.Purchaser.ID,
			&p.PurchaseDate, &p.PaymentStatus, &p.TransactionID}
	},
	Loaded: func(p *models.WorkbookPurchase) error {
		ref, err := polyref.PurchaserField.Load(string(p.Purchaser.Kind), p.Purchaser.ID)
		if err != nil {
			return err
		}
		p.Purchaser = ref
		return nil
	},
	Stamp: func(p *models.WorkbookPurchase, now time.Time, creating bool) {
		if creating {
			setIfZero(&p.PurchaseDate, now)
		}
	},
}

// PaymentTransactionSchema maps payment transactions
var PaymentTransactionSchema = Schema[models.PaymentTransaction]{
	Table: "payment_transactions",
	Columns: []string{"user_id", "provider", "amount", "currency", "status", "transaction_id",
		"payment_type", "workbook_id", "description", "created_at", "updated_at"},
	OrderBy:     "created_at DESC",
	NewestFirst: true,
	ID:          func(t *models.PaymentTransaction) *int64 { return &t.ID },
	Values: func(t *models.PaymentTransaction) []interface{} {
		return []interface{}{t.UserID, string(t.Provider), t.Amount, t.Currency, string(t.Status), t.TransactionID,
			string(t.PaymentType), t.WorkbookID, t.Description, t.CreatedAt, t.UpdatedAt}
	},
	Scan: func(t *models.PaymentTransaction) []interface{} {
		return []interface{}{&t.ID, &t.UserID, &t.Provider, &t.Amount, &t.Currency, &t.Status, &t.TransactionID,
			&t.PaymentType, &t.WorkbookID, &t.Description, &t.CreatedAt, &t.UpdatedAt}
	},
	Stamp: func(t *models.PaymentTransaction, now time.Time, creating bool) {
		if creating {
			setIfZero(&t.CreatedAt, now)
		}
		t.UpdatedAt = now
	},
	Unique: []Unique{{
		Constraint: "payment_transactions_transaction_id_key",
		Columns:    []string{"transaction_id"},
		Field:      "transaction_id",
		Message:    "payment transaction with this transaction id already exists.",
	}},
}

// CRMContactLogSchema maps CRM contact logs
var CRMContactLogSchema = Schema[models.CRMContactLog]{
	Table:       "crm_contact_logs",
	Columns:     []string{"corporate_partner_id", "contact_method", "notes", "timestamp"},
	OrderBy:     "timestamp DESC",
	NewestFirst: true,
	ID:          func(l *models.CRMContactLog) *int64 { return &l.ID },
	Values: func(l *models.CRMContactLog) []interface{} {
		return []interface{}{l.CorporatePartnerID, string(l.ContactMethod), l.Notes, l.Timestamp}
	},
	Scan: func(l *models.CRMContactLog) []interface{} {
		return []interface{}{&l.ID, &l.CorporatePartnerID, &l.ContactMethod, &l.Notes, &l.Timestamp}
	},
	Stamp: func(l *models.CRMContactLog, now time.Time, creating bool) {
		if creating {
			setIfZero(&l.Timestamp, now)
		}
	},
}

// PostSchema maps community posts; the author is a (kind, id) pair
var PostSchema = Schema[models.Post]{
	Table:       "posts",
	Columns:     []string{"author_content_type", "author_object_id", "content", "image", "created_at"},
	OrderBy:     "created_at DESC",
	NewestFirst: true,
	ID:          func(p *models.Post) *int64 { return &p.ID },
	Values: func(p *models.Post) []interface{} {
		return []interface{}{string(p.Author.Kind), p.Author.ID, p.Content, p.Image, p.CreatedAt}
	},
	Scan: func(p *models.Post) []interface{} {
		return []interface{}{&p.ID, &p.Author.Kind, &p.Author.ID, &p.Content, &p.Image, &p.CreatedAt}
	},
	Loaded: func(p *models.Post) error {
		ref, err := polyref.AuthorField.Load(string(p.Author.Kind), p.Author.ID)
		if err != nil {
			return err
		}
		p.Author = ref
		return nil
	},
	Stamp: func(p *models.Post, now time.Time, creating bool) {
		if creating {
			setIfZero(&p.CreatedAt, now)
		}
	},
	Links: []Link[models.Post]{{
		Field: "likes", Table: "post_likes", OwnerCol: "post_id", TargetCol: "user_id",
		Get: func(p *models.Post) []int64 { return p.Likes },
		Set: func(p *models.Post, ids []int64) { p.Likes = ids },
	}},
}

// CommentSchema maps comments; the author is a (kind, id) pair
var CommentSchema = Schema[models.Comment]{
	Table:       "comments",
	Columns:     []string{"post_id", "author_content_type", "author_object_id", "text", "created_at"},
	OrderBy:     "created_at DESC",
	NewestFirst: true,
	ID:          func(c *models.Comment) *int64 { return &c.ID },
	Values: func(c *models.Comment) []interface{} {
		return []interface{}{c.PostID, string(c.Author.Kind), c.Author.ID, c.Text, c.CreatedAt}
	},
	Scan: func(c *models.Comment) []interface{} {
		return []interface{}{&c.ID, &c.PostID, &c.Author.Kind, &c.Author.ID, &c.Text, &c.CreatedAt}
	},
	Loaded: func(c *models.Comment) error {
		ref, err := polyref.AuthorField.Load(string(c.Author.Kind), c.Author.ID)
		if err != nil {
			return err
		}
		c.Author = ref
		return nil
	},
	Stamp: func(c *models.Comment, now time.Time, creating bool) {
		if creating {
			setIfZero(&c.CreatedAt, now)
		}
	},
}

// GroupChatSchema maps group chats and their members
var GroupChatSchema = Schema[models.GroupChat]{
	Table:       "group_chats",
	Columns:     []string{"name", "created_at"},
	OrderBy:     "created_at DESC",
	NewestFirst: true,
	ID:          func(g *models.GroupChat) *int64 { return &g.ID },
	Values:      func(g *models.GroupChat) []interface{} { return []interface{}{g.Name, g.CreatedAt} },
	Scan:        func(g *models.GroupChat) []interface{} { return []interface{}{&g.ID, &g.Name, &g.CreatedAt} },
	Stamp: func(g *models.GroupChat, now time.Time, creating bool) {
		if creating {
			setIfZero(&g.CreatedAt, now)
		}
	},
	Links: []Link[models.GroupChat]{{
		Field: "members", Table: "group_chat_members", OwnerCol: "group_chat_id", TargetCol: "user_id",
		Get: func(g *models.GroupChat) []int64 { return g.Members },
		Set: func(g *models.GroupChat, ids []int64) { g.Members = ids },
	}},
}

// MessageSchema maps chat messages
var MessageSchema = Schema[models.Message]{
	Table:       "messages",
	Columns:     []string{"chat_id", "sender_id", "content", "timestamp"},
	OrderBy:     "timestamp DESC",
	NewestFirst: true,
	ID:          func(m *models.Message) *int64 { return &m.ID },
	Values: func(m *models.Message) []interface{} {
		return []interface{}{m.ChatID, m.SenderID, m.Content, m.Timestamp}
	},
	Scan: func(m *models.Message) []interface{} {
		return []interface{}{&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.Timestamp}
	},
	Stamp: func(m *models.Message, now time.Time, creating bool) {
		if creating {
			setIfZero(&m.Timestamp, now)
		}
	},
}

// SkillSchema maps skills
var SkillSchema = Schema[models.Skill]{
	Table:   "skills",
	Columns: []string{"name", "description"},
	OrderBy: "name ASC",
	ID:      func(s *models.Skill) *int64 { return &s.ID },
	Values:  func(s *models.Skill) []interface{} { return []interface{}{s.Name, s.Description} },
	Scan:    func(s *models.Skill) []interface{} { return []interface{}{&s.ID, &s.Name, &s.Description} },
	Unique: []Unique{{
		Constraint: "skills_name_key", Columns: []string{"name"}, Field: "name", Message: "skill with this name already exists.",
	}},
}

// BadgeSchema maps badges
var BadgeSchema = Schema[models.Badge]{
	Table:   "badges",
	Columns: []string{"name", "description", "skill_id", "icon"},
	ID:      func(b *models.Badge) *int64 { return &b.ID },
	Values: func(b *models.Badge) []interface{} {
		return []interface{}{b.Name, b.Description, b.SkillID, b.Icon}
	},
	Scan: func(b *models.Badge) []interface{} {
		return []interface{}{&b.ID, &b.Name, &b.Description, &b.SkillID, &b.Icon}
	},
}

// CertificateSchema maps certificates
var CertificateSchema = Schema[models.Certificate]{
	Table:       "certificates",
	Columns:     []string{"title", "issued_to_id", "issued_by_id", "issue_date", "certificate_file"},
	OrderBy:     "issue_date DESC",
	NewestFirst: true,
	ID:          func(c *models.Certificate) *int64 { return &c.ID },
	Values: func(c *models.Certificate) []interface{} {
		return []interface{}{c.Title, c.IssuedTo, c.IssuedBy, c.IssueDate, c.File}
	},
	Scan: func(c *models.Certificate) []interface{} {
		return []interface{}{&c.ID, &c.Title, &c.IssuedTo, &c.IssuedBy, &c.IssueDate, &c.File}
	},
	Stamp: func(c *models.Certificate, now time.Time, creating bool) {
		if creating {
			setIfZero(&c.IssueDate, now)
		}
	},
}

// ProgressTrackerSchema maps module progress
var ProgressTrackerSchema = Schema[models.ProgressTracker]{
	Table:   "progress_trackers",
	Columns: []string{"student_id", "project_id", "module_id", "progress_percent", "last_updated"},
	ID:      func(p *models.ProgressTracker) *int64 { return &p.ID },
	Values: func(p *models.ProgressTracker) []interface{} {
		return []interface{}{p.StudentID, p.ProjectID, p.ModuleID, p.ProgressPercent, p.UpdatedAt}
	},
	Scan: func(p *models.ProgressTracker) []interface{} {
		return []interface{}{&p.ID, &p.StudentID, &p.ProjectID, &p.ModuleID, &p.ProgressPercent, &p.UpdatedAt}
	},
	Stamp: func(p *models.ProgressTracker, now time.Time, _ bool) {
		p.UpdatedAt = now
	},
}

// EngagementLogSchema maps engagement logs
var EngagementLogSchema = Schema[models.EngagementLog]{
	Table:       "engagement_logs",
	Columns:     []string{"user_id", "action_type", "metadata", "timestamp"},
	OrderBy:     "timestamp DESC",
	NewestFirst: true,
	ID:          func(l *models.EngagementLog) *int64 { return &l.ID },
	Values: func(l *models.EngagementLog) []interface{} {
		metadata := l.Metadata
		if len(metadata) == 0 {
			metadata = json.RawMessage("{}")
		}
		return []interface{}{l.UserID, l.Action, metadata, l.Timestamp}
	},
	Scan: func(l *models.EngagementLog) []interface{} {
		return []interface{}{&l.ID, &l.UserID, &l.Action, &l.Metadata, &l.Timestamp}
	},
	Stamp: func(l *models.EngagementLog, now time.Time, creating bool) {
		if creating {
			setIfZero(&l.Timestamp, now)
		}
	},
}

// ImpactReportSchema maps impact reports
var ImpactReportSchema = Schema[models.ImpactReport]{
	Table:       "impact_reports",
	Columns:     []string{"corporate_partner_id", "projects_completed_count", "students_impacted", "csr_points", "generated_at"},
	OrderBy:     "generated_at DESC",
	NewestFirst: true,
	ID:          func(r *models.ImpactReport) *int64 { return &r.ID },
	Values: func(r *models.ImpactReport) []interface{} {
		return []interface{}{r.CorporatePartnerID, r.ProjectsCompletedCount, r.StudentsImpacted, r.CSRPoints, r.GeneratedAt}
	},
	Scan: func(r *models.ImpactReport) []interface{} {
		return []interface{}{&r.ID, &r.CorporatePartnerID, &r.ProjectsCompletedCount, &r.StudentsImpacted, &r.CSRPoints, &r.GeneratedAt}
	},
	Stamp: func(r *models.ImpactReport, now time.Time, creating bool) {
		if creating {
			setIfZero(&r.GeneratedAt, now)
		}
	},
}
