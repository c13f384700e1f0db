package authz

import (
	"context"

	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/polyref"
	"github.com/aaeducates/backend/internal/app/repositories"
)

// ResourceKind names a resource collection
type ResourceKind string

const (
	KindUsers             ResourceKind = "users"
	KindStudents          ResourceKind = "students"
	KindParents           ResourceKind = "parents"
	KindSchools           ResourceKind = "schools"
	KindCorporatePartners ResourceKind = "corporate_partners"
	KindAdmins            ResourceKind = "admins"

	KindProjects    ResourceKind = "projects"
	KindSubmissions ResourceKind = "submissions"

	KindMentors         ResourceKind = "mentors"
	KindSessions        ResourceKind = "sessions"
	KindSessionFeedback ResourceKind = "session_feedback"

	KindModules           ResourceKind = "modules"
	KindResources         ResourceKind = "resources"
	KindWorkbooks         ResourceKind = "workbooks"
	KindWorkbookPurchases ResourceKind = "workbook_purchases"

	KindPaymentTransactions ResourceKind = "payment_transactions"
	KindCRMContactLogs      ResourceKind = "crm_contact_logs"

	KindPosts      ResourceKind = "posts"
	KindComments   ResourceKind = "comments"
	KindGroupChats ResourceKind = "group_chats"
	KindMessages   ResourceKind = "messages"

	KindSkills       ResourceKind = "skills"
	KindBadges       ResourceKind = "badges"
	KindCertificates ResourceKind = "certificates"

	KindProgress       ResourceKind = "progress"
	KindEngagementLogs ResourceKind = "engagement_logs"
	KindImpactReports  ResourceKind = "impact_reports"
)

// Ownership selects how a row's owner is compared with the actor on writes
type Ownership int

const (
	// OwnedByNobody rows are only written by admins
	OwnedByNobody Ownership = iota
	// OwnedByUserField rows belong to OwnerRef.UserID
	OwnedByUserField
	// OwnedByCreatedByChain rows belong to the corporate partner in OwnerRef.PartnerID
	OwnedByCreatedByChain
	// OwnedByGenericAuthor rows belong to the author reference
	OwnedByGenericAuthor
	// OwnedByGenericPurchaser rows belong to the purchaser reference
	OwnedByGenericPurchaser
	// OwnedByStudentLink rows belong to OwnerRef.StudentID and are readable by linked parents and schools
	OwnedByStudentLink
)

func (o Ownership) String() string {
	switch o {
	case OwnedByUserField:
		return "user_field"
	case OwnedByCreatedByChain:
		return "created_by_chain"
	case OwnedByGenericAuthor:
		return "generic_author"
	case OwnedByGenericPurchaser:
		return "generic_purchaser"
	case OwnedByStudentLink:
		return "student_link"
	default:
		return "nobody"
	}
}

// OwnerRef carries the owner-bearing columns of one row
type OwnerRef struct {
	UserID    int64
	PartnerID int64
	StudentID int64
	MentorID  int64
	Ref       polyref.Ref
}

// ScopeFunc narrows a kind to the rows a non-admin actor may see
type ScopeFunc func(ctx context.Context, dir Directory, actor *Actor) (repositories.Filter, error)

// Rule is the access rule of one resource kind
type Rule struct {
	// WriteRoles may create, update and delete; AnyWriter opens writes to every authenticated actor
	WriteRoles []models.Role
	AnyWriter  bool
	// ReadRoles restricts reads when set
	ReadRoles []models.Role
	// PublicRead opens safe operations to anonymous callers
	PublicRead bool
	Ownership  Ownership
	// Scope is applied to non-admin actors; nil means every row
	Scope ScopeFunc
}

func hasRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Policy maps each resource kind to its rule
type Policy map[ResourceKind]Rule

var adminOnly = []models.Role{models.RoleAdmin}

// DefaultPolicy returns the platform's access rules
func DefaultPolicy() Policy {
	studentScope := StudentLinked("student_id")
	return Policy{
		KindUsers:             {WriteRoles: adminOnly, Ownership: OwnedByUserField, Scope: Self("id")},
		KindStudents:          {WriteRoles: []models.Role{models.RoleStudent}, Ownership: OwnedByStudentLink, Scope: StudentLinked("id")},
		KindParents:           {WriteRoles: []models.Role{models.RoleParent}, Ownership: OwnedByUserField, Scope: Self("user_id")},
		KindSchools:           {WriteRoles: []models.Role{models.RoleSchool}, Ownership: OwnedByUserField, Scope: Self("user_id")},
		KindCorporatePartners: {WriteRoles: []models.Role{models.RoleCorporatePartner}, Ownership: OwnedByUserField, Scope: Self("user_id")},
		KindAdmins:            {WriteRoles: adminOnly, ReadRoles: adminOnly, Ownership: OwnedByNobody},

		KindProjects:    {WriteRoles: []models.Role{models.RoleCorporatePartner}, Ownership: OwnedByCreatedByChain, Scope: PartnerOwnedOrAll("created_by_id")},
		KindSubmissions: {WriteRoles: []models.Role{models.RoleStudent}, Ownership: OwnedByStudentLink, Scope: Either(studentScope, PartnerProjects("project_id"))},

		KindMentors:         {WriteRoles: adminOnly, Ownership: OwnedByUserField},
		KindSessions:        {WriteRoles: []models.Role{models.RoleStudent}, Ownership: OwnedByStudentLink, Scope: Either(studentScope, MentorOwned("mentor_id"))},
		KindSessionFeedback: {WriteRoles: []models.Role{models.RoleStudent}, Ownership: OwnedByStudentLink, Scope: Either(studentScope, MentorSessions("session_id"))},

		KindModules:           {WriteRoles: adminOnly, Ownership: OwnedByNobody, Scope: PublishedOnly("is_published")},
		KindResources:         {WriteRoles: adminOnly, Ownership: OwnedByNobody},
		KindWorkbooks:         {WriteRoles: adminOnly, Ownership: OwnedByNobody},
		KindWorkbookPurchases: {WriteRoles: []models.Role{models.RoleParent, models.RoleSchool}, Ownership: OwnedByGenericPurchaser, Scope: Purchaser("purchaser_content_type", "purchaser_object_id")},

		KindPaymentTransactions: {WriteRoles: adminOnly, Ownership: OwnedByUserField, Scope: Self("user_id")},
		KindCRMContactLogs:      {WriteRoles: adminOnly, ReadRoles: adminOnly, Ownership: OwnedByNobody},

		KindPosts:      {AnyWriter: true, PublicRead: true, Ownership: OwnedByGenericAuthor},
		KindComments:   {AnyWriter: true, PublicRead: true, Ownership: OwnedByGenericAuthor},
		KindGroupChats: {WriteRoles: adminOnly, Ownership: OwnedByNobody},
		KindMessages:   {AnyWriter: true, Ownership: OwnedByUserField},

		KindSkills:       {WriteRoles: adminOnly, Ownership: OwnedByNobody},
		KindBadges:       {WriteRoles: adminOnly, Ownership: OwnedByNobody},
		KindCertificates: {WriteRoles: adminOnly, Ownership: OwnedByStudentLink, Scope: StudentLinked("issued_to_id")},

		KindProgress:       {WriteRoles: []models.Role{models.RoleStudent}, Ownership: OwnedByStudentLink, Scope: studentScope},
		KindEngagementLogs: {AnyWriter: true, Ownership: OwnedByUserField, Scope: Self("user_id")},
		KindImpactReports:  {WriteRoles: adminOnly, Ownership: OwnedByCreatedByChain, Scope: PartnerOwned("corporate_partner_id")},
	}
}
