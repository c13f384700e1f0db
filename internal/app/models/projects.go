package models

import "time"

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectDraft    ProjectStatus = "DRAFT"
	ProjectOpen     ProjectStatus = "OPEN"
	ProjectClosed   ProjectStatus = "CLOSED"
	ProjectArchived ProjectStatus = "ARCHIVED"
)

// Project is a brief published by a corporate partner
type Project struct {
	ID             int64         `json:"id"`
	Title          string        `json:"title" validate:"required,max=255"`
	Description    string        `json:"description"`
	SkillsRequired []int64       `json:"skills_required"`
	Status         ProjectStatus `json:"status" validate:"omitempty,oneof=DRAFT OPEN CLOSED ARCHIVED"`
	CreatedBy      int64         `json:"created_by"`
	ApprovedBy     *int64        `json:"approved_by"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// SubmissionStatus is the review state of a submission
type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionReviewed  SubmissionStatus = "REVIEWED"
	SubmissionApproved  SubmissionStatus = "APPROVED"
)

// StudentProjectSubmission is a student's work for a project, one per (student, project)
type StudentProjectSubmission struct {
	ID             int64            `json:"id"`
	StudentID      int64            `json:"student"`
	ProjectID      int64            `json:"project" validate:"required"`
	SubmissionLink string           `json:"submission_link" validate:"omitempty,url"`
	Status         SubmissionStatus `json:"status" validate:"omitempty,oneof=SUBMITTED REVIEWED APPROVED"`
	Feedback       string           `json:"feedback"`
	Grade          string           `json:"grade" validate:"max=10"`
	SubmittedAt    time.Time        `json:"submitted_at"`
}
