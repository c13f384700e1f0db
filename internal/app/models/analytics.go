package models

import (
	"encoding/json"
	"time"
)

// ProgressTracker is a student's completion of a module
type ProgressTracker struct {
	ID              int64     `json:"id"`
	StudentID       int64     `json:"student"`
	ProjectID       *int64    `json:"project"`
	ModuleID        *int64    `json:"module"`
	ProgressPercent float64   `json:"progress_percent" validate:"gte=0,lte=100"`
	UpdatedAt       time.Time `json:"last_updated"`
}

// EngagementLog is a free-form activity record
type EngagementLog struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user"`
	Action    string          `json:"action_type" validate:"required,max=100"`
	Metadata  json.RawMessage `json:"metadata" swaggertype:"object"`
	Timestamp time.Time       `json:"timestamp"`
}

// ImpactReport summarises a corporate partner's contribution
type ImpactReport struct {
	ID                     int64     `json:"id"`
	CorporatePartnerID     int64     `json:"corporate_partner" validate:"required"`
	ProjectsCompletedCount int       `json:"projects_completed_count" validate:"gte=0"`
	StudentsImpacted       int       `json:"students_impacted" validate:"gte=0"`
	CSRPoints              int       `json:"csr_points" validate:"gte=0"`
	GeneratedAt            time.Time `json:"generated_at"`
}
