package models

import "time"

// Skill is a named competency
type Skill struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// Badge is awarded for a skill
type Badge struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	SkillID     *int64 `json:"skill"`
	Icon        string `json:"icon"`
}

// Certificate is issued to a student by an admin
type Certificate struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title" validate:"required,max=255"`
	IssuedTo  int64     `json:"issued_to" validate:"required"`
	IssuedBy  *int64    `json:"issued_by"`
	IssueDate time.Time `json:"issue_date"`
	File      string    `json:"certificate_file"`
}
