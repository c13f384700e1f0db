package models

import "time"

// SessionType is the format of a mentorship session
type SessionType string

const (
	SessionOneToOne       SessionType = "ONE_TO_ONE"
	SessionGroup          SessionType = "GROUP"
	SessionCareerCoaching SessionType = "CAREER_COACHING"
)

// SessionStatus is the booking state of a mentorship session
type SessionStatus string

const (
	SessionBooked    SessionStatus = "BOOKED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// MentorshipSession is a booked session between a mentor and a student
type MentorshipSession struct {
	ID              int64         `json:"id"`
	MentorID        int64         `json:"mentor" validate:"required"`
	StudentID       int64         `json:"student"`
	SessionType     SessionType   `json:"session_type" validate:"omitempty,oneof=ONE_TO_ONE GROUP CAREER_COACHING"`
	Status          SessionStatus `json:"status" validate:"omitempty,oneof=BOOKED COMPLETED CANCELLED"`
	DateTime        time.Time     `json:"date_time" validate:"required"`
	DurationMinutes int           `json:"duration_minutes" validate:"gte=0"`
	MeetingLink     string        `json:"meeting_link" validate:"omitempty,url"`
	CreatedAt       time.Time     `json:"created_at"`
}

// SessionFeedback is a student's rating of a session, one per (session, student)
type SessionFeedback struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session" validate:"required"`
	StudentID int64     `json:"student"`
	Rating    int       `json:"rating" validate:"required,gte=1,lte=5"`
	Comments  string    `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}
