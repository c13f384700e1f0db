package models

import (
	"time"

	"github.com/aaeducates/backend/internal/app/polyref"
)

// Post is a community post written by a student or a mentor
type Post struct {
	ID int64 `json:"id"`

	// AuthorType and AuthorID are write-only inputs resolved into Author
	AuthorType   string          `json:"author_type,omitempty"`
	AuthorID     int64           `json:"author_id,omitempty"`
	Author       polyref.Ref     `json:"author"`
	AuthorDetail *polyref.Target `json:"author_detail"`

	Content   string    `json:"content" validate:"required"`
	Image     string    `json:"image"`
	Likes     []int64   `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// LikedBy reports whether the user has liked the post
func (p *Post) LikedBy(userID int64) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is a reply to a post
type Comment struct {
	ID     int64 `json:"id"`
	PostID int64 `json:"post" validate:"required"`

	AuthorType   string          `json:"author_type,omitempty"`
	AuthorID     int64           `json:"author_id,omitempty"`
	Author       polyref.Ref     `json:"author"`
	AuthorDetail *polyref.Target `json:"author_detail"`

	Text      string    `json:"text" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupChat is a named conversation between users
type GroupChat struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=255"`
	Members   []int64   `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether the user belongs to the chat
func (g *GroupChat) HasMember(userID int64) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// Message is a chat message
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat" validate:"required"`
	SenderID  int64     `json:"sender"`
	Content   string    `json:"content" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}
