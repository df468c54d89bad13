package models

import (
	"time"

	"github.com/shreyea/write/internal/timefmt"

	"gorm.io/gorm"
)

// Content length bounds enforced by the service layer before any remote call.
const (
	MaxPostContentLen    = 5000
	MaxCommentContentLen = 1000
)

type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Content  string `gorm:"not null" json:"content"`
	ImageURL string `json:"image_url,omitempty"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"-" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"-" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"-" json:"liked"`
	// Timestamp is the relative age shown by clients, rendered server-side (computed)
	Timestamp string `gorm:"-" json:"timestamp,omitempty"`
	// Comments and Likes are loaded for feed responses
	Comments  []Comment      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Likes     []Like         `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"likes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Decorate fills the presentation fields rendered against now, including
// those of any loaded comments.
func (p *Post) Decorate(now time.Time) {
	p.Timestamp = timefmt.Relative(p.CreatedAt, now)
	for i := range p.Comments {
		p.Comments[i].Decorate(now)
	}
}
