// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/shreyea/write/internal/timefmt"

	"gorm.io/gorm"
)

// Comment represents a comment on a post in the Write application.
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"not null" json:"content"`
	UserID  uint   `gorm:"not null" json:"user_id"`
	PostID  uint   `gorm:"not null;index" json:"post_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`
	// Timestamp is the relative age shown by clients, rendered server-side (computed)
	Timestamp string         `gorm:"-" json:"timestamp,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Decorate fills the presentation fields rendered against now.
func (c *Comment) Decorate(now time.Time) {
	c.Timestamp = timefmt.Relative(c.CreatedAt, now)
}
