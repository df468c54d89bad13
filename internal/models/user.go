// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user profile in the Write application.
//
// A row may exist before the user ever picked a username: profiles are
// created lazily on first post, with a username synthesized from the email
// local-part. UsernameChanged records whether the one-time username change
// has been spent.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"unique;not null" json:"username"`
	UsernameChanged bool           `gorm:"not null;default:false" json:"username_changed"`
	Email           string         `gorm:"unique;not null" json:"email"`
	Avatar          string         `json:"avatar"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Posts           []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
