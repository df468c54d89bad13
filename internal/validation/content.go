// Package validation holds input validation rules shared by the service layer.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 30

	PostContentMaxLen    = 5000
	CommentContentMaxLen = 1000
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var reservedUsernames = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"feed":     {},
	"friends":  {},
	"login":    {},
	"logout":   {},
	"media":    {},
	"metrics":  {},
	"posts":    {},
	"profile":  {},
	"settings": {},
	"signup":   {},
	"swagger":  {},
	"ws":       {},
}

// ValidateUsername validates username format. Comparisons against existing
// usernames are case-insensitive and happen in the repository layer.
func ValidateUsername(username string) error {
	if len(username) < UsernameMinLen || len(username) > UsernameMaxLen {
		return fmt.Errorf("username must be %d-%d characters", UsernameMinLen, UsernameMaxLen)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may only contain letters, numbers, and underscores")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return fmt.Errorf("username %q is reserved", username)
	}
	return nil
}

// ValidatePostContent trims and validates post text. Returns the trimmed
// content on success.
func ValidatePostContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("post content cannot be empty")
	}
	if len(trimmed) > PostContentMaxLen {
		return "", fmt.Errorf("post content cannot exceed %d characters", PostContentMaxLen)
	}
	return trimmed, nil
}

// ValidateCommentContent trims and validates comment text. Returns the
// trimmed content on success.
func ValidateCommentContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("comment content cannot be empty")
	}
	if len(trimmed) > CommentContentMaxLen {
		return "", fmt.Errorf("comment content cannot exceed %d characters", CommentContentMaxLen)
	}
	return trimmed, nil
}

// AllowedImageMIME reports whether an uploaded content type is an accepted
// post image format.
func AllowedImageMIME(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}
