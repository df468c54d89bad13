package models

import "time"

// Follow is a directed follower edge. No approval is required; the pair is
// unique. Follows are independent of the friend-request flow and are not
// read by feed or profile queries.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
