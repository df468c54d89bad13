// Package models contains data structures for the application's domain models.
package models

import "time"

// FriendRequestStatus represents the status of a friend request.
type FriendRequestStatus string

const (
	// FriendRequestPending indicates a request awaiting the receiver's decision.
	FriendRequestPending FriendRequestStatus = "pending"
	// FriendRequestAccepted indicates an accepted request; the pair are friends.
	FriendRequestAccepted FriendRequestStatus = "accepted"
	// FriendRequestRejected indicates a declined request. A rejected row
	// does not block a later request between the same pair.
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest is one row of the friend-request state machine
// (none -> pending -> accepted/rejected). Direction is preserved: the
// requester sent it, the receiver decides. Because rejected rows stay
// behind and a fresh pending row may follow, a pair can accumulate
// multiple rows; "active" means pending or accepted.
type FriendRequest struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	RequesterID uint                `gorm:"not null;index" json:"requester_id"`
	ReceiverID  uint                `gorm:"not null;index" json:"receiver_id"`
	Status      FriendRequestStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Relationships
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Receiver  User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

// TableName specifies the table name for GORM
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Active reports whether this row blocks a new request for the pair.
func (f *FriendRequest) Active() bool {
	return f.Status == FriendRequestPending || f.Status == FriendRequestAccepted
}
