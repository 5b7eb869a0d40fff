package models

import "time"

// RequestStatus defines the state of a friend request.
type RequestStatus string

const (
	// StatusPending means the request has been sent but not yet resolved.
	StatusPending RequestStatus = "pending"

	// StatusAccepted means the receiver accepted and a friendship was created.
	StatusAccepted RequestStatus = "accepted"

	// StatusRejected means the receiver declined. The row stays for history;
	// a later retry is a new row.
	StatusRejected RequestStatus = "rejected"
)

// FriendRequest is a directed proposal that may resolve into a Friendship.
// At most one pending row exists per ordered (sender, receiver) pair.
type FriendRequest struct {
	ID         uint          `gorm:"primaryKey;autoIncrement"`
	SenderID   uint          `gorm:"not null;index"`
	ReceiverID uint          `gorm:"not null;index"`
	Status     RequestStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	SentAt     time.Time

	Sender   User `gorm:"foreignKey:SenderID"`
	Receiver User `gorm:"foreignKey:ReceiverID"`
}
