package models

import "time"

// Group gathers users around a single interest and owns one chat.
type Group struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:255;not null"`
	CreatedAt   time.Time
	CreatedByID uint `gorm:"not null"`
	InterestID  uint `gorm:"not null;index"`
	ChatID      uint `gorm:"not null;uniqueIndex"`

	CreatedBy User     `gorm:"foreignKey:CreatedByID"`
	Interest  Interest `gorm:"foreignKey:InterestID"`
	Chat      Chat     `gorm:"foreignKey:ChatID"`
}

// GroupMember links a user to a group. The pair is unique.
type GroupMember struct {
	UserID   uint `gorm:"primaryKey"`
	GroupID  uint `gorm:"primaryKey"`
	JoinedAt time.Time

	User  User  `gorm:"foreignKey:UserID"`
	Group Group `gorm:"foreignKey:GroupID"`
}
