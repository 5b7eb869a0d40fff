package models

import "time"

// Friendship is a symmetric relationship between two users. At most one row
// exists per unordered pair; the row owns exactly one chat, created together
// with it.
type Friendship struct {
	User1ID   uint `gorm:"primaryKey"`
	User2ID   uint `gorm:"primaryKey"`
	ChatID    uint `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time

	User1 User `gorm:"foreignKey:User1ID"`
	User2 User `gorm:"foreignKey:User2ID"`
	Chat  Chat `gorm:"foreignKey:ChatID"`
}
