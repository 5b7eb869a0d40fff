package models

import "time"

// Message is an append-only entry in a chat. Text may be empty for group
// messages.
type Message struct {
	ID       uint `gorm:"primaryKey;autoIncrement"`
	SenderID uint `gorm:"not null;index"`
	ChatID   uint `gorm:"not null;index"`
	Text     string
	SentAt   time.Time

	Sender User `gorm:"foreignKey:SenderID"`
	Chat   Chat `gorm:"foreignKey:ChatID"`
}
