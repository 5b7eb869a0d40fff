package models

import "time"

// User represents a member of the network.
type User struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	FullName  string `gorm:"size:255;not null"`
	Password  string `gorm:"size:255;not null"`
	Gender    string `gorm:"size:50"`
	Age       int
	Location  string `gorm:"size:255"`
	Bio       string
	CreatedAt time.Time
}
