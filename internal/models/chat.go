package models

// Chat is a message channel owned by exactly one friendship or one group.
type Chat struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:512;not null"`
}
