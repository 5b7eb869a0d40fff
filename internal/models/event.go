package models

// Event is an activity announced inside a group. It links to the group id
// directly, not to the group's chat.
type Event struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:255;not null"`
	GroupID     uint   `gorm:"not null;index"`
	CreatedByID uint   `gorm:"not null"`

	Group     Group `gorm:"foreignKey:GroupID"`
	CreatedBy User  `gorm:"foreignKey:CreatedByID"`
}
