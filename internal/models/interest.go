package models

// Interest is a shared catalog entry users can associate with.
type Interest struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;unique;not null"`
}

// UserInterest links a user to an interest. The pair is unique.
type UserInterest struct {
	UserID     uint `gorm:"primaryKey"`
	InterestID uint `gorm:"primaryKey"`

	User     User     `gorm:"foreignKey:UserID"`
	Interest Interest `gorm:"foreignKey:InterestID"`
}
