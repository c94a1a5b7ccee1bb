package models

import (
	"time"
)

// DefaultProfileImage is used when a user has not set their own picture
const DefaultProfileImage = "https://i1.sndcdn.com/artworks-000193803962-tla7ov-t500x500.jpg"

// User represents a registered user
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string    `gorm:"size:100;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	ProfileImage string    `gorm:"size:500;not null" json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Profile is the public view of a user together with their favorite cards
type Profile struct {
	User      *User  `json:"user"`
	Favorites []Card `json:"favorites"`
}
