package models

import "time"

// Favorite marks that a user has favorited a card. The (UserID, CardID) pair is
// the whole identity; removing either side removes the favorite.
type Favorite struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CardID    string    `gorm:"primaryKey;size:64" json:"card_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Card Card `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Favorite model
func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteEvent is published after a toggle commits
type FavoriteEvent struct {
	UserID    uint   `json:"user_id"`
	CardID    string `json:"card_id"`
	CardName  string `json:"card_name"`
	Favorited bool   `json:"favorited"`
	Timestamp int64  `json:"timestamp"`
}
