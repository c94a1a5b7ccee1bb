package models

import "time"

// Card is the local record of a catalog card. The ID is the catalog's own
// identifier; rows are created the first time a card is looked at.
type Card struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Card model
func (Card) TableName() string {
	return "cards"
}
