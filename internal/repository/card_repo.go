package repository

import (
	"errors"

	"github.com/pokemon-tcg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCardNotFound = errors.New("card not found")
)

// CardRepository handles access to the local card table
type CardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// Ensure inserts the card unless a row with the same ID already exists.
// Existing rows are never updated.
func (r *CardRepository) Ensure(card *models.Card) error {
	return ensureCard(r.db, card)
}

func ensureCard(tx *gorm.DB, card *models.Card) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(card).Error
}

// GetByID retrieves a card by its catalog ID
func (r *CardRepository) GetByID(id string) (*models.Card, error) {
	var card models.Card
	result := r.db.Where("id = ?", id).First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, result.Error
	}
	return &card, nil
}

// Delete removes a card; every favorite referencing it goes with it
func (r *CardRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Card{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

// Count counts all cards
func (r *CardRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Card{}).Count(&count).Error
	return count, err
}
