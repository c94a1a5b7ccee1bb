package repository

import (
	"errors"

	"github.com/pokemon-tcg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository handles the user <-> card favorites relation
type FavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Toggle flips the favorite state of (userID, card) and returns the new state.
//
// The card row is upserted first so the favorite always has something to
// reference. The owning user row is locked for the rest of the transaction,
// which serializes concurrent toggles by the same user in the store.
func (r *FavoriteRepository) Toggle(userID uint, card *models.Card) (bool, error) {
	var favorited bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := ensureCard(tx, card); err != nil {
			return err
		}

		result := tx.Where("user_id = ? AND card_id = ?", userID, card.ID).Delete(&models.Favorite{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			favorited = false
			return nil
		}

		favorite := &models.Favorite{UserID: userID, CardID: card.ID}
		if err := tx.Omit(clause.Associations).Create(favorite).Error; err != nil {
			return err
		}
		favorited = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return favorited, nil
}

// IsFavorite reports whether the user has favorited the card
func (r *FavoriteRepository) IsFavorite(userID uint, cardID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns the user's favorite cards, oldest favorite first
func (r *FavoriteRepository) ListByUser(userID uint) ([]models.Card, error) {
	var cards []models.Card
	result := r.db.Model(&models.Card{}).
		Joins("JOIN favorites ON favorites.card_id = cards.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at ASC").
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

// ListCardIDs returns the IDs of the user's favorite cards
func (r *FavoriteRepository) ListCardIDs(userID uint) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("card_id", &ids).Error
	return ids, err
}

// CountByCard counts how many users have favorited a card
func (r *FavoriteRepository) CountByCard(cardID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).Where("card_id = ?", cardID).Count(&count).Error
	return count, err
}

// Count counts all favorites
func (r *FavoriteRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).Count(&count).Error
	return count, err
}
