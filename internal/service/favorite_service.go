package service

import (
	"context"
	"errors"
	"time"

	"github.com/pokemon-tcg/internal/catalog"
	"github.com/pokemon-tcg/internal/models"
	"github.com/pokemon-tcg/internal/repository"
	"github.com/pokemon-tcg/pkg/logger"
)

// Publisher receives favorite changes after they commit
type Publisher interface {
	Publish(ev models.FavoriteEvent)
}

// FavoriteService manages a user's favorite cards
type FavoriteService struct {
	catalog      catalog.Catalog
	cardRepo     *repository.CardRepository
	favoriteRepo *repository.FavoriteRepository
	publisher    Publisher
}

// NewFavoriteService creates a new FavoriteService. publisher may be nil.
func NewFavoriteService(
	cat catalog.Catalog,
	cardRepo *repository.CardRepository,
	favoriteRepo *repository.FavoriteRepository,
	publisher Publisher,
) *FavoriteService {
	return &FavoriteService{
		catalog:      cat,
		cardRepo:     cardRepo,
		favoriteRepo: favoriteRepo,
		publisher:    publisher,
	}
}

// ToggleResult is the favorite state after a toggle
type ToggleResult struct {
	CardID    string `json:"card_id"`
	CardName  string `json:"card_name"`
	Favorited bool   `json:"favorited"`
}

// Toggle flips whether userID has favorited cardID. A card seen for the first
// time is looked up in the catalog for its name.
func (s *FavoriteService) Toggle(ctx context.Context, userID uint, cardID string) (*ToggleResult, error) {
	if err := catalog.ValidateID(cardID); err != nil {
		return nil, err
	}

	card, err := s.cardRepo.GetByID(cardID)
	if err != nil {
		if !errors.Is(err, repository.ErrCardNotFound) {
			return nil, err
		}

		detail, err := s.catalog.FetchByID(ctx, cardID)
		if err != nil {
			return nil, err
		}
		card = &models.Card{ID: detail.ID, Name: detail.Name}
	}

	favorited, err := s.favoriteRepo.Toggle(userID, card)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logger.Debug("[Favorite] user=%d card=%s favorited=%t", userID, card.ID, favorited)

	if s.publisher != nil {
		s.publisher.Publish(models.FavoriteEvent{
			UserID:    userID,
			CardID:    card.ID,
			CardName:  card.Name,
			Favorited: favorited,
			Timestamp: time.Now().UnixMilli(),
		})
	}

	return &ToggleResult{CardID: card.ID, CardName: card.Name, Favorited: favorited}, nil
}

// List returns the user's favorite cards, oldest first
func (s *FavoriteService) List(userID uint) ([]models.Card, error) {
	cards, err := s.favoriteRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []models.Card{}
	}
	return cards, nil
}

// IsFavorite reports whether the user has favorited the card
func (s *FavoriteService) IsFavorite(userID uint, cardID string) (bool, error) {
	return s.favoriteRepo.IsFavorite(userID, cardID)
}
