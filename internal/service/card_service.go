package service

import (
	"context"
	"errors"

	"github.com/pokemon-tcg/internal/catalog"
	"github.com/pokemon-tcg/internal/models"
	"github.com/pokemon-tcg/internal/repository"
)

// CardService serves catalog lookups, annotated with local favorite state
type CardService struct {
	catalog      catalog.Catalog
	cardRepo     *repository.CardRepository
	favoriteRepo *repository.FavoriteRepository
}

// NewCardService creates a new CardService
func NewCardService(cat catalog.Catalog, cardRepo *repository.CardRepository, favoriteRepo *repository.FavoriteRepository) *CardService {
	return &CardService{
		catalog:      cat,
		cardRepo:     cardRepo,
		favoriteRepo: favoriteRepo,
	}
}

// CardView is a card detail plus what this service knows about it locally
type CardView struct {
	*catalog.CardDetail
	Favorited     bool  `json:"favorited"`
	FavoriteCount int64 `json:"favorite_count"`
}

// Search returns the catalog matches for query in upstream order
func (s *CardService) Search(ctx context.Context, query string) ([]catalog.CardSummary, error) {
	it, err := s.catalog.SearchByName(ctx, query)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidQuery) {
			return nil, &ValidationError{Field: "q", Message: "Search by card name, letters only.", Err: err}
		}
		return nil, err
	}
	return it.Collect()
}

// Detail fetches a card and records it locally. userID 0 means anonymous.
func (s *CardService) Detail(ctx context.Context, userID uint, cardID string) (*CardView, error) {
	detail, err := s.catalog.FetchByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if err := s.cardRepo.Ensure(&models.Card{ID: detail.ID, Name: detail.Name}); err != nil {
		return nil, err
	}

	view := &CardView{CardDetail: detail}

	if userID != 0 {
		if view.Favorited, err = s.favoriteRepo.IsFavorite(userID, detail.ID); err != nil {
			return nil, err
		}
	}

	if view.FavoriteCount, err = s.favoriteRepo.CountByCard(detail.ID); err != nil {
		return nil, err
	}

	return view, nil
}
