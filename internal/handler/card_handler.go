package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/internal/middleware"
	"github.com/pokemon-tcg/internal/service"
	"github.com/pokemon-tcg/pkg/response"
)

// CardHandler handles catalog search, card detail and favorite toggling
type CardHandler struct {
	cardService     *service.CardService
	favoriteService *service.FavoriteService
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService *service.CardService, favoriteService *service.FavoriteService) *CardHandler {
	return &CardHandler{
		cardService:     cardService,
		favoriteService: favoriteService,
	}
}

// Search lists catalog cards whose name contains q
// GET /api/v1/cards?q=
func (h *CardHandler) Search(c *gin.Context) {
	query := c.Query("q")

	cards, err := h.cardService.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"query": query,
		"count": len(cards),
		"cards": cards,
	})
}

// Detail returns a single card
// GET /api/v1/cards/:id
func (h *CardHandler) Detail(c *gin.Context) {
	view, err := h.cardService.Detail(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, view)
}

// ToggleFavorite adds or removes the card from the user's favorites
// POST /api/v1/cards/:id/favorite
func (h *CardHandler) ToggleFavorite(c *gin.Context) {
	result, err := h.favoriteService.Toggle(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// RegisterRoutes registers card routes
func (h *CardHandler) RegisterRoutes(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	cards := rg.Group("/cards")
	{
		cards.GET("", h.Search)
		cards.GET("/:id", h.Detail)
		cards.POST("/:id/favorite", requireUser, h.ToggleFavorite)
	}
}
