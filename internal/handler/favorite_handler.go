package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/internal/middleware"
	"github.com/pokemon-tcg/internal/notify"
	"github.com/pokemon-tcg/internal/service"
	"github.com/pokemon-tcg/pkg/logger"
	"github.com/pokemon-tcg/pkg/response"
)

// FavoriteHandler handles the favorites list and its live stream
type FavoriteHandler struct {
	favoriteService *service.FavoriteService
	hub             *notify.Hub
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteService *service.FavoriteService, hub *notify.Hub) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		hub:             hub,
	}
}

// List returns the user's favorite cards
// GET /api/v1/favorites
func (h *FavoriteHandler) List(c *gin.Context) {
	cards, err := h.favoriteService.List(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, cards)
}

// Stream pushes the user's favorite changes over a websocket
// GET /api/v1/favorites/ws
func (h *FavoriteHandler) Stream(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.hub.ServeWS(c.Writer, c.Request, userID); err != nil {
		logger.Debug("[Favorite] Stream for user %d ended: %v", userID, err)
	}
}

// RegisterRoutes registers favorite routes
func (h *FavoriteHandler) RegisterRoutes(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	favorites := rg.Group("/favorites")
	favorites.Use(requireUser)
	{
		favorites.GET("", h.List)
		favorites.GET("/ws", h.Stream)
	}
}
