package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/internal/middleware"
	"github.com/pokemon-tcg/internal/service"
	"github.com/pokemon-tcg/pkg/response"
)

// UserHandler handles the logged-in user's profile
type UserHandler struct {
	userService *service.UserService
	cookie      sessionCookie
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService, cookie sessionCookie) *UserHandler {
	return &UserHandler{
		userService: userService,
		cookie:      cookie,
	}
}

// Profile returns the user and their favorites
// GET /api/v1/user
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.userService.Profile(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, profile)
}

// UpdateProfile edits username, email and profile image
// PUT /api/v1/user
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, user)
}

// DeleteAccount removes the user and logs them out
// DELETE /api/v1/user
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.userService.DeleteAccount(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	h.cookie.clear(c)
	response.Message(c, "Account deleted.")
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, requireUser gin.HandlerFunc) {
	user := rg.Group("/user")
	user.Use(requireUser)
	{
		user.GET("", h.Profile)
		user.PUT("", h.UpdateProfile)
		user.DELETE("", h.DeleteAccount)
	}
}
