package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/internal/service"
	"github.com/pokemon-tcg/pkg/logger"
	"github.com/pokemon-tcg/pkg/response"
)

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	authService *service.AuthService
	cookie      sessionCookie
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, cookie sessionCookie) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// Signup creates an account and logs the new user in
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.authService.Signup(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.authService.StartSession(c.Request.Context(), user)
	if err != nil {
		// the account exists; the user can still log in by hand
		logger.Error("[Auth] Signed up user %d but could not start a session: %v", user.ID, err)
		response.Created(c, user)
		return
	}

	h.cookie.set(c, token)
	response.Created(c, user)
}

// Login starts a session
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookie.set(c, token)
	response.Success(c, user)
}

// Logout ends the current session
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), h.cookie.token(c)); err != nil {
		respondError(c, err)
		return
	}

	h.cookie.clear(c)
	response.Message(c, "Logged out.")
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, requireUser, requireAnonymous gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", requireAnonymous, h.Signup)
		auth.POST("/login", requireAnonymous, h.Login)
		auth.POST("/logout", requireUser, h.Logout)
	}
}
