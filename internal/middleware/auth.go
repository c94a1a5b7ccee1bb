package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/internal/models"
	"github.com/pokemon-tcg/internal/service"
	"github.com/pokemon-tcg/pkg/logger"
	"github.com/pokemon-tcg/pkg/response"
)

const (
	// ContextKeyUser is the key for the logged-in *models.User in gin context
	ContextKeyUser = "current_user"
)

// SessionMiddleware resolves the session cookie into the current user.
// Requests without a valid session carry on anonymously.
func SessionMiddleware(authService *service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := authService.ResolveToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidToken) {
				logger.Error("[Auth] Failed to resolve session: %v", err)
			}
			c.Next()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireUser rejects anonymous requests before the handler runs
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Unauthorized(c, "Please login to access this page.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnonymous rejects requests that already carry a session
func RequireAnonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			response.BadRequest(c, "You are already logged in.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user, or nil for anonymous requests
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// GetUserID returns the logged-in user's ID, 0 when anonymous
func GetUserID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}
