package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/internal/config"
)

// sessionCookie writes and clears the cookie carrying the session token
type sessionCookie struct {
	name   string
	secure bool
	maxAge int
}

func newSessionCookie(cfg config.SessionConfig, ttl time.Duration) sessionCookie {
	return sessionCookie{
		name:   cfg.CookieName,
		secure: cfg.Secure,
		maxAge: int(ttl / time.Second),
	}
}

func (s sessionCookie) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, token, s.maxAge, "/", "", s.secure, true)
}

func (s sessionCookie) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, "", -1, "/", "", s.secure, true)
}

func (s sessionCookie) token(c *gin.Context) string {
	token, _ := c.Cookie(s.name)
	return token
}
