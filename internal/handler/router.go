package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/internal/config"
	"github.com/pokemon-tcg/internal/middleware"
	"github.com/pokemon-tcg/internal/notify"
	"github.com/pokemon-tcg/internal/service"
	"github.com/pokemon-tcg/pkg/response"
)

// BuildInfo is reported by the health endpoint
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Dependencies are the services the router dispatches to
type Dependencies struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Cards     *service.CardService
	Favorites *service.FavoriteService
	Hub       *notify.Hub
	Build     BuildInfo
}

// NewRouter builds the gin engine with every route registered
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Page not found.")
	})
	router.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c, "Nice Try...")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    deps.Build.Version,
			"commit":     deps.Build.Commit,
			"build_time": deps.Build.BuildTime,
			"time":       time.Now().Unix(),
		})
	})

	cookie := newSessionCookie(cfg.Session, cfg.JWT.SessionTTL())
	requireUser := middleware.RequireUser()
	requireAnonymous := middleware.RequireAnonymous()

	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionMiddleware(deps.Auth, cfg.Session.CookieName))
	{
		NewAuthHandler(deps.Auth, cookie).RegisterRoutes(v1, requireUser, requireAnonymous)
		NewUserHandler(deps.Users, cookie).RegisterRoutes(v1, requireUser)
		NewCardHandler(deps.Cards, deps.Favorites).RegisterRoutes(v1, requireUser)
		NewFavoriteHandler(deps.Favorites, deps.Hub).RegisterRoutes(v1, requireUser)
	}

	return router
}
