package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/internal/catalog"
	"github.com/pokemon-tcg/internal/catalog/pokemontcg"
	"github.com/pokemon-tcg/internal/config"
	"github.com/pokemon-tcg/internal/database"
	"github.com/pokemon-tcg/internal/handler"
	"github.com/pokemon-tcg/internal/notify"
	"github.com/pokemon-tcg/internal/repository"
	"github.com/pokemon-tcg/internal/service"
	"github.com/pokemon-tcg/internal/session"
	"github.com/pokemon-tcg/internal/worker"
	"github.com/pokemon-tcg/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Dir); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if cfg.JWT.Generated {
		logger.Warn("jwt.secret is not set, using a random one; sessions will not survive a restart")
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	// Initialize Redis
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = initRedis(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("Error closing Redis connection: %v", err)
			}
		}()
	}

	// Sessions live in Redis when it is available, otherwise in process memory
	var sessions session.Store
	var sweeper *worker.SessionSweeper
	if rdb != nil {
		sessions = session.NewRedisStore(rdb, cfg.JWT.SessionTTL())
	} else {
		memory := session.NewMemoryStore(cfg.JWT.SessionTTL())
		sessions = memory
		sweeper = worker.NewSessionSweeper(memory, time.Minute)
		go sweeper.Start()
	}

	// Card catalog
	var cards catalog.Catalog = pokemontcg.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.Timeout())
	if rdb != nil && cfg.Catalog.CacheTTL() > 0 {
		cards = catalog.NewCachedCatalog(cards, rdb, cfg.Catalog.CacheTTL())
		logger.Info("Catalog card details cached in Redis for %v", cfg.Catalog.CacheTTL())
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	cardRepo := repository.NewCardRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	hub := notify.NewHub()

	// Initialize services
	router := handler.NewRouter(cfg, handler.Dependencies{
		Auth:      service.NewAuthService(userRepo, sessions, cfg.JWT),
		Users:     service.NewUserService(userRepo, favoriteRepo, sessions),
		Cards:     service.NewCardService(cards, cardRepo, favoriteRepo),
		Favorites: service.NewFavoriteService(cards, cardRepo, favoriteRepo, hub),
		Hub:       hub,
		Build:     handler.BuildInfo{Version: Version, Commit: Commit, BuildTime: BuildTime},
	})

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server %s on %s", Version, addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Websockets are hijacked and not tracked by Shutdown
	hub.Close()

	if sweeper != nil {
		sweeper.Stop()
	}

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited properly")
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}
