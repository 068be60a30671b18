package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mohitjoer/freelance-chat-service/internal/cache"
	"github.com/mohitjoer/freelance-chat-service/internal/config"
	"github.com/mohitjoer/freelance-chat-service/internal/database"
	"github.com/mohitjoer/freelance-chat-service/internal/handler"
	"github.com/mohitjoer/freelance-chat-service/internal/hub"
	"github.com/mohitjoer/freelance-chat-service/internal/log"
	"github.com/mohitjoer/freelance-chat-service/internal/service"
	"github.com/mohitjoer/freelance-chat-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	l := log.L()
	l.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting chat service")

	// Message store
	messageStore, err := newMessageStore(cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize message store")
	}
	defer messageStore.Close()
	l.Info().Str("driver", cfg.Database.Driver).Msg("message store ready")

	// Optional history cache
	var roomCache cache.RoomCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisRoomCache(cfg.Redis)
		if err != nil {
			l.Warn().Err(err).Msg("redis unavailable, history cache disabled")
		} else {
			roomCache = redisCache
			defer redisCache.Close()
			l.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")
		}
	}

	// Relay core
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run(ctx)

	relaySvc := service.NewRelayService(wsHub, messageStore, cfg.Database.AppendTimeout)
	historySvc := service.NewHistoryService(messageStore, roomCache, cfg.Redis.CacheTTL)

	// HTTP surface: websocket endpoint + history API
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(log.GinMiddleware(l), gin.Recovery())

	handler.NewWSHandler(wsHub, relaySvc, cfg.WebSocket).RegisterRoutes(router)
	handler.NewHTTPHandler(historySvc).RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info().Str("addr", server.Addr).Msg("chat service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down chat service")

	// Stop accepting connections, then drain the hub.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("server forced to shutdown")
	}
	cancel()

	l.Info().Msg("chat service stopped")
}

func newMessageStore(cfg *config.Config) (store.MessageStore, error) {
	if cfg.Database.Driver == "memory" {
		return store.NewMemoryStore(), nil
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(db)
}
