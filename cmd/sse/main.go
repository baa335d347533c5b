package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/events"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/handlers"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/middleware"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/redis"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
	"github.com/JCCallisto/holbertonschool-hbnb/pkg/config"
)

// The stream server relays marketplace events published by the API over Redis.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-stream", cfg.Server.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is required: it is the only source of events
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Redis client")
	}
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	streamHandler := handlers.NewStreamHandler(eventBus)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"redis": redisClient.Ping,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /api/v1/stream/places/region", streamHandler.StreamRegionalEvents)
	mux.HandleFunc("GET /api/v1/stream/places/{id}", streamHandler.StreamPlaceEvents)
	mux.HandleFunc("GET /api/v1/stream/stats", streamHandler.Stats)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(cfg.Server.AllowedOrigins)(handler)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streams stay open
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("stream server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("stream server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("stream server shutting down")

	// Closing the bus ends every open stream so Shutdown does not wait on them
	if err := eventBus.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing event bus")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during stream server shutdown")
	}

	logger.Info().Msg("stream server stopped")
}
