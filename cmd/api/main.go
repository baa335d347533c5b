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

	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/cache"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/database"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/events"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/memory"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/search"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/handlers"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/routes"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/application/services"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/policy"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/postgres"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/redis"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/typesense"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/migrations"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/security"
	"github.com/JCCallisto/holbertonschool-hbnb/pkg/config"
	"github.com/JCCallisto/holbertonschool-hbnb/pkg/secrets"
)

func main() {
	// Secrets from Vault become environment variables before configuration is read
	vaultResult, vaultErr := secrets.Apply(context.Background(), secrets.VaultConfigFromEnv())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	if vaultErr != nil {
		logger.Fatal().Err(vaultErr).Msg("failed to load secrets from Vault")
	}
	if len(vaultResult.Loaded) > 0 {
		logger.Info().Str("path", vaultResult.Path).Strs("keys", vaultResult.Loaded).Msg("secrets loaded from Vault")
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	checks := map[string]handlers.HealthCheck{}

	// Storage port
	var store repositories.Store
	switch cfg.Storage.Driver {
	case "memory":
		store = memory.NewStore()
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
	default:
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()

		if cfg.Storage.RunMigrations {
			if err := migrations.Run(pgClient.DB()); err != nil {
				logger.Fatal().Err(err).Msg("failed to apply database migrations")
			}
			if version, dirty, err := migrations.Version(pgClient.DB()); err == nil {
				logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("database schema ready")
			}
		}

		store = database.NewStore(pgClient)
		checks["postgres"] = func(ctx context.Context) error {
			return pgClient.DB().PingContext(ctx)
		}
	}

	var opts []services.Option

	// Redis backs the place read cache and the event bus. Both are optional.
	var eventBus *events.RedisEventBus
	var invalidation *services.CacheInvalidationService
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable; running without cache and events")
		} else {
			defer redisClient.Close()
			checks["redis"] = redisClient.Ping

			cacheProvider := cache.NewRedisAdapter(redisClient)
			store = cache.NewCachedStore(store, cacheProvider, cfg.Cache.PlaceTTL, metrics)

			eventBus = events.NewRedisEventBus(redisClient)
			opts = append(opts, services.WithEventBus(eventBus))

			invalidation = services.NewCacheInvalidationService(cacheProvider, eventBus)
			if err := invalidation.Start(); err != nil {
				logger.Warn().Err(err).Msg("failed to start cache invalidation service")
				invalidation = nil
			}
		}
	}

	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			logger.Warn().Err(err).Msg("Typesense unavailable; search served from storage")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			opts = append(opts, services.WithSearch(adapter))
		}
	}

	marketplace := services.NewMarketplace(
		store,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		policy.New(cfg.Policy.AmenityAdminOnly),
		opts...,
	)

	router := routes.NewRouter(marketplace, checks, cfg.Server.AllowedOrigins, metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Str("storage", cfg.Storage.Driver).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	if invalidation != nil {
		invalidation.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing event bus")
		}
	}

	logger.Info().Msg("server stopped")
}
