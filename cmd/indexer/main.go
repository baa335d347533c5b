package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/database"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/search"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/postgres"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/typesense"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
	"github.com/JCCallisto/holbertonschool-hbnb/pkg/config"
)

// The indexer rebuilds the Typesense places collection from PostgreSQL.
func main() {
	var reset bool
	var intervalFlag string
	var batch int
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.IntVar(&batch, "batch", search.DefaultReindexBatch, "places read per page")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-indexer", cfg.Server.Env)
	logger := observability.GetLogger()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			logger.Fatal().Str("interval", intervalValue).Msg("interval must be a positive duration")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset || os.Getenv("RESET_TYPESENSE") == "true", batch); err != nil {
			logger.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			return
		}
		reset = false
		logger.Info().Dur("next_run_in", interval).Msg("reindex scheduled")

		select {
		case <-ctx.Done():
			logger.Info().Msg("indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool, batch int) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}

	if reset {
		observability.GetLogger().Warn().Str("collection", typesense.PlacesCollection).Msg("deleting collection before reindex")
		if _, err := tsClient.Client().Collection(typesense.PlacesCollection).Delete(ctx); err != nil {
			observability.GetLogger().Warn().Err(err).Msg("failed to delete collection")
		}
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	store := database.NewStore(pgClient)
	_, err = search.Reindex(ctx, store.Repositories().Places, adapter, batch)
	return err
}
