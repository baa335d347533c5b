package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/database"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/search"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/application/services"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/policy"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/postgres"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/typesense"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/migrations"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/security"
	"github.com/JCCallisto/holbertonschool-hbnb/pkg/config"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

type seedPlace struct {
	title       string
	description string
	price       string
	lat, lon    string
	amenities   []string
}

var seedAmenities = []struct{ name, description string }{
	{"Wifi", "Fast wireless internet"},
	{"Swimming Pool", "Outdoor pool"},
	{"Air Conditioning", "Cooling in every room"},
	{"Parking", "Free on-site parking"},
}

var seedPlaces = []seedPlace{
	{"Seaside Cottage", "Two bedrooms facing the ocean", "150", "36.1699", "-115.1398", []string{"Wifi", "Parking"}},
	{"City Loft", "Open plan loft near the old town", "95.5", "48.8566", "2.3522", []string{"Wifi", "Air Conditioning"}},
	{"Mountain Cabin", "Wood cabin with a view", "120", "46.5197", "6.6323", []string{"Parking"}},
	{"Villa Sol", "Family villa with a private pool", "310", "40.4168", "-3.7038", []string{"Wifi", "Swimming Pool", "Air Conditioning", "Parking"}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", cfg.Server.Env)
	logger := observability.GetLogger()
	ctx := context.Background()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	if err := migrations.Run(pgClient.DB()); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}

	if os.Getenv("RESET_DB") == "true" {
		logger.Warn().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE reviews, place_amenities, places, amenities, users CASCADE`); err != nil {
			logger.Fatal().Err(err).Msg("failed to truncate tables")
		}
	}

	store := database.NewStore(pgClient)

	var opts []services.Option
	if cfg.Typesense.Enabled {
		if tsClient, err := typesense.NewClient(ctx, &cfg.Typesense); err != nil {
			logger.Warn().Err(err).Msg("Typesense unavailable; places will not be indexed")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			opts = append(opts, services.WithSearch(adapter))
		}
	}

	m := services.NewMarketplace(
		store,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		policy.New(cfg.Policy.AmenityAdminOnly),
		opts...,
	)

	adminEmail := envOr("SEED_ADMIN_EMAIL", "admin@hbnb.io")
	adminPassword := envOr("SEED_ADMIN_PASSWORD", "admin1234")

	admin := ensureUser(ctx, m, store, adminEmail, "Admin", "HBnB", adminPassword)
	if !admin.IsAdmin {
		// Nobody may grant admin before an admin exists, so the first one is written directly
		admin.IsAdmin = true
		if err := store.Repositories().Users.Update(ctx, admin); err != nil {
			logger.Fatal().Err(err).Msg("failed to promote admin")
		}
	}
	adminP := entities.Principal{UserID: admin.ID, IsAdmin: true}

	host := ensureUser(ctx, m, store, "host@hbnb.io", "Hana", "Host", "host1234")
	guest := ensureUser(ctx, m, store, "guest@hbnb.io", "Gus", "Guest", "guest1234")
	hostP := entities.Principal{UserID: host.ID}
	guestP := entities.Principal{UserID: guest.ID}

	amenityIDs := map[string]string{}
	for _, a := range seedAmenities {
		amenity, err := m.Amenities.Create(ctx, adminP, entities.AmenityInput{Name: str(a.name), Description: str(a.description)})
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			amenity, err = store.Repositories().Amenities.GetByName(ctx, a.name)
		}
		if err != nil {
			logger.Fatal().Err(err).Str("amenity", a.name).Msg("failed to seed amenity")
		}
		amenityIDs[a.name] = amenity.ID
	}

	existing, err := m.Places.List(ctx, repositories.PlaceFilter{OwnerID: host.ID, Limit: 1})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to list seeded places")
	}
	if len(existing) > 0 {
		logger.Info().Int("places", len(existing)).Msg("places already seeded, skipping")
		return
	}

	for _, sp := range seedPlaces {
		ids := make([]string, 0, len(sp.amenities))
		for _, name := range sp.amenities {
			ids = append(ids, amenityIDs[name])
		}
		place, err := m.Places.Create(ctx, hostP, entities.PlaceInput{
			Title:       str(sp.title),
			Description: str(sp.description),
			Price:       num(sp.price),
			Latitude:    num(sp.lat),
			Longitude:   num(sp.lon),
			AmenityIDs:  &ids,
		})
		if err != nil {
			logger.Fatal().Err(err).Str("place", sp.title).Msg("failed to seed place")
		}

		if _, err := m.Reviews.Create(ctx, guestP, entities.ReviewInput{
			PlaceID: str(place.ID),
			Text:    str("Lovely stay at " + strings.ToLower(sp.title)),
			Rating:  num("5"),
		}); err != nil {
			logger.Fatal().Err(err).Str("place", sp.title).Msg("failed to seed review")
		}
	}

	logger.Info().
		Int("amenities", len(amenityIDs)).
		Int("places", len(seedPlaces)).
		Str("admin", adminEmail).
		Msg("seed complete")
}

// ensureUser registers a user, or loads it when the email is already taken
func ensureUser(ctx context.Context, m *services.Marketplace, store *database.Store, email, first, last, password string) *entities.User {
	user, err := m.Users.Create(ctx, entities.Anonymous(), entities.UserInput{
		Email:     str(email),
		FirstName: str(first),
		LastName:  str(last),
		Password:  str(password),
	})
	if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
		user, err = store.Repositories().Users.GetByEmail(ctx, email)
	}
	if err != nil {
		observability.GetLogger().Fatal().Err(err).Str("email", email).Msg("failed to seed user")
	}
	return user
}

func str(s string) *string { return &s }

func num(s string) *json.Number {
	n := json.Number(s)
	return &n
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
