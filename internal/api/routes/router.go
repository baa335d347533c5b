package routes

import (
	"net/http"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/handlers"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/middleware"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/application/services"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	userHandler    *handlers.UserHandler
	amenityHandler *handlers.AmenityHandler
	placeHandler   *handlers.PlaceHandler
	reviewHandler  *handlers.ReviewHandler
	authHandler    *handlers.AuthHandler
	healthHandler  *handlers.HealthHandler

	authenticator  middleware.Authenticator
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a router serving the marketplace. metrics may be nil.
func NewRouter(
	marketplace *services.Marketplace,
	checks map[string]handlers.HealthCheck,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		userHandler:    handlers.NewUserHandler(marketplace.Users),
		amenityHandler: handlers.NewAmenityHandler(marketplace.Amenities),
		placeHandler:   handlers.NewPlaceHandler(marketplace.Places),
		reviewHandler:  handlers.NewReviewHandler(marketplace.Reviews),
		authHandler:    handlers.NewAuthHandler(marketplace.Auth),
		healthHandler:  handlers.NewHealthHandler(checks),

		authenticator:  marketplace.Auth,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Auth endpoints
	r.mux.HandleFunc("POST /api/v1/auth/login", r.authHandler.Login)

	// User endpoints
	r.mux.HandleFunc("POST /api/v1/users", r.userHandler.CreateUser)
	r.mux.HandleFunc("GET /api/v1/users", r.userHandler.ListUsers)
	r.mux.HandleFunc("GET /api/v1/users/{id}", r.userHandler.GetUser)
	r.mux.HandleFunc("PUT /api/v1/users/{id}", r.userHandler.UpdateUser)
	r.mux.HandleFunc("DELETE /api/v1/users/{id}", r.userHandler.DeleteUser)

	// Amenity endpoints
	r.mux.HandleFunc("POST /api/v1/amenities", r.amenityHandler.CreateAmenity)
	r.mux.HandleFunc("GET /api/v1/amenities", r.amenityHandler.ListAmenities)
	r.mux.HandleFunc("GET /api/v1/amenities/{id}", r.amenityHandler.GetAmenity)
	r.mux.HandleFunc("PUT /api/v1/amenities/{id}", r.amenityHandler.UpdateAmenity)
	r.mux.HandleFunc("DELETE /api/v1/amenities/{id}", r.amenityHandler.DeleteAmenity)

	// Place endpoints
	r.mux.HandleFunc("POST /api/v1/places", r.placeHandler.CreatePlace)
	r.mux.HandleFunc("GET /api/v1/places", r.placeHandler.ListPlaces)
	r.mux.HandleFunc("GET /api/v1/places/search", r.placeHandler.SearchPlaces)
	r.mux.HandleFunc("GET /api/v1/places/{id}", r.placeHandler.GetPlace)
	r.mux.HandleFunc("PUT /api/v1/places/{id}", r.placeHandler.UpdatePlace)
	r.mux.HandleFunc("DELETE /api/v1/places/{id}", r.placeHandler.DeletePlace)
	r.mux.HandleFunc("GET /api/v1/places/{id}/amenities", r.placeHandler.GetPlaceAmenities)
	r.mux.HandleFunc("POST /api/v1/places/{id}/amenities", r.placeHandler.AddPlaceAmenity)
	r.mux.HandleFunc("DELETE /api/v1/places/{id}/amenities/{amenity_id}", r.placeHandler.RemovePlaceAmenity)
	r.mux.HandleFunc("GET /api/v1/places/{id}/reviews", r.placeHandler.GetPlaceReviews)
	r.mux.HandleFunc("POST /api/v1/places/{id}/reviews", r.reviewHandler.CreatePlaceReview)

	// Review endpoints
	r.mux.HandleFunc("POST /api/v1/reviews", r.reviewHandler.CreateReview)
	r.mux.HandleFunc("GET /api/v1/reviews", r.reviewHandler.ListReviews)
	r.mux.HandleFunc("GET /api/v1/reviews/{id}", r.reviewHandler.GetReview)
	r.mux.HandleFunc("PUT /api/v1/reviews/{id}", r.reviewHandler.UpdateReview)
	r.mux.HandleFunc("DELETE /api/v1/reviews/{id}", r.reviewHandler.DeleteReview)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so rejected requests also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.AuthMiddleware(r.authenticator)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
