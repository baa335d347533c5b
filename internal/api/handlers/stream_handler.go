package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/providers"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

const (
	heartbeatInterval = 30 * time.Second
	defaultRadiusKm   = 50.0
)

// StreamHandler serves committed marketplace events as Server-Sent Events
type StreamHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	clients   atomic.Int64
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(eventBus providers.EventBus) *StreamHandler {
	return &StreamHandler{eventBus: eventBus, heartbeat: heartbeatInterval}
}

// StreamPlaceEvents handles GET /api/v1/stream/places/{id}: every event
// touching the place, including its reviews
func (h *StreamHandler) StreamPlaceEvents(w http.ResponseWriter, r *http.Request) {
	placeID := r.PathValue("id")
	h.stream(w, r, providers.EventChannelMarketplace,
		map[string]interface{}{"place_id": placeID},
		func(event *entities.MarketplaceEvent) bool {
			return event.AffectedPlaceID() == placeID
		})
}

// StreamRegionalEvents handles GET /api/v1/stream/places/region?lat=X&lon=Y&radius=Z.
// Only place events that carry the place's coordinates are matched.
func (h *StreamHandler) StreamRegionalEvents(w http.ResponseWriter, r *http.Request) {
	lat, err := requiredFloat(r, "lat")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	lon, err := requiredFloat(r, "lon")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	radius, err := floatParam(r, "radius")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	radiusKm := defaultRadiusKm
	if radius != nil {
		radiusKm = *radius
	}

	h.stream(w, r, providers.EventChannelPlaces,
		map[string]interface{}{"lat": lat, "lon": lon, "radius_km": radiusKm},
		func(event *entities.MarketplaceEvent) bool {
			if event.Place == nil {
				return false
			}
			return haversineDistance(lat, lon, event.Place.Latitude, event.Place.Longitude) <= radiusKm
		})
}

// ClientCount returns the number of open streams
func (h *StreamHandler) ClientCount() int {
	return int(h.clients.Load())
}

// Stats handles GET /api/v1/stream/stats
func (h *StreamHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]int{"connected_clients": h.ClientCount()})
}

func (h *StreamHandler) stream(
	w http.ResponseWriter,
	r *http.Request,
	channel string,
	hello map[string]interface{},
	match func(*entities.MarketplaceEvent) bool,
) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, r, apperrors.NewInternalError("streaming not supported", nil))
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	events, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		respondWithError(w, r, apperrors.NewExternalError("failed to subscribe to events", err))
		return
	}

	h.clients.Add(1)
	defer h.clients.Add(-1)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	hello["timestamp"] = time.Now().UTC()
	writeEvent(w, "connected", hello)
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("channel", channel).Msg("stream client disconnected")
			return
		case <-ticker.C:
			writeEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil || !match(event) {
				continue
			}
			writeEvent(w, event.Kind+"."+string(event.Type), event)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Error().Err(err).Str("event", name).Msg("failed to marshal stream event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
}

func requiredFloat(r *http.Request, name string) (float64, error) {
	v, err := floatParam(r, name)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, apperrors.NewValidationError(apperrors.FieldError{Field: name, Message: "is required"})
	}
	return *v, nil
}

// haversineDistance returns the great-circle distance in kilometers
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
