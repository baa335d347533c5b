package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	tsclient "github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/typesense"
)

const defaultPerPage = 20

// TypesenseAdapter implements place search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.PlaceSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts a place document
func (a *TypesenseAdapter) Index(ctx context.Context, place *entities.Place) error {
	_, err := a.client.Client().Collection(tsclient.PlacesCollection).Documents().
		Upsert(ctx, placeDocument(place))
	if err != nil {
		return fmt.Errorf("failed to index place: %w", err)
	}
	return nil
}

// Delete removes a place from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.PlacesCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete place from index: %w", err)
	}
	return nil
}

// Search runs a text query over title and description with optional owner and price filters
func (a *TypesenseAdapter) Search(ctx context.Context, filter repositories.PlaceFilter) ([]*entities.Place, error) {
	result, err := a.client.Client().Collection(tsclient.PlacesCollection).Documents().
		Search(ctx, searchParams(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}

	places := []*entities.Place{}
	if result.Hits == nil {
		return places, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		places = append(places, placeFromDocument(*hit.Document))
	}
	return places, nil
}

func placeDocument(place *entities.Place) map[string]interface{} {
	amenityIDs := place.AmenityIDs
	if amenityIDs == nil {
		amenityIDs = []string{}
	}
	return map[string]interface{}{
		"id":          place.ID,
		"title":       place.Title,
		"description": place.Description,
		"price":       place.Price,
		"latitude":    place.Latitude,
		"longitude":   place.Longitude,
		"owner_id":    place.OwnerID,
		"amenity_ids": amenityIDs,
		"created_at":  place.CreatedAt.UnixMilli(),
		"updated_at":  place.UpdatedAt.UnixMilli(),
	}
}

// placeFromDocument rebuilds a place from a search hit. Numbers arrive as
// float64 after JSON decoding; timestamps keep millisecond precision.
func placeFromDocument(doc map[string]interface{}) *entities.Place {
	place := &entities.Place{
		ID:          stringField(doc, "id"),
		Title:       stringField(doc, "title"),
		Description: stringField(doc, "description"),
		Price:       floatField(doc, "price"),
		Latitude:    floatField(doc, "latitude"),
		Longitude:   floatField(doc, "longitude"),
		OwnerID:     stringField(doc, "owner_id"),
		AmenityIDs:  []string{},
		CreatedAt:   time.UnixMilli(int64(floatField(doc, "created_at"))).UTC(),
		UpdatedAt:   time.UnixMilli(int64(floatField(doc, "updated_at"))).UTC(),
	}
	if ids, ok := doc["amenity_ids"].([]interface{}); ok {
		for _, id := range ids {
			if s, ok := id.(string); ok {
				place.AmenityIDs = append(place.AmenityIDs, s)
			}
		}
	}
	return place
}

func searchParams(filter repositories.PlaceFilter) *api.SearchCollectionParams {
	q := strings.TrimSpace(filter.Query)
	if q == "" {
		q = "*"
	}

	perPage := filter.Limit
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("title,description"),
		SortBy:  pointer.String("_text_match:desc,created_at:asc"),
		Page:    pointer.Int(filter.Offset/perPage + 1),
		PerPage: pointer.Int(perPage),
	}
	if by := filterBy(filter); by != "" {
		params.FilterBy = pointer.String(by)
	}
	return params
}

func filterBy(filter repositories.PlaceFilter) string {
	var clauses []string
	if filter.OwnerID != "" {
		clauses = append(clauses, fmt.Sprintf("owner_id:=`%s`", filter.OwnerID))
	}
	if filter.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price:>=%g", *filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price:<=%g", *filter.MaxPrice))
	}
	return strings.Join(clauses, " && ")
}

func stringField(doc map[string]interface{}, key string) string {
	s, _ := doc[key].(string)
	return s
}

func floatField(doc map[string]interface{}, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}
