package search

import (
	"context"
	"fmt"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
)

// DefaultReindexBatch is the page size used when walking stored places
const DefaultReindexBatch = 500

// Reindex copies every stored place into the search index, one page at a
// time. A place that fails to index is logged and skipped; the number of
// places indexed is returned.
func Reindex(ctx context.Context, places repositories.PlaceRepository, index repositories.PlaceSearchRepository, batch int) (int, error) {
	if batch <= 0 {
		batch = DefaultReindexBatch
	}
	logger := observability.LoggerFromContext(ctx)

	indexed, failed := 0, 0
	for offset := 0; ; offset += batch {
		page, err := places.List(ctx, repositories.PlaceFilter{Limit: batch, Offset: offset})
		if err != nil {
			return indexed, fmt.Errorf("failed to list places at offset %d: %w", offset, err)
		}

		for _, place := range page {
			if err := index.Index(ctx, place); err != nil {
				failed++
				logger.Warn().Err(err).Str("place_id", place.ID).Msg("failed to index place")
				continue
			}
			indexed++
		}

		if len(page) < batch {
			break
		}
	}

	logger.Info().Int("indexed", indexed).Int("failed", failed).Msg("place reindex complete")
	return indexed, nil
}
