package loaders

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders batch the user and amenity lookups needed to expand place details.
// A Loaders value caches results, so build one per request.
type Loaders struct {
	UserLoader    *dataloader.Loader[string, *entities.User]
	AmenityLoader *dataloader.Loader[string, *entities.Amenity]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(repos repositories.Repositories) *Loaders {
	return &Loaders{
		UserLoader: dataloader.NewBatchedLoader(batch(entities.KindUser, repos.Users.GetByIDs,
			func(u *entities.User) string { return u.ID })),
		AmenityLoader: dataloader.NewBatchedLoader(batch(entities.KindAmenity, repos.Amenities.GetByIDs,
			func(a *entities.Amenity) string { return a.ID })),
	}
}

// batch adapts a GetByIDs lookup to a dataloader batch function. Keys with no
// matching entity resolve to a NOT_FOUND error.
func batch[V any](kind string, fetch func(context.Context, []string) ([]V, error), id func(V) string) dataloader.BatchFunc[string, V] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[V] {
		results := make([]*dataloader.Result[V], len(keys))
		items, err := fetch(ctx, keys)

		byID := make(map[string]V, len(items))
		if err == nil {
			for _, item := range items {
				byID[id(item)] = item
			}
		}

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[V]{Error: err}
			} else if item, ok := byID[key]; ok {
				results[i] = &dataloader.Result[V]{Data: item}
			} else {
				results[i] = &dataloader.Result[V]{Error: apperrors.NewNotFoundError(kind, key)}
			}
		}
		return results
	}
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
