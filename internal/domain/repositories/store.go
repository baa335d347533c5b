package repositories

import "context"

// Repositories groups the per-entity repositories bound to one connection or transaction
type Repositories struct {
	Users     UserRepository
	Amenities AmenityRepository
	Places    PlaceRepository
	Reviews   ReviewRepository
}

// Store is the storage port used by the domain services
type Store interface {
	// Repositories returns repositories outside any transaction, for reads
	Repositories() Repositories

	// WithTx runs fn in a single transaction. The transaction commits when fn
	// returns nil and rolls back otherwise, including on context cancellation.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
