// Package memory implements the storage port in process memory. Transactions
// work on a private copy of the state that replaces the shared one on commit.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
)

type state struct {
	users        map[string]*entities.User
	emails       map[string]string // lower(email) -> user id
	amenities    map[string]*entities.Amenity
	amenityNames map[string]string // lower(name) -> amenity id
	places       map[string]*entities.Place
	reviews      map[string]*entities.Review
	reviewKeys   map[string]string // user:place -> review id
}

func newState() *state {
	return &state{
		users:        make(map[string]*entities.User),
		emails:       make(map[string]string),
		amenities:    make(map[string]*entities.Amenity),
		amenityNames: make(map[string]string),
		places:       make(map[string]*entities.Place),
		reviews:      make(map[string]*entities.Review),
		reviewKeys:   make(map[string]string),
	}
}

// clone copies the maps. Stored entities are never mutated in place, so the
// pointers can be shared between snapshots.
func (s *state) clone() *state {
	return &state{
		users:        cloneMap(s.users),
		emails:       cloneMap(s.emails),
		amenities:    cloneMap(s.amenities),
		amenityNames: cloneMap(s.amenityNames),
		places:       cloneMap(s.places),
		reviews:      cloneMap(s.reviews),
		reviewKeys:   cloneMap(s.reviewKeys),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store is an in-memory repositories.Store
type Store struct {
	mu    sync.RWMutex
	state *state
}

var _ repositories.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{state: newState()}
}

// Repositories returns repositories that read the committed state.
// Each write made through them commits on its own.
func (s *Store) Repositories() repositories.Repositories {
	return bind(handle{store: s})
}

// WithTx runs fn against a snapshot and publishes it only when fn succeeds.
// Transactions are serialized.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos repositories.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(ctx, bind(handle{tx: snapshot})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = snapshot
	return nil
}

// handle gives a repository access either to the committed state or to a transaction snapshot
type handle struct {
	store *Store
	tx    *state
}

func (h handle) read(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	return fn(h.store.state)
}

func (h handle) write(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	next := h.store.state.clone()
	if err := fn(next); err != nil {
		return err
	}
	h.store.state = next
	return nil
}

func bind(h handle) repositories.Repositories {
	return repositories.Repositories{
		Users:     &UserRepository{h: h},
		Amenities: &AmenityRepository{h: h},
		Places:    &PlaceRepository{h: h},
		Reviews:   &ReviewRepository{h: h},
	}
}

// cascade helpers shared by the repositories

func (s *state) deleteReview(id string) {
	r, ok := s.reviews[id]
	if !ok {
		return
	}
	delete(s.reviewKeys, entities.ReviewKey(r.UserID, r.PlaceID))
	delete(s.reviews, id)
}

func (s *state) deletePlace(id string) {
	for rid, r := range s.reviews {
		if r.PlaceID == id {
			s.deleteReview(rid)
		}
	}
	delete(s.places, id)
}

func (s *state) deleteUser(id string) {
	for pid, p := range s.places {
		if p.OwnerID == id {
			s.deletePlace(pid)
		}
	}
	for rid, r := range s.reviews {
		if r.UserID == id {
			s.deleteReview(rid)
		}
	}
	if u, ok := s.users[id]; ok {
		delete(s.emails, strings.ToLower(u.Email))
	}
	delete(s.users, id)
}

func sortByCreated[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return id(items[i]) < id(items[j])
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
