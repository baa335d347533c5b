package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/policy"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/providers"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
)

// Marketplace is the single entry point for every marketplace business rule.
// Each mutation validates, resolves references, checks uniqueness and
// authorizes before it writes, all inside one storage transaction.
type Marketplace struct {
	Users     *UserService
	Amenities *AmenityService
	Places    *PlaceService
	Reviews   *ReviewService
	Auth      *AuthService
}

// Option configures optional Marketplace collaborators
type Option func(*core)

// WithSearch indexes places in a search engine and serves place search from it
func WithSearch(search repositories.PlaceSearchRepository) Option {
	return func(c *core) { c.search = search }
}

// WithEventBus publishes a MarketplaceEvent after every committed mutation
func WithEventBus(bus providers.EventBus) Option {
	return func(c *core) { c.events = bus }
}

// WithClock overrides the time source used for created_at/updated_at
func WithClock(now func() time.Time) Option {
	return func(c *core) { c.now = now }
}

// WithIDGenerator overrides entity id generation
func WithIDGenerator(newID func() string) Option {
	return func(c *core) { c.newID = newID }
}

// NewMarketplace builds the domain services over an injected store
func NewMarketplace(
	store repositories.Store,
	hasher providers.PasswordHasher,
	tokens providers.TokenIssuer,
	pol *policy.Policy,
	opts ...Option,
) *Marketplace {
	c := &core{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		policy: pol,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	return &Marketplace{
		Users:     &UserService{core: c},
		Amenities: &AmenityService{core: c},
		Places:    &PlaceService{core: c},
		Reviews:   &ReviewService{core: c},
		Auth:      &AuthService{core: c},
	}
}

// core holds the collaborators shared by the entity services
type core struct {
	store  repositories.Store
	hasher providers.PasswordHasher
	tokens providers.TokenIssuer
	policy *policy.Policy
	search repositories.PlaceSearchRepository
	events providers.EventBus
	now    func() time.Time
	newID  func() string
}

// authorize checks the policy and logs denials
func (c *core) authorize(ctx context.Context, p entities.Principal, action policy.Action, target policy.Target) error {
	decision := c.policy.Authorize(p, action, target)
	if decision.Allowed {
		return nil
	}
	observability.LoggerFromContext(ctx).Debug().
		Str("principal", p.UserID).
		Str("action", string(action)).
		Str("reason", decision.Reason).
		Msg("authorization denied")
	return decision.Err()
}

// publish sends committed events; failures are logged and never fail the request
func (c *core) publish(ctx context.Context, events ...*entities.MarketplaceEvent) {
	if c.events == nil {
		return
	}
	for _, event := range events {
		for _, channel := range providers.ChannelsFor(event) {
			if err := c.events.Publish(ctx, channel, event); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).
					Str("channel", channel).
					Str("kind", event.Kind).
					Str("entity_id", event.EntityID).
					Msg("failed to publish marketplace event")
			}
		}
	}
}

// page applies the default list window
func page(limit, offset int) repositories.Page {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return repositories.Page{Limit: limit, Offset: offset}
}
