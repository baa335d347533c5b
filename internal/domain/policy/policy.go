// Package policy decides whether a principal may perform an action on a target.
package policy

import (
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// Action names an operation subject to authorization
type Action string

const (
	ActionRead Action = "read"

	ActionUserCreate Action = "user:create"
	ActionUserUpdate Action = "user:update"
	ActionUserDelete Action = "user:delete"
	ActionGrantAdmin Action = "user:grant_admin"

	ActionAmenityCreate Action = "amenity:create"
	ActionAmenityUpdate Action = "amenity:update"
	ActionAmenityDelete Action = "amenity:delete"

	ActionPlaceCreate   Action = "place:create"
	ActionPlaceUpdate   Action = "place:update"
	ActionPlaceDelete   Action = "place:delete"
	ActionReassignOwner Action = "place:reassign_owner"

	ActionReviewCreate Action = "review:create"
	ActionReviewUpdate Action = "review:update"
	ActionReviewDelete Action = "review:delete"
)

// Deny reasons
const (
	ReasonNotOwner        = "not_owner"
	ReasonNotAdmin        = "not_admin"
	ReasonSelfReview      = "self_review"
	ReasonUnauthenticated = "unauthenticated"
)

// Target describes the entity an action applies to. Only the ids relevant to the action are read.
type Target struct {
	// UserID is the account being changed (user actions)
	UserID string
	// OwnerID is the owner of the place involved (place and review-create actions)
	OwnerID string
	// AuthorID is the review's user_id (review actions)
	AuthorID string
}

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err converts a denial into the matching AppError; nil when allowed
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == ReasonUnauthenticated {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	return apperrors.NewForbiddenError(d.Reason, messages[d.Reason])
}

var messages = map[string]string{
	ReasonNotOwner:   "only the owner or an admin may perform this action",
	ReasonNotAdmin:   "admin privileges required",
	ReasonSelfReview: "you cannot review your own place",
}

// Policy holds the configurable rules
type Policy struct {
	amenityAdminOnly bool
}

// New creates a policy. When amenityAdminOnly is false any authenticated
// principal may manage amenities.
func New(amenityAdminOnly bool) *Policy {
	return &Policy{amenityAdminOnly: amenityAdminOnly}
}

// Authorize decides whether p may perform action on target
func (pol *Policy) Authorize(p entities.Principal, action Action, target Target) Decision {
	switch action {
	case ActionRead:
		return allow
	case ActionUserCreate:
		// registration is open
		return allow
	}

	if p.IsAnonymous() {
		return deny(ReasonUnauthenticated)
	}

	switch action {
	case ActionGrantAdmin, ActionReassignOwner:
		return adminOnly(p)

	case ActionUserUpdate, ActionUserDelete:
		return selfOrAdmin(p, target.UserID)

	case ActionAmenityCreate, ActionAmenityUpdate, ActionAmenityDelete:
		if pol.amenityAdminOnly {
			return adminOnly(p)
		}
		return allow

	case ActionPlaceCreate, ActionPlaceUpdate, ActionPlaceDelete:
		return selfOrAdmin(p, target.OwnerID)

	case ActionReviewCreate:
		if p.UserID == target.OwnerID {
			return deny(ReasonSelfReview)
		}
		return selfOrAdmin(p, target.AuthorID)

	case ActionReviewUpdate, ActionReviewDelete:
		return selfOrAdmin(p, target.AuthorID)
	}

	return deny(ReasonNotAdmin)
}

func adminOnly(p entities.Principal) Decision {
	if p.IsAdmin {
		return allow
	}
	return deny(ReasonNotAdmin)
}

func selfOrAdmin(p entities.Principal, id string) Decision {
	if p.IsAdmin || (id != "" && p.UserID == id) {
		return allow
	}
	return deny(ReasonNotOwner)
}
