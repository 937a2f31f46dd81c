// Package events defines the notifications the club server emits and a Kafka publisher for them.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names an event
type Type string

// Event types
const (
	ClubCreated      Type = "club.created"
	ClubUpdated      Type = "club.updated"
	ClubTiersUpdated Type = "club.tiers_updated"

	PostCreated Type = "club_post.created"
	PostUpdated Type = "club_post.updated"
	PostDeleted Type = "club_post.deleted"

	MembershipCreated            Type = "membership.created"
	MembershipUpgraded           Type = "membership.upgraded"
	MembershipDowngradeScheduled Type = "membership.downgrade_scheduled"
	MembershipDowngradeCleared   Type = "membership.downgrade_cleared"
	MembershipDowngraded         Type = "membership.downgraded"
	MembershipCancelled          Type = "membership.cancelled"
	MembershipRestored           Type = "membership.restored"
	MembershipExpired            Type = "membership.expired"
)

// Event is a fire-and-forget notification about a club
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	ClubID     int64          `json:"club_id"`
	UserID     int64          `json:"user_id"`
	EntityID   int64          `json:"entity_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// New creates an event with a fresh id. entityID is the club, post or membership the event is about.
func New(t Type, clubID, userID, entityID int64, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		ClubID:     clubID,
		UserID:     userID,
		EntityID:   entityID,
		OccurredAt: at.UTC(),
	}
}

// With returns a copy of the event carrying an extra data field
func (e Event) With(key string, value any) Event {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data[key] = value
	e.Data = data
	return e
}
