package models

import (
	"database/sql"
	"time"
)

// MembershipState is the lifecycle state of a club membership
type MembershipState string

// Membership states
const (
	MembershipStateNone             MembershipState = "none"
	MembershipStateActive           MembershipState = "active"
	MembershipStatePendingDowngrade MembershipState = "pending_downgrade"
	MembershipStateCancelled        MembershipState = "cancelled"
	MembershipStateExpired          MembershipState = "expired"
)

// ClubMembership is a user's subscription to a tier of a club
type ClubMembership struct {
	ID                  int64         `json:"id"`
	UserID              int64         `json:"user_id"`
	ClubID              int64         `json:"club_id"`
	ClubTierID          int64         `json:"club_tier_id"`
	DowngradeClubTierID sql.NullInt64 `json:"downgrade_club_tier_id"`
	UnitAmount          int64         `json:"unit_amount"`
	Currency            string        `json:"currency"`
	StartedAt           time.Time     `json:"started_at"`
	NextBillingAt       time.Time     `json:"next_billing_at"`
	CancelledAt         sql.NullTime  `json:"cancelled_at"`
	ExpiresAt           sql.NullTime  `json:"expires_at"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// State derives the lifecycle state at the given instant
func (m *ClubMembership) State(now time.Time) MembershipState {
	if m == nil {
		return MembershipStateNone
	}
	if m.IsExpired(now) {
		return MembershipStateExpired
	}
	if m.CancelledAt.Valid {
		return MembershipStateCancelled
	}
	if m.DowngradeClubTierID.Valid {
		return MembershipStatePendingDowngrade
	}
	return MembershipStateActive
}

// IsExpired reports whether the membership is past its expiration date
func (m *ClubMembership) IsExpired(now time.Time) bool {
	return m.ExpiresAt.Valid && !now.Before(m.ExpiresAt.Time)
}

// GrantsAccess reports whether the membership still unlocks members-only content.
// Cancelled memberships keep access until they expire.
func (m *ClubMembership) GrantsAccess(now time.Time) bool {
	return m != nil && !m.IsExpired(now)
}
