package models

import (
	"database/sql"
	"time"
)

// DefaultCurrency is the currency tiers are priced in unless told otherwise
const DefaultCurrency = "BUZZ"

// ClubTier is a priced membership level within a club
type ClubTier struct {
	ID           int64         `json:"id"`
	ClubID       int64         `json:"club_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	UnitAmount   int64         `json:"unit_amount"`
	Currency     string        `json:"currency"`
	MemberLimit  sql.NullInt64 `json:"member_limit"`
	CoverImageID sql.NullInt64 `json:"cover_image_id"`
	Joinable     bool          `json:"joinable"`
	Unlisted     bool          `json:"unlisted"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// TierWithCount is a tier together with its current membership count
type TierWithCount struct {
	ClubTier
	MemberCount int `json:"member_count"`
}

// RemainingSpots returns the free spots of a limited tier.
// The second value is false when the tier has no member limit.
func (t *TierWithCount) RemainingSpots() (int, bool) {
	if !t.MemberLimit.Valid {
		return 0, false
	}
	remaining := int(t.MemberLimit.Int64) - t.MemberCount
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// IsFull reports whether a limited tier has no spots left
func (t *TierWithCount) IsFull() bool {
	remaining, limited := t.RemainingSpots()
	return limited && remaining == 0
}

// RanksAbove reports whether t sits above other in the club's price ranking
func (t *ClubTier) RanksAbove(other *ClubTier) bool {
	if t.UnitAmount != other.UnitAmount {
		return t.UnitAmount > other.UnitAmount
	}
	return t.ID > other.ID
}
