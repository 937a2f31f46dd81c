package policy

import (
	"time"

	"github.com/parsascontentcorner/clubserver/internal/models"
)

// TierActionKind is the single membership action offered for a tier
type TierActionKind string

// Tier actions
const (
	TierActionNone        TierActionKind = "none"
	TierActionJoin        TierActionKind = "join"
	TierActionUpgrade     TierActionKind = "upgrade"
	TierActionDowngrade   TierActionKind = "downgrade"
	TierActionCancel      TierActionKind = "cancel"
	TierActionRestore     TierActionKind = "restore"
	TierActionKeepCurrent TierActionKind = "keep_current"
)

// TierAction is the action a viewer can take on a tier
type TierAction struct {
	Kind TierActionKind `json:"kind"`
	// Disabled is set when the tier is full and the action would need a spot
	Disabled bool `json:"disabled"`
	// ScheduledAt is set on the tier a pending downgrade moves to
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// DeriveTierAction derives the action offered on tier for a viewer holding
// membership (nil when not a member). Owners get no action. remainingSpots is
// nil for tiers without a member limit.
//
// Prices are compared against what the member currently pays, not the
// current tier's list price.
func DeriveTierAction(roles Roles, membership *models.ClubMembership, tier *models.ClubTier, remainingSpots *int, now time.Time) TierAction {
	if roles.IsOwner {
		return TierAction{Kind: TierActionNone}
	}
	if !membership.GrantsAccess(now) {
		membership = nil
	}

	full := remainingSpots != nil && *remainingSpots <= 0

	if membership == nil {
		return TierAction{Kind: TierActionJoin, Disabled: full}
	}

	if membership.DowngradeClubTierID.Valid && membership.DowngradeClubTierID.Int64 == tier.ID {
		at := membership.NextBillingAt
		return TierAction{Kind: TierActionNone, ScheduledAt: &at}
	}

	if membership.ClubTierID == tier.ID {
		switch {
		case membership.DowngradeClubTierID.Valid:
			return TierAction{Kind: TierActionKeepCurrent}
		case membership.CancelledAt.Valid:
			return TierAction{Kind: TierActionRestore}
		default:
			return TierAction{Kind: TierActionCancel}
		}
	}

	if membership.UnitAmount < tier.UnitAmount {
		return TierAction{Kind: TierActionUpgrade, Disabled: full}
	}
	return TierAction{Kind: TierActionDowngrade, Disabled: full}
}
