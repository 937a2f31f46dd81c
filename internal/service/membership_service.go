package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/clubserver/internal/billing"
	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/events"
	"github.com/parsascontentcorner/clubserver/internal/ledger"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// Ledger charge outcomes reported to metrics
const (
	chargeOutcomeSuccess           = "success"
	chargeOutcomeInsufficientFunds = "insufficient_funds"
	chargeOutcomeError             = "error"
	chargeOutcomeRefunded          = "refunded"
	chargeOutcomeRefundFailed      = "refund_failed"
)

// refundTimeout bounds the compensating refund after a failed commit
const refundTimeout = 10 * time.Second

// MembershipService drives the membership lifecycle: join, upgrade, downgrade,
// cancel, restore and expiry
type MembershipService struct {
	deps Deps
}

// NewMembershipService creates a new membership service
func NewMembershipService(deps Deps) *MembershipService {
	return &MembershipService{deps: deps.withDefaults()}
}

// Create joins the viewer to the club of a tier, charging the full tier price.
// An expired membership left on the club is replaced.
func (s *MembershipService) Create(ctx context.Context, viewer *models.Viewer, clubTierID int64) (*models.ClubMembership, error) {
	s.deps.Logger.Debug("CreateClubMembership called", zap.Int64("club_tier_id", clubTierID), zap.Int64("user_id", viewer.ID()))

	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	tier, club, err := s.tierAndClub(ctx, clubTierID)
	if err != nil {
		return nil, err
	}
	if club.UserID == viewer.UserID {
		return nil, errs.BadRequest("you cannot join your own club")
	}
	if !tier.Joinable {
		return nil, errs.BadRequest("this tier is not accepting new members")
	}

	now := s.deps.Now()
	var (
		membership *models.ClubMembership
		paid       *ledger.Transaction
	)

	err = s.deps.Store.InTx(ctx, func(ctx context.Context, q Queries) error {
		existing, err := q.GetClubMembershipForUpdate(ctx, club.ID, viewer.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsExpired(now) {
				return errs.BadRequest("you are already a member of this club")
			}
			if err := q.DeleteClubMembership(ctx, existing.ID); err != nil {
				return err
			}
		}

		locked, err := lockTierWithSpace(ctx, q, tier.ID, now)
		if err != nil {
			return err
		}

		membership = &models.ClubMembership{
			UserID:        viewer.UserID,
			ClubID:        club.ID,
			ClubTierID:    locked.ID,
			UnitAmount:    locked.UnitAmount,
			Currency:      locked.Currency,
			StartedAt:     now,
			NextBillingAt: billing.FirstBillingDate(now),
		}
		if err := q.CreateClubMembership(ctx, membership); err != nil {
			return err
		}

		paid, err = s.charge(ctx, club, membership, events.MembershipCreated, now)
		return err
	})
	if err != nil {
		if paid != nil {
			s.refund(ctx, paid, err)
		}
		s.deps.Logger.Error("failed to create membership",
			zap.Int64("club_tier_id", clubTierID),
			zap.Int64("user_id", viewer.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	s.afterTransition(ctx, events.MembershipCreated, membership)
	return membership, nil
}

// Update moves the viewer's membership to another tier of the same club.
// A higher price upgrades immediately and charges; anything else is
// scheduled for the next billing date. Choosing the current tier clears a
// pending downgrade.
func (s *MembershipService) Update(ctx context.Context, viewer *models.Viewer, clubTierID int64) (*models.ClubMembership, error) {
	s.deps.Logger.Debug("UpdateClubMembership called", zap.Int64("club_tier_id", clubTierID), zap.Int64("user_id", viewer.ID()))

	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	tier, club, err := s.tierAndClub(ctx, clubTierID)
	if err != nil {
		return nil, err
	}

	now := s.deps.Now()
	var (
		membership *models.ClubMembership
		transition events.Type
		paid       *ledger.Transaction
	)

	err = s.deps.Store.InTx(ctx, func(ctx context.Context, q Queries) error {
		m, err := lockActiveMembership(ctx, q, club.ID, viewer.UserID, now)
		if err != nil {
			return err
		}
		if m.CancelledAt.Valid {
			return errs.BadRequest("restore your membership before changing tiers")
		}
		membership = m

		if m.ClubTierID == tier.ID {
			if !m.DowngradeClubTierID.Valid {
				return nil
			}
			m.DowngradeClubTierID = sql.NullInt64{}
			transition = events.MembershipDowngradeCleared
			return q.UpdateClubMembership(ctx, m)
		}

		// The pending downgrade already holds a spot on its tier
		if m.DowngradeClubTierID.Valid && m.DowngradeClubTierID.Int64 == tier.ID {
			return nil
		}

		if !tier.Joinable {
			return errs.BadRequest("this tier is not accepting new members")
		}

		locked, err := lockTierWithSpace(ctx, q, tier.ID, now)
		if err != nil {
			return err
		}

		change := billing.NextBillingDate(m.UnitAmount, m.NextBillingAt, locked.UnitAmount, now)
		if !change.Upgrade {
			m.DowngradeClubTierID = sql.NullInt64{Int64: locked.ID, Valid: true}
			transition = events.MembershipDowngradeScheduled
			return q.UpdateClubMembership(ctx, m)
		}

		m.ClubTierID = locked.ID
		m.UnitAmount = locked.UnitAmount
		m.Currency = locked.Currency
		m.NextBillingAt = change.NextBillingDate
		m.DowngradeClubTierID = sql.NullInt64{}
		transition = events.MembershipUpgraded
		if err := q.UpdateClubMembership(ctx, m); err != nil {
			return err
		}

		s.deps.Logger.Debug("upgrading membership",
			zap.Int64("membership_id", m.ID),
			zap.Int("added_days", change.AddedDaysFromCurrentTier),
			zap.Time("next_billing_at", change.NextBillingDate),
		)

		paid, err = s.charge(ctx, club, m, events.MembershipUpgraded, now)
		return err
	})
	if err != nil {
		if paid != nil {
			s.refund(ctx, paid, err)
		}
		s.deps.Logger.Error("failed to update membership",
			zap.Int64("club_tier_id", clubTierID),
			zap.Int64("user_id", viewer.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	if transition != "" {
		s.afterTransition(ctx, transition, membership)
	}
	return membership, nil
}

// Cancel stops renewal. The membership keeps access until its next billing date.
func (s *MembershipService) Cancel(ctx context.Context, viewer *models.Viewer, clubID int64) (*models.ClubMembership, error) {
	s.deps.Logger.Debug("CancelClubMembership called", zap.Int64("club_id", clubID), zap.Int64("user_id", viewer.ID()))

	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	now := s.deps.Now()
	var (
		membership *models.ClubMembership
		changed    bool
	)

	err := s.deps.Store.InTx(ctx, func(ctx context.Context, q Queries) error {
		m, err := lockActiveMembership(ctx, q, clubID, viewer.UserID, now)
		if err != nil {
			return err
		}
		membership = m
		if m.CancelledAt.Valid {
			return nil
		}

		m.CancelledAt = sql.NullTime{Time: now, Valid: true}
		m.ExpiresAt = sql.NullTime{Time: m.NextBillingAt, Valid: true}
		m.DowngradeClubTierID = sql.NullInt64{}
		changed = true
		return q.UpdateClubMembership(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterTransition(ctx, events.MembershipCancelled, membership)
	}
	return membership, nil
}

// Restore undoes a cancellation before the membership expires
func (s *MembershipService) Restore(ctx context.Context, viewer *models.Viewer, clubID int64) (*models.ClubMembership, error) {
	s.deps.Logger.Debug("RestoreClubMembership called", zap.Int64("club_id", clubID), zap.Int64("user_id", viewer.ID()))

	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	now := s.deps.Now()
	var (
		membership *models.ClubMembership
		changed    bool
	)

	err := s.deps.Store.InTx(ctx, func(ctx context.Context, q Queries) error {
		m, err := q.GetClubMembershipForUpdate(ctx, clubID, viewer.UserID)
		if err != nil {
			return err
		}
		if m == nil {
			return errs.NotFound("club membership")
		}
		if m.IsExpired(now) {
			return errs.BadRequest("this membership has already expired, join the club again instead")
		}
		membership = m
		if !m.CancelledAt.Valid {
			return nil
		}

		m.CancelledAt = sql.NullTime{}
		m.ExpiresAt = sql.NullTime{}
		changed = true
		return q.UpdateClubMembership(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterTransition(ctx, events.MembershipRestored, membership)
	}
	return membership, nil
}

// GetOnClub returns the viewer's membership on a club, nil when they are not a member
func (s *MembershipService) GetOnClub(ctx context.Context, viewer *models.Viewer, clubID int64) (*models.ClubMembership, error) {
	s.deps.Logger.Debug("GetClubMembershipOnClub called", zap.Int64("club_id", clubID), zap.Int64("user_id", viewer.ID()))

	if viewer == nil {
		return nil, nil
	}
	return findMembership(ctx, s.deps, clubID, viewer.UserID)
}

// ApplyPendingDowngrade moves a membership onto its pending downgrade tier
// once the next billing date is reached. It never charges; the renewal
// at the new price belongs to the billing run that calls it.
func (s *MembershipService) ApplyPendingDowngrade(ctx context.Context, membershipID int64) (*models.ClubMembership, error) {
	s.deps.Logger.Debug("ApplyPendingDowngrade called", zap.Int64("membership_id", membershipID))

	now := s.deps.Now()
	var membership *models.ClubMembership

	err := s.deps.Store.InTx(ctx, func(ctx context.Context, q Queries) error {
		m, err := q.GetClubMembershipByIDForUpdate(ctx, membershipID)
		if err != nil {
			return err
		}
		if !m.DowngradeClubTierID.Valid {
			return errs.BadRequest("membership has no pending downgrade")
		}
		if now.Before(m.NextBillingAt) {
			return errs.BadRequest("the pending downgrade is not due yet")
		}

		// The member's own reservation is part of the count
		tier, err := q.GetClubTierForUpdate(ctx, m.DowngradeClubTierID.Int64, now)
		if err != nil {
			return err
		}
		if tier.MemberLimit.Valid && int64(tier.MemberCount) > tier.MemberLimit.Int64 {
			return &errs.CapacityError{TierID: tier.ID}
		}

		m.ClubTierID = tier.ID
		m.UnitAmount = tier.UnitAmount
		m.Currency = tier.Currency
		m.DowngradeClubTierID = sql.NullInt64{}
		membership = m
		return q.UpdateClubMembership(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, events.MembershipDowngraded, membership)
	return membership, nil
}

// ExpireDue deletes memberships past their expiration date and returns how many were removed
func (s *MembershipService) ExpireDue(ctx context.Context) (int, error) {
	expired, err := s.deps.Store.DeleteExpiredMemberships(ctx, s.deps.Now())
	if err != nil {
		return 0, err
	}

	for _, m := range expired {
		s.afterTransition(ctx, events.MembershipExpired, m)
	}

	if len(expired) > 0 {
		s.deps.Logger.Info("expired memberships deleted", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

// ============================================================================
// Helpers
// ============================================================================

func (s *MembershipService) tierAndClub(ctx context.Context, clubTierID int64) (*models.ClubTier, *models.Club, error) {
	tier, err := s.deps.Store.GetClubTierByID(ctx, clubTierID)
	if err != nil {
		return nil, nil, err
	}
	club, err := s.deps.Store.GetClubByID(ctx, tier.ClubID)
	if err != nil {
		return nil, nil, err
	}
	return tier, club, nil
}

// lockActiveMembership locks the membership of a user on a club. Missing and
// expired memberships are reported as not found.
func lockActiveMembership(ctx context.Context, q Queries, clubID, userID int64, now time.Time) (*models.ClubMembership, error) {
	m, err := q.GetClubMembershipForUpdate(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.IsExpired(now) {
		return nil, errs.NotFound("club membership")
	}
	return m, nil
}

// lockTierWithSpace locks a tier row and fails when it has no spots left.
// Pending downgrades into the tier hold spots.
func lockTierWithSpace(ctx context.Context, q Queries, tierID int64, now time.Time) (*models.TierWithCount, error) {
	tier, err := q.GetClubTierForUpdate(ctx, tierID, now)
	if err != nil {
		return nil, err
	}
	if tier.IsFull() {
		remaining, _ := tier.RemainingSpots()
		return nil, &errs.CapacityError{TierID: tier.ID, RemainingSpots: remaining}
	}
	return tier, nil
}

// charge pays the membership price from the member to the club owner after
// checking the member's balance and returns the transaction it sent. Free
// tiers are not charged and return nil.
func (s *MembershipService) charge(ctx context.Context, club *models.Club, m *models.ClubMembership, reason events.Type, now time.Time) (*ledger.Transaction, error) {
	if m.UnitAmount <= 0 {
		return nil, nil
	}

	account, err := s.deps.Ledger.GetAccount(ctx, m.UserID)
	if err != nil {
		s.deps.Metrics.LedgerCharge(chargeOutcomeError)
		return nil, fmt.Errorf("failed to get buzz account: %w", err)
	}
	if account.Balance < m.UnitAmount {
		s.deps.Metrics.LedgerCharge(chargeOutcomeInsufficientFunds)
		return nil, errs.InsufficientFunds(account.Balance, m.UnitAmount)
	}

	tx := ledger.Transaction{
		FromAccountID:         m.UserID,
		ToAccountID:           club.UserID,
		Amount:                m.UnitAmount,
		Type:                  ledger.TransactionTypeClubMembership,
		Description:           fmt.Sprintf("Membership to %s", club.Name),
		ExternalTransactionID: chargeID(m, reason, now),
		Details: map[string]any{
			"clubId":       club.ID,
			"clubTierId":   m.ClubTierID,
			"membershipId": m.ID,
			"reason":       string(reason),
		},
	}
	result, err := s.deps.Ledger.CreateTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, errs.ErrInsufficientFunds) {
			s.deps.Metrics.LedgerCharge(chargeOutcomeInsufficientFunds)
			return nil, err
		}
		s.deps.Metrics.LedgerCharge(chargeOutcomeError)
		return nil, fmt.Errorf("failed to charge membership: %w", err)
	}

	s.deps.Metrics.LedgerCharge(chargeOutcomeSuccess)
	s.deps.Logger.Info("charged membership",
		zap.Int64("membership_id", m.ID),
		zap.Int64("amount", m.UnitAmount),
		zap.String("transaction_id", result.TransactionID),
	)
	return &tx, nil
}

// chargeID identifies one charge of a membership transition so the ledger
// can deduplicate retries
func chargeID(m *models.ClubMembership, reason events.Type, now time.Time) string {
	return fmt.Sprintf("club-membership-%d-%s-%d-%d", m.ID, reason, m.ClubTierID, now.Unix())
}

// refund pays back a charge whose transition was rolled back after the
// ledger accepted it. It runs even when ctx is already cancelled.
func (s *MembershipService) refund(ctx context.Context, paid *ledger.Transaction, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
	defer cancel()

	_, err := s.deps.Ledger.CreateTransaction(ctx, ledger.Transaction{
		FromAccountID:         paid.ToAccountID,
		ToAccountID:           paid.FromAccountID,
		Amount:                paid.Amount,
		Type:                  ledger.TransactionTypeClubMembershipRefund,
		Description:           "Refund: " + paid.Description,
		ExternalTransactionID: paid.ExternalTransactionID + "-refund",
		Details:               paid.Details,
	})
	if err != nil {
		s.deps.Metrics.LedgerCharge(chargeOutcomeRefundFailed)
		s.deps.Logger.Error("failed to refund membership charge",
			zap.String("external_transaction_id", paid.ExternalTransactionID),
			zap.Int64("user_id", paid.FromAccountID),
			zap.Int64("amount", paid.Amount),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}

	s.deps.Metrics.LedgerCharge(chargeOutcomeRefunded)
	s.deps.Logger.Warn("refunded membership charge after rollback",
		zap.String("external_transaction_id", paid.ExternalTransactionID),
		zap.Int64("user_id", paid.FromAccountID),
		zap.Int64("amount", paid.Amount),
		zap.NamedError("cause", cause),
	)
}

// afterTransition refreshes caches and announces a committed transition
func (s *MembershipService) afterTransition(ctx context.Context, transition events.Type, m *models.ClubMembership) {
	s.deps.Cache.InvalidateClubTiers(ctx, m.ClubID)
	s.deps.Cache.InvalidateMembership(ctx, m.ClubID, m.UserID)
	s.deps.Metrics.MembershipTransition(string(transition))

	event := events.New(transition, m.ClubID, m.UserID, m.ID, s.deps.Now()).
		With("club_tier_id", m.ClubTierID).
		With("unit_amount", m.UnitAmount)
	s.deps.Publisher.Publish(ctx, event)

	s.deps.Logger.Info("membership transition",
		zap.String("transition", string(transition)),
		zap.Int64("membership_id", m.ID),
		zap.Int64("club_id", m.ClubID),
		zap.Int64("user_id", m.UserID),
		zap.Int64("club_tier_id", m.ClubTierID),
	)
}
