package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

const membershipColumns = `id, user_id, club_id, club_tier_id, downgrade_club_tier_id, unit_amount, currency,
		       started_at, next_billing_at, cancelled_at, expires_at, created_at, updated_at`

func membershipDest(m *models.ClubMembership) []any {
	return []any{
		&m.ID,
		&m.UserID,
		&m.ClubID,
		&m.ClubTierID,
		&m.DowngradeClubTierID,
		&m.UnitAmount,
		&m.Currency,
		&m.StartedAt,
		&m.NextBillingAt,
		&m.CancelledAt,
		&m.ExpiresAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	}
}

func (q *Queries) getMembership(ctx context.Context, query string, args ...any) (*models.ClubMembership, error) {
	var m models.ClubMembership
	err := q.q.QueryRowContext(ctx, query, args...).Scan(membershipDest(&m)...)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetClubMembership returns the membership of userID on clubID, or nil if there is none.
// Expired rows are returned as they are; callers decide what to do with them.
func (q *Queries) GetClubMembership(ctx context.Context, clubID, userID int64) (*models.ClubMembership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM club_memberships
		WHERE club_id = $1 AND user_id = $2
	`

	m, err := q.getMembership(ctx, query, clubID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get club membership: %w", err)
	}

	return m, nil
}

// GetClubMembershipForUpdate is GetClubMembership with the row locked for the rest of the transaction
func (q *Queries) GetClubMembershipForUpdate(ctx context.Context, clubID, userID int64) (*models.ClubMembership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM club_memberships
		WHERE club_id = $1 AND user_id = $2
		FOR UPDATE
	`

	m, err := q.getMembership(ctx, query, clubID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock club membership: %w", err)
	}

	return m, nil
}

// GetClubMembershipByIDForUpdate locks a membership by its ID
func (q *Queries) GetClubMembershipByIDForUpdate(ctx context.Context, id int64) (*models.ClubMembership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM club_memberships
		WHERE id = $1
		FOR UPDATE
	`

	m, err := q.getMembership(ctx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("club membership")
		}
		return nil, fmt.Errorf("failed to lock club membership: %w", err)
	}

	return m, nil
}

// CreateClubMembership inserts a membership. A second membership for the same
// user and club is rejected.
func (q *Queries) CreateClubMembership(ctx context.Context, m *models.ClubMembership) error {
	query := `
		INSERT INTO club_memberships (user_id, club_id, club_tier_id, downgrade_club_tier_id, unit_amount, currency,
		                              started_at, next_billing_at, cancelled_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	if m.Currency == "" {
		m.Currency = models.DefaultCurrency
	}

	err := q.q.QueryRowContext(ctx, query,
		m.UserID,
		m.ClubID,
		m.ClubTierID,
		m.DowngradeClubTierID,
		m.UnitAmount,
		m.Currency,
		m.StartedAt,
		m.NextBillingAt,
		m.CancelledAt,
		m.ExpiresAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return errs.BadRequest("you are already a member of this club")
		}
		return fmt.Errorf("failed to create club membership: %w", err)
	}

	return nil
}

// UpdateClubMembership overwrites the mutable fields of a membership
func (q *Queries) UpdateClubMembership(ctx context.Context, m *models.ClubMembership) error {
	query := `
		UPDATE club_memberships
		SET club_tier_id = $2,
		    downgrade_club_tier_id = $3,
		    unit_amount = $4,
		    currency = $5,
		    next_billing_at = $6,
		    cancelled_at = $7,
		    expires_at = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := q.q.QueryRowContext(ctx, query,
		m.ID,
		m.ClubTierID,
		m.DowngradeClubTierID,
		m.UnitAmount,
		m.Currency,
		m.NextBillingAt,
		m.CancelledAt,
		m.ExpiresAt,
	).Scan(&m.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("club membership")
		}
		return fmt.Errorf("failed to update club membership: %w", err)
	}

	return nil
}

// DeleteClubMembership removes a membership
func (q *Queries) DeleteClubMembership(ctx context.Context, id int64) error {
	result, err := q.q.ExecContext(ctx, `DELETE FROM club_memberships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete club membership: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errs.NotFound("club membership")
	}

	return nil
}

// DeleteExpiredMemberships removes every membership whose expiration is at or
// before now and returns the removed rows
func (q *Queries) DeleteExpiredMemberships(ctx context.Context, now time.Time) ([]*models.ClubMembership, error) {
	query := `
		DELETE FROM club_memberships
		WHERE expires_at IS NOT NULL AND expires_at <= $1
		RETURNING ` + membershipColumns

	rows, err := q.q.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired memberships: %w", err)
	}
	defer rows.Close()

	var expired []*models.ClubMembership
	for rows.Next() {
		var m models.ClubMembership
		if err := rows.Scan(membershipDest(&m)...); err != nil {
			return nil, fmt.Errorf("failed to scan expired membership: %w", err)
		}
		expired = append(expired, &m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expired memberships: %w", err)
	}

	return expired, nil
}
