package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

const tierColumns = `t.id, t.club_id, t.name, t.description, t.unit_amount, t.currency, t.member_limit,
		       t.cover_image_id, t.joinable, t.unlisted, t.created_at, t.updated_at`

func tierDest(tier *models.ClubTier) []any {
	return []any{
		&tier.ID,
		&tier.ClubID,
		&tier.Name,
		&tier.Description,
		&tier.UnitAmount,
		&tier.Currency,
		&tier.MemberLimit,
		&tier.CoverImageID,
		&tier.Joinable,
		&tier.Unlisted,
		&tier.CreatedAt,
		&tier.UpdatedAt,
	}
}

// CreateClubTiers inserts new tiers and fills in their IDs
func (q *Queries) CreateClubTiers(ctx context.Context, tiers []*models.ClubTier) error {
	query := `
		INSERT INTO club_tiers (club_id, name, description, unit_amount, currency, member_limit, cover_image_id, joinable, unlisted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	for _, tier := range tiers {
		if tier.Currency == "" {
			tier.Currency = models.DefaultCurrency
		}
		err := q.q.QueryRowContext(ctx, query,
			tier.ClubID,
			tier.Name,
			tier.Description,
			tier.UnitAmount,
			tier.Currency,
			tier.MemberLimit,
			tier.CoverImageID,
			tier.Joinable,
			tier.Unlisted,
		).Scan(&tier.ID, &tier.CreatedAt, &tier.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create club tier: %w", err)
		}
	}

	return nil
}

// UpdateClubTiers overwrites existing tiers. Each tier must belong to its ClubID.
func (q *Queries) UpdateClubTiers(ctx context.Context, tiers []*models.ClubTier) error {
	query := `
		UPDATE club_tiers
		SET name = $3,
		    description = $4,
		    unit_amount = $5,
		    currency = $6,
		    member_limit = $7,
		    cover_image_id = $8,
		    joinable = $9,
		    unlisted = $10,
		    updated_at = NOW()
		WHERE id = $1 AND club_id = $2
		RETURNING created_at, updated_at
	`

	for _, tier := range tiers {
		if tier.Currency == "" {
			tier.Currency = models.DefaultCurrency
		}
		err := q.q.QueryRowContext(ctx, query,
			tier.ID,
			tier.ClubID,
			tier.Name,
			tier.Description,
			tier.UnitAmount,
			tier.Currency,
			tier.MemberLimit,
			tier.CoverImageID,
			tier.Joinable,
			tier.Unlisted,
		).Scan(&tier.CreatedAt, &tier.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.NotFound(fmt.Sprintf("club tier %d", tier.ID))
			}
			return fmt.Errorf("failed to update club tier: %w", err)
		}
	}

	return nil
}

// DeleteClubTiers removes the given tiers of a club
func (q *Queries) DeleteClubTiers(ctx context.Context, clubID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := q.q.ExecContext(ctx, `DELETE FROM club_tiers WHERE club_id = $1 AND id = ANY($2)`, clubID, pq.Array(ids))
	if err != nil {
		if isForeignKeyViolation(err) {
			return errs.BadRequest("Cannot delete tier with members. Please move the members out of this tier before deleting it.")
		}
		return fmt.Errorf("failed to delete club tiers: %w", err)
	}

	return nil
}

// CountTierMemberships counts every membership row per tier, expired or not
func (q *Queries) CountTierMemberships(ctx context.Context, tierIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(tierIDs))
	if len(tierIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT club_tier_id, COUNT(*)
		FROM club_memberships
		WHERE club_tier_id = ANY($1)
		GROUP BY club_tier_id
	`

	rows, err := q.q.QueryContext(ctx, query, pq.Array(tierIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count tier memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tierID int64
		var count int
		if err := rows.Scan(&tierID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tier membership count: %w", err)
		}
		counts[tierID] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tier membership counts: %w", err)
	}

	return counts, nil
}

// ListClubTiers retrieves the tiers of a club, cheapest first, with the number
// of spots taken at now: unexpired memberships on the tier plus pending
// downgrades into it
func (q *Queries) ListClubTiers(ctx context.Context, clubID int64, includeUnlisted bool, now time.Time) ([]*models.TierWithCount, error) {
	query := `
		SELECT ` + tierColumns + `,
		       (SELECT COUNT(*) FROM club_memberships m
		        WHERE (m.club_tier_id = t.id OR m.downgrade_club_tier_id = t.id)
		          AND (m.expires_at IS NULL OR m.expires_at > $3))
		FROM club_tiers t
		WHERE t.club_id = $1 AND ($2::boolean OR NOT t.unlisted)
		ORDER BY t.unit_amount ASC, t.id ASC
	`

	rows, err := q.q.QueryContext(ctx, query, clubID, includeUnlisted, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query club tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*models.TierWithCount
	for rows.Next() {
		var tier models.TierWithCount
		if err := rows.Scan(append(tierDest(&tier.ClubTier), &tier.MemberCount)...); err != nil {
			return nil, fmt.Errorf("failed to scan club tier: %w", err)
		}
		tiers = append(tiers, &tier)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating club tiers: %w", err)
	}

	return tiers, nil
}

// GetClubTierByID retrieves a tier by its ID
func (q *Queries) GetClubTierByID(ctx context.Context, id int64) (*models.ClubTier, error) {
	query := `
		SELECT ` + tierColumns + `
		FROM club_tiers t
		WHERE t.id = $1
	`

	var tier models.ClubTier
	err := q.q.QueryRowContext(ctx, query, id).Scan(tierDest(&tier)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("club tier")
		}
		return nil, fmt.Errorf("failed to get club tier: %w", err)
	}

	return &tier, nil
}

// GetClubTierForUpdate locks a tier row for the rest of the transaction and
// returns it with its taken spots, counted like ListClubTiers
func (q *Queries) GetClubTierForUpdate(ctx context.Context, id int64, now time.Time) (*models.TierWithCount, error) {
	query := `
		SELECT ` + tierColumns + `
		FROM club_tiers t
		WHERE t.id = $1
		FOR UPDATE
	`

	var tier models.TierWithCount
	err := q.q.QueryRowContext(ctx, query, id).Scan(tierDest(&tier.ClubTier)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("club tier")
		}
		return nil, fmt.Errorf("failed to lock club tier: %w", err)
	}

	countQuery := `
		SELECT COUNT(*)
		FROM club_memberships
		WHERE (club_tier_id = $1 OR downgrade_club_tier_id = $1)
		  AND (expires_at IS NULL OR expires_at > $2)
	`
	if err := q.q.QueryRowContext(ctx, countQuery, id, now).Scan(&tier.MemberCount); err != nil {
		return nil, fmt.Errorf("failed to count club tier members: %w", err)
	}

	return &tier, nil
}
