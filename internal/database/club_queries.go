package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

const clubColumns = `id, user_id, name, description, nsfw, billing, unlisted,
		       avatar_id, cover_image_id, header_image_id, created_at, updated_at`

func scanClub(row interface{ Scan(dest ...any) error }) (*models.Club, error) {
	var club models.Club
	err := row.Scan(
		&club.ID,
		&club.UserID,
		&club.Name,
		&club.Description,
		&club.NSFW,
		&club.Billing,
		&club.Unlisted,
		&club.AvatarID,
		&club.CoverImageID,
		&club.HeaderImageID,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// CreateClub inserts a club owned by club.UserID
func (q *Queries) CreateClub(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (user_id, name, description, nsfw, billing, unlisted, avatar_id, cover_image_id, header_image_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := q.q.QueryRowContext(
		ctx,
		query,
		club.UserID,
		club.Name,
		club.Description,
		club.NSFW,
		club.Billing,
		club.Unlisted,
		club.AvatarID,
		club.CoverImageID,
		club.HeaderImageID,
	).Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create club: %w", err)
	}

	return nil
}

// UpdateClub overwrites the editable fields of a club
func (q *Queries) UpdateClub(ctx context.Context, club *models.Club) error {
	query := `
		UPDATE clubs
		SET name = $2,
		    description = $3,
		    nsfw = $4,
		    billing = $5,
		    unlisted = $6,
		    avatar_id = $7,
		    cover_image_id = $8,
		    header_image_id = $9,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING user_id, created_at, updated_at
	`

	err := q.q.QueryRowContext(
		ctx,
		query,
		club.ID,
		club.Name,
		club.Description,
		club.NSFW,
		club.Billing,
		club.Unlisted,
		club.AvatarID,
		club.CoverImageID,
		club.HeaderImageID,
	).Scan(&club.UserID, &club.CreatedAt, &club.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("club")
		}
		return fmt.Errorf("failed to update club: %w", err)
	}

	return nil
}

// GetClubByID retrieves a club by its ID
func (q *Queries) GetClubByID(ctx context.Context, id int64) (*models.Club, error) {
	query := `
		SELECT ` + clubColumns + `
		FROM clubs
		WHERE id = $1
	`

	club, err := scanClub(q.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("club")
		}
		return nil, fmt.Errorf("failed to get club: %w", err)
	}

	return club, nil
}

// GetClubAdmin returns the admin grant of userID on clubID, or nil if there is none
func (q *Queries) GetClubAdmin(ctx context.Context, clubID, userID int64) (*models.ClubAdmin, error) {
	query := `
		SELECT club_id, user_id, permissions, created_at
		FROM club_admins
		WHERE club_id = $1 AND user_id = $2
	`

	var admin models.ClubAdmin
	err := q.q.QueryRowContext(ctx, query, clubID, userID).Scan(
		&admin.ClubID,
		&admin.UserID,
		&admin.Permissions,
		&admin.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get club admin: %w", err)
	}

	return &admin, nil
}

// ListClubAdmins retrieves every admin of a club
func (q *Queries) ListClubAdmins(ctx context.Context, clubID int64) ([]*models.ClubAdmin, error) {
	query := `
		SELECT club_id, user_id, permissions, created_at
		FROM club_admins
		WHERE club_id = $1
		ORDER BY created_at ASC, user_id ASC
	`

	rows, err := q.q.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query club admins: %w", err)
	}
	defer rows.Close()

	var admins []*models.ClubAdmin
	for rows.Next() {
		var admin models.ClubAdmin
		if err := rows.Scan(&admin.ClubID, &admin.UserID, &admin.Permissions, &admin.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan club admin: %w", err)
		}
		admins = append(admins, &admin)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating club admins: %w", err)
	}

	return admins, nil
}

// UpsertClubAdmin grants or replaces the permissions of a club admin
func (q *Queries) UpsertClubAdmin(ctx context.Context, admin *models.ClubAdmin) error {
	query := `
		INSERT INTO club_admins (club_id, user_id, permissions)
		VALUES ($1, $2, $3)
		ON CONFLICT (club_id, user_id) DO UPDATE
		SET permissions = EXCLUDED.permissions
		RETURNING created_at
	`

	err := q.q.QueryRowContext(ctx, query, admin.ClubID, admin.UserID, admin.Permissions).Scan(&admin.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errs.NotFound("club or user")
		}
		return fmt.Errorf("failed to upsert club admin: %w", err)
	}

	return nil
}

// DeleteClubAdmin revokes an admin grant
func (q *Queries) DeleteClubAdmin(ctx context.Context, clubID, userID int64) error {
	result, err := q.q.ExecContext(ctx, `DELETE FROM club_admins WHERE club_id = $1 AND user_id = $2`, clubID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete club admin: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errs.NotFound("club admin")
	}

	return nil
}
