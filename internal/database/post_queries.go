package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

const postColumns = `p.id, p.club_id, p.created_by_id, p.title, p.description, p.members_only,
		       p.cover_image_id, p.created_at, p.updated_at`

func postDest(post *models.ClubPost) []any {
	return []any{
		&post.ID,
		&post.ClubID,
		&post.CreatedByID,
		&post.Title,
		&post.Description,
		&post.MembersOnly,
		&post.CoverImageID,
		&post.CreatedAt,
		&post.UpdatedAt,
	}
}

// ListClubPostsParams selects a page of club posts
type ListClubPostsParams struct {
	ClubID int64
	// Cursor is the ID of the first post of the page, 0 for the newest
	Cursor int64
	Limit  int
	// IncludeMembersOnly also returns members-only posts
	IncludeMembersOnly bool
}

// CreateClubPost inserts a post
func (q *Queries) CreateClubPost(ctx context.Context, post *models.ClubPost) error {
	query := `
		INSERT INTO club_posts (club_id, created_by_id, title, description, members_only, cover_image_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := q.q.QueryRowContext(ctx, query,
		post.ClubID,
		post.CreatedByID,
		post.Title,
		post.Description,
		post.MembersOnly,
		post.CoverImageID,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create club post: %w", err)
	}

	return nil
}

// UpdateClubPost overwrites the editable fields of a post
func (q *Queries) UpdateClubPost(ctx context.Context, post *models.ClubPost) error {
	query := `
		UPDATE club_posts
		SET title = $2,
		    description = $3,
		    members_only = $4,
		    cover_image_id = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING club_id, created_by_id, created_at, updated_at
	`

	err := q.q.QueryRowContext(ctx, query,
		post.ID,
		post.Title,
		post.Description,
		post.MembersOnly,
		post.CoverImageID,
	).Scan(&post.ClubID, &post.CreatedByID, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("club post")
		}
		return fmt.Errorf("failed to update club post: %w", err)
	}

	return nil
}

// GetClubPostVisibility fetches only the fields needed to authorize reading a post
func (q *Queries) GetClubPostVisibility(ctx context.Context, id int64) (*models.PostVisibility, error) {
	query := `
		SELECT id, club_id, created_by_id, members_only
		FROM club_posts
		WHERE id = $1
	`

	var v models.PostVisibility
	err := q.q.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.ClubID, &v.CreatedByID, &v.MembersOnly)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("club post")
		}
		return nil, fmt.Errorf("failed to get club post visibility: %w", err)
	}

	return &v, nil
}

// GetClubPostByID retrieves a full post by its ID
func (q *Queries) GetClubPostByID(ctx context.Context, id int64) (*models.ClubPost, error) {
	query := `
		SELECT ` + postColumns + `
		FROM club_posts p
		WHERE p.id = $1
	`

	var post models.ClubPost
	err := q.q.QueryRowContext(ctx, query, id).Scan(postDest(&post)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("club post")
		}
		return nil, fmt.Errorf("failed to get club post: %w", err)
	}

	return &post, nil
}

// ListClubPosts retrieves a page of posts, newest first. The page starts at
// the cursor post itself and is ordered by (created_at, id) descending.
func (q *Queries) ListClubPosts(ctx context.Context, params ListClubPostsParams) ([]*models.ClubPost, error) {
	query := `
		SELECT ` + postColumns + `
		FROM club_posts p
		WHERE p.club_id = $1
		  AND ($2::boolean OR NOT p.members_only)
		  AND ($3::bigint = 0 OR (p.created_at, p.id) <= (
		      SELECT c.created_at, c.id FROM club_posts c WHERE c.id = $3::bigint
		  ))
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $4
	`

	rows, err := q.q.QueryContext(ctx, query, params.ClubID, params.IncludeMembersOnly, params.Cursor, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query club posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.ClubPost
	for rows.Next() {
		var post models.ClubPost
		if err := rows.Scan(postDest(&post)...); err != nil {
			return nil, fmt.Errorf("failed to scan club post: %w", err)
		}
		posts = append(posts, &post)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating club posts: %w", err)
	}

	return posts, nil
}

// DeleteClubPost removes a post
func (q *Queries) DeleteClubPost(ctx context.Context, id int64) error {
	result, err := q.q.ExecContext(ctx, `DELETE FROM club_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete club post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errs.NotFound("club post")
	}

	return nil
}
