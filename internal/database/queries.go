package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// CreateUser creates a new user or updates it if the username exists
func (q *Queries) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, is_moderator, muted)
		VALUES ($1, $2, $3)
		ON CONFLICT (username)
		DO UPDATE SET
			is_moderator = EXCLUDED.is_moderator,
			muted = EXCLUDED.muted,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.q.QueryRowContext(ctx, query,
		user.Username,
		user.IsModerator,
		user.Muted,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by internal ID
func (q *Queries) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, username, is_moderator, muted, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := q.q.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.IsModerator,
		&user.Muted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// CreateSession stores a session issued by the auth service
func (q *Queries) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (session_id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := q.q.QueryRowContext(ctx, query,
		session.SessionID,
		session.UserID,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSessionViewer resolves an unexpired session to the viewer it belongs to
func (q *Queries) GetSessionViewer(ctx context.Context, sessionID string) (*models.SessionViewer, error) {
	query := `
		SELECT u.id, u.is_moderator, u.muted, s.expires_at
		FROM sessions s
		INNER JOIN users u ON u.id = s.user_id
		WHERE s.session_id = $1 AND s.expires_at > NOW()
	`

	viewer := &models.SessionViewer{}
	err := q.q.QueryRowContext(ctx, query, sessionID).Scan(
		&viewer.UserID,
		&viewer.IsModerator,
		&viewer.Muted,
		&viewer.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("session")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return viewer, nil
}

// CleanupExpiredSessions deletes expired sessions and returns how many were removed
func (q *Queries) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	result, err := q.q.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n, nil
}
