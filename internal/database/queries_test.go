package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// ============================================================================
// Helper Functions
// ============================================================================

func createTestUser(t *testing.T, ctx context.Context, db *DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, db.CreateUser(ctx, user))
	return user
}

func createTestClub(t *testing.T, ctx context.Context, db *DB, owner *models.User) *models.Club {
	t.Helper()
	club := &models.Club{
		UserID:      owner.ID,
		Name:        fmt.Sprintf("%s's club", owner.Username),
		Description: "A test club",
		Billing:     true,
	}
	require.NoError(t, db.CreateClub(ctx, club))
	return club
}

func createTestTier(t *testing.T, ctx context.Context, db *DB, club *models.Club, name string, amount int64, limit sql.NullInt64) *models.ClubTier {
	t.Helper()
	tier := &models.ClubTier{
		ClubID:      club.ID,
		Name:        name,
		UnitAmount:  amount,
		MemberLimit: limit,
		Joinable:    true,
	}
	require.NoError(t, db.CreateClubTiers(ctx, []*models.ClubTier{tier}))
	return tier
}

func createTestMembership(t *testing.T, ctx context.Context, db *DB, user *models.User, tier *models.ClubTier) *models.ClubMembership {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	m := &models.ClubMembership{
		UserID:        user.ID,
		ClubID:        tier.ClubID,
		ClubTierID:    tier.ID,
		UnitAmount:    tier.UnitAmount,
		StartedAt:     now,
		NextBillingAt: now.AddDate(0, 1, 0),
	}
	require.NoError(t, db.CreateClubMembership(ctx, m))
	return m
}

// ============================================================================
// User Tests
// ============================================================================

func TestCreateUser_Upsert(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupTestDB(ctx)
	require.NoError(t, err)
	defer cleanup()

	user := createTestUser(t, ctx, db, "alice")
	assert.NotZero(t, user.ID)

	// Upsert with same username flips the flags
	again := &models.User{Username: "alice", IsModerator: true, Muted: true}
	require.NoError(t, db.CreateUser(ctx, again))
	assert.Equal(t, user.ID, again.ID)

	fetched, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsModerator)
	assert.True(t, fetched.Muted)
}

func TestGetUserByID_NotFound(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupTestDB(ctx)
	require.NoError(t, err)
	defer cleanup()

	user, err := db.GetUserByID(ctx, 99999)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

// ============================================================================
// Session Tests
// ============================================================================

func TestGetSessionViewer(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupTestDB(ctx)
	require.NoError(t, err)
	defer cleanup()

	mod := &models.User{Username: "mod", IsModerator: true}
	require.NoError(t, db.CreateUser(ctx, mod))

	valid := &models.Session{SessionID: uuid.NewString(), UserID: mod.ID, ExpiresAt: time.Now().Add(time.Hour)}
	expired := &models.Session{SessionID: uuid.NewString(), UserID: mod.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.CreateSession(ctx, valid))
	require.NoError(t, db.CreateSession(ctx, expired))

	viewer, err := db.GetSessionViewer(ctx, valid.SessionID)
	require.NoError(t, err)
	assert.Equal(t, mod.ID, viewer.UserID)
	assert.True(t, viewer.IsModerator)
	assert.WithinDuration(t, valid.ExpiresAt, viewer.ExpiresAt, time.Millisecond)

	_, err = db.GetSessionViewer(ctx, expired.SessionID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	removed, err := db.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = db.GetSessionViewer(ctx, valid.SessionID)
	assert.NoError(t, err, "valid sessions survive cleanup")
}
