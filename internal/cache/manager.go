package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/clubserver/internal/models"
)

// Manager caches tier lists and memberships. Failures are logged and
// reported as misses so the caller falls back to the database.
type Manager struct {
	client        *RedisClient
	tierTTL       time.Duration
	membershipTTL time.Duration
	logger        *zap.Logger
}

// membershipEntry distinguishes a cached "not a member" from a miss
type membershipEntry struct {
	Membership *models.ClubMembership `json:"membership"`
}

// NewManager creates a new cache manager
func NewManager(client *RedisClient, tierTTL, membershipTTL time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		client:        client,
		tierTTL:       tierTTL,
		membershipTTL: membershipTTL,
		logger:        logger,
	}
}

func tiersKey(clubID int64) string {
	return fmt.Sprintf("club:%d:tiers", clubID)
}

func membershipKey(clubID, userID int64) string {
	return fmt.Sprintf("club:%d:membership:%d", clubID, userID)
}

// GetClubTiers returns the cached tiers of a club
func (m *Manager) GetClubTiers(ctx context.Context, clubID int64) ([]*models.TierWithCount, bool) {
	var tiers []*models.TierWithCount
	if err := m.client.getJSON(ctx, tiersKey(clubID), &tiers); err != nil {
		m.logMiss("tier cache", err, zap.Int64("club_id", clubID))
		return nil, false
	}

	m.logger.Debug("tier cache hit", zap.Int64("club_id", clubID))
	return tiers, true
}

// SetClubTiers caches the tiers of a club
func (m *Manager) SetClubTiers(ctx context.Context, clubID int64, tiers []*models.TierWithCount) {
	if err := m.client.setJSON(ctx, tiersKey(clubID), tiers, m.tierTTL); err != nil {
		m.logger.Warn("failed to set tier cache", zap.Int64("club_id", clubID), zap.Error(err))
	}
}

// InvalidateClubTiers drops the cached tiers of a club
func (m *Manager) InvalidateClubTiers(ctx context.Context, clubID int64) {
	if err := m.client.del(ctx, tiersKey(clubID)); err != nil {
		m.logger.Warn("failed to invalidate tier cache", zap.Int64("club_id", clubID), zap.Error(err))
	}
}

// GetMembership returns the cached membership of a user on a club. A cached
// non-member is returned as (nil, true).
func (m *Manager) GetMembership(ctx context.Context, clubID, userID int64) (*models.ClubMembership, bool) {
	var entry membershipEntry
	if err := m.client.getJSON(ctx, membershipKey(clubID, userID), &entry); err != nil {
		m.logMiss("membership cache", err, zap.Int64("club_id", clubID), zap.Int64("user_id", userID))
		return nil, false
	}

	m.logger.Debug("membership cache hit", zap.Int64("club_id", clubID), zap.Int64("user_id", userID))
	return entry.Membership, true
}

// SetMembership caches the membership of a user on a club, nil for non-members
func (m *Manager) SetMembership(ctx context.Context, clubID, userID int64, membership *models.ClubMembership) {
	entry := membershipEntry{Membership: membership}
	if err := m.client.setJSON(ctx, membershipKey(clubID, userID), entry, m.membershipTTL); err != nil {
		m.logger.Warn("failed to set membership cache",
			zap.Int64("club_id", clubID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

// InvalidateMembership drops the cached membership of a user on a club
func (m *Manager) InvalidateMembership(ctx context.Context, clubID, userID int64) {
	if err := m.client.del(ctx, membershipKey(clubID, userID)); err != nil {
		m.logger.Warn("failed to invalidate membership cache",
			zap.Int64("club_id", clubID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

func (m *Manager) logMiss(what string, err error, fields ...zap.Field) {
	if errors.Is(err, errMiss) {
		m.logger.Debug(what+" miss", fields...)
		return
	}
	m.logger.Warn(what+" read failed", append(fields, zap.Error(err))...)
}
