// Package service implements the club, club post and club membership use cases
// on top of the storage layer, the Buzz ledger and the read-model cache.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/clubserver/internal/database"
	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/events"
	"github.com/parsascontentcorner/clubserver/internal/ledger"
	"github.com/parsascontentcorner/clubserver/internal/models"
	"github.com/parsascontentcorner/clubserver/internal/policy"
)

// Queries is the storage surface the services use. *database.Queries implements it.
type Queries interface {
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)

	CreateClub(ctx context.Context, club *models.Club) error
	UpdateClub(ctx context.Context, club *models.Club) error
	GetClubByID(ctx context.Context, id int64) (*models.Club, error)
	GetClubAdmin(ctx context.Context, clubID, userID int64) (*models.ClubAdmin, error)
	ListClubAdmins(ctx context.Context, clubID int64) ([]*models.ClubAdmin, error)
	UpsertClubAdmin(ctx context.Context, admin *models.ClubAdmin) error
	DeleteClubAdmin(ctx context.Context, clubID, userID int64) error

	CreateImages(ctx context.Context, images []*models.Image) (map[string]*models.Image, error)

	CreateClubTiers(ctx context.Context, tiers []*models.ClubTier) error
	UpdateClubTiers(ctx context.Context, tiers []*models.ClubTier) error
	DeleteClubTiers(ctx context.Context, clubID int64, ids []int64) error
	CountTierMemberships(ctx context.Context, tierIDs []int64) (map[int64]int, error)
	ListClubTiers(ctx context.Context, clubID int64, includeUnlisted bool, now time.Time) ([]*models.TierWithCount, error)
	GetClubTierByID(ctx context.Context, id int64) (*models.ClubTier, error)
	GetClubTierForUpdate(ctx context.Context, id int64, now time.Time) (*models.TierWithCount, error)

	GetClubMembership(ctx context.Context, clubID, userID int64) (*models.ClubMembership, error)
	GetClubMembershipForUpdate(ctx context.Context, clubID, userID int64) (*models.ClubMembership, error)
	GetClubMembershipByIDForUpdate(ctx context.Context, id int64) (*models.ClubMembership, error)
	CreateClubMembership(ctx context.Context, m *models.ClubMembership) error
	UpdateClubMembership(ctx context.Context, m *models.ClubMembership) error
	DeleteClubMembership(ctx context.Context, id int64) error
	DeleteExpiredMemberships(ctx context.Context, now time.Time) ([]*models.ClubMembership, error)

	CreateClubPost(ctx context.Context, post *models.ClubPost) error
	UpdateClubPost(ctx context.Context, post *models.ClubPost) error
	GetClubPostVisibility(ctx context.Context, id int64) (*models.PostVisibility, error)
	GetClubPostByID(ctx context.Context, id int64) (*models.ClubPost, error)
	ListClubPosts(ctx context.Context, params database.ListClubPostsParams) ([]*models.ClubPost, error)
	DeleteClubPost(ctx context.Context, id int64) error
}

// Store is Queries plus transactions
type Store interface {
	Queries
	// InTx runs fn in one transaction, rolling back when fn returns an error.
	// fn receives a context bounded by the transaction timeout.
	InTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error
}

type dbStore struct {
	*database.DB
}

// NewStore adapts a database handle to the Store interface
func NewStore(db *database.DB) Store {
	return dbStore{DB: db}
}

func (s dbStore) InTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error {
	return s.DB.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		return fn(ctx, q)
	})
}

// Ledger moves Buzz between accounts. *ledger.Client implements it.
type Ledger interface {
	GetAccount(ctx context.Context, userID int64) (*ledger.Account, error)
	CreateTransaction(ctx context.Context, tx ledger.Transaction) (*ledger.TransactionResult, error)
}

// Cache is the read-model cache. Misses and failures both report ok=false;
// implementations log their own errors.
type Cache interface {
	GetClubTiers(ctx context.Context, clubID int64) ([]*models.TierWithCount, bool)
	SetClubTiers(ctx context.Context, clubID int64, tiers []*models.TierWithCount)
	InvalidateClubTiers(ctx context.Context, clubID int64)
	// GetMembership reports a cached "not a member" as (nil, true)
	GetMembership(ctx context.Context, clubID, userID int64) (*models.ClubMembership, bool)
	SetMembership(ctx context.Context, clubID, userID int64, m *models.ClubMembership)
	InvalidateMembership(ctx context.Context, clubID, userID int64)
}

// Publisher delivers domain events. Publishing never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Recorder receives service metrics
type Recorder interface {
	MembershipTransition(transition string)
	LedgerCharge(outcome string)
}

// Deps are the collaborators shared by the services. Store and Ledger are
// required; the rest fall back to no-ops.
type Deps struct {
	Store     Store
	Ledger    Ledger
	Cache     Cache
	Publisher Publisher
	Metrics   Recorder
	Logger    *zap.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = nopCache{}
	}
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Metrics == nil {
		d.Metrics = nopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

type nopCache struct{}

func (nopCache) GetClubTiers(context.Context, int64) ([]*models.TierWithCount, bool) {
	return nil, false
}
func (nopCache) SetClubTiers(context.Context, int64, []*models.TierWithCount) {}
func (nopCache) InvalidateClubTiers(context.Context, int64)                   {}
func (nopCache) GetMembership(context.Context, int64, int64) (*models.ClubMembership, bool) {
	return nil, false
}
func (nopCache) SetMembership(context.Context, int64, int64, *models.ClubMembership) {}
func (nopCache) InvalidateMembership(context.Context, int64, int64)                 {}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.Event) {}

type nopRecorder struct{}

func (nopRecorder) MembershipTransition(string) {}
func (nopRecorder) LedgerCharge(string)         {}

// ============================================================================
// Shared helpers
// ============================================================================

// requireViewer rejects anonymous callers of mutating operations
func requireViewer(viewer *models.Viewer) error {
	if viewer == nil || viewer.UserID == 0 {
		return fmt.Errorf("%w: sign in to continue", errs.ErrUnauthenticated)
	}
	return nil
}

// findMembership returns the viewer's membership on a club, nil when there is none.
// Expired memberships are deleted on read.
func findMembership(ctx context.Context, d Deps, clubID, userID int64) (*models.ClubMembership, error) {
	if userID == 0 {
		return nil, nil
	}

	if m, ok := d.Cache.GetMembership(ctx, clubID, userID); ok {
		if m == nil || !m.IsExpired(d.Now()) {
			return m, nil
		}
	}

	m, err := d.Store.GetClubMembership(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}

	if m != nil && m.IsExpired(d.Now()) {
		if err := d.Store.DeleteClubMembership(ctx, m.ID); err != nil {
			return nil, fmt.Errorf("failed to delete expired membership: %w", err)
		}
		d.Logger.Info("deleted expired membership on read",
			zap.Int64("membership_id", m.ID),
			zap.Int64("club_id", clubID),
			zap.Int64("user_id", userID),
		)
		d.Cache.InvalidateClubTiers(ctx, clubID)
		d.Publisher.Publish(ctx, events.New(events.MembershipExpired, clubID, userID, m.ID, d.Now()))
		d.Metrics.MembershipTransition(string(events.MembershipExpired))
		m = nil
	}

	d.Cache.SetMembership(ctx, clubID, userID, m)
	return m, nil
}

// rolesOn resolves the viewer's roles on a club
func rolesOn(ctx context.Context, d Deps, viewer *models.Viewer, club *models.Club) (policy.Roles, *models.ClubMembership, error) {
	if viewer == nil {
		return policy.RolesFor(nil, club, nil, nil, d.Now()), nil, nil
	}

	admin, err := d.Store.GetClubAdmin(ctx, club.ID, viewer.UserID)
	if err != nil {
		return policy.Roles{}, nil, err
	}

	membership, err := findMembership(ctx, d, club.ID, viewer.UserID)
	if err != nil {
		return policy.Roles{}, nil, err
	}

	return policy.RolesFor(viewer, club, admin, membership, d.Now()), membership, nil
}

// clubTiers returns every tier of a club with member counts, served from the cache when possible
func clubTiers(ctx context.Context, d Deps, clubID int64) ([]*models.TierWithCount, error) {
	if tiers, ok := d.Cache.GetClubTiers(ctx, clubID); ok {
		return tiers, nil
	}

	tiers, err := d.Store.ListClubTiers(ctx, clubID, true, d.Now())
	if err != nil {
		return nil, err
	}

	d.Cache.SetClubTiers(ctx, clubID, tiers)
	return tiers, nil
}
