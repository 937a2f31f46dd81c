package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/events"
	"github.com/parsascontentcorner/clubserver/internal/models"
	"github.com/parsascontentcorner/clubserver/internal/policy"
)

// msgTierHasMembers is returned when deleting a tier that still has members
const msgTierHasMembers = "Cannot delete tier with members. Please move the members out of this tier before deleting it."

// ClubInput carries the editable fields of a club. On update a nil image
// leaves the current one in place; the Remove flags clear it.
type ClubInput struct {
	Name        string
	Description string
	NSFW        bool
	Billing     bool
	Unlisted    bool

	Avatar      *models.ImageInput
	CoverImage  *models.ImageInput
	HeaderImage *models.ImageInput

	RemoveAvatar      bool
	RemoveCoverImage  bool
	RemoveHeaderImage bool
}

// TierInput creates a tier when ID is nil and updates it otherwise
type TierInput struct {
	ID          *int64
	Name        string
	Description string
	UnitAmount  int64
	Currency    string
	MemberLimit *int64
	Joinable    bool
	Unlisted    bool
	// CoverImage nil keeps the current cover on update
	CoverImage       *models.ImageInput
	RemoveCoverImage bool
}

// TierView is a tier as seen by one viewer
type TierView struct {
	Tier *models.TierWithCount
	// RemainingSpots is nil for tiers without a member limit
	RemainingSpots *int
	Action         policy.TierAction
}

// ClubDetails is the club read model returned to a viewer
type ClubDetails struct {
	Club  *models.Club
	Tiers []TierView
	// Admins is only filled for the owner and moderators
	Admins     []*models.ClubAdmin
	Membership *models.ClubMembership
	Roles      policy.Roles
}

// ClubService manages clubs, their tiers and their admins
type ClubService struct {
	deps Deps
}

// NewClubService creates a new club service
func NewClubService(deps Deps) *ClubService {
	return &ClubService{deps: deps.withDefaults()}
}

// ============================================================================
// Club Operations
// ============================================================================

// CreateClub creates a club owned by the viewer together with its initial tiers
func (s *ClubService) CreateClub(ctx context.Context, viewer *models.Viewer, in ClubInput, tiers []TierInput) (*models.Club, error) {
	s.deps.Logger.Debug("CreateClub called", zap.Int64("user_id", viewer.ID()), zap.Int("tier_count", len(tiers)))

	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if viewer.Muted {
		return nil, errs.Authorization("muted users cannot create clubs")
	}
	if err := validateClubInput(in); err != nil {
		return nil, err
	}
	for _, t := range tiers {
		if t.ID != nil {
			return nil, errs.BadRequest("new clubs cannot reference existing tiers")
		}
	}

	club := &models.Club{
		UserID:      viewer.UserID,
		Name:        in.Name,
		Description: in.Description,
		NSFW:        in.NSFW,
		Billing:     in.Billing,
		Unlisted:    in.Unlisted,
	}

	err := s.deps.Store.InTx(ctx, func(ctx context.Context, q Queries) error {
		images, err := createPendingImages(ctx, q, club.UserID, append([]*models.ImageInput{in.Avatar, in.CoverImage, in.HeaderImage}, tierImages(tiers)...)...)
		if err != nil {
			return err
		}

		if club.AvatarID, err = resolveImage(in.Avatar, images); err != nil {
			return err
		}
		if club.CoverImageID, err = resolveImage(in.CoverImage, images); err != nil {
			return err
		}
		if club.HeaderImageID, err = resolveImage(in.HeaderImage, images); err != nil {
			return err
		}

		if err := q.CreateClub(ctx, club); err != nil {
			return err
		}

		return s.upsertTiers(ctx, q, club, tiers, nil, images)
	})
	if err != nil {
		s.deps.Logger.Error("failed to create club", zap.Int64("user_id", viewer.UserID), zap.Error(err))
		return nil, err
	}

	s.deps.Logger.Info("club created",
		zap.Int64("club_id", club.ID),
		zap.Int64("user_id", club.UserID),
		zap.Int("tier_count", len(tiers)),
	)
	s.deps.Publisher.Publish(ctx, events.New(events.ClubCreated, club.ID, club.UserID, club.ID, s.deps.Now()))

	return club, nil
}

// UpdateClub updates a club and, in the same transaction, applies a tier diff.
// Changing tiers additionally needs the manage tiers capability.
func (s *ClubService) UpdateClub(ctx context.Context, viewer *models.Viewer, clubID int64, in ClubInput, tiers []TierInput, deleteTierIDs []int64) (*models.Club, error) {
	s.deps.Logger.Debug("UpdateClub called", zap.Int64("club_id", clubID), zap.Int64("user_id", viewer.ID()))

	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if err := validateClubInput(in); err != nil {
		return nil, err
	}

	club, err := s.deps.Store.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, err
	}

	roles, _, err := rolesOn(ctx, s.deps, viewer, club)
	if err != nil {
		return nil, err
	}
	if err := roles.Require(policy.ActionManageClub, policy.Target{}); err != nil {
		return nil, err
	}
	tiersChanged := len(tiers) > 0 || len(deleteTierIDs) > 0
	if tiersChanged {
		if err := roles.Require(policy.ActionManageTiers, policy.Target{}); err != nil {
			return nil, err
		}
	}

	club.Name = in.Name
	club.Description = in.Description
	club.NSFW = in.NSFW
	club.Billing = in.Billing
	club.Unlisted = in.Unlisted

	err = s.deps.Store.InTx(ctx, func(ctx context.Context, q Queries) error {
		images, err := createPendingImages(ctx, q, club.UserID, append([]*models.ImageInput{in.Avatar, in.CoverImage, in.HeaderImage}, tierImages(tiers)...)...)
		if err != nil {
			return err
		}

		if club.AvatarID, err = updatedImage(club.AvatarID, in.Avatar, in.RemoveAvatar, images); err != nil {
			return err
		}
		if club.CoverImageID, err = updatedImage(club.CoverImageID, in.CoverImage, in.RemoveCoverImage, images); err != nil {
			return err
		}
		if club.HeaderImageID, err = updatedImage(club.HeaderImageID, in.HeaderImage, in.RemoveHeaderImage, images); err != nil {
			return err
		}

		if err := q.UpdateClub(ctx, club); err != nil {
			return err
		}

		if !tiersChanged {
			return nil
		}
		return s.upsertTiers(ctx, q, club, tiers, deleteTierIDs, images)
	})
	if err != nil {
		s.deps.Logger.Error("failed to update club", zap.Int64("club_id", clubID), zap.Error(err))
		return nil, err
	}

	if tiersChanged {
		s.deps.Cache.InvalidateClubTiers(ctx, club.ID)
	}

	s.deps.Logger.Info("club updated", zap.Int64("club_id", club.ID), zap.Bool("tiers_changed", tiersChanged))
	s.deps.Publisher.Publish(ctx, events.New(events.ClubUpdated, club.ID, viewer.UserID, club.ID, s.deps.Now()))

	return club, nil
}

// GetClub returns the club with the tiers the viewer may see and the action
// each tier offers them
func (s *ClubService) GetClub(ctx context.Context, viewer *models.Viewer, clubID int64) (*ClubDetails, error) {
	s.deps.Logger.Debug("GetClub called", zap.Int64("club_id", clubID), zap.Int64("user_id", viewer.ID()))

	var (
		club   *models.Club
		tiers  []*models.TierWithCount
		admins []*models.ClubAdmin
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		club, err = s.deps.Store.GetClubByID(gctx, clubID)
		return err
	})
	g.Go(func() error {
		var err error
		tiers, err = clubTiers(gctx, s.deps, clubID)
		return err
	})
	g.Go(func() error {
		var err error
		admins, err = s.deps.Store.ListClubAdmins(gctx, clubID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	roles, membership, err := rolesOn(ctx, s.deps, viewer, club)
	if err != nil {
		return nil, err
	}

	details := &ClubDetails{
		Club:       club,
		Tiers:      s.tierViews(roles, membership, tiers),
		Membership: membership,
		Roles:      roles,
	}
	if roles.IsOwner || roles.IsModerator {
		details.Admins = admins
	}

	return details, nil
}

// ListClubTiers returns the tiers of a club the viewer may see, cheapest first
func (s *ClubService) ListClubTiers(ctx context.Context, viewer *models.Viewer, clubID int64) ([]TierView, error) {
	s.deps.Logger.Debug("ListClubTiers called", zap.Int64("club_id", clubID), zap.Int64("user_id", viewer.ID()))

	club, err := s.deps.Store.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, err
	}

	tiers, err := clubTiers(ctx, s.deps, clubID)
	if err != nil {
		return nil, err
	}

	roles, membership, err := rolesOn(ctx, s.deps, viewer, club)
	if err != nil {
		return nil, err
	}

	return s.tierViews(roles, membership, tiers), nil
}

// UpsertClubTiers creates, updates and deletes tiers of a club in one transaction
func (s *ClubService) UpsertClubTiers(ctx context.Context, viewer *models.Viewer, clubID int64, tiers []TierInput, deleteTierIDs []int64) ([]*models.TierWithCount, error) {
	s.deps.Logger.Debug("UpsertClubTiers called",
		zap.Int64("club_id", clubID),
		zap.Int("tier_count", len(tiers)),
		zap.Int64s("delete_tier_ids", deleteTierIDs),
	)

	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	club, err := s.deps.Store.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, err
	}

	roles, _, err := rolesOn(ctx, s.deps, viewer, club)
	if err != nil {
		return nil, err
	}
	if err := roles.Require(policy.ActionManageTiers, policy.Target{}); err != nil {
		return nil, err
	}

	err = s.deps.Store.InTx(ctx, func(ctx context.Context, q Queries) error {
		images, err := createPendingImages(ctx, q, club.UserID, tierImages(tiers)...)
		if err != nil {
			return err
		}
		return s.upsertTiers(ctx, q, club, tiers, deleteTierIDs, images)
	})
	if err != nil {
		s.deps.Logger.Error("failed to upsert club tiers", zap.Int64("club_id", clubID), zap.Error(err))
		return nil, err
	}

	s.deps.Cache.InvalidateClubTiers(ctx, club.ID)

	s.deps.Logger.Info("club tiers updated", zap.Int64("club_id", club.ID))
	s.deps.Publisher.Publish(ctx, events.New(events.ClubTiersUpdated, club.ID, viewer.UserID, club.ID, s.deps.Now()))

	return clubTiers(ctx, s.deps, club.ID)
}

// upsertTiers applies a tier diff: deletes first, then creates tiers without
// an id, then updates the rest. Tiers with members cannot be deleted.
func (s *ClubService) upsertTiers(ctx context.Context, q Queries, club *models.Club, inputs []TierInput, deleteIDs []int64, images map[string]*models.Image) error {
	existing, err := q.ListClubTiers(ctx, club.ID, true, s.deps.Now())
	if err != nil {
		return err
	}
	byID := make(map[int64]*models.TierWithCount, len(existing))
	for _, t := range existing {
		byID[t.ID] = t
	}

	deleting := make(map[int64]bool, len(deleteIDs))
	for _, id := range deleteIDs {
		if _, ok := byID[id]; !ok {
			return errs.BadRequest(fmt.Sprintf("tier %d does not belong to this club", id))
		}
		deleting[id] = true
	}

	var toCreate, toUpdate []*models.ClubTier
	for _, in := range inputs {
		if err := validateTierInput(in); err != nil {
			return err
		}

		cover, err := resolveImage(in.CoverImage, images)
		if err != nil {
			return err
		}

		tier := &models.ClubTier{
			ClubID:       club.ID,
			Name:         in.Name,
			Description:  in.Description,
			UnitAmount:   in.UnitAmount,
			Currency:     in.Currency,
			CoverImageID: cover,
			Joinable:     in.Joinable,
			Unlisted:     in.Unlisted,
		}
		if in.MemberLimit != nil {
			tier.MemberLimit = sql.NullInt64{Int64: *in.MemberLimit, Valid: true}
		}

		if in.ID == nil {
			toCreate = append(toCreate, tier)
			continue
		}

		current, ok := byID[*in.ID]
		if !ok {
			return errs.BadRequest(fmt.Sprintf("tier %d does not belong to this club", *in.ID))
		}
		if deleting[*in.ID] {
			return errs.BadRequest(fmt.Sprintf("tier %d cannot be updated and deleted at once", *in.ID))
		}
		tier.ID = *in.ID
		if in.CoverImage == nil && !in.RemoveCoverImage {
			tier.CoverImageID = current.CoverImageID
		}
		toUpdate = append(toUpdate, tier)
	}

	if len(deleteIDs) > 0 {
		counts, err := q.CountTierMemberships(ctx, deleteIDs)
		if err != nil {
			return err
		}
		for _, id := range deleteIDs {
			if counts[id] > 0 {
				return errs.BadRequest(msgTierHasMembers)
			}
		}
		if err := q.DeleteClubTiers(ctx, club.ID, deleteIDs); err != nil {
			return err
		}
	}

	if len(toCreate) > 0 {
		if err := q.CreateClubTiers(ctx, toCreate); err != nil {
			return err
		}
	}
	if len(toUpdate) > 0 {
		if err := q.UpdateClubTiers(ctx, toUpdate); err != nil {
			return err
		}
	}

	s.deps.Logger.Debug("applied tier diff",
		zap.Int64("club_id", club.ID),
		zap.Int("created", len(toCreate)),
		zap.Int("updated", len(toUpdate)),
		zap.Int("deleted", len(deleteIDs)),
	)

	return nil
}

// tierViews filters the tiers a viewer may see and derives their actions.
// Unlisted tiers are shown to tier managers and to members of that tier.
func (s *ClubService) tierViews(roles policy.Roles, membership *models.ClubMembership, tiers []*models.TierWithCount) []TierView {
	canManage := roles.Can(policy.ActionManageTiers, policy.Target{})
	now := s.deps.Now()

	views := make([]TierView, 0, len(tiers))
	for _, t := range tiers {
		isOwnTier := membership != nil && membership.ClubTierID == t.ID
		if t.Unlisted && !canManage && !isOwnTier {
			continue
		}

		view := TierView{Tier: t}
		if remaining, limited := t.RemainingSpots(); limited {
			view.RemainingSpots = &remaining
		}
		view.Action = policy.DeriveTierAction(roles, membership, &t.ClubTier, view.RemainingSpots, now)
		views = append(views, view)
	}
	return views
}

// ============================================================================
// Club Admin Operations
// ============================================================================

// UpsertClubAdmin grants a user admin permissions on a club
func (s *ClubService) UpsertClubAdmin(ctx context.Context, viewer *models.Viewer, clubID, userID int64, permissions []models.ClubAdminPermission) (*models.ClubAdmin, error) {
	s.deps.Logger.Debug("UpsertClubAdmin called", zap.Int64("club_id", clubID), zap.Int64("admin_user_id", userID))

	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	club, err := s.deps.Store.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, err
	}

	roles, _, err := rolesOn(ctx, s.deps, viewer, club)
	if err != nil {
		return nil, err
	}
	if err := roles.Require(policy.ActionManageAdmins, policy.Target{}); err != nil {
		return nil, err
	}

	if userID == club.UserID {
		return nil, errs.BadRequest("the club owner already holds every permission")
	}
	if len(permissions) == 0 {
		return nil, errs.BadRequest("at least one permission is required")
	}

	granted := make([]string, 0, len(permissions))
	seen := make(map[models.ClubAdminPermission]bool, len(permissions))
	for _, p := range permissions {
		if !p.Valid() {
			return nil, errs.BadRequest(fmt.Sprintf("unknown permission %q", p))
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		granted = append(granted, string(p))
	}

	admin := &models.ClubAdmin{ClubID: clubID, UserID: userID, Permissions: granted}
	if err := s.deps.Store.UpsertClubAdmin(ctx, admin); err != nil {
		s.deps.Logger.Error("failed to upsert club admin", zap.Int64("club_id", clubID), zap.Error(err))
		return nil, err
	}

	s.deps.Logger.Info("club admin upserted",
		zap.Int64("club_id", clubID),
		zap.Int64("admin_user_id", userID),
		zap.Strings("permissions", granted),
	)

	return admin, nil
}

// DeleteClubAdmin revokes a user's admin permissions on a club
func (s *ClubService) DeleteClubAdmin(ctx context.Context, viewer *models.Viewer, clubID, userID int64) error {
	s.deps.Logger.Debug("DeleteClubAdmin called", zap.Int64("club_id", clubID), zap.Int64("admin_user_id", userID))

	if err := requireViewer(viewer); err != nil {
		return err
	}

	club, err := s.deps.Store.GetClubByID(ctx, clubID)
	if err != nil {
		return err
	}

	roles, _, err := rolesOn(ctx, s.deps, viewer, club)
	if err != nil {
		return err
	}
	if err := roles.Require(policy.ActionManageAdmins, policy.Target{}); err != nil {
		return err
	}

	if err := s.deps.Store.DeleteClubAdmin(ctx, clubID, userID); err != nil {
		return err
	}

	s.deps.Logger.Info("club admin deleted", zap.Int64("club_id", clubID), zap.Int64("admin_user_id", userID))
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func validateClubInput(in ClubInput) error {
	if in.Name == "" {
		return errs.BadRequest("club name is required")
	}
	return nil
}

func validateTierInput(in TierInput) error {
	if in.Name == "" {
		return errs.BadRequest("tier name is required")
	}
	if in.UnitAmount < 0 {
		return errs.BadRequest("tier price cannot be negative")
	}
	if in.MemberLimit != nil && *in.MemberLimit < 0 {
		return errs.BadRequest("tier member limit cannot be negative")
	}
	return nil
}

func tierImages(tiers []TierInput) []*models.ImageInput {
	images := make([]*models.ImageInput, 0, len(tiers))
	for _, t := range tiers {
		images = append(images, t.CoverImage)
	}
	return images
}

// updatedImage applies an optional image change to the current value
func updatedImage(current sql.NullInt64, in *models.ImageInput, remove bool, images map[string]*models.Image) (sql.NullInt64, error) {
	if remove {
		return sql.NullInt64{}, nil
	}
	if in == nil {
		return current, nil
	}
	return resolveImage(in, images)
}
