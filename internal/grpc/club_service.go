package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"

	clubv1 "github.com/parsascontentcorner/clubserver/api/club/v1"
	"github.com/parsascontentcorner/clubserver/internal/auth"
	"github.com/parsascontentcorner/clubserver/internal/models"
	"github.com/parsascontentcorner/clubserver/internal/service"
)

// ClubOperations is the club aggregate behaviour the transport needs
type ClubOperations interface {
	CreateClub(ctx context.Context, viewer *models.Viewer, in service.ClubInput, tiers []service.TierInput) (*models.Club, error)
	UpdateClub(ctx context.Context, viewer *models.Viewer, clubID int64, in service.ClubInput, tiers []service.TierInput, deleteTierIDs []int64) (*models.Club, error)
	GetClub(ctx context.Context, viewer *models.Viewer, clubID int64) (*service.ClubDetails, error)
	ListClubTiers(ctx context.Context, viewer *models.Viewer, clubID int64) ([]service.TierView, error)
	UpsertClubTiers(ctx context.Context, viewer *models.Viewer, clubID int64, tiers []service.TierInput, deleteTierIDs []int64) ([]*models.TierWithCount, error)
	UpsertClubAdmin(ctx context.Context, viewer *models.Viewer, clubID, userID int64, permissions []models.ClubAdminPermission) (*models.ClubAdmin, error)
	DeleteClubAdmin(ctx context.Context, viewer *models.Viewer, clubID, userID int64) error
}

// ClubServer implements the ClubService gRPC server
type ClubServer struct {
	clubv1.UnimplementedClubServiceServer
	clubs  ClubOperations
	now    func() time.Time
	logger *zap.Logger
}

// NewClubServer creates a new club service server
func NewClubServer(clubs ClubOperations, logger *zap.Logger) *ClubServer {
	return &ClubServer{
		clubs:  clubs,
		now:    time.Now,
		logger: logger,
	}
}

// UpsertClub creates a club with its initial tiers, or updates an existing one
func (s *ClubServer) UpsertClub(ctx context.Context, req *clubv1.UpsertClubRequest) (*clubv1.UpsertClubResponse, error) {
	s.logger.Debug("UpsertClub called", zap.Bool("create", req.ID == nil))

	in := service.ClubInput{
		Name:              req.Name,
		Description:       req.Description,
		NSFW:              req.NSFW,
		Billing:           req.Billing,
		Unlisted:          req.Unlisted,
		Avatar:            fromImage(req.Avatar),
		CoverImage:        fromImage(req.CoverImage),
		HeaderImage:       fromImage(req.HeaderImage),
		RemoveAvatar:      req.RemoveAvatar,
		RemoveCoverImage:  req.RemoveCoverImage,
		RemoveHeaderImage: req.RemoveHeaderImage,
	}
	tiers := fromTierInputs(req.Tiers)
	viewer := auth.ViewerFrom(ctx)

	var (
		club *models.Club
		err  error
	)
	if req.ID == nil {
		club, err = s.clubs.CreateClub(ctx, viewer, in, tiers)
	} else {
		club, err = s.clubs.UpdateClub(ctx, viewer, *req.ID, in, tiers, req.DeleteTierIDs)
	}
	if err != nil {
		return nil, toStatus(s.logger, err)
	}

	return &clubv1.UpsertClubResponse{Club: toClub(club)}, nil
}

// GetClub returns a club with the tiers and actions visible to the caller
func (s *ClubServer) GetClub(ctx context.Context, req *clubv1.GetClubRequest) (*clubv1.GetClubResponse, error) {
	s.logger.Debug("GetClub called", zap.Int64("club_id", req.ID))

	details, err := s.clubs.GetClub(ctx, auth.ViewerFrom(ctx), req.ID)
	if err != nil {
		return nil, toStatus(s.logger, err)
	}

	resp := &clubv1.GetClubResponse{
		Club:       toClub(details.Club),
		Tiers:      toTierViews(details.Tiers),
		Membership: toMembership(details.Membership, s.now()),
		Roles:      toRoles(details.Roles),
	}
	for _, a := range details.Admins {
		resp.Admins = append(resp.Admins, toAdmin(a))
	}

	return resp, nil
}

// UpsertClubTiers creates, updates and deletes tiers of a club in one call
func (s *ClubServer) UpsertClubTiers(ctx context.Context, req *clubv1.UpsertClubTiersRequest) (*clubv1.UpsertClubTiersResponse, error) {
	s.logger.Debug("UpsertClubTiers called",
		zap.Int64("club_id", req.ClubID),
		zap.Int("tiers", len(req.Tiers)),
		zap.Int("deletes", len(req.DeleteTierIDs)),
	)

	tiers, err := s.clubs.UpsertClubTiers(ctx, auth.ViewerFrom(ctx), req.ClubID, fromTierInputs(req.Tiers), req.DeleteTierIDs)
	if err != nil {
		return nil, toStatus(s.logger, err)
	}

	return &clubv1.UpsertClubTiersResponse{Tiers: toTiers(tiers)}, nil
}

// ListClubTiers returns the tiers of a club visible to the caller
func (s *ClubServer) ListClubTiers(ctx context.Context, req *clubv1.ListClubTiersRequest) (*clubv1.ListClubTiersResponse, error) {
	s.logger.Debug("ListClubTiers called", zap.Int64("club_id", req.ClubID))

	views, err := s.clubs.ListClubTiers(ctx, auth.ViewerFrom(ctx), req.ClubID)
	if err != nil {
		return nil, toStatus(s.logger, err)
	}

	return &clubv1.ListClubTiersResponse{Tiers: toTierViews(views)}, nil
}

// UpsertClubAdmin grants or replaces the permissions of a club admin
func (s *ClubServer) UpsertClubAdmin(ctx context.Context, req *clubv1.UpsertClubAdminRequest) (*clubv1.UpsertClubAdminResponse, error) {
	s.logger.Debug("UpsertClubAdmin called", zap.Int64("club_id", req.ClubID), zap.Int64("user_id", req.UserID))

	admin, err := s.clubs.UpsertClubAdmin(ctx, auth.ViewerFrom(ctx), req.ClubID, req.UserID, fromPermissions(req.Permissions))
	if err != nil {
		return nil, toStatus(s.logger, err)
	}

	return &clubv1.UpsertClubAdminResponse{Admin: toAdmin(admin)}, nil
}

// DeleteClubAdmin revokes a club admin
func (s *ClubServer) DeleteClubAdmin(ctx context.Context, req *clubv1.DeleteClubAdminRequest) (*clubv1.DeleteClubAdminResponse, error) {
	s.logger.Debug("DeleteClubAdmin called", zap.Int64("club_id", req.ClubID), zap.Int64("user_id", req.UserID))

	if err := s.clubs.DeleteClubAdmin(ctx, auth.ViewerFrom(ctx), req.ClubID, req.UserID); err != nil {
		return nil, toStatus(s.logger, err)
	}

	return &clubv1.DeleteClubAdminResponse{}, nil
}
