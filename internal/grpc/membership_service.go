package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"

	clubv1 "github.com/parsascontentcorner/clubserver/api/club/v1"
	"github.com/parsascontentcorner/clubserver/internal/auth"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// MembershipOperations is the membership behaviour the transport needs
type MembershipOperations interface {
	Create(ctx context.Context, viewer *models.Viewer, clubTierID int64) (*models.ClubMembership, error)
	Update(ctx context.Context, viewer *models.Viewer, clubTierID int64) (*models.ClubMembership, error)
	Cancel(ctx context.Context, viewer *models.Viewer, clubID int64) (*models.ClubMembership, error)
	Restore(ctx context.Context, viewer *models.Viewer, clubID int64) (*models.ClubMembership, error)
	GetOnClub(ctx context.Context, viewer *models.Viewer, clubID int64) (*models.ClubMembership, error)
}

// MembershipServer implements the ClubMembershipService gRPC server
type MembershipServer struct {
	clubv1.UnimplementedClubMembershipServiceServer
	memberships MembershipOperations
	now         func() time.Time
	logger      *zap.Logger
}

// NewMembershipServer creates a new club membership service server
func NewMembershipServer(memberships MembershipOperations, logger *zap.Logger) *MembershipServer {
	return &MembershipServer{
		memberships: memberships,
		now:         time.Now,
		logger:      logger,
	}
}

// CreateClubMembership joins the caller to a tier and charges the first period
func (s *MembershipServer) CreateClubMembership(ctx context.Context, req *clubv1.CreateClubMembershipRequest) (*clubv1.ClubMembershipResponse, error) {
	s.logger.Debug("CreateClubMembership called", zap.Int64("club_tier_id", req.ClubTierID))

	m, err := s.memberships.Create(ctx, auth.ViewerFrom(ctx), req.ClubTierID)
	return s.respond(m, err)
}

// UpdateClubMembership moves the caller to another tier of the same club
func (s *MembershipServer) UpdateClubMembership(ctx context.Context, req *clubv1.UpdateClubMembershipRequest) (*clubv1.ClubMembershipResponse, error) {
	s.logger.Debug("UpdateClubMembership called", zap.Int64("club_tier_id", req.ClubTierID))

	m, err := s.memberships.Update(ctx, auth.ViewerFrom(ctx), req.ClubTierID)
	return s.respond(m, err)
}

// CancelClubMembership stops renewal at the end of the paid period
func (s *MembershipServer) CancelClubMembership(ctx context.Context, req *clubv1.CancelClubMembershipRequest) (*clubv1.ClubMembershipResponse, error) {
	s.logger.Debug("CancelClubMembership called", zap.Int64("club_id", req.ClubID))

	m, err := s.memberships.Cancel(ctx, auth.ViewerFrom(ctx), req.ClubID)
	return s.respond(m, err)
}

// RestoreClubMembership undoes a cancellation before it takes effect
func (s *MembershipServer) RestoreClubMembership(ctx context.Context, req *clubv1.RestoreClubMembershipRequest) (*clubv1.ClubMembershipResponse, error) {
	s.logger.Debug("RestoreClubMembership called", zap.Int64("club_id", req.ClubID))

	m, err := s.memberships.Restore(ctx, auth.ViewerFrom(ctx), req.ClubID)
	return s.respond(m, err)
}

// GetClubMembershipOnClub returns the caller's membership on a club, if any
func (s *MembershipServer) GetClubMembershipOnClub(ctx context.Context, req *clubv1.GetClubMembershipOnClubRequest) (*clubv1.ClubMembershipResponse, error) {
	s.logger.Debug("GetClubMembershipOnClub called", zap.Int64("club_id", req.ClubID))

	m, err := s.memberships.GetOnClub(ctx, auth.ViewerFrom(ctx), req.ClubID)
	return s.respond(m, err)
}

func (s *MembershipServer) respond(m *models.ClubMembership, err error) (*clubv1.ClubMembershipResponse, error) {
	if err != nil {
		return nil, toStatus(s.logger, err)
	}
	return &clubv1.ClubMembershipResponse{Membership: toMembership(m, s.now())}, nil
}
