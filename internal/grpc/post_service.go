package grpc

import (
	"context"

	"go.uber.org/zap"

	clubv1 "github.com/parsascontentcorner/clubserver/api/club/v1"
	"github.com/parsascontentcorner/clubserver/internal/auth"
	"github.com/parsascontentcorner/clubserver/internal/models"
	"github.com/parsascontentcorner/clubserver/internal/service"
)

// PostOperations is the club post behaviour the transport needs
type PostOperations interface {
	List(ctx context.Context, viewer *models.Viewer, in service.ListPostsInput) (*service.PostPage, error)
	GetByID(ctx context.Context, viewer *models.Viewer, id int64) (*models.ClubPost, error)
	Upsert(ctx context.Context, viewer *models.Viewer, in service.PostInput) (*models.ClubPost, error)
	Delete(ctx context.Context, viewer *models.Viewer, id int64) error
}

// PostServer implements the ClubPostService gRPC server
type PostServer struct {
	clubv1.UnimplementedClubPostServiceServer
	posts  PostOperations
	logger *zap.Logger
}

// NewPostServer creates a new club post service server
func NewPostServer(posts PostOperations, logger *zap.Logger) *PostServer {
	return &PostServer{
		posts:  posts,
		logger: logger,
	}
}

// ListClubPosts returns a page of posts, newest first
func (s *PostServer) ListClubPosts(ctx context.Context, req *clubv1.ListClubPostsRequest) (*clubv1.ListClubPostsResponse, error) {
	s.logger.Debug("ListClubPosts called",
		zap.Int64("club_id", req.ClubID),
		zap.Int64("cursor", req.Cursor),
		zap.Int32("limit", req.Limit),
	)

	page, err := s.posts.List(ctx, auth.ViewerFrom(ctx), service.ListPostsInput{
		ClubID: req.ClubID,
		Cursor: req.Cursor,
		Limit:  int(req.Limit),
	})
	if err != nil {
		return nil, toStatus(s.logger, err)
	}

	resp := &clubv1.ListClubPostsResponse{
		Posts:      make([]*clubv1.ClubPost, 0, len(page.Posts)),
		NextCursor: page.NextCursor,
	}
	for _, p := range page.Posts {
		resp.Posts = append(resp.Posts, toPost(p))
	}

	return resp, nil
}

// GetClubPost returns one post if the caller may read it
func (s *PostServer) GetClubPost(ctx context.Context, req *clubv1.GetClubPostRequest) (*clubv1.GetClubPostResponse, error) {
	s.logger.Debug("GetClubPost called", zap.Int64("post_id", req.ID))

	post, err := s.posts.GetByID(ctx, auth.ViewerFrom(ctx), req.ID)
	if err != nil {
		return nil, toStatus(s.logger, err)
	}

	return &clubv1.GetClubPostResponse{Post: toPost(post)}, nil
}

// UpsertClubPost creates or edits a post
func (s *PostServer) UpsertClubPost(ctx context.Context, req *clubv1.UpsertClubPostRequest) (*clubv1.UpsertClubPostResponse, error) {
	s.logger.Debug("UpsertClubPost called", zap.Int64("club_id", req.ClubID), zap.Bool("create", req.ID == nil))

	post, err := s.posts.Upsert(ctx, auth.ViewerFrom(ctx), service.PostInput{
		ID:               req.ID,
		ClubID:           req.ClubID,
		Title:            req.Title,
		Description:      req.Description,
		MembersOnly:      req.MembersOnly,
		CoverImage:       fromImage(req.CoverImage),
		RemoveCoverImage: req.RemoveCoverImage,
	})
	if err != nil {
		return nil, toStatus(s.logger, err)
	}

	return &clubv1.UpsertClubPostResponse{Post: toPost(post)}, nil
}

// DeleteClubPost removes a post
func (s *PostServer) DeleteClubPost(ctx context.Context, req *clubv1.DeleteClubPostRequest) (*clubv1.DeleteClubPostResponse, error) {
	s.logger.Debug("DeleteClubPost called", zap.Int64("post_id", req.ID))

	if err := s.posts.Delete(ctx, auth.ViewerFrom(ctx), req.ID); err != nil {
		return nil, toStatus(s.logger, err)
	}

	return &clubv1.DeleteClubPostResponse{}, nil
}
