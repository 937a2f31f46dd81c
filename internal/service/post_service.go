package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/clubserver/internal/database"
	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/events"
	"github.com/parsascontentcorner/clubserver/internal/models"
	"github.com/parsascontentcorner/clubserver/internal/policy"
)

// Post page sizes
const (
	DefaultPostLimit = 20
	MaxPostLimit     = 100
)

// ListPostsInput selects a page of club posts
type ListPostsInput struct {
	ClubID int64
	// Cursor is the NextCursor of the previous page, 0 for the first page
	Cursor int64
	Limit  int
}

// PostPage is a page of posts, newest first. NextCursor is 0 on the last page.
type PostPage struct {
	Posts      []*models.ClubPost
	NextCursor int64
}

// PostInput creates a post when ID is nil and updates it otherwise
type PostInput struct {
	ID          *int64
	ClubID      int64
	Title       string
	Description string
	MembersOnly bool
	// CoverImage nil keeps the current cover on update
	CoverImage       *models.ImageInput
	RemoveCoverImage bool
}

// PostService manages the posts of a club
type PostService struct {
	deps Deps
}

// NewPostService creates a new club post service
func NewPostService(deps Deps) *PostService {
	return &PostService{deps: deps.withDefaults()}
}

// List returns a page of the club's posts. Members-only posts are left out
// for viewers who cannot see them.
func (s *PostService) List(ctx context.Context, viewer *models.Viewer, in ListPostsInput) (*PostPage, error) {
	s.deps.Logger.Debug("ListClubPosts called",
		zap.Int64("club_id", in.ClubID),
		zap.Int64("cursor", in.Cursor),
		zap.Int("limit", in.Limit),
	)

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultPostLimit
	}
	if limit > MaxPostLimit {
		limit = MaxPostLimit
	}

	club, err := s.deps.Store.GetClubByID(ctx, in.ClubID)
	if err != nil {
		return nil, err
	}

	roles, _, err := rolesOn(ctx, s.deps, viewer, club)
	if err != nil {
		return nil, err
	}

	posts, err := s.deps.Store.ListClubPosts(ctx, database.ListClubPostsParams{
		ClubID:             club.ID,
		Cursor:             in.Cursor,
		Limit:              limit + 1,
		IncludeMembersOnly: roles.Can(policy.ActionViewMembersOnly, policy.Target{}),
	})
	if err != nil {
		return nil, err
	}

	page := &PostPage{Posts: posts}
	if len(posts) > limit {
		page.NextCursor = posts[limit].ID
		page.Posts = posts[:limit]
	}

	return page, nil
}

// GetByID returns a post. Visibility is checked on a narrow projection
// before the full post is loaded.
func (s *PostService) GetByID(ctx context.Context, viewer *models.Viewer, id int64) (*models.ClubPost, error) {
	s.deps.Logger.Debug("GetClubPost called", zap.Int64("post_id", id), zap.Int64("user_id", viewer.ID()))

	visibility, err := s.deps.Store.GetClubPostVisibility(ctx, id)
	if err != nil {
		return nil, err
	}

	if visibility.MembersOnly {
		club, err := s.deps.Store.GetClubByID(ctx, visibility.ClubID)
		if err != nil {
			return nil, err
		}
		roles, _, err := rolesOn(ctx, s.deps, viewer, club)
		if err != nil {
			return nil, err
		}
		if err := roles.Require(policy.ActionViewMembersOnly, policy.Target{AuthorID: visibility.CreatedByID}); err != nil {
			return nil, err
		}
	}

	return s.deps.Store.GetClubPostByID(ctx, id)
}

// Upsert creates or updates a post. Cover images are owned by the club owner.
func (s *PostService) Upsert(ctx context.Context, viewer *models.Viewer, in PostInput) (*models.ClubPost, error) {
	s.deps.Logger.Debug("UpsertClubPost called", zap.Int64("club_id", in.ClubID), zap.Int64("user_id", viewer.ID()))

	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, errs.BadRequest("post title is required")
	}

	club, err := s.deps.Store.GetClubByID(ctx, in.ClubID)
	if err != nil {
		return nil, err
	}

	roles, _, err := rolesOn(ctx, s.deps, viewer, club)
	if err != nil {
		return nil, err
	}

	post := &models.ClubPost{
		ClubID:      club.ID,
		CreatedByID: viewer.UserID,
		Title:       in.Title,
		Description: in.Description,
		MembersOnly: in.MembersOnly,
	}

	if in.ID == nil {
		if err := roles.Require(policy.ActionCreatePost, policy.Target{}); err != nil {
			return nil, err
		}
	} else {
		current, err := s.deps.Store.GetClubPostByID(ctx, *in.ID)
		if err != nil {
			return nil, err
		}
		if current.ClubID != club.ID {
			return nil, errs.BadRequest("post does not belong to this club")
		}
		if err := roles.Require(policy.ActionEditPost, policy.Target{AuthorID: current.CreatedByID}); err != nil {
			return nil, err
		}
		post.ID = current.ID
		post.CreatedByID = current.CreatedByID
		post.CoverImageID = current.CoverImageID
	}

	err = s.deps.Store.InTx(ctx, func(ctx context.Context, q Queries) error {
		images, err := createPendingImages(ctx, q, club.UserID, in.CoverImage)
		if err != nil {
			return err
		}
		if post.CoverImageID, err = updatedImage(post.CoverImageID, in.CoverImage, in.RemoveCoverImage, images); err != nil {
			return err
		}

		if post.ID == 0 {
			return q.CreateClubPost(ctx, post)
		}
		return q.UpdateClubPost(ctx, post)
	})
	if err != nil {
		s.deps.Logger.Error("failed to upsert club post", zap.Int64("club_id", club.ID), zap.Error(err))
		return nil, err
	}

	eventType := events.PostUpdated
	if in.ID == nil {
		eventType = events.PostCreated
	}
	s.deps.Logger.Info("club post saved",
		zap.Int64("post_id", post.ID),
		zap.Int64("club_id", club.ID),
		zap.Bool("members_only", post.MembersOnly),
	)
	s.deps.Publisher.Publish(ctx, events.New(eventType, club.ID, viewer.UserID, post.ID, s.deps.Now()))

	return post, nil
}

// Delete removes a post
func (s *PostService) Delete(ctx context.Context, viewer *models.Viewer, id int64) error {
	s.deps.Logger.Debug("DeleteClubPost called", zap.Int64("post_id", id), zap.Int64("user_id", viewer.ID()))

	if err := requireViewer(viewer); err != nil {
		return err
	}

	visibility, err := s.deps.Store.GetClubPostVisibility(ctx, id)
	if err != nil {
		return err
	}

	club, err := s.deps.Store.GetClubByID(ctx, visibility.ClubID)
	if err != nil {
		return err
	}

	roles, _, err := rolesOn(ctx, s.deps, viewer, club)
	if err != nil {
		return err
	}
	if err := roles.Require(policy.ActionDeletePost, policy.Target{AuthorID: visibility.CreatedByID}); err != nil {
		return err
	}

	if err := s.deps.Store.DeleteClubPost(ctx, id); err != nil {
		return err
	}

	s.deps.Logger.Info("club post deleted", zap.Int64("post_id", id), zap.Int64("club_id", club.ID))
	s.deps.Publisher.Publish(ctx, events.New(events.PostDeleted, club.ID, viewer.UserID, id, s.deps.Now()))

	return nil
}
