// Package auth resolves session ids issued by the platform auth service into viewers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/parsascontentcorner/clubserver/internal/config"
	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// SessionStore looks up the viewer behind an unexpired session
type SessionStore interface {
	GetSessionViewer(ctx context.Context, sessionID string) (*models.SessionViewer, error)
}

// SessionResolver turns session ids into viewers, caching recent lookups in
// memory. A cached session is never served past its expiry.
type SessionResolver struct {
	store  SessionStore
	cache  *lru.LRU[string, *models.SessionViewer]
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionResolver creates a resolver backed by store
func NewSessionResolver(store SessionStore, cfg *config.SessionConfig, logger *zap.Logger) *SessionResolver {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1
	}

	return &SessionResolver{
		store:  store,
		cache:  lru.NewLRU[string, *models.SessionViewer](size, nil, cfg.CacheTTL),
		logger: logger,
		now:    time.Now,
	}
}

// Resolve returns the viewer for sessionID. An empty id is an anonymous caller
// and resolves to a nil viewer without error.
func (r *SessionResolver) Resolve(ctx context.Context, sessionID string) (*models.Viewer, error) {
	if sessionID == "" {
		return nil, nil
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed session id", errs.ErrUnauthenticated)
	}
	key := id.String()

	if session, ok := r.cache.Get(key); ok {
		if r.now().Before(session.ExpiresAt) {
			viewer := session.Viewer
			return &viewer, nil
		}
		r.cache.Remove(key)
		r.logger.Debug("cached session expired", zap.String("session_id", key))
		return nil, fmt.Errorf("%w: invalid or expired session", errs.ErrUnauthenticated)
	}

	session, err := r.store.GetSessionViewer(ctx, key)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			r.logger.Debug("session rejected", zap.String("session_id", key))
			return nil, fmt.Errorf("%w: invalid or expired session", errs.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	r.cache.Add(key, session)
	viewer := session.Viewer
	return &viewer, nil
}


type viewerKey struct{}

// WithViewer stores the resolved viewer on ctx
func WithViewer(ctx context.Context, viewer *models.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

// ViewerFrom returns the viewer stored on ctx, or nil for anonymous calls
func ViewerFrom(ctx context.Context) *models.Viewer {
	viewer, _ := ctx.Value(viewerKey{}).(*models.Viewer)
	return viewer
}
