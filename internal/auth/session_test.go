package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parsascontentcorner/clubserver/internal/config"
	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.SessionViewer
	err      error
	calls    int
}

func (f *fakeSessionStore) GetSessionViewer(_ context.Context, sessionID string) (*models.SessionViewer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, errs.NotFound("session")
	}
	return session, nil
}

// sessionFor is a session of viewer expiring in an hour
func sessionFor(viewer models.Viewer) *models.SessionViewer {
	return &models.SessionViewer{Viewer: viewer, ExpiresAt: time.Now().Add(time.Hour)}
}

func newResolver(store *fakeSessionStore, ttl time.Duration) *SessionResolver {
	return NewSessionResolver(store, &config.SessionConfig{CacheSize: 10, CacheTTL: ttl}, zap.NewNop())
}

// ============================================================================
// Resolve Tests
// ============================================================================

func TestResolve_Anonymous(t *testing.T) {
	store := &fakeSessionStore{}
	viewer, err := newResolver(store, time.Minute).Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, viewer)
	assert.Zero(t, store.calls)
}

func TestResolve_ValidSession(t *testing.T) {
	sessionID := uuid.NewString()
	store := &fakeSessionStore{sessions: map[string]*models.SessionViewer{
		sessionID: sessionFor(models.Viewer{UserID: 7, IsModerator: true}),
	}}
	resolver := newResolver(store, time.Minute)

	viewer, err := resolver.Resolve(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), viewer.UserID)
	assert.True(t, viewer.IsModerator)

	_, err = resolver.Resolve(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls, "second lookup served from cache")
}

func TestResolve_CachedSessionPastExpiry(t *testing.T) {
	sessionID := uuid.NewString()
	expiresAt := time.Now().Add(time.Minute)
	store := &fakeSessionStore{sessions: map[string]*models.SessionViewer{
		sessionID: {Viewer: models.Viewer{UserID: 7}, ExpiresAt: expiresAt},
	}}
	resolver := newResolver(store, time.Hour)

	_, err := resolver.Resolve(context.Background(), sessionID)
	require.NoError(t, err)

	resolver.now = func() time.Time { return expiresAt.Add(time.Second) }

	viewer, err := resolver.Resolve(context.Background(), sessionID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.Nil(t, viewer)
	assert.Equal(t, 1, store.calls, "expiry is checked on the cached entry")
	assert.Zero(t, resolver.cache.Len(), "expired entry is dropped")
}

func TestResolve_NormalizesSessionID(t *testing.T) {
	sessionID := uuid.NewString()
	store := &fakeSessionStore{sessions: map[string]*models.SessionViewer{sessionID: sessionFor(models.Viewer{UserID: 3})}}

	viewer, err := newResolver(store, time.Minute).Resolve(context.Background(), "urn:uuid:"+sessionID)

	require.NoError(t, err)
	assert.Equal(t, int64(3), viewer.UserID)
}

func TestResolve_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		storeErr  error
		wantIs    error
	}{
		{name: "malformed id", sessionID: "not-a-uuid", wantIs: errs.ErrUnauthenticated},
		{name: "unknown session", sessionID: uuid.NewString(), wantIs: errs.ErrUnauthenticated},
		{name: "store failure", sessionID: uuid.NewString(), storeErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSessionStore{err: tt.storeErr}
			viewer, err := newResolver(store, time.Minute).Resolve(context.Background(), tt.sessionID)

			require.Error(t, err)
			assert.Nil(t, viewer)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			} else {
				assert.NotErrorIs(t, err, errs.ErrUnauthenticated)
				assert.Contains(t, err.Error(), "failed to resolve session")
			}
		})
	}
}

func TestResolve_CacheExpires(t *testing.T) {
	sessionID := uuid.NewString()
	store := &fakeSessionStore{sessions: map[string]*models.SessionViewer{sessionID: sessionFor(models.Viewer{UserID: 1})}}
	resolver := newResolver(store, 20*time.Millisecond)

	_, err := resolver.Resolve(context.Background(), sessionID)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, err = resolver.Resolve(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

// ============================================================================
// Context Tests
// ============================================================================

func TestViewerContext(t *testing.T) {
	assert.Nil(t, ViewerFrom(context.Background()))

	viewer := &models.Viewer{UserID: 5}
	ctx := WithViewer(context.Background(), viewer)
	assert.Same(t, viewer, ViewerFrom(ctx))

	assert.Nil(t, ViewerFrom(WithViewer(context.Background(), nil)))
}
