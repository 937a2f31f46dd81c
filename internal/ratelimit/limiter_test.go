package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func response(code int, headers map[string]string) *http.Response {
	resp := &http.Response{StatusCode: code, Header: http.Header{}}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestNew_DefaultRate(t *testing.T) {
	limiter := New(0, zap.NewNop())

	status := limiter.Status("/accounts")
	assert.Equal(t, 10, status.Remaining)
	assert.Equal(t, 10, status.Limit)
}

func TestWait_FreshRouteDoesNotBlock(t *testing.T) {
	limiter := New(5, zap.NewNop())

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), "/transactions"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestObserve_Headers(t *testing.T) {
	rfcReset := time.Now().Add(5 * time.Second).Truncate(time.Second)
	unixReset := time.Now().Add(10 * time.Second).Unix()

	tests := []struct {
		name          string
		headers       map[string]string
		wantRemaining int
		wantLimit     int
		wantReset     time.Time
	}{
		{
			name: "rfc3339 reset",
			headers: map[string]string{
				headerLimit:     "50",
				headerRemaining: "45",
				headerReset:     rfcReset.Format(time.RFC3339),
			},
			wantRemaining: 45,
			wantLimit:     50,
			wantReset:     rfcReset,
		},
		{
			name: "unix reset with garbage remaining",
			headers: map[string]string{
				headerRemaining: "not-a-number",
				headerReset:     strconv.FormatInt(unixReset, 10),
			},
			wantRemaining: 5,
			wantLimit:     5,
			wantReset:     time.Unix(unixReset, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(5, zap.NewNop())

			backoff := limiter.Observe("/accounts", response(http.StatusOK, tt.headers))

			assert.Zero(t, backoff)
			status := limiter.Status("/accounts")
			assert.Equal(t, tt.wantRemaining, status.Remaining)
			assert.Equal(t, tt.wantLimit, status.Limit)
			assert.True(t, status.ResetAt.Equal(tt.wantReset), "reset %v, want %v", status.ResetAt, tt.wantReset)
		})
	}
}

func TestObserve_TooManyRequests(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    time.Duration
	}{
		{name: "retry-after seconds", headers: map[string]string{headerRetryAfter: "30"}, want: 30 * time.Second},
		{name: "no hints", headers: nil, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(5, zap.NewNop())

			backoff := limiter.Observe("/transactions", response(http.StatusTooManyRequests, tt.headers))

			assert.Equal(t, tt.want, backoff)
			status := limiter.Status("/transactions")
			assert.Equal(t, 0, status.Remaining)
			assert.True(t, status.ResetAt.After(time.Now()))
		})
	}
}

func TestRetryAfter_HTTPDate(t *testing.T) {
	at := time.Now().Add(20 * time.Second).UTC()
	h := http.Header{}
	h.Set(headerRetryAfter, at.Format(http.TimeFormat))

	backoff := retryAfter(h)

	assert.InDelta(t, 20*time.Second, backoff, float64(2*time.Second))
}

func TestWait_PausedRouteRespectsContext(t *testing.T) {
	limiter := New(5, zap.NewNop())
	limiter.Observe("/transactions", response(http.StatusTooManyRequests, map[string]string{headerRetryAfter: "30"}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "/transactions")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Other routes are unaffected
	assert.NoError(t, limiter.Wait(context.Background(), "/accounts"))
}

func TestConcurrentAccess(t *testing.T) {
	limiter := New(1000, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			route := "/accounts"
			if i%2 == 0 {
				route = "/transactions"
			}
			assert.NoError(t, limiter.Wait(context.Background(), route))
			limiter.Observe(route, response(http.StatusOK, map[string]string{headerRemaining: "100"}))
		}(i)
	}
	wg.Wait()

	assert.Len(t, limiter.routes, 2)
}
