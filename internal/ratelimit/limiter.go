// Package ratelimit paces outgoing calls to an HTTP API per route, following
// the limits the API advertises in its response headers.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Response headers carrying the API's limits
const (
	headerLimit      = "X-RateLimit-Limit"
	headerRemaining  = "X-RateLimit-Remaining"
	headerReset      = "X-RateLimit-Reset"
	headerRetryAfter = "Retry-After"
)

const (
	defaultPerSecond = 10
	defaultBackoff   = time.Second
)

// Status is the last known limit state of a route
type Status struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

type route struct {
	mu      sync.Mutex
	status  Status
	limiter *rate.Limiter
}

// Limiter paces requests per route
type Limiter struct {
	mu        sync.Mutex
	routes    map[string]*route
	perSecond int
	logger    *zap.Logger
}

// New creates a limiter allowing perSecond requests per route until the API
// reports its own limits. Non-positive values fall back to 10.
func New(perSecond int, logger *zap.Logger) *Limiter {
	if perSecond <= 0 {
		perSecond = defaultPerSecond
	}
	return &Limiter{
		routes:    make(map[string]*route),
		perSecond: perSecond,
		logger:    logger,
	}
}

func (l *Limiter) route(name string) *route {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.routes[name]
	if !ok {
		r = &route{
			status: Status{
				Remaining: l.perSecond,
				Limit:     l.perSecond,
				ResetAt:   time.Now().Add(time.Second),
			},
			limiter: rate.NewLimiter(rate.Limit(l.perSecond), l.perSecond),
		}
		l.routes[name] = r
	}
	return r
}

// Wait blocks until a request on the route may be sent or ctx is done.
// A route the API reported as exhausted is paused until its reset time.
func (l *Limiter) Wait(ctx context.Context, name string) error {
	r := l.route(name)

	r.mu.Lock()
	var pause time.Duration
	if r.status.Remaining <= 0 {
		pause = time.Until(r.status.ResetAt)
	}
	limiter := r.limiter
	r.mu.Unlock()

	if pause > 0 {
		l.logger.Warn("rate limit exhausted, waiting",
			zap.String("route", name),
			zap.Duration("pause", pause),
		)
		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return fmt.Errorf("rate limiter wait failed: %w", ctx.Err())
		}
	}

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return nil
}

// Observe records the limits advertised by resp. For a 429 response the route
// is paused and the pause is returned; otherwise it returns zero.
func (l *Limiter) Observe(name string, resp *http.Response) time.Duration {
	r := l.route(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.apply(resp.Header)

	if resp.StatusCode != http.StatusTooManyRequests {
		return 0
	}

	backoff := retryAfter(resp.Header)
	r.status.Remaining = 0
	r.status.ResetAt = time.Now().Add(backoff)

	l.logger.Warn("rate limited by upstream API",
		zap.String("route", name),
		zap.Duration("retry_after", backoff),
	)
	return backoff
}

// Status returns the last known limit state of a route
func (l *Limiter) Status(name string) Status {
	r := l.route(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// apply updates the route from limit headers, ignoring values it cannot parse.
// The token bucket is resized to spread the advertised limit over the window.
func (r *route) apply(h http.Header) {
	if v, err := strconv.Atoi(h.Get(headerRemaining)); err == nil {
		r.status.Remaining = v
	}
	if v, err := strconv.Atoi(h.Get(headerLimit)); err == nil {
		r.status.Limit = v
	}
	if at, ok := parseReset(h.Get(headerReset)); ok {
		r.status.ResetAt = at
	}

	if h.Get(headerLimit) == "" || r.status.Limit <= 0 {
		return
	}
	if window := time.Until(r.status.ResetAt); window > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(float64(r.status.Limit)/window.Seconds()), r.status.Limit)
	}
}

// parseReset reads a reset time given as RFC 3339 or Unix seconds
func parseReset(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(secs, 0), true
	}
	return time.Time{}, false
}

// retryAfter picks the backoff for a 429: Retry-After in seconds or as an
// HTTP date, then the reset header, then one second.
func retryAfter(h http.Header) time.Duration {
	if v := h.Get(headerRetryAfter); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil {
			if d := time.Until(at); d > 0 {
				return d
			}
		}
	}
	if at, ok := parseReset(h.Get(headerReset)); ok {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return defaultBackoff
}
