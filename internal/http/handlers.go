package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// readyTimeout bounds all readiness checks of one request
const readyTimeout = 3 * time.Second

// Check reports whether a dependency is reachable
type Check func(ctx context.Context) error

// Handlers serves the operational HTTP endpoints
type Handlers struct {
	checks  map[string]Check
	metrics http.Handler
	logger  *zap.Logger
}

// NewHandlers creates the operational handlers. checks are run by /ready,
// metrics is served on /metrics.
func NewHandlers(checks map[string]Check, metrics http.Handler, logger *zap.Logger) *Handlers {
	return &Handlers{
		checks:  checks,
		metrics: metrics,
		logger:  logger,
	}
}

// HealthHandler handles liveness requests
func (h *Handlers) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("failed to write health check response", zap.Error(err))
	}
}

// ReadyHandler runs the dependency checks in parallel and answers 503 if any fails
func (h *Handlers) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
		code    = http.StatusOK
	)

	var g errgroup.Group
	for name, check := range h.checks {
		g.Go(func() error {
			result := "ok"
			if err := check(ctx); err != nil {
				h.logger.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
				result = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			if result != "ok" {
				code = http.StatusServiceUnavailable
			}
			return nil
		})
	}
	_ = g.Wait()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(results); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
