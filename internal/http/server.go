// Package http serves the operational endpoints: health, readiness and metrics.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server serves the operational endpoints
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer creates the operational HTTP server on port
func NewServer(handlers *Handlers, port string, logger *zap.Logger) *Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           accessLog(handlers.Routes(), logger),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("HTTP server configured", zap.String("port", port))

	return &Server{srv: srv, logger: logger}
}

// Routes maps the operational endpoints. /metrics is only served when a
// metrics handler was given.
func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthHandler)
	mux.HandleFunc("GET /ready", h.ReadyHandler)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
	return mux
}

// Serve listens until Shutdown is called
func (s *Server) Serve() error {
	s.logger.Info("starting HTTP server", zap.String("address", s.srv.Addr))

	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("failed to serve HTTP: %w", err)
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// accessLog logs every request. Successful probes and scrapes go to debug.
func accessLog(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if rec.status >= http.StatusBadRequest {
			logger.Info("HTTP request completed", fields...)
			return
		}
		logger.Debug("HTTP request completed", fields...)
	})
}

// statusRecorder remembers the status code written through it
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
