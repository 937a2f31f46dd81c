// Package main is the entry point for the club server.
// It starts the gRPC club API, the HTTP health and metrics server, and the membership jobs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/parsascontentcorner/clubserver/internal/auth"
	"github.com/parsascontentcorner/clubserver/internal/cache"
	"github.com/parsascontentcorner/clubserver/internal/config"
	"github.com/parsascontentcorner/clubserver/internal/database"
	"github.com/parsascontentcorner/clubserver/internal/events"
	grpcserver "github.com/parsascontentcorner/clubserver/internal/grpc"
	httpserver "github.com/parsascontentcorner/clubserver/internal/http"
	"github.com/parsascontentcorner/clubserver/internal/jobs"
	"github.com/parsascontentcorner/clubserver/internal/ledger"
	"github.com/parsascontentcorner/clubserver/internal/metrics"
	"github.com/parsascontentcorner/clubserver/internal/ratelimit"
	"github.com/parsascontentcorner/clubserver/internal/service"
	"github.com/parsascontentcorner/clubserver/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     "clubserver",
		Environment: cfg.Server.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		// Sync fails on non-syncable descriptors such as pipes and terminals
		_ = log.Sync()
	}()

	log.Info("starting club server",
		zap.String("environment", cfg.Server.Env),
		zap.String("http_port", cfg.Server.HTTPPort),
		zap.String("grpc_port", cfg.Server.GRPCPort),
	)

	// Initialize database connection
	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if err := runMigrations(db, cfg.Database.MigrationsPath, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	serverMetrics := metrics.NewMetrics(registry)

	// Ledger client
	ledgerClient := ledger.NewClient(&cfg.Ledger, log)
	ledgerClient.SetRateLimiter(ratelimit.New(cfg.Ledger.RequestsPerSecond, log))

	deps := service.Deps{
		Store:   service.NewStore(db),
		Ledger:  ledgerClient,
		Metrics: serverMetrics,
		Logger:  log,
	}

	checks := map[string]httpserver.Check{
		"postgres": db.Health,
	}

	// Redis read cache
	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("failed to close redis client", zap.Error(err))
			}
		}()
		deps.Cache = cache.NewManager(redisClient, cfg.Redis.TierTTL, cfg.Redis.MembershipTTL, log)
		checks["redis"] = redisClient.Ping
	} else {
		log.Info("redis cache disabled")
	}

	// Membership events
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(&cfg.Kafka, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("failed to close kafka publisher", zap.Error(err))
			}
		}()
		deps.Publisher = publisher
	} else {
		log.Info("event publishing disabled")
	}

	clubService := service.NewClubService(deps)
	postService := service.NewPostService(deps)
	membershipService := service.NewMembershipService(deps)

	// Background jobs
	scheduler, err := jobs.NewScheduler(cfg.Jobs.ExpirySchedule, membershipService, db, serverMetrics, log)
	if err != nil {
		log.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()

	// Initialize gRPC server with all services
	grpcServer, err := grpcserver.NewServer(grpcserver.Services{
		Clubs:       clubService,
		Posts:       postService,
		Memberships: membershipService,
		Sessions:    auth.NewSessionResolver(db, &cfg.Session, log),
		Metrics:     serverMetrics,
	}, cfg.Server.GRPCPort, log)
	if err != nil {
		log.Fatal("failed to create gRPC server", zap.Error(err))
	}

	// Initialize HTTP server
	httpHandlers := httpserver.NewHandlers(checks, serverMetrics.Handler(), log)
	httpServer := httpserver.NewServer(httpHandlers, cfg.Server.HTTPPort, log)

	grpcErrChan := make(chan error, 1)
	httpErrChan := make(chan error, 1)

	go func() {
		log.Info("starting gRPC server", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcServer.Serve(); err != nil {
			grpcErrChan <- err
		}
	}()

	go func() {
		log.Info("starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := httpServer.Serve(); err != nil {
			httpErrChan <- err
		}
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-grpcErrChan:
		log.Error("gRPC server error", zap.Error(err))
	case err := <-httpErrChan:
		log.Error("HTTP server error", zap.Error(err))
	case sig := <-sigChan:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	log.Info("shutting down servers...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server gracefully", zap.Error(err))
	}

	grpcServer.GracefulStop()

	// Let a running expiry sweep finish before the database closes
	scheduler.Stop(shutdownCtx)

	log.Info("servers shut down successfully")
}

// runMigrations runs database migrations using golang-migrate library
func runMigrations(db *database.DB, path string, log *zap.Logger) error {
	log.Info("running database migrations", zap.String("path", path))

	if err := db.RunMigrations(path); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed successfully")
	return nil
}
