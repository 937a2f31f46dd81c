package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parsascontentcorner/clubserver/internal/config"
	"github.com/parsascontentcorner/clubserver/internal/database"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// GenerateUser creates an unsaved test user with a unique username.
func GenerateUser(name string) *models.User {
	return &models.User{
		Username: fmt.Sprintf("%s_%s", name, uuid.NewString()[:8]),
	}
}

// CreateUser persists a test user and returns it with its id set.
func CreateUser(ctx context.Context, db *database.DB, name string) (*models.User, error) {
	user := GenerateUser(name)
	if err := db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSession issues a session for userID that expires in a day and returns its id.
func CreateSession(ctx context.Context, db *database.DB, userID int64) (string, error) {
	session := &models.Session{
		SessionID: GenerateSessionID(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}
	if err := db.CreateSession(ctx, session); err != nil {
		return "", err
	}
	return session.SessionID, nil
}

// CreateExpiredSession issues a session that expired an hour ago and returns its id.
func CreateExpiredSession(ctx context.Context, db *database.DB, userID int64) (string, error) {
	session := &models.Session{
		SessionID: GenerateSessionID(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	if err := db.CreateSession(ctx, session); err != nil {
		return "", err
	}
	return session.SessionID, nil
}

// GenerateSessionID generates a random session ID (UUID).
func GenerateSessionID() string {
	return uuid.New().String()
}

// GenerateTestConfig creates a test configuration with valid values.
func GenerateTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			HTTPPort: "8080",
			GRPCPort: "50051",
			Host:     "localhost",
			Env:      "test",
		},
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "testuser",
			Password:       "testpass",
			Name:           "testdb",
			SSLMode:        "disable",
			MaxOpenConns:   5,
			MaxIdleConns:   2,
			MigrationsPath: "internal/database/migrations",
			TxMaxWait:      10 * time.Second,
			TxTimeout:      30 * time.Second,
		},
		Kafka: config.KafkaConfig{
			Topic: "club-events",
		},
		Ledger: config.LedgerConfig{
			BaseURL: "http://localhost:9090",
			Timeout: 5 * time.Second,
		},
		Session: config.SessionConfig{
			CacheSize: 100,
			CacheTTL:  time.Minute,
		},
		Jobs: config.JobsConfig{
			ExpirySchedule: "@every 1h",
		},
		Logging: config.LoggingConfig{
			Level:  "debug",
			Format: "console",
		},
	}
}
