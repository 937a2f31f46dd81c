package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/parsascontentcorner/clubserver/internal/database"
)

// SetupTestDB starts a PostgreSQL container with the club schema migrated and
// returns a connection to it along with a cleanup function.
//
// Usage:
//
//	db, cleanup, err := testutil.SetupTestDB(ctx)
//	require.NoError(t, err)
//	defer cleanup()
func SetupTestDB(ctx context.Context) (*database.DB, func(), error) {
	migrations, err := findMigrations()
	if err != nil {
		return nil, nil, err
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("clubs"),
		postgres.WithUsername("clubs"),
		postgres.WithPassword("clubs"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start postgres container: %w", err)
	}
	terminate := func() { _ = pgContainer.Terminate(context.Background()) }

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)

	db := database.Wrap(sqlDB, zap.NewNop(), database.TxOptions{
		MaxWait: 10 * time.Second,
		Timeout: 30 * time.Second,
	})

	if err := db.RunMigrations(migrations); err != nil {
		_ = db.Close()
		terminate()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cleanup := func() {
		_ = db.Close()
		terminate()
	}

	return db, cleanup, nil
}

// findMigrations walks up from the working directory to the module's migrations
// folder, so packages at any depth can set up a database.
func findMigrations() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "internal", "database", "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("migrations directory not found")
		}
		dir = parent
	}
}
