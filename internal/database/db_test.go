package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/parsascontentcorner/clubserver/internal/config"
)

// ============================================================================
// Connection Tests
// ============================================================================

func TestNewDB_Success(t *testing.T) {
	ctx := context.Background()

	cfg, err := postgresConfig(ctx)
	require.NoError(t, err)

	db, err := NewDB(cfg, zaptest.NewLogger(t))

	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	assert.NoError(t, db.PingContext(ctx))

	stats := db.Stats()
	assert.Equal(t, 5, stats.MaxOpenConnections)
	assert.Equal(t, 10*time.Second, db.txOpts.MaxWait)
	assert.Equal(t, 30*time.Second, db.txOpts.Timeout)
}

func TestNewDB_InvalidCredentials(t *testing.T) {
	ctx := context.Background()

	cfg, err := postgresConfig(ctx)
	require.NoError(t, err)

	cfg.Password = "wrong_password"

	db, err := NewDB(cfg, zaptest.NewLogger(t))

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to ping database")
}

func TestNewDB_InvalidHost(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:         "nonexistent-host-12345",
		Port:         "5432",
		User:         "testuser",
		Password:     "testpass",
		Name:         "testdb",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	db, err := NewDB(cfg, zaptest.NewLogger(t))

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to ping database")
}

func TestDBHealth_ClosedConnection(t *testing.T) {
	ctx := context.Background()

	cfg, err := postgresConfig(ctx)
	require.NoError(t, err)

	db, err := NewDB(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.NoError(t, db.Health(ctx))
	require.NoError(t, db.Close())

	err = db.Health(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database health check failed")
}

// ============================================================================
// Migration Tests
// ============================================================================

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()

	db, cleanup, err := setupTestDB(ctx)
	require.NoError(t, err)
	defer cleanup()

	var tableCount int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_name IN ('users', 'sessions', 'images', 'clubs', 'club_admins', 'club_tiers', 'club_memberships', 'club_posts')
	`).Scan(&tableCount)

	require.NoError(t, err)
	assert.Equal(t, 8, tableCount, "All 8 tables should be created")

	// Run migrations again - should be idempotent (no error)
	err = db.RunMigrations("migrations")
	assert.NoError(t, err, "Running migrations twice should not error (ErrNoChange is handled)")
}

func TestRunMigrations_InvalidPath(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := Wrap(sqlDB, zap.NewNop(), TxOptions{})

	err = db.RunMigrations("/nonexistent/path/to/migrations")
	assert.Error(t, err)
}

// ============================================================================
// Transaction Tests
// ============================================================================

func newMockDB(t *testing.T, opts TxOptions) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return Wrap(sqlDB, zap.NewNop(), opts), mock
}

func TestWrap_Defaults(t *testing.T) {
	db, _ := newMockDB(t, TxOptions{})

	assert.Equal(t, 10*time.Second, db.txOpts.MaxWait)
	assert.Equal(t, 30*time.Second, db.txOpts.Timeout)
}

func TestInTx_Commit(t *testing.T) {
	db, mock := newMockDB(t, TxOptions{})

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM club_posts").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.InTx(context.Background(), func(ctx context.Context, q *Queries) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "transaction context carries the timeout")
		return q.DeleteClubPost(ctx, 7)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t, TxOptions{})

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM club_posts").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := db.InTx(context.Background(), func(ctx context.Context, q *Queries) error {
		if err := q.DeleteClubPost(ctx, 7); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_BeginFails(t *testing.T) {
	db, mock := newMockDB(t, TxOptions{})

	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	called := false
	err := db.InTx(context.Background(), func(ctx context.Context, q *Queries) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "failed to begin transaction")
}

func TestInTx_Timeout(t *testing.T) {
	db, mock := newMockDB(t, TxOptions{Timeout: 20 * time.Millisecond})

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := db.InTx(context.Background(), func(ctx context.Context, q *Queries) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")
}

func TestInTx_MaxWait(t *testing.T) {
	db, _ := newMockDB(t, TxOptions{MaxWait: 20 * time.Millisecond})
	db.SetMaxOpenConns(1)

	// Hold the only connection
	held, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer held.Close()

	err = db.InTx(context.Background(), func(ctx context.Context, q *Queries) error {
		t.Fatal("transaction must not start")
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire connection")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
