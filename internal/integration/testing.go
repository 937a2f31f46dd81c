// Package integration runs the club API end to end against PostgreSQL,
// Redis and a stub ledger.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	clubv1 "github.com/parsascontentcorner/clubserver/api/club/v1"
	"github.com/parsascontentcorner/clubserver/internal/auth"
	"github.com/parsascontentcorner/clubserver/internal/cache"
	"github.com/parsascontentcorner/clubserver/internal/config"
	"github.com/parsascontentcorner/clubserver/internal/database"
	grpcserver "github.com/parsascontentcorner/clubserver/internal/grpc"
	"github.com/parsascontentcorner/clubserver/internal/ledger"
	"github.com/parsascontentcorner/clubserver/internal/metrics"
	"github.com/parsascontentcorner/clubserver/internal/service"
	"github.com/parsascontentcorner/clubserver/internal/testutil"
)

// fakeLedger is an in-memory Buzz ledger served over HTTP
type fakeLedger struct {
	mu           sync.Mutex
	balances     map[int64]int64
	transactions []ledger.Transaction
}

func (l *fakeLedger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/accounts/"):
		userID, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/accounts/"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(ledger.Account{ID: userID, Balance: l.balances[userID]})

	case r.Method == http.MethodPost && r.URL.Path == "/transactions":
		var tx ledger.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if l.balances[tx.FromAccountID] < tx.Amount {
			w.WriteHeader(http.StatusPaymentRequired)
			_ = json.NewEncoder(w).Encode(map[string]string{"code": "INSUFFICIENT_FUNDS", "message": "not enough buzz"})
			return
		}
		l.balances[tx.FromAccountID] -= tx.Amount
		l.balances[tx.ToAccountID] += tx.Amount
		l.transactions = append(l.transactions, tx)
		_ = json.NewEncoder(w).Encode(ledger.TransactionResult{TransactionID: uuid.NewString()})

	default:
		http.NotFound(w, r)
	}
}

func (l *fakeLedger) setBalance(userID, balance int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = balance
}

func (l *fakeLedger) balance(userID int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

func (l *fakeLedger) charges() []ledger.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ledger.Transaction(nil), l.transactions...)
}

// testSuite holds the running server and its clients
type testSuite struct {
	db          *database.DB
	ledger      *fakeLedger
	memberships *service.MembershipService
	metrics     *metrics.Metrics
	conn        *grpc.ClientConn

	clubClient       clubv1.ClubServiceClient
	postClient       clubv1.ClubPostServiceClient
	membershipClient clubv1.ClubMembershipServiceClient

	cleanup func()
}

// setupTestSuite starts PostgreSQL, Redis, the stub ledger and a gRPC server
func setupTestSuite(t *testing.T) *testSuite {
	t.Helper()
	ctx := context.Background()

	db, dbCleanup, err := testutil.SetupTestDB(ctx)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisClient, err := cache.NewRedisClient("redis://" + mr.Addr())
	require.NoError(t, err)

	fl := &fakeLedger{balances: make(map[int64]int64)}
	ledgerAPI := httptest.NewServer(fl)

	logger := zap.NewNop()
	cfg := testutil.GenerateTestConfig()
	cfg.Ledger.BaseURL = ledgerAPI.URL
	serverMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	deps := service.Deps{
		Store:   service.NewStore(db),
		Ledger:  ledger.NewClient(&cfg.Ledger, logger),
		Cache:   cache.NewManager(redisClient, time.Minute, time.Minute, logger),
		Metrics: serverMetrics,
		Logger:  logger,
	}
	memberships := service.NewMembershipService(deps)

	srv, err := grpcserver.NewServer(grpcserver.Services{
		Clubs:       service.NewClubService(deps),
		Posts:       service.NewPostService(deps),
		Memberships: memberships,
		Sessions:    auth.NewSessionResolver(db, &config.SessionConfig{CacheSize: 10, CacheTTL: time.Minute}, logger),
		Metrics:     serverMetrics,
	}, "0", logger)
	require.NoError(t, err)

	go func() {
		_ = srv.Serve()
	}()

	conn, err := grpc.NewClient(srv.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	return &testSuite{
		db:               db,
		ledger:           fl,
		memberships:      memberships,
		metrics:          serverMetrics,
		conn:             conn,
		clubClient:       clubv1.NewClubServiceClient(conn),
		postClient:       clubv1.NewClubPostServiceClient(conn),
		membershipClient: clubv1.NewClubMembershipServiceClient(conn),
		cleanup: func() {
			_ = conn.Close()
			srv.Stop()
			ledgerAPI.Close()
			_ = redisClient.Close()
			dbCleanup()
		},
	}
}

// user is a persisted user with a live session
type user struct {
	id        int64
	sessionID string
}

// createUser persists a user, opens a session and funds their Buzz account
func (ts *testSuite) createUser(ctx context.Context, t *testing.T, name string, balance int64) user {
	t.Helper()

	u, err := testutil.CreateUser(ctx, ts.db, name)
	require.NoError(t, err)

	sessionID, err := testutil.CreateSession(ctx, ts.db, u.ID)
	require.NoError(t, err)

	ts.ledger.setBalance(u.ID, balance)
	return user{id: u.ID, sessionID: sessionID}
}

// as returns ctx carrying the user's session
func as(ctx context.Context, u user) context.Context {
	return metadata.AppendToOutgoingContext(ctx, grpcserver.SessionHeader, u.sessionID)
}

// tierByName finds a tier in a listing
func tierByName(t *testing.T, tiers []*clubv1.ClubTier, name string) *clubv1.ClubTier {
	t.Helper()
	for _, tier := range tiers {
		if tier.Name == name {
			return tier
		}
	}
	require.FailNow(t, fmt.Sprintf("tier %q not found", name))
	return nil
}
