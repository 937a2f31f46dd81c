// Package ledger is a client for the Buzz ledger service that holds user balances
// and records membership charges.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/parsascontentcorner/clubserver/internal/config"
	"github.com/parsascontentcorner/clubserver/internal/errs"
	"github.com/parsascontentcorner/clubserver/internal/ratelimit"
)

// TransactionType classifies a ledger transaction
type TransactionType string

// Transaction types
const (
	TransactionTypeClubMembership       TransactionType = "clubMembership"
	TransactionTypeClubMembershipRefund TransactionType = "clubMembershipRefund"
)

// codeInsufficientFunds is the error code the ledger returns for failed balance checks
const codeInsufficientFunds = "INSUFFICIENT_FUNDS"

// Account is a user's Buzz account
type Account struct {
	ID      int64 `json:"id"`
	Balance int64 `json:"balance"`
}

// Transaction moves Buzz between two accounts
type Transaction struct {
	FromAccountID int64           `json:"fromAccountId"`
	ToAccountID   int64           `json:"toAccountId"`
	Amount        int64           `json:"amount"`
	Type          TransactionType `json:"type"`
	Description   string          `json:"description,omitempty"`
	// ExternalTransactionID makes retries of the same charge idempotent
	ExternalTransactionID string         `json:"externalTransactionId,omitempty"`
	Details               map[string]any `json:"details,omitempty"`
}

// TransactionResult is the ledger's receipt for a transaction
type TransactionResult struct {
	TransactionID string `json:"transactionId"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the ledger HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
}

// NewClient creates a ledger client. When client credentials are configured
// requests carry an OAuth2 bearer token obtained with the client credentials grant.
func NewClient(cfg *config.LedgerConfig, logger *zap.Logger) *Client {
	var httpClient *http.Client
	if cfg.ClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = cc.Client(context.Background())
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// SetRateLimiter paces requests with limiter
func (c *Client) SetRateLimiter(limiter *ratelimit.Limiter) {
	c.limiter = limiter
}

// GetAccount fetches the Buzz account of a user
func (c *Client) GetAccount(ctx context.Context, userID int64) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/accounts", fmt.Sprintf("/accounts/%d", userID), nil, &account); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched buzz account",
		zap.Int64("user_id", userID),
		zap.Int64("balance", account.Balance),
	)

	return &account, nil
}

// CreateTransaction records a transaction. A failed balance check is returned
// as errs.ErrInsufficientFunds.
func (c *Client) CreateTransaction(ctx context.Context, tx Transaction) (*TransactionResult, error) {
	var result TransactionResult
	if err := c.do(ctx, http.MethodPost, "/transactions", "/transactions", tx, &result); err != nil {
		return nil, err
	}

	c.logger.Info("created buzz transaction",
		zap.String("transaction_id", result.TransactionID),
		zap.Int64("from_account_id", tx.FromAccountID),
		zap.Int64("to_account_id", tx.ToAccountID),
		zap.Int64("amount", tx.Amount),
		zap.String("type", string(tx.Type)),
	)

	return &result, nil
}

// do makes a rate-limited JSON request. route groups paths sharing a rate limit bucket.
func (c *Client) do(ctx context.Context, method, route, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, route); err != nil {
			return fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make ledger request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	var backoff time.Duration
	if c.limiter != nil {
		backoff = c.limiter.Observe(route, resp)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("rate limited by ledger API, retry after %s", backoff)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode ledger response: %w", err)
	}

	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)

	switch {
	case resp.StatusCode == http.StatusPaymentRequired || apiErr.Code == codeInsufficientFunds:
		msg := apiErr.Message
		if msg == "" {
			msg = "balance check failed"
		}
		return fmt.Errorf("%w: %s", errs.ErrInsufficientFunds, msg)
	case resp.StatusCode == http.StatusNotFound:
		return errs.NotFound("buzz account")
	default:
		return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
}

// StatusError is an unexpected ledger response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ledger API returned status %d: %s", e.StatusCode, e.Body)
}
