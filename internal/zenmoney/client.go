// Package zenmoney talks to the ZenMoney v8 diff API: token checks,
// tag and account sync, and posting new transactions. Every call
// carries the user's personal token.
package zenmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

const (
	defaultBaseURL = "https://api.zenmoney.ru"
	diffPath       = "/v8/diff"
	userAgent      = "sd-zenmoney-bot/1.0"

	// Token validation is interactive, sync can take longer.
	validateTimeout = 10 * time.Second
	requestTimeout  = 30 * time.Second
)

// Classified token failures, mapped to user-facing messages upstream.
var (
	ErrEmptyToken   = errors.New("token is empty")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenBlocked = errors.New("token blocked")
	ErrTimeout      = errors.New("connection timeout")
)

// Client is a ZenMoney diff API client. The zero base URL points at
// the production API; tests override it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the production ZenMoney API.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a client against a custom endpoint.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// diffRequest is the body of every v8/diff call. serverTimestamp zero
// asks for a full snapshot.
type diffRequest struct {
	CurrentClientTimestamp int64         `json:"currentClientTimestamp"`
	ServerTimestamp        int64         `json:"serverTimestamp"`
	Transaction            []Transaction `json:"transaction,omitempty"`
}

type tagPayload struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Parent  *string `json:"parent"`
	Archive bool    `json:"archive"`
}

type accountPayload struct {
	ID         string `json:"id"`
	User       int    `json:"user"`
	Title      string `json:"title"`
	Instrument int    `json:"instrument"`
	Type       string `json:"type"`
	Archive    bool   `json:"archive"`
}

type diffResponse struct {
	ServerTimestamp int64                     `json:"serverTimestamp"`
	Tag             map[string]tagPayload     `json:"tag"`
	Account         map[string]accountPayload `json:"account"`
}

// Diff holds the synced reference data of one ZenMoney user.
type Diff struct {
	Tags     []appmodels.Tag
	Accounts []appmodels.Account
}

// ValidateToken makes a minimal diff request with the given token and
// classifies the outcome. A nil error means the token works.
func (c *Client) ValidateToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	_, err := c.post(ctx, token, diffRequest{
		CurrentClientTimestamp: time.Now().Unix(),
	}, validateTimeout)
	return err
}

// FetchDiff downloads the full tag and account snapshot.
func (c *Client) FetchDiff(ctx context.Context, token string) (*Diff, error) {
	resp, err := c.post(ctx, token, diffRequest{
		CurrentClientTimestamp: time.Now().Unix(),
	}, requestTimeout)
	if err != nil {
		return nil, err
	}

	diff := &Diff{}

	for id, tag := range resp.Tag {
		if tag.ID == "" {
			tag.ID = id
		}
		diff.Tags = append(diff.Tags, appmodels.Tag{
			ID:       tag.ID,
			Title:    tag.Title,
			ParentID: tag.Parent,
		})
	}

	for id, account := range resp.Account {
		if account.ID == "" {
			account.ID = id
		}
		diff.Accounts = append(diff.Accounts, appmodels.Account{
			ID:           account.ID,
			Title:        account.Title,
			InstrumentID: account.Instrument,
			Type:         account.Type,
			Archived:     account.Archive,
			ZenUserID:    account.User,
		})
	}

	return diff, nil
}

// CreateTransaction posts a single new transaction.
func (c *Client) CreateTransaction(ctx context.Context, token string, txn Transaction) error {
	_, err := c.post(ctx, token, diffRequest{
		CurrentClientTimestamp: time.Now().Unix(),
		Transaction:            []Transaction{txn},
	}, requestTimeout)
	return err
}

func (c *Client) post(ctx context.Context, token string, body diffRequest, timeout time.Duration) (*diffResponse, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode diff request: %w", err)
	}

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, c.baseURL+diffPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build diff request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("diff request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrInvalidToken
	case http.StatusForbidden:
		return nil, ErrTokenBlocked
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("diff request returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var diff diffResponse
	if err := json.NewDecoder(resp.Body).Decode(&diff); err != nil {
		return nil, fmt.Errorf("failed to decode diff response: %w", err)
	}

	return &diff, nil
}
