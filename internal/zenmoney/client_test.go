package zenmoney

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

const testTokenZen = "test-token"

func newTestServer(t *testing.T, status int, body string, capture *map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, diffPath, r.URL.Path)
		require.Equal(t, "Bearer "+testTokenZen, r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{
			name:   "valid token",
			status: http.StatusOK,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "forbidden",
			status:  http.StatusForbidden,
			wantErr: ErrTokenBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t, tt.status, `{}`, nil)
			client := NewClientWithBaseURL(server.URL)

			err := client.ValidateToken(context.Background(), testTokenZen)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateTokenEmpty(t *testing.T) {
	t.Parallel()

	err := NewClient().ValidateToken(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyToken)
}

func TestValidateTokenServerError(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, http.StatusInternalServerError, "oops", nil)
	client := NewClientWithBaseURL(server.URL)

	err := client.ValidateToken(context.Background(), testTokenZen)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidToken)
	require.NotErrorIs(t, err, ErrTokenBlocked)
}

func TestFetchDiff(t *testing.T) {
	t.Parallel()

	body := `{
		"serverTimestamp": 123,
		"tag": {
			"tag-1": {"id": "tag-1", "title": "Еда", "parent": null},
			"tag-2": {"id": "tag-2", "title": "Продукты", "parent": "tag-1"}
		},
		"account": {
			"acc-1": {"id": "acc-1", "user": 42, "title": "Карта", "instrument": 10548, "type": "ccard", "archive": false}
		}
	}`

	server := newTestServer(t, http.StatusOK, body, nil)
	client := NewClientWithBaseURL(server.URL)

	diff, err := client.FetchDiff(context.Background(), testTokenZen)
	require.NoError(t, err)
	require.Len(t, diff.Tags, 2)
	require.Len(t, diff.Accounts, 1)

	byID := make(map[string]appmodels.Tag)
	for _, tag := range diff.Tags {
		byID[tag.ID] = tag
	}
	require.Nil(t, byID["tag-1"].ParentID)
	require.NotNil(t, byID["tag-2"].ParentID)
	require.Equal(t, "tag-1", *byID["tag-2"].ParentID)

	account := diff.Accounts[0]
	require.Equal(t, "acc-1", account.ID)
	require.Equal(t, "Карта", account.Title)
	require.Equal(t, 10548, account.InstrumentID)
	require.Equal(t, 42, account.ZenUserID)
}

func TestCreateTransaction(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := newTestServer(t, http.StatusOK, `{}`, &captured)
	client := NewClientWithBaseURL(server.URL)

	proposal := &appmodels.TransactionProposal{
		TagTitle:     "Продукты",
		AccountTitle: "Карта",
		Amount:       decimal.RequireFromString("1500.50"),
		Comment:      "продукты 1500,50 картой",
	}
	account := appmodels.Account{ID: "acc-1", InstrumentID: 10548, ZenUserID: 42}

	txn := NewOutcome(proposal, account, "tag-2", time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC))
	require.NoError(t, client.CreateTransaction(context.Background(), testTokenZen, txn))

	list, ok := captured["transaction"].([]any)
	require.True(t, ok, "transaction array missing in %v", captured)
	require.Len(t, list, 1)

	sent := list[0].(map[string]any)
	require.Equal(t, "2025-03-07", sent["date"])
	require.Equal(t, float64(42), sent["user"])
	require.Equal(t, "acc-1", sent["account"])
	require.Equal(t, "acc-1", sent["outcomeAccount"])
	require.Equal(t, 1500.5, sent["outcome"])
	require.Equal(t, float64(0), sent["income"])
	require.Equal(t, "tag-2", sent["category"])
	require.Equal(t, []any{"tag-2"}, sent["tag"])
	require.Nil(t, sent["merchant"])
	require.Equal(t, false, sent["deleted"])
	require.Equal(t, proposal.Comment, sent["comment"])
	require.NotEmpty(t, sent["id"])
}

func TestNewOutcomeWithoutTag(t *testing.T) {
	t.Parallel()

	proposal := &appmodels.TransactionProposal{Amount: decimal.NewFromInt(100)}
	txn := NewOutcome(proposal, appmodels.Account{ID: "acc-1"}, "", time.Now())

	require.Empty(t, txn.Category)
	require.Nil(t, txn.Tag)
}
