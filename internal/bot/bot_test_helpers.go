package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/config"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/database"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/parser"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/proposal"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/repository"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/suggest"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/zenmoney"
)

// completerFunc adapts a function to the suggest.Completer interface.
type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// transcriberFunc adapts a function to the Transcriber interface.
type transcriberFunc func(ctx context.Context, audioBytes []byte, mimeType string) (string, error)

func (f transcriberFunc) Transcribe(ctx context.Context, audioBytes []byte, mimeType string) (string, error) {
	return f(ctx, audioBytes, mimeType)
}

// mockLedger records ZenMoney API calls and returns injected results.
type mockLedger struct {
	ValidateErr error
	DiffResult  *zenmoney.Diff
	DiffErr     error
	CreateErr   error

	ValidatedTokens []string
	Created         []zenmoney.Transaction
}

func (m *mockLedger) ValidateToken(_ context.Context, token string) error {
	m.ValidatedTokens = append(m.ValidatedTokens, token)
	return m.ValidateErr
}

func (m *mockLedger) FetchDiff(_ context.Context, _ string) (*zenmoney.Diff, error) {
	if m.DiffErr != nil {
		return nil, m.DiffErr
	}
	if m.DiffResult != nil {
		return m.DiffResult, nil
	}
	return &zenmoney.Diff{}, nil
}

func (m *mockLedger) CreateTransaction(_ context.Context, _ string, txn zenmoney.Transaction) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Created = append(m.Created, txn)
	return nil
}

// setupTestBot creates a Bot wired to a rolled-back test transaction,
// a recording ledger and a completer that suggests nothing.
func setupTestBot(t *testing.T) (*Bot, *mockLedger) {
	t.Helper()

	tx := database.TestTx(t)
	ledger := &mockLedger{}

	cfg := &config.Config{
		TelegramBotToken:  "test-token",
		DatabaseURL:       "test-url",
		ProposalCacheSize: config.DefaultProposalCacheSize,
		ProposalCacheTTL:  config.DefaultProposalCacheTTL,
	}

	b := &Bot{
		cfg:         cfg,
		userRepo:    repository.NewUserRepository(tx),
		tagRepo:     repository.NewTagRepository(tx),
		accountRepo: repository.NewAccountRepository(tx),
		settingRepo: repository.NewSettingRepository(tx),
		suggester:   suggest.New(nil),
		ledger:      ledger,
		proposals:   proposal.NewStore(cfg.ProposalCacheSize, cfg.ProposalCacheTTL),
		accounts:    parser.DefaultAccountPolicy(),
	}

	return b, ledger
}

// withSuggestions swaps the suggester for one that always answers with
// the given comma-separated tag titles.
func (b *Bot) withSuggestions(response string) {
	b.suggester = suggest.New(completerFunc(func(_ context.Context, _ string) (string, error) {
		return response, nil
	}))
}

// seedBotUser creates an authorized user with a token, tags and accounts.
func seedBotUser(t *testing.T, b *Bot, telegramID int64) *models.User {
	t.Helper()

	ctx := context.Background()

	user := &models.User{
		TelegramID: telegramID,
		Username:   "botuser",
		FirstName:  "Test",
		IsActive:   true,
	}
	require.NoError(t, b.userRepo.Create(ctx, user))
	require.NoError(t, b.userRepo.UpdateToken(ctx, user.ID, "zen-test-token"))
	user.ZenMoneyToken = "zen-test-token"

	parent := "root-food"
	require.NoError(t, b.tagRepo.Replace(ctx, user.ID, []models.Tag{
		{ID: "root-food", Title: "Еда"},
		{ID: "tag-groceries", Title: "Продукты", ParentID: &parent},
		{ID: "tag-cafe", Title: "Кафе и рестораны", ParentID: &parent},
	}))

	require.NoError(t, b.accountRepo.Replace(ctx, user.ID, []models.Account{
		{ID: "acc-card", Title: "Карта", InstrumentID: 2, Type: "ccard", ZenUserID: 42},
		{ID: "acc-cash", Title: "Бумажник", InstrumentID: 2, Type: "cash", ZenUserID: 42},
	}))

	return user
}
