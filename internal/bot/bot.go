// Package bot provides the Telegram bot initialization and handlers.
package bot

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/config"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/gemini"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/logger"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/parser"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/proposal"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/repository"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/suggest"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/zenmoney"
)

// Ledger is the ZenMoney API surface the handlers need.
type Ledger interface {
	ValidateToken(ctx context.Context, token string) error
	FetchDiff(ctx context.Context, token string) (*zenmoney.Diff, error)
	CreateTransaction(ctx context.Context, token string, txn zenmoney.Transaction) error
}

// Transcriber converts voice message audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioBytes []byte, mimeType string) (string, error)
}

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot         *bot.Bot
	cfg         *config.Config
	userRepo    *repository.UserRepository
	tagRepo     *repository.TagRepository
	accountRepo *repository.AccountRepository
	settingRepo *repository.SettingRepository
	suggester   *suggest.Suggester
	transcriber Transcriber
	ledger      Ledger
	proposals   *proposal.Store
	accounts    parser.AccountPolicy
}

// New creates a new Bot instance.
func New(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*Bot, error) {
	b := &Bot{
		cfg:         cfg,
		userRepo:    repository.NewUserRepository(pool),
		tagRepo:     repository.NewTagRepository(pool),
		accountRepo: repository.NewAccountRepository(pool),
		settingRepo: repository.NewSettingRepository(pool),
		ledger:      zenmoney.NewClient(),
		proposals:   proposal.NewStore(cfg.ProposalCacheSize, cfg.ProposalCacheTTL),
		accounts:    parser.DefaultAccountPolicy(),
	}

	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		b.suggester = suggest.New(client)
		b.transcriber = client
	} else {
		b.suggester = suggest.New(nil)
		logger.Log.Warn().Msg("GEMINI_API_KEY not set, category suggestions and voice input disabled")
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.authMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.registerHandlers()

	return b, nil
}

// Start begins polling for updates.
func (b *Bot) Start(ctx context.Context) {
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/tags_upd", bot.MatchTypePrefix, b.handleTagsUpdate)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/accounts_upd", bot.MatchTypePrefix, b.handleAccountsUpdate)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, proposal.CallbackRoot, bot.MatchTypePrefix, b.handleProposalCallback)
}

type ctxKey int

const userContextKey ctxKey = iota

// userFromContext returns the authorized user stored by the middleware.
func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// contextWithUser stores the authorized user for downstream handlers.
func contextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// authMiddleware resolves the sender against the users table before
// processing. Unknown senders get a message they can forward to the
// administrator.
func (b *Bot) authMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		userID := extractUserID(update)
		if userID == 0 {
			return
		}

		username := extractUsername(update)
		logUserAction(userID, username, update)

		user, err := b.userRepo.Authorize(ctx, userID, username)
		if err != nil {
			logger.Log.Error().
				Str("user_hash", logger.HashUserID(userID)).
				Err(err).
				Msg("Failed to authorize user")
			return
		}

		if user == nil {
			logger.Log.Warn().
				Str("user_hash", logger.HashUserID(userID)).
				Msg("Blocked unauthorized user")
			b.sendUnauthorizedMessage(ctx, tgBot, update, userID, username)
			return
		}

		next(contextWithUser(ctx, user), tgBot, update)
	}
}

// sendUnauthorizedMessage tells the sender how to request access.
func (b *Bot) sendUnauthorizedMessage(ctx context.Context, tg TelegramAPI, update *tgmodels.Update, userID int64, username string) {
	if update.Message == nil {
		return
	}

	login := username
	if login == "" {
		login = "не указан"
	}

	text := fmt.Sprintf("Ваш логин: %s\nВаш Telegram ID: %d\n\nПерешлите это сообщение администратору, чтобы он добавил вас в группу тестирования", login, userID)

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          update.Message.Chat.ID,
		Text:            text,
		ReplyParameters: &tgmodels.ReplyParameters{MessageID: update.Message.ID},
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send unauthorized message")
	}
}

// logUserAction logs the user's input/action.
func logUserAction(userID int64, username string, update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		event := logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("chat_hash", logger.HashChatID(msg.Chat.ID))

		if msg.Text != "" {
			event = event.Str("text", logger.SanitizeText(msg.Text))
		}
		if msg.Voice != nil {
			event = event.Str("type", "voice").Int("duration", msg.Voice.Duration)
		}

		event.Msg("User input")

	case update.CallbackQuery != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("data", update.CallbackQuery.Data).
			Msg("Callback query")

	case update.EditedMessage != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("text", logger.SanitizeText(update.EditedMessage.Text)).
			Msg("Edited message")
	}
}

// extractUsername gets the username from the update.
func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.Username
	}
	if update.EditedMessage != nil && update.EditedMessage.From != nil {
		return update.EditedMessage.From.Username
	}
	return ""
}

// extractUserID gets the user ID from various update types.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	if update.EditedMessage != nil && update.EditedMessage.From != nil {
		return update.EditedMessage.From.ID
	}
	return 0
}

// defaultHandler routes non-command messages: token capture for users
// without a ZenMoney token, voice transcription, and free-text record
// drafting.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	user := userFromContext(ctx)
	if user == nil {
		return
	}

	msg := update.Message

	if !user.HasToken() && msg.Text != "" {
		b.handleTokenInputCore(ctx, tg, msg, user)
		return
	}

	if msg.Voice != nil {
		b.handleVoiceCore(ctx, tg, msg, user)
		return
	}

	if msg.Text != "" {
		b.handleNewRecordCore(ctx, tg, msg.Chat.ID, msg.ID, msg.Text, user)
	}
}
