package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/logger"
	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/parser"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/proposal"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/zenmoney"
)

// handleTokenInputCore treats the message text as a ZenMoney API token:
// validates it against the API, persists it and explains the next
// setup steps.
func (b *Bot) handleTokenInputCore(ctx context.Context, tg TelegramAPI, msg *tgmodels.Message, user *appmodels.User) {
	chatID := msg.Chat.ID
	token := strings.TrimSpace(msg.Text)

	if err := b.ledger.ValidateToken(ctx, token); err != nil {
		logger.Log.Warn().
			Str("user_hash", logger.HashUserID(user.TelegramID)).
			Err(err).
			Msg("Token validation failed")

		text := "❌ Токен недействителен или не работает.\n\n" +
			describeTokenError(err) +
			"\n\nПроверьте правильность токена и попробуйте еще раз."
		b.reply(ctx, tg, chatID, msg.ID, text)
		return
	}

	if err := b.userRepo.UpdateToken(ctx, user.ID, token); err != nil {
		logger.Log.Error().
			Str("user_hash", logger.HashUserID(user.TelegramID)).
			Err(err).
			Msg("Failed to store token")
		b.reply(ctx, tg, chatID, msg.ID, "❌ Произошла ошибка при сохранении токена. Попробуйте еще раз.")
		return
	}

	user.ZenMoneyToken = token

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(user.TelegramID)).
		Str("token_hash", logger.HashToken(token)).
		Msg("Token saved")

	text := "✅ Токен успешно сохранен!\n\n" +
		"Для завершения настройки выполните следующие действия:\n\n" +
		"📋 /tags_upd - синхронизация категорий\n" +
		"💳 /accounts_upd - синхронизация счетов"
	b.reply(ctx, tg, chatID, msg.ID, text)
}

// describeTokenError maps a token validation error to a user-facing
// explanation.
func describeTokenError(err error) string {
	switch {
	case errors.Is(err, zenmoney.ErrInvalidToken):
		return "Неверный токен"
	case errors.Is(err, zenmoney.ErrTokenBlocked):
		return "Токен заблокирован"
	case errors.Is(err, zenmoney.ErrTimeout):
		return "Таймаут подключения"
	case errors.Is(err, zenmoney.ErrEmptyToken):
		return "Пустой токен"
	default:
		return "Ошибка подключения к ZenMoney API"
	}
}

// handleNewRecordCore builds a draft record from free text: extracts
// the amount, picks an account by keywords, asks the suggester for
// categories and sends the draft with its inline keyboard.
func (b *Bot) handleNewRecordCore(ctx context.Context, tg TelegramAPI, chatID int64, replyToID int, text string, user *appmodels.User) {
	leaves, err := b.tagRepo.GetLeaf(ctx, user.ID)
	if err != nil {
		logger.Log.Error().
			Str("user_hash", logger.HashUserID(user.TelegramID)).
			Err(err).
			Msg("Failed to load tags for suggestion")
	}

	result := b.suggester.Suggest(ctx, text, leaves)

	amount, ok := parser.ExtractAmount(text)
	if !ok {
		logger.Log.Debug().
			Str("chat_hash", logger.HashChatID(chatID)).
			Str("text", logger.SanitizeText(text)).
			Msg("No amount found in message")
	}

	tagTitle := appmodels.DefaultTagTitle
	tagID := ""
	if result.Success && len(result.Tags) > 0 {
		tagTitle = result.Tags[0].Title
		tagID = result.Tags[0].ID
	}

	draft := proposal.Draft{
		Date:         time.Now(),
		TagID:        tagID,
		TagTitle:     tagTitle,
		AccountTitle: b.resolveAccountTitle(ctx, user.ID, b.accounts.Detect(text)),
		Amount:       amount,
		Comment:      text,
	}

	msg, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            proposal.Render(draft),
		ReplyMarkup:     proposal.Keyboard(result.Tags),
		ReplyParameters: &tgmodels.ReplyParameters{MessageID: replyToID},
	})
	if err != nil {
		logger.Log.Error().
			Str("chat_hash", logger.HashChatID(chatID)).
			Err(err).
			Msg("Failed to send draft record")
		b.reply(ctx, tg, chatID, replyToID, "❌ Ошибка при обработке сообщения")
		return
	}

	b.proposals.Put(chatID, msg.ID, result.Tags)
}

// resolveAccountTitle picks the account title for a detected account
// type, honoring the user's configured defaults.
func (b *Bot) resolveAccountTitle(ctx context.Context, userID int64, accountType appmodels.AccountType) string {
	setting := appmodels.SettingDefaultCash
	fallback := appmodels.DefaultCashTitle
	if accountType == appmodels.AccountTypeCard {
		setting = appmodels.SettingDefaultCard
		fallback = appmodels.DefaultCardTitle
	}

	title, err := b.settingRepo.Resolve(ctx, userID, setting, fallback)
	if err != nil {
		logger.Log.Warn().Str("setting", setting).Err(err).Msg("Failed to resolve account setting")
		return fallback
	}
	return title
}

// reply sends a plain text reply to a message, logging send failures.
func (b *Bot) reply(ctx context.Context, tg TelegramAPI, chatID int64, replyToID int, text string) {
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            text,
		ReplyParameters: &tgmodels.ReplyParameters{MessageID: replyToID},
	})
	if err != nil {
		logger.Log.Error().
			Str("chat_hash", logger.HashChatID(chatID)).
			Err(err).
			Msg("Failed to send reply")
	}
}
