package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/logger"
	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/parser"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/proposal"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/zenmoney"
)

// handleProposalCallback handles every button of the draft record keyboard.
func (b *Bot) handleProposalCallback(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleProposalCallbackCore(ctx, tgBot, update)
}

// handleProposalCallbackCore is the testable implementation of
// handleProposalCallback. The draft message text is the source of
// truth: every action parses or edits it in place.
func (b *Bot) handleProposalCallbackCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.CallbackQuery == nil {
		return
	}

	_, _ = tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	})

	msg := update.CallbackQuery.Message.Message
	if msg == nil {
		return
	}

	user := userFromContext(ctx)
	if user == nil {
		return
	}

	intent, err := DecodeCallback(update.CallbackQuery.Data)
	if err != nil {
		logger.Log.Warn().
			Str("data", update.CallbackQuery.Data).
			Err(err).
			Msg("Unknown callback data")
		return
	}

	chatID := msg.Chat.ID
	messageID := msg.ID

	switch intent.Kind {
	case IntentSelectTag:
		b.applyTagSelection(ctx, tg, chatID, messageID, msg.Text, intent.TagID, user)
	case IntentSelectAccount:
		b.applyAccountSelection(ctx, tg, chatID, messageID, msg.Text, intent, user)
	case IntentApply:
		b.applyProposal(ctx, tg, chatID, messageID, msg.Text, user)
	case IntentCancel:
		b.cancelProposal(ctx, tg, chatID, messageID, msg.Text)
	case IntentEdit:
		b.discardProposal(ctx, tg, chatID, messageID)
	}
}

// keyboardTags returns the tags to render on a rebuilt keyboard: the
// suggestions remembered for the message, or the user's leaf tags when
// the memory has expired.
func (b *Bot) keyboardTags(ctx context.Context, chatID int64, messageID int, user *appmodels.User) []appmodels.Tag {
	if tags := b.proposals.Get(chatID, messageID); tags != nil {
		return tags
	}

	tags, err := b.tagRepo.GetLeaf(ctx, user.ID)
	if err != nil {
		logger.Log.Error().
			Str("user_hash", logger.HashUserID(user.TelegramID)).
			Err(err).
			Msg("Failed to load tags for keyboard")
		return nil
	}
	return tags
}

// applyTagSelection replaces the category line with the chosen tag.
func (b *Bot) applyTagSelection(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, text, tagID string, user *appmodels.User) {
	tag, err := b.tagRepo.GetByID(ctx, user.ID, tagID)
	if err != nil {
		logger.Log.Error().Str("tag_id", tagID).Err(err).Msg("Failed to load tag")
		return
	}
	if tag == nil {
		logger.Log.Warn().Str("tag_id", tagID).Msg("Callback references unknown tag")
		return
	}

	b.editProposal(ctx, tg, chatID, messageID,
		proposal.UpdateTag(text, tag.Title),
		proposal.Keyboard(b.keyboardTags(ctx, chatID, messageID, user)))
}

// applyAccountSelection replaces the account line with the configured
// default for the pressed button.
func (b *Bot) applyAccountSelection(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, text string, intent CallbackIntent, user *appmodels.User) {
	title, err := b.settingRepo.Resolve(ctx, user.ID, intent.AccountSetting, intent.AccountFallback)
	if err != nil {
		logger.Log.Warn().Str("setting", intent.AccountSetting).Err(err).Msg("Failed to resolve account setting")
		title = intent.AccountFallback
	}

	b.editProposal(ctx, tg, chatID, messageID,
		proposal.UpdateAccount(text, title),
		proposal.Keyboard(b.keyboardTags(ctx, chatID, messageID, user)))
}

// editProposal rewrites the draft message, keeping its keyboard.
func (b *Bot) editProposal(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, text string, keyboard *tgmodels.InlineKeyboardMarkup) {
	_, err := tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		logger.Log.Error().
			Str("chat_hash", logger.HashChatID(chatID)).
			Int("message_id", messageID).
			Err(err).
			Msg("Failed to edit draft record")
	}
}

// applyProposal commits the draft to ZenMoney and rewrites the message
// as a confirmation. A message that no longer parses is left intact
// and the failure is reported separately.
func (b *Bot) applyProposal(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, text string, user *appmodels.User) {
	p, err := proposal.Parse(text)
	if err != nil {
		logger.Log.Warn().
			Str("chat_hash", logger.HashChatID(chatID)).
			Err(err).
			Msg("Draft message does not parse")
		b.reply(ctx, tg, chatID, messageID, "❌ Не удалось разобрать запись. Создайте новую запись.")
		return
	}

	account, err := b.accountRepo.GetByTitle(ctx, user.ID, p.AccountTitle)
	if err == nil && account == nil {
		err = fmt.Errorf("счет %q не найден, выполните /accounts_upd", p.AccountTitle)
	}
	if err != nil {
		b.editApplyFailure(ctx, tg, chatID, messageID, err)
		return
	}

	tagID := ""
	if tag, tagErr := b.tagRepo.GetByTitle(ctx, user.ID, p.TagTitle); tagErr == nil && tag != nil {
		tagID = tag.ID
	}

	txn := zenmoney.NewOutcome(p, *account, tagID, time.Now())
	if err := b.ledger.CreateTransaction(ctx, user.ZenMoneyToken, txn); err != nil {
		logger.Log.Error().
			Str("user_hash", logger.HashUserID(user.TelegramID)).
			Err(err).
			Msg("Failed to create transaction")
		b.editApplyFailure(ctx, tg, chatID, messageID, err)
		return
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(user.TelegramID)).
		Str("account", p.AccountTitle).
		Str("amount", p.Amount.String()).
		Msg("Transaction created")

	confirmation := fmt.Sprintf("✅ Запись добавлена\n\n%s\n%s\n%s ₽\n%s",
		p.TagTitle, p.AccountTitle, parser.FormatAmount(p.Amount), p.Comment)

	_, err = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      confirmation,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to edit confirmation")
	}

	b.proposals.Delete(chatID, messageID)
}

// editApplyFailure rewrites the draft message as a ZenMoney error report.
func (b *Bot) editApplyFailure(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, cause error) {
	text := fmt.Sprintf("❌ Ошибка при создании записи в ZenMoney\n\n%s\n\n💡 Проверьте настройки подключения к ZenMoney API.", describeLedgerError(cause))

	_, err := tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to edit failure report")
	}
}

// describeLedgerError keeps known API errors readable for the user.
func describeLedgerError(err error) string {
	switch {
	case errors.Is(err, zenmoney.ErrInvalidToken):
		return "Неверный токен"
	case errors.Is(err, zenmoney.ErrTokenBlocked):
		return "Токен заблокирован"
	case errors.Is(err, zenmoney.ErrTimeout):
		return "Таймаут подключения"
	default:
		return err.Error()
	}
}

// cancelProposal strikes the draft through and drops the keyboard.
func (b *Bot) cancelProposal(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, text string) {
	if _, err := proposal.Parse(text); err != nil {
		logger.Log.Warn().
			Str("chat_hash", logger.HashChatID(chatID)).
			Err(err).
			Msg("Cancel on a message that does not parse")
		b.reply(ctx, tg, chatID, messageID, "❌ Не удалось разобрать запись. Создайте новую запись.")
		return
	}

	_, err := tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      "❌ Запись отменена\n\n" + strikethrough(text),
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to edit cancelled record")
	}

	b.proposals.Delete(chatID, messageID)
}

// discardProposal deletes the draft message entirely.
func (b *Bot) discardProposal(ctx context.Context, tg TelegramAPI, chatID int64, messageID int) {
	_, err := tg.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		logger.Log.Error().
			Str("chat_hash", logger.HashChatID(chatID)).
			Int("message_id", messageID).
			Err(err).
			Msg("Failed to delete draft record")
	}

	b.proposals.Delete(chatID, messageID)
}
