package bot

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/logger"
	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

const tokenPromptText = `🔑 Для работы с ботом необходим токен ZenMoney API.

Отправьте ваш токен ZenMoney для настройки бота.

💡 Как получить токен:
1. Войдите в ZenMoney
2. Перейдите в Настройки → API
3. Создайте новый токен
4. Скопируйте и отправьте его боту`

const helpText = `💰 Основной функционал:
Отправьте любое сообщение, и бот покажет структуру записи с подобранной категорией и возможностью применить, отменить или скорректировать.

🎙️ Голосовые сообщения распознаются и обрабатываются так же, как текст.

📋 Доступные команды:
/start - приветствие и проверка настройки
/help - эта справка
/tags_upd - обновить категории из ZenMoney
/accounts_upd - обновить счета из ZenMoney

💡 Как использовать:
Просто отправьте сообщение с описанием траты, например: "Купил хлеб в магазине за двести рублей"`

// handleStart handles the /start command.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

// handleStartCore is the testable implementation of handleStart.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	user := userFromContext(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	if !user.HasToken() {
		b.reply(ctx, tg, chatID, update.Message.ID, tokenPromptText)
		return
	}

	tagCount, err := b.tagRepo.Count(ctx, user.ID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to count tags")
	}
	accountCount, err := b.accountRepo.Count(ctx, user.ID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to count accounts")
	}

	if tagCount == 0 || accountCount == 0 {
		text := "Для завершения настройки выполните следующие действия:"
		if tagCount == 0 {
			text += "\n\n📋 /tags_upd - синхронизация категорий"
		} else {
			text += "\n\n✅ Категории уже загружены"
		}
		if accountCount == 0 {
			text += "\n💳 /accounts_upd - синхронизация счетов"
		} else {
			text += "\n✅ Счета уже загружены"
		}
		b.reply(ctx, tg, chatID, update.Message.ID, text)
		return
	}

	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	if name == "" {
		name = "Пользователь"
	}

	b.reply(ctx, tg, chatID, update.Message.ID,
		fmt.Sprintf("Добро пожаловать в ZenMoney Bot, %s!\n\n%s", name, helpText))
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

// handleHelpCore is the testable implementation of handleHelp.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	b.reply(ctx, tg, update.Message.Chat.ID, update.Message.ID, helpText)
}

// handleTagsUpdate handles the /tags_upd command.
func (b *Bot) handleTagsUpdate(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleTagsUpdateCore(ctx, tgBot, update)
}

// handleTagsUpdateCore syncs the user's ZenMoney categories into the
// local snapshot, reporting progress by editing the status message.
func (b *Bot) handleTagsUpdateCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	user, msg := b.syncPrelude(ctx, tg, update)
	if user == nil {
		return
	}

	status, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            "🔄 Начинаем обновление категорий...",
		ReplyParameters: &tgmodels.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send sync status")
		return
	}

	diff, err := b.ledger.FetchDiff(ctx, user.ZenMoneyToken)
	if err != nil {
		b.editStatus(ctx, tg, msg.Chat.ID, status.ID, "❌ Ошибка при загрузке данных из ZenMoney: "+describeLedgerError(err))
		return
	}

	if len(diff.Tags) == 0 {
		b.editStatus(ctx, tg, msg.Chat.ID, status.ID, "❌ Категории не найдены в ZenMoney")
		return
	}

	if err := b.tagRepo.Replace(ctx, user.ID, diff.Tags); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to replace tags")
		b.editStatus(ctx, tg, msg.Chat.ID, status.ID, "❌ Ошибка при сохранении категорий")
		return
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(user.TelegramID)).
		Int("count", len(diff.Tags)).
		Msg("Tags synced")

	b.editStatus(ctx, tg, msg.Chat.ID, status.ID,
		fmt.Sprintf("✅ Категории успешно обновлены!\n\n📊 Загружено: %d", len(diff.Tags)))
}

// handleAccountsUpdate handles the /accounts_upd command.
func (b *Bot) handleAccountsUpdate(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleAccountsUpdateCore(ctx, tgBot, update)
}

// handleAccountsUpdateCore syncs the user's ZenMoney accounts into the
// local snapshot.
func (b *Bot) handleAccountsUpdateCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	user, msg := b.syncPrelude(ctx, tg, update)
	if user == nil {
		return
	}

	status, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            "🔄 Начинаем обновление счетов...",
		ReplyParameters: &tgmodels.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send sync status")
		return
	}

	diff, err := b.ledger.FetchDiff(ctx, user.ZenMoneyToken)
	if err != nil {
		b.editStatus(ctx, tg, msg.Chat.ID, status.ID, "❌ Ошибка при загрузке данных из ZenMoney: "+describeLedgerError(err))
		return
	}

	if len(diff.Accounts) == 0 {
		b.editStatus(ctx, tg, msg.Chat.ID, status.ID, "❌ Счета не найдены в ZenMoney")
		return
	}

	if err := b.accountRepo.Replace(ctx, user.ID, diff.Accounts); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to replace accounts")
		b.editStatus(ctx, tg, msg.Chat.ID, status.ID, "❌ Ошибка при сохранении счетов")
		return
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(user.TelegramID)).
		Int("count", len(diff.Accounts)).
		Msg("Accounts synced")

	b.editStatus(ctx, tg, msg.Chat.ID, status.ID,
		fmt.Sprintf("✅ Счета успешно обновлены!\n\n📊 Загружено: %d", len(diff.Accounts)))
}

// syncPrelude validates the common preconditions of the sync commands:
// a message update from an authorized user with a stored token.
func (b *Bot) syncPrelude(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) (*appmodels.User, *tgmodels.Message) {
	if update.Message == nil {
		return nil, nil
	}

	user := userFromContext(ctx)
	if user == nil {
		return nil, nil
	}

	if !user.HasToken() {
		b.reply(ctx, tg, update.Message.Chat.ID, update.Message.ID,
			"ZenMoney API не настроен. Отправьте токен ZenMoney для настройки.")
		return nil, nil
	}

	return user, update.Message
}

// editStatus rewrites a sync status message.
func (b *Bot) editStatus(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, text string) {
	_, err := tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to edit sync status")
	}
}
