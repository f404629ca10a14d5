package bot

import (
	"context"
	"testing"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/bot/mocks"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/zenmoney"
)

func TestHandleTokenInput(t *testing.T) {
	t.Parallel()

	t.Run("stores a valid token", func(t *testing.T) {
		t.Parallel()
		b, ledger := setupTestBot(t)
		ctx := context.Background()

		user := &models.User{TelegramID: 500100, Username: "tokenuser", IsActive: true}
		require.NoError(t, b.userRepo.Create(ctx, user))

		mockBot := mocks.NewMockBot()
		update := mocks.MessageUpdate(500100, 500100, "  zen-fresh-token  ")

		b.handleTokenInputCore(ctx, mockBot, update.Message, user)

		require.Equal(t, []string{"zen-fresh-token"}, ledger.ValidatedTokens)
		require.True(t, user.HasToken())

		stored, err := b.userRepo.Authorize(ctx, 500100, "tokenuser")
		require.NoError(t, err)
		require.Equal(t, "zen-fresh-token", stored.ZenMoneyToken)

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "✅ Токен успешно сохранен!")
		require.Contains(t, sent.Text, "/tags_upd")
		require.Contains(t, sent.Text, "/accounts_upd")
	})

	t.Run("reports an invalid token without storing it", func(t *testing.T) {
		t.Parallel()
		b, ledger := setupTestBot(t)
		ctx := context.Background()

		user := &models.User{TelegramID: 500200, Username: "badtoken", IsActive: true}
		require.NoError(t, b.userRepo.Create(ctx, user))
		ledger.ValidateErr = zenmoney.ErrInvalidToken

		mockBot := mocks.NewMockBot()
		update := mocks.MessageUpdate(500200, 500200, "bad-token")

		b.handleTokenInputCore(ctx, mockBot, update.Message, user)

		require.False(t, user.HasToken())
		stored, err := b.userRepo.Authorize(ctx, 500200, "badtoken")
		require.NoError(t, err)
		require.False(t, stored.HasToken())

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "Токен недействителен")
		require.Contains(t, sent.Text, "Неверный токен")
	})

	t.Run("reports a blocked token", func(t *testing.T) {
		t.Parallel()
		b, ledger := setupTestBot(t)
		ctx := context.Background()

		user := &models.User{TelegramID: 500300, Username: "blocked", IsActive: true}
		require.NoError(t, b.userRepo.Create(ctx, user))
		ledger.ValidateErr = zenmoney.ErrTokenBlocked

		mockBot := mocks.NewMockBot()
		update := mocks.MessageUpdate(500300, 500300, "blocked-token")

		b.handleTokenInputCore(ctx, mockBot, update.Message, user)

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "Токен заблокирован")
	})
}

func TestHandleNewRecord(t *testing.T) {
	t.Parallel()

	t.Run("renders a draft from free text", func(t *testing.T) {
		t.Parallel()
		b, _ := setupTestBot(t)
		user := seedBotUser(t, b, 510100)
		b.withSuggestions("Продукты")

		mockBot := mocks.NewMockBot()
		ctx := context.Background()

		b.handleNewRecordCore(ctx, mockBot, 510100, 7, "Купил продукты картой за пятьсот рублей", user)

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "Новая запись от "+time.Now().Format("02.01.2006"))
		require.Contains(t, sent.Text, "🛍️ Продукты")
		require.Contains(t, sent.Text, "👛 Карта")
		require.Contains(t, sent.Text, "💲 500")
		require.Contains(t, sent.Text, "💬 Купил продукты картой за пятьсот рублей")

		keyboard, ok := sent.ReplyMarkup.(*tgmodels.InlineKeyboardMarkup)
		require.True(t, ok)
		require.Len(t, keyboard.InlineKeyboard, 2)
		require.Equal(t, "Продукты", keyboard.InlineKeyboard[0][0].Text)
		require.Equal(t, "unified_tag_tag-groceries", keyboard.InlineKeyboard[0][0].CallbackData)
		require.Len(t, keyboard.InlineKeyboard[1], 5)

		// Suggestions are remembered for later keyboard rebuilds.
		tags := b.proposals.Get(510100, 1000)
		require.Len(t, tags, 1)
		require.Equal(t, "tag-groceries", tags[0].ID)
	})

	t.Run("falls back to cash and the default tag", func(t *testing.T) {
		t.Parallel()
		b, _ := setupTestBot(t)
		user := seedBotUser(t, b, 510200)

		mockBot := mocks.NewMockBot()
		b.handleNewRecordCore(context.Background(), mockBot, 510200, 7, "Отдал сто рублей", user)

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "🛍️ "+models.DefaultTagTitle)
		require.Contains(t, sent.Text, "👛 Бумажник")
		require.Contains(t, sent.Text, "💲 100")

		keyboard, ok := sent.ReplyMarkup.(*tgmodels.InlineKeyboardMarkup)
		require.True(t, ok)
		// No suggestions: only the control row.
		require.Len(t, keyboard.InlineKeyboard, 1)
	})

	t.Run("honors the configured default card title", func(t *testing.T) {
		t.Parallel()
		b, _ := setupTestBot(t)
		user := seedBotUser(t, b, 510300)

		ctx := context.Background()
		require.NoError(t, b.settingRepo.SetForUser(ctx, user.ID, models.SettingDefaultCard, "Тинькофф"))

		mockBot := mocks.NewMockBot()
		b.handleNewRecordCore(ctx, mockBot, 510300, 7, "Оплатил картой 250", user)

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "👛 Тинькофф")
	})

	t.Run("renders zero when no amount is found", func(t *testing.T) {
		t.Parallel()
		b, _ := setupTestBot(t)
		user := seedBotUser(t, b, 510400)

		mockBot := mocks.NewMockBot()
		b.handleNewRecordCore(context.Background(), mockBot, 510400, 7, "Просто заметка", user)

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "💲 0")
	})
}

func TestDefaultHandlerRoutesTokenCapture(t *testing.T) {
	t.Parallel()

	b, ledger := setupTestBot(t)
	ctx := context.Background()

	user := &models.User{TelegramID: 520100, Username: "router", IsActive: true}
	require.NoError(t, b.userRepo.Create(ctx, user))

	mockBot := mocks.NewMockBot()
	update := mocks.MessageUpdate(520100, 520100, "some-token-text")

	b.defaultHandlerCore(contextWithUser(ctx, user), mockBot, update)

	require.Len(t, ledger.ValidatedTokens, 1)
}

func TestDefaultHandlerIgnoresMissingUser(t *testing.T) {
	t.Parallel()

	b, _ := setupTestBot(t)
	mockBot := mocks.NewMockBot()
	update := mocks.MessageUpdate(530100, 530100, "hello")

	b.defaultHandlerCore(context.Background(), mockBot, update)

	require.Zero(t, mockBot.SentMessageCount())
}
