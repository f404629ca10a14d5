package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/bot/mocks"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/zenmoney"
)

func TestHandleStart(t *testing.T) {
	t.Parallel()

	t.Run("asks for a token first", func(t *testing.T) {
		t.Parallel()
		b, _ := setupTestBot(t)
		ctx := context.Background()

		user := &models.User{TelegramID: 700100, Username: "fresh", IsActive: true}
		require.NoError(t, b.userRepo.Create(ctx, user))

		mockBot := mocks.NewMockBot()
		update := mocks.CommandUpdate(700100, 700100, "/start")

		b.handleStartCore(contextWithUser(ctx, user), mockBot, update)

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "🔑 Для работы с ботом необходим токен ZenMoney API.")
		require.Contains(t, sent.Text, "Настройки → API")
	})

	t.Run("suggests sync commands until data is loaded", func(t *testing.T) {
		t.Parallel()
		b, _ := setupTestBot(t)
		ctx := context.Background()

		user := &models.User{TelegramID: 700200, Username: "tokenonly", IsActive: true}
		require.NoError(t, b.userRepo.Create(ctx, user))
		require.NoError(t, b.userRepo.UpdateToken(ctx, user.ID, "zen-token"))
		user.ZenMoneyToken = "zen-token"

		mockBot := mocks.NewMockBot()
		update := mocks.CommandUpdate(700200, 700200, "/start")

		b.handleStartCore(contextWithUser(ctx, user), mockBot, update)

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "/tags_upd")
		require.Contains(t, sent.Text, "/accounts_upd")
	})

	t.Run("welcomes a fully configured user", func(t *testing.T) {
		t.Parallel()
		b, _ := setupTestBot(t)
		user := seedBotUser(t, b, 700300)

		mockBot := mocks.NewMockBot()
		update := mocks.CommandUpdate(700300, 700300, "/start")

		b.handleStartCore(contextWithUser(context.Background(), user), mockBot, update)

		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "Добро пожаловать в ZenMoney Bot, Test!")
		require.Contains(t, sent.Text, "Основной функционал")
	})
}

func TestHandleHelp(t *testing.T) {
	t.Parallel()

	b, _ := setupTestBot(t)
	user := seedBotUser(t, b, 710100)

	mockBot := mocks.NewMockBot()
	update := mocks.CommandUpdate(710100, 710100, "/help")

	b.handleHelpCore(contextWithUser(context.Background(), user), mockBot, update)

	sent := mockBot.LastSentMessage()
	require.NotNil(t, sent)
	require.Contains(t, sent.Text, "/tags_upd")
	require.Contains(t, sent.Text, "/accounts_upd")
	require.Contains(t, sent.Text, "Голосовые сообщения")
}

func TestHandleTagsUpdate(t *testing.T) {
	t.Parallel()

	t.Run("replaces the tag snapshot", func(t *testing.T) {
		t.Parallel()
		b, ledger := setupTestBot(t)
		user := seedBotUser(t, b, 720100)
		ctx := contextWithUser(context.Background(), user)

		parent := "root-1"
		ledger.DiffResult = &zenmoney.Diff{
			Tags: []models.Tag{
				{ID: "root-1", Title: "Дом"},
				{ID: "tag-rent", Title: "Аренда", ParentID: &parent},
			},
		}

		mockBot := mocks.NewMockBot()
		update := mocks.CommandUpdate(720100, 720100, "/tags_upd")

		b.handleTagsUpdateCore(ctx, mockBot, update)

		require.Equal(t, 1, mockBot.SentMessageCount())
		edited := mockBot.LastEditedMessage()
		require.NotNil(t, edited)
		require.Contains(t, edited.Text, "✅ Категории успешно обновлены!")
		require.Contains(t, edited.Text, "Загружено: 2")

		count, err := b.tagRepo.Count(context.Background(), user.ID)
		require.NoError(t, err)
		require.Equal(t, 2, count)
	})

	t.Run("reports an empty diff", func(t *testing.T) {
		t.Parallel()
		b, ledger := setupTestBot(t)
		user := seedBotUser(t, b, 720200)
		ledger.DiffResult = &zenmoney.Diff{}

		mockBot := mocks.NewMockBot()
		update := mocks.CommandUpdate(720200, 720200, "/tags_upd")

		b.handleTagsUpdateCore(contextWithUser(context.Background(), user), mockBot, update)

		edited := mockBot.LastEditedMessage()
		require.NotNil(t, edited)
		require.Contains(t, edited.Text, "❌ Категории не найдены в ZenMoney")

		// The previous snapshot stays.
		count, err := b.tagRepo.Count(context.Background(), user.ID)
		require.NoError(t, err)
		require.Equal(t, 3, count)
	})

	t.Run("reports fetch failures", func(t *testing.T) {
		t.Parallel()
		b, ledger := setupTestBot(t)
		user := seedBotUser(t, b, 720300)
		ledger.DiffErr = zenmoney.ErrTimeout

		mockBot := mocks.NewMockBot()
		update := mocks.CommandUpdate(720300, 720300, "/tags_upd")

		b.handleTagsUpdateCore(contextWithUser(context.Background(), user), mockBot, update)

		edited := mockBot.LastEditedMessage()
		require.NotNil(t, edited)
		require.Contains(t, edited.Text, "❌ Ошибка при загрузке данных из ZenMoney")
		require.Contains(t, edited.Text, "Таймаут подключения")
	})

	t.Run("requires a token", func(t *testing.T) {
		t.Parallel()
		b, ledger := setupTestBot(t)
		ctx := context.Background()

		user := &models.User{TelegramID: 720400, Username: "notoken", IsActive: true}
		require.NoError(t, b.userRepo.Create(ctx, user))

		mockBot := mocks.NewMockBot()
		update := mocks.CommandUpdate(720400, 720400, "/tags_upd")

		b.handleTagsUpdateCore(contextWithUser(ctx, user), mockBot, update)

		require.Empty(t, ledger.Created)
		sent := mockBot.LastSentMessage()
		require.NotNil(t, sent)
		require.Contains(t, sent.Text, "ZenMoney API не настроен")
	})
}

func TestHandleAccountsUpdate(t *testing.T) {
	t.Parallel()

	t.Run("replaces the account snapshot", func(t *testing.T) {
		t.Parallel()
		b, ledger := setupTestBot(t)
		user := seedBotUser(t, b, 730100)
		ctx := contextWithUser(context.Background(), user)

		ledger.DiffResult = &zenmoney.Diff{
			Accounts: []models.Account{
				{ID: "acc-new", Title: "Новая карта", InstrumentID: 2, Type: "ccard", ZenUserID: 42},
			},
		}

		mockBot := mocks.NewMockBot()
		update := mocks.CommandUpdate(730100, 730100, "/accounts_upd")

		b.handleAccountsUpdateCore(ctx, mockBot, update)

		edited := mockBot.LastEditedMessage()
		require.NotNil(t, edited)
		require.Contains(t, edited.Text, "✅ Счета успешно обновлены!")
		require.Contains(t, edited.Text, "Загружено: 1")

		count, err := b.accountRepo.Count(context.Background(), user.ID)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("reports an empty diff", func(t *testing.T) {
		t.Parallel()
		b, ledger := setupTestBot(t)
		user := seedBotUser(t, b, 730200)
		ledger.DiffResult = &zenmoney.Diff{}

		mockBot := mocks.NewMockBot()
		update := mocks.CommandUpdate(730200, 730200, "/accounts_upd")

		b.handleAccountsUpdateCore(contextWithUser(context.Background(), user), mockBot, update)

		edited := mockBot.LastEditedMessage()
		require.NotNil(t, edited)
		require.Contains(t, edited.Text, "❌ Счета не найдены в ZenMoney")
	})
}
