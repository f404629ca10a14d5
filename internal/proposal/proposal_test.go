package proposal

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

const (
	taxiMessageProposalTest = "Такси до аэропорта 1500 картой"
	taxiTagProposalTest     = "Транспорт"
	cardTitleProposalTest   = "Карта"
	walletTitleProposalTest = "Бумажник"
)

func sampleDraft() Draft {
	return Draft{
		Date:         time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC),
		TagID:        "tag-1",
		TagTitle:     taxiTagProposalTest,
		AccountTitle: cardTitleProposalTest,
		Amount:       decimal.NewFromInt(1500),
		Comment:      taxiMessageProposalTest,
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	got := Render(sampleDraft())

	want := "Новая запись от 07.03.2025\n" +
		"\n" +
		"🛍️ Транспорт\n" +
		"👛 Карта\n" +
		"💲 1 500\n" +
		"💬 Такси до аэропорта 1500 картой"
	require.Equal(t, want, got)
}

func TestParseRecoversRender(t *testing.T) {
	t.Parallel()

	text := Render(sampleDraft())

	p, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, taxiTagProposalTest, p.TagTitle)
	require.Equal(t, cardTitleProposalTest, p.AccountTitle)
	require.True(t, p.Amount.Equal(decimal.NewFromInt(1500)))
	require.Equal(t, taxiMessageProposalTest, p.Comment)
}

func TestParseMultilineComment(t *testing.T) {
	t.Parallel()

	d := sampleDraft()
	d.Comment = "первая строка\nвторая строка"

	p, err := Parse(Render(d))
	require.NoError(t, err)
	require.Equal(t, d.Comment, p.Comment)
}

func TestParseRejectsForeignText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{
			name: "plain text",
			text: "просто сообщение без шаблона",
		},
		{
			name: "empty",
			text: "",
		},
		{
			name: "missing amount line",
			text: "Новая запись от 07.03.2025\n\n🛍️ Транспорт\n👛 Карта\n💬 такси",
		},
		{
			name: "unparseable amount",
			text: "Новая запись от 07.03.2025\n\n🛍️ Транспорт\n👛 Карта\n💲 abc\n💬 такси",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(tt.text)
			require.ErrorIs(t, err, ErrTemplateMismatch)
		})
	}
}

func TestUpdateTagOnlyTouchesTagLine(t *testing.T) {
	t.Parallel()

	text := Render(sampleDraft())
	updated := UpdateTag(text, "Продукты")

	p, err := Parse(updated)
	require.NoError(t, err)
	require.Equal(t, "Продукты", p.TagTitle)
	require.Equal(t, cardTitleProposalTest, p.AccountTitle)
	require.True(t, p.Amount.Equal(decimal.NewFromInt(1500)))
	require.Equal(t, taxiMessageProposalTest, p.Comment)
}

func TestUpdateAccountOnlyTouchesAccountLine(t *testing.T) {
	t.Parallel()

	text := Render(sampleDraft())
	updated := UpdateAccount(text, walletTitleProposalTest)

	p, err := Parse(updated)
	require.NoError(t, err)
	require.Equal(t, taxiTagProposalTest, p.TagTitle)
	require.Equal(t, walletTitleProposalTest, p.AccountTitle)
	require.True(t, p.Amount.Equal(decimal.NewFromInt(1500)))
	require.Equal(t, taxiMessageProposalTest, p.Comment)
}

func TestUpdateIsNoopWithoutTemplate(t *testing.T) {
	t.Parallel()

	const text = "обычное сообщение"
	require.Equal(t, text, UpdateTag(text, "Продукты"))
	require.Equal(t, text, UpdateAccount(text, cardTitleProposalTest))
}

// Field edits must commute with parsing: whatever single field is
// replaced, the other recovered fields stay byte-identical.
func TestMutatorsPreserveOtherFields(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		d := sampleDraft()
		d.TagTitle = rapid.StringMatching(`[А-Яа-я][А-Яа-я ]{0,20}`).Draw(t, "tag")
		d.AccountTitle = rapid.StringMatching(`[А-Яа-я][А-Яа-я ]{0,20}`).Draw(t, "account")
		units := rapid.Int64Range(0, 1_000_000).Draw(t, "units")
		d.Amount = decimal.NewFromInt(units)

		text := Render(d)

		newTag := rapid.StringMatching(`[А-Яа-я][А-Яа-я ]{0,20}`).Draw(t, "newTag")
		afterTag, err := Parse(UpdateTag(text, newTag))
		require.NoError(t, err)
		require.Equal(t, strings.TrimSpace(newTag), afterTag.TagTitle)
		require.Equal(t, strings.TrimSpace(d.AccountTitle), afterTag.AccountTitle)
		require.Equal(t, d.Comment, afterTag.Comment)

		newAccount := rapid.StringMatching(`[А-Яа-я][А-Яа-я ]{0,20}`).Draw(t, "newAccount")
		afterAccount, err := Parse(UpdateAccount(text, newAccount))
		require.NoError(t, err)
		require.Equal(t, strings.TrimSpace(d.TagTitle), afterAccount.TagTitle)
		require.Equal(t, strings.TrimSpace(newAccount), afterAccount.AccountTitle)
		require.Equal(t, d.Comment, afterAccount.Comment)
	})
}

func TestKeyboardLayout(t *testing.T) {
	t.Parallel()

	tags := []appmodels.Tag{
		{ID: "a", Title: "Продукты"},
		{ID: "b", Title: "Транспорт"},
		{ID: "c", Title: "Кафе"},
		{ID: "d", Title: "Лишний"},
	}

	kb := Keyboard(tags)
	require.Len(t, kb.InlineKeyboard, 2)

	tagRow := kb.InlineKeyboard[0]
	require.Len(t, tagRow, 3)
	require.Equal(t, "Продукты", tagRow[0].Text)
	require.Equal(t, CallbackTagPrefix+"a", tagRow[0].CallbackData)

	controlRow := kb.InlineKeyboard[1]
	require.Len(t, controlRow, 5)
	require.Equal(t, CallbackAccountCard, controlRow[0].CallbackData)
	require.Equal(t, CallbackAccountCash, controlRow[1].CallbackData)
	require.Equal(t, CallbackAccountShared, controlRow[2].CallbackData)
	require.Equal(t, CallbackCancel, controlRow[3].CallbackData)
	require.Equal(t, CallbackApply, controlRow[4].CallbackData)
}

func TestKeyboardWithoutTags(t *testing.T) {
	t.Parallel()

	kb := Keyboard(nil)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 5)
}
