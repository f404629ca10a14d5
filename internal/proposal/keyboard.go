package proposal

import (
	"github.com/go-telegram/bot/models"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// Callback payloads carried by the draft record keyboard. The tag
// payload appends the tag id after the prefix.
const (
	CallbackRoot          = "unified_"
	CallbackTagPrefix     = "unified_tag_"
	CallbackAccountCard   = "unified_account_card"
	CallbackAccountCash   = "unified_account_cash"
	CallbackAccountShared = "unified_account_shared_card"
	CallbackApply         = "unified_apply"
	CallbackCancel        = "unified_cancel"
	CallbackEdit          = "unified_edit"
)

// maxTagButtons caps the tag suggestion row.
const maxTagButtons = 3

// Keyboard builds the inline keyboard for a draft record message: a
// row of up to three suggested tags, then the control row with the
// account choices, cancel and apply.
func Keyboard(tags []appmodels.Tag) *models.InlineKeyboardMarkup {
	var keyboard [][]models.InlineKeyboardButton

	if len(tags) > 0 {
		row := make([]models.InlineKeyboardButton, 0, maxTagButtons)
		for _, tag := range tags {
			if len(row) == maxTagButtons {
				break
			}
			row = append(row, models.InlineKeyboardButton{
				Text:         tag.Title,
				CallbackData: CallbackTagPrefix + tag.ID,
			})
		}
		keyboard = append(keyboard, row)
	}

	keyboard = append(keyboard, []models.InlineKeyboardButton{
		{Text: "💳", CallbackData: CallbackAccountCard},
		{Text: "💵", CallbackData: CallbackAccountCash},
		{Text: "🪪", CallbackData: CallbackAccountShared},
		{Text: "❌", CallbackData: CallbackCancel},
		{Text: "✅", CallbackData: CallbackApply},
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
