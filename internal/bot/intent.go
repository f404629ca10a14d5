package bot

import (
	"fmt"
	"strings"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/proposal"
)

// IntentKind classifies what a proposal keyboard button asks for.
type IntentKind int

const (
	// IntentSelectTag replaces the category line with the chosen tag.
	IntentSelectTag IntentKind = iota
	// IntentSelectAccount replaces the account line with a default account.
	IntentSelectAccount
	// IntentApply commits the proposal to ZenMoney.
	IntentApply
	// IntentCancel strikes the proposal through.
	IntentCancel
	// IntentEdit discards the proposal message entirely.
	IntentEdit
)

// CallbackIntent is the decoded form of a proposal callback payload.
// Callback data is decoded once at the transport boundary; handlers
// switch on the typed intent instead of re-parsing strings.
type CallbackIntent struct {
	Kind IntentKind

	// TagID is set for IntentSelectTag.
	TagID string
	// AccountSetting names the setting that holds the account title,
	// set for IntentSelectAccount.
	AccountSetting string
	// AccountFallback is the title used when the setting is empty.
	AccountFallback string
}

// DecodeCallback parses raw callback data into a CallbackIntent.
func DecodeCallback(data string) (CallbackIntent, error) {
	switch data {
	case proposal.CallbackApply:
		return CallbackIntent{Kind: IntentApply}, nil
	case proposal.CallbackCancel:
		return CallbackIntent{Kind: IntentCancel}, nil
	case proposal.CallbackEdit:
		return CallbackIntent{Kind: IntentEdit}, nil
	case proposal.CallbackAccountCard:
		return CallbackIntent{
			Kind:            IntentSelectAccount,
			AccountSetting:  models.SettingDefaultCard,
			AccountFallback: models.DefaultCardTitle,
		}, nil
	case proposal.CallbackAccountCash:
		return CallbackIntent{
			Kind:            IntentSelectAccount,
			AccountSetting:  models.SettingDefaultCash,
			AccountFallback: models.DefaultCashTitle,
		}, nil
	case proposal.CallbackAccountShared:
		return CallbackIntent{
			Kind:            IntentSelectAccount,
			AccountSetting:  models.SettingSharedCard,
			AccountFallback: models.DefaultSharedTitle,
		}, nil
	}

	if tagID, ok := strings.CutPrefix(data, proposal.CallbackTagPrefix); ok && tagID != "" {
		return CallbackIntent{Kind: IntentSelectTag, TagID: tagID}, nil
	}

	return CallbackIntent{}, fmt.Errorf("unknown callback data %q", data)
}
