package parser

import (
	"strings"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// AccountPolicy holds the keyword sets used to classify which money
// source a message refers to. Keywords are matched as substrings of
// the lowercased message, so stems like "карт" cover "картой",
// "карточка" and "с карты".
type AccountPolicy struct {
	CardKeywords []string
	CashKeywords []string
}

// DefaultAccountPolicy returns the built-in Russian keyword sets.
func DefaultAccountPolicy() AccountPolicy {
	return AccountPolicy{
		CardKeywords: []string{
			"карт", "карточк", "пластик", "банк", "снял с карт",
			"списал с карт", "оплатил карт", "перевел с карт",
			"с карты", "на карту", "картой",
		},
		CashKeywords: []string{
			"наличн", "бумажник", "кошелек", "деньги", "купюр",
			"монет", "в руках", "физически", "реальн",
		},
	}
}

// Detect classifies the message. When both card and cash keywords are
// present the card wins; when neither is present the type is unknown
// and the caller falls back to its default account.
func (p AccountPolicy) Detect(text string) models.AccountType {
	lower := strings.ToLower(text)

	card := containsAny(lower, p.CardKeywords)
	cash := containsAny(lower, p.CashKeywords)

	switch {
	case card:
		return models.AccountTypeCard
	case cash:
		return models.AccountTypeCash
	default:
		return models.AccountTypeUnknown
	}
}

// DetectAccountType classifies text with the default policy.
func DetectAccountType(text string) models.AccountType {
	return DefaultAccountPolicy().Detect(text)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
