// Package models defines the domain entities for the ZenMoney bot.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies which money source a spending message refers to.
type AccountType string

// Account types detectable from free-form message text.
const (
	AccountTypeCard    AccountType = "card"
	AccountTypeCash    AccountType = "cash"
	AccountTypeUnknown AccountType = "unknown"
)

// Setting names for configurable account titles.
const (
	SettingDefaultCard = "default_card"
	SettingDefaultCash = "default_cash"
	SettingSharedCard  = "shared_card"
)

// Fallback titles used when neither user nor global settings define them.
const (
	DefaultCardTitle   = "Карта"
	DefaultCashTitle   = "Бумажник"
	DefaultSharedTitle = "Общая карта"
	DefaultTagTitle    = "Продукты"
)

// User represents a Telegram user allowed to talk to the bot.
type User struct {
	ID            int64
	TelegramID    int64
	Username      string
	FirstName     string
	LastName      string
	ZenMoneyToken string
	IsAdmin       bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasToken reports whether the user has a stored ZenMoney API token.
func (u *User) HasToken() bool {
	return u != nil && u.ZenMoneyToken != ""
}

// Tag is a ZenMoney spending category. ParentID is nil for top-level
// tags; ParentTitle is resolved via the tags self-join. Description is
// curated in the database to enrich suggestion prompts; the ZenMoney
// sync payload does not carry it.
type Tag struct {
	ID          string
	Title       string
	ParentID    *string
	ParentTitle string
	Description string
}

// IsLeaf reports whether the tag is a subcategory (has a parent).
// Only leaf tags are offered as suggestion candidates.
func (t Tag) IsLeaf() bool {
	return t.ParentID != nil
}

// Account is a ZenMoney money source synced via the diff API.
// ZenUserID is the numeric ZenMoney user that owns the account; it is
// required when posting transactions back.
type Account struct {
	ID           string
	UserID       int64
	Title        string
	InstrumentID int
	Type         string
	Archived     bool
	ZenUserID    int
}

// TransactionProposal is the structured form of a draft record message.
// It is derived from user text and recovered back from the rendered
// message when an inline button is pressed.
type TransactionProposal struct {
	TagID        string
	TagTitle     string
	AccountTitle string
	Amount       decimal.Decimal
	Comment      string
}
