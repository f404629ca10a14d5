package zenmoney

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// Transaction is the wire structure of a ZenMoney transaction. Unset
// optional fields must serialize as explicit nulls, hence the
// pointers.
type Transaction struct {
	ID                  string   `json:"id"`
	User                int      `json:"user"`
	Date                string   `json:"date"`
	Amount              float64  `json:"amount"`
	Account             string   `json:"account"`
	IncomeAccount       string   `json:"incomeAccount"`
	OutcomeAccount      string   `json:"outcomeAccount"`
	IncomeInstrument    int      `json:"incomeInstrument"`
	OutcomeInstrument   int      `json:"outcomeInstrument"`
	Income              float64  `json:"income"`
	Outcome             float64  `json:"outcome"`
	Category            string   `json:"category,omitempty"`
	Tag                 []string `json:"tag"`
	Merchant            *string  `json:"merchant"`
	Payee               *string  `json:"payee"`
	ReminderMarker      *string  `json:"reminderMarker"`
	IncomeBankID        *string  `json:"incomeBankID"`
	OutcomeBankID       *string  `json:"outcomeBankID"`
	OpIncome            *float64 `json:"opIncome"`
	OpOutcome           *float64 `json:"opOutcome"`
	OpIncomeInstrument  *int     `json:"opIncomeInstrument"`
	OpOutcomeInstrument *int     `json:"opOutcomeInstrument"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	Deleted             bool     `json:"deleted"`
	Comment             string   `json:"comment"`
	Created             int64    `json:"created"`
	Changed             int64    `json:"changed"`
}

// NewOutcome builds an expense transaction from an applied proposal.
// Income stays zero; the amount lands on the outcome side of the
// given account.
func NewOutcome(p *appmodels.TransactionProposal, account appmodels.Account, tagID string, now time.Time) Transaction {
	amount := roundAmount(p.Amount)

	txn := Transaction{
		ID:                uuid.NewString(),
		User:              account.ZenUserID,
		Date:              now.Format("2006-01-02"),
		Amount:            amount,
		Account:           account.ID,
		IncomeAccount:     account.ID,
		OutcomeAccount:    account.ID,
		IncomeInstrument:  account.InstrumentID,
		OutcomeInstrument: account.InstrumentID,
		Income:            0,
		Outcome:           amount,
		Comment:           p.Comment,
		Created:           now.Unix(),
		Changed:           now.Unix(),
	}

	if tagID != "" {
		txn.Category = tagID
		txn.Tag = []string{tagID}
	}

	return txn
}

func roundAmount(amount decimal.Decimal) float64 {
	value, _ := amount.Round(2).Float64()
	return value
}
