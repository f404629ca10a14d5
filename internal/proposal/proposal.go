// Package proposal renders draft transaction messages, edits single
// fields in place and recovers the structured data back from the
// rendered text when an inline button is pressed. The message text is
// the only state carried between the initial render and the final
// apply, so rendering and parsing must stay exact inverses.
package proposal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/parser"
)

// Fixed line prefixes of the draft record template.
const (
	headerPrefix  = "Новая запись от "
	tagPrefix     = "🛍️ "
	accountPrefix = "👛 "
	amountPrefix  = "💲 "
	commentPrefix = "💬 "
)

// ErrTemplateMismatch reports that a message does not follow the draft
// record template and cannot be recovered into a proposal.
var ErrTemplateMismatch = errors.New("message does not match the record template")

// Draft holds the resolved values for a new record message.
type Draft struct {
	Date         time.Time
	TagID        string
	TagTitle     string
	AccountTitle string
	Amount       decimal.Decimal
	Comment      string
}

// Render produces the draft record message text. The comment is the
// user's original message, preserved verbatim.
func Render(d Draft) string {
	return headerPrefix + d.Date.Format("02.01.2006") + "\n\n" +
		tagPrefix + d.TagTitle + "\n" +
		accountPrefix + d.AccountTitle + "\n" +
		amountPrefix + parser.FormatAmount(d.Amount) + "\n" +
		commentPrefix + d.Comment
}

// UpdateTag replaces the tag line of a rendered message. The message
// is returned unchanged when no tag line is present.
func UpdateTag(text, tagTitle string) string {
	return replaceLine(text, tagPrefix, tagTitle)
}

// UpdateAccount replaces the account line of a rendered message. The
// message is returned unchanged when no account line is present.
func UpdateAccount(text, accountTitle string) string {
	return replaceLine(text, accountPrefix, accountTitle)
}

func replaceLine(text, prefix, value string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, prefix) {
			lines[i] = prefix + value
			return strings.Join(lines, "\n")
		}
	}
	return text
}

// Parse recovers the proposal from a rendered message. All four field
// lines must be present and the amount must parse, otherwise
// ErrTemplateMismatch is returned. The comment keeps everything after
// its prefix, including further lines.
func Parse(text string) (*appmodels.TransactionProposal, error) {
	p := &appmodels.TransactionProposal{}
	var haveTag, haveAccount, haveAmount, haveComment bool

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, tagPrefix):
			p.TagTitle = strings.TrimSpace(strings.TrimPrefix(line, tagPrefix))
			haveTag = true
		case strings.HasPrefix(line, accountPrefix):
			p.AccountTitle = strings.TrimSpace(strings.TrimPrefix(line, accountPrefix))
			haveAccount = true
		case strings.HasPrefix(line, amountPrefix):
			amount, err := parser.ParseAmount(strings.TrimPrefix(line, amountPrefix))
			if err != nil {
				return nil, fmt.Errorf("%w: amount line: %s", ErrTemplateMismatch, err)
			}
			p.Amount = amount
			haveAmount = true
		case strings.HasPrefix(line, commentPrefix):
			rest := append([]string{strings.TrimPrefix(line, commentPrefix)}, lines[i+1:]...)
			p.Comment = strings.Join(rest, "\n")
			haveComment = true
		}
		if haveComment {
			break
		}
	}

	if !haveTag || !haveAccount || !haveAmount || !haveComment {
		return nil, fmt.Errorf("%w: missing field line", ErrTemplateMismatch)
	}

	return p, nil
}
