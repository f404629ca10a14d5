// Package parser extracts transaction details from free-form Russian
// spending messages: the amount (digits or spelled-out numerals) and
// the money source the user mentioned.
package parser

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// amountPattern matches the first digit run, allowing space-grouped
// thousands ("150 000") and a comma or dot fraction.
var amountPattern = regexp.MustCompile(`\d+(?:[ \x{00a0}]\d+)*(?:[.,]\d+)?`)

// ExtractAmount finds the first amount mentioned in a message. Numeral
// words are normalized to digits first, so "сто тысяч за ремонт" and
// "100 000 за ремонт" extract the same value. Returns ok=false when
// the message contains no number at all.
func ExtractAmount(text string) (decimal.Decimal, bool) {
	normalized := NormalizeNumerals(text)

	match := amountPattern.FindString(normalized)
	if match == "" {
		return decimal.Zero, false
	}

	amount, err := ParseAmount(match)
	if err != nil {
		return decimal.Zero, false
	}

	return amount, true
}
