package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// amountReplacer strips grouping spaces and unifies the decimal
// separator before numeric parsing.
var amountReplacer = strings.NewReplacer(" ", "", " ", "", ",", ".")

// ParseAmount parses a rendered amount string ("100 000,50") back into
// a decimal. It is the exact inverse of FormatAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := amountReplacer.Replace(strings.TrimSpace(s))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

// FormatAmount renders an amount for display: integer part grouped by
// thousands with spaces, fractional part after a comma with trailing
// zeros dropped (at most two digits). No currency symbol is added, so
// ParseAmount can recover the value byte-exactly.
func FormatAmount(amount decimal.Decimal) string {
	rounded := amount.Round(2)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}

	intPart, fracPart, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")
	fracPart = strings.TrimRight(fracPart, "0")

	out := sign + groupThousands(intPart)
	if fracPart != "" {
		out += "," + fracPart
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
