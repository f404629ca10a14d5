package parser

import (
	"strconv"
	"strings"
	"unicode"
)

// Russian numeral words in their common declensions. Multiplier words
// (тысяча, миллион, миллиард) are matched by stem so that all case
// forms resolve to the same value.
var numeralWords = map[string]int64{
	"один": 1, "одна": 1, "одно": 1, "одну": 1,
	"два": 2, "две": 2,
	"три":    3,
	"четыре": 4,
	"пять":   5,
	"шесть":  6,
	"семь":   7,
	"восемь": 8,
	"девять": 9,
	"десять": 10, "одиннадцать": 11, "двенадцать": 12, "тринадцать": 13,
	"четырнадцать": 14, "пятнадцать": 15, "шестнадцать": 16,
	"семнадцать": 17, "восемнадцать": 18, "девятнадцать": 19,
	"двадцать": 20, "тридцать": 30, "сорок": 40, "пятьдесят": 50,
	"шестьдесят": 60, "семьдесят": 70, "восемьдесят": 80, "девяносто": 90,
	"сто": 100, "двести": 200, "триста": 300, "четыреста": 400,
	"пятьсот": 500, "шестьсот": 600, "семьсот": 700, "восемьсот": 800,
	"девятьсот": 900,
}

// Multiplier stems checked longest-first so миллиард is not shadowed by
// a shorter stem.
var multiplierStems = []struct {
	stem  string
	value int64
}{
	{"миллиард", 1_000_000_000},
	{"миллион", 1_000_000},
	{"тысяч", 1_000},
	{"млрд", 1_000_000_000},
	{"млн", 1_000_000},
	{"тыс", 1_000},
}

// NormalizeNumerals rewrites spelled-out Russian numbers in text as
// digits, algebraically combining adjacent value/multiplier words:
// "сто тысяч" becomes "100000", "тысяча сто" becomes "1100" and
// "2 миллиона" becomes "2000000". Digit groups that have no numeral
// word next to them ("150 000") are left untouched so grouped amounts
// survive for the extraction step. Word order and non-numeral tokens
// are preserved; whitespace is collapsed to single spaces.
func NormalizeNumerals(text string) string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))

	for i := 0; i < len(fields); {
		if !isNumeralToken(fields[i]) {
			out = append(out, fields[i])
			i++
			continue
		}

		// Extend the run over consecutive numeral words and digits.
		j := i
		sawWord := false
		for j < len(fields) && isNumeralToken(fields[j]) {
			if _, _, ok := numeralValue(fields[j]); ok {
				sawWord = true
			}
			j++
		}

		if !sawWord {
			// Pure digit run, nothing to rewrite.
			out = append(out, fields[i:j]...)
			i = j
			continue
		}

		if combined, ok := combineRun(fields[i:j]); ok {
			out = append(out, strconv.FormatInt(combined, 10))
		} else {
			out = append(out, fields[i:j]...)
		}
		i = j
	}

	return strings.Join(out, " ")
}

// combineRun folds a run of numeral tokens into a single value. Plain
// numbers accumulate; a multiplier scales the accumulated group and
// commits it, so "двадцать пять тысяч" yields 25*1000 and a bare
// "тысяча" yields 1*1000. A digit token too large for int64 makes the
// run non-combinable and it is left as written.
func combineRun(tokens []string) (int64, bool) {
	var total, current int64
	for _, tok := range tokens {
		if v, mult, ok := numeralValue(tok); ok {
			if mult {
				if current == 0 {
					current = 1
				}
				total += current * v
				current = 0
				continue
			}
			current += v
			continue
		}
		n, err := strconv.ParseInt(trimToken(tok), 10, 64)
		if err != nil {
			return 0, false
		}
		current += n
	}
	return total + current, true
}

// numeralValue resolves a token to its numeric value. The second
// return reports whether it is a multiplier word.
func numeralValue(token string) (int64, bool, bool) {
	word := strings.ToLower(trimToken(token))
	if word == "" {
		return 0, false, false
	}
	for _, m := range multiplierStems {
		if strings.HasPrefix(word, m.stem) {
			return m.value, true, true
		}
	}
	if v, ok := numeralWords[word]; ok {
		return v, false, true
	}
	return 0, false, false
}

func isNumeralToken(token string) bool {
	if _, _, ok := numeralValue(token); ok {
		return true
	}
	return isDigitToken(token)
}

func isDigitToken(token string) bool {
	trimmed := trimToken(token)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// trimToken strips surrounding punctuation so "тысячу," still matches.
func trimToken(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
