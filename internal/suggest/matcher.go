package suggest

import (
	"strings"

	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// MatchTag finds the candidate tag a model-suggested name refers to.
// Matching strategy:
// 1. Exact match (case-insensitive)
// 2. Containment in either direction ("Кафе" matches "Кафе и рестораны",
//    "Продукты питания" matches "Продукты")
// 3. Word overlap with partial word containment
// 4. No match -> returns nil, the name is dropped.
func MatchTag(suggested string, candidates []appmodels.Tag) *appmodels.Tag {
	suggestedLower := strings.ToLower(strings.TrimSpace(suggested))
	if suggestedLower == "" {
		return nil
	}

	// Strategy 1: exact match.
	for i := range candidates {
		if strings.EqualFold(candidates[i].Title, suggested) {
			return &candidates[i]
		}
	}

	// Strategy 2: tag title contains the suggested name. Prefer the
	// shortest title, it is the most specific fit.
	var bestMatch *appmodels.Tag
	bestLen := 0

	for i := range candidates {
		titleLower := strings.ToLower(candidates[i].Title)
		if strings.Contains(titleLower, suggestedLower) {
			if bestMatch == nil || len(candidates[i].Title) < bestLen {
				bestMatch = &candidates[i]
				bestLen = len(candidates[i].Title)
			}
		}
	}

	if bestMatch != nil {
		return bestMatch
	}

	// Strategy 2b: suggested name contains the tag title. Prefer the
	// longest title, it covers more of the suggestion.
	for i := range candidates {
		titleLower := strings.ToLower(candidates[i].Title)
		if strings.Contains(suggestedLower, titleLower) {
			if bestMatch == nil || len(candidates[i].Title) > bestLen {
				bestMatch = &candidates[i]
				bestLen = len(candidates[i].Title)
			}
		}
	}

	if bestMatch != nil {
		return bestMatch
	}

	// Strategy 3: word overlap, with partial containment so different
	// Russian word forms still meet ("продукты"/"продуктовый").
	suggestedWords := significantWords(suggestedLower)
	for i := range candidates {
		titleWords := significantWords(strings.ToLower(candidates[i].Title))
		for _, sw := range suggestedWords {
			for _, tw := range titleWords {
				if strings.Contains(tw, sw) || strings.Contains(sw, tw) {
					return &candidates[i]
				}
			}
		}
	}

	return nil
}

// significantWords splits a lowercased name into words worth matching.
func significantWords(s string) []string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "/", " ")

	var words []string
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) >= 3 && !isStopWord(w) {
			words = append(words, w)
		}
	}
	return words
}

func isStopWord(word string) bool {
	switch word {
	case "для", "или", "and", "the":
		return true
	}
	return false
}
