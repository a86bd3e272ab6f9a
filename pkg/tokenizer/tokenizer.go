// Package tokenizer estimates token counts for Vietnamese prompt text and
// trims it to a budget.
package tokenizer

import "strings"

// EstimateTokens gives a rough token count for mixed Vietnamese/English
// text. Vietnamese is written one syllable per word, and diacritic-heavy
// syllables usually tokenize whole, so a word-based estimate tracks real
// tokenizers better than byte counts do (UTF-8 inflates byte length ~1.7x
// for Vietnamese).
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	words := len(strings.Fields(text))
	runes := len([]rune(text))

	wordEstimate := int(float64(words) * 1.2)
	runeEstimate := runes / 4

	if wordEstimate > runeEstimate {
		return wordEstimate
	}
	return runeEstimate
}

// Truncate trims text to approximately fit a token budget, cutting at a
// word boundary. Cuts happen on rune boundaries so multi-byte Vietnamese
// characters are never split.
func Truncate(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	est := EstimateTokens(text)
	if est <= budget {
		return text
	}

	// Scale the rune count by the same estimate that declared the text
	// over budget, so word-dense text still gets cut.
	runes := []rune(text)
	maxRunes := len(runes) * budget / est
	if maxRunes < 1 {
		maxRunes = 1
	}
	if maxRunes >= len(runes) {
		return text
	}

	truncated := string(runes[:maxRunes])
	if i := strings.LastIndex(truncated, " "); i > len(truncated)/2 {
		truncated = truncated[:i]
	}
	return truncated + "..."
}
