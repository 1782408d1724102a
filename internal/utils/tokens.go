package utils

import "unicode"

// Rough token estimates for log fields and the prompt dry run. Gemini
// tokenizes Japanese at about one token per kana/kanji, and other text at
// about four characters per token.

// CountTokens estimates the number of tokens in text.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	wide, other := 0, 0
	for _, r := range text {
		if isWide(r) {
			wide++
		} else {
			other++
		}
	}
	tokens := wide + other/4
	if tokens == 0 {
		return 1
	}
	return tokens
}

func isWide(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) ||
		(r >= 0x3000 && r <= 0x303F) || // CJK punctuation
		(r >= 0xFF00 && r <= 0xFFEF) // full-width forms
}

// TokenBreakdown maps each labeled section to its estimate.
func TokenBreakdown(sections map[string]string) map[string]int {
	out := make(map[string]int, len(sections))
	for k, v := range sections {
		out[k] = CountTokens(v)
	}
	return out
}
