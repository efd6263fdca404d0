package cleaner

import "unicode/utf8"

// EstimateTokens provides a fast token count estimate: rune count / 3.
// It slightly over-estimates English text, which keeps prompts under budget.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		return 1
	}
	return est
}

// TruncateTokens cuts text to roughly maxTokens, on a rune boundary.
// It reports whether anything was removed.
func TruncateTokens(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text, false
	}
	limit := maxTokens * 3
	count := 0
	for i := range text {
		if count == limit {
			return text[:i], true
		}
		count++
	}
	return text, false
}
