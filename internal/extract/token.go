package extract

import "unicode/utf8"

// EstimateTokens gives a rough token count using the ~4 chars/token heuristic.
// Exact tokenization is not required for the prompt-size guard.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}
