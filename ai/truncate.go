package ai

import "unicode/utf8"

// TruncateForEmbedding deterministically truncates text to the MaxEmbedChars
// budget, keeping the head of the input. Overlong input is always submitted
// truncated rather than dropped. The cut never splits a UTF-8 sequence,
// which matters for the Vietnamese half of the corpus.
func TruncateForEmbedding(text string) string {
	if len(text) <= MaxEmbedChars {
		return text
	}
	cut := MaxEmbedChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
