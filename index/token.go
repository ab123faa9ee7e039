package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks after NFD decomposition so that
// accented and unaccented spellings compare equal. The corpus is bilingual
// Vietnamese/English and queries arrive in both forms ("tuyển sinh" and
// "tuyen sinh" must hit the same postings).
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldTerm normalizes a single token: lowercase, diacritics stripped.
// The Vietnamese đ/Đ doesn't decompose under NFD and is mapped by hand.
func foldTerm(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if r == 'đ' {
			return 'd'
		}
		return r
	}, s)
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return folded
}

// tokenize splits text into normalized terms. Punctuation is trimmed,
// matching is case- and diacritic-insensitive, empty tokens are dropped.
func tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	terms := make([]string, 0, len(words))
	for _, word := range words {
		term := foldTerm(word)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// uniqueTerms returns the distinct normalized terms of a query,
// preserving first-seen order.
func uniqueTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, term := range tokenize(query) {
		if !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}
	return terms
}
