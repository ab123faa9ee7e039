package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/askuni/kbase/core"
)

const (
	// answerResultLimit is how many documents a formatted answer cites.
	answerResultLimit = 3

	// snippetRunes is the length of each content excerpt in an answer.
	snippetRunes = 400
)

// noResultsMessage is served when lexical search finds nothing. It is
// never cached so a later ingest can answer the same question.
const noResultsMessage = "Không tìm thấy thông tin phù hợp trong cơ sở dữ liệu. " +
	"Bạn có thể thử diễn đạt lại câu hỏi rộng hơn hoặc tra cứu trực tuyến."

// SearchText answers a query with a formatted, human-readable payload
// built from the top lexical matches. Payloads are cached by normalized
// query for the cache TTL; a hit returns the stored payload byte for byte
// without recomputing the search.
func (s *Searcher) SearchText(ctx context.Context, query string) (string, error) {
	if payload, ok := s.queryCache.Get(query); ok {
		s.logger.Debug("query cache hit", "query", query)
		return payload, nil
	}

	results, err := s.TextSearch(ctx, query, answerResultLimit)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return noResultsMessage, nil
	}

	payload := formatResults(results)
	s.queryCache.Put(query, payload)
	s.logger.Debug("query result cached", "query", query, "results", len(results))
	return payload, nil
}

// formatResults renders search results into the answer payload.
func formatResults(results []*core.SearchResult) string {
	var b strings.Builder
	b.WriteString("Thông tin từ cơ sở dữ liệu:\n\n")
	for i, result := range results {
		doc := result.Document
		fmt.Fprintf(&b, "%d. %s\n", i+1, doc.Title)
		fmt.Fprintf(&b, "   URL: %s\n", doc.URL)
		fmt.Fprintf(&b, "   Nội dung: %s\n\n", snippet(doc.Content, snippetRunes))
	}
	return b.String()
}

// snippet returns the first n runes of text, with an ellipsis when cut.
func snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
