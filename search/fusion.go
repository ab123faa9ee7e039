package search

import (
	"slices"
	"strconv"

	"github.com/askuni/kbase/core"
)

// fuseResults merges lexical and vector candidate lists into one hybrid
// ranking. Lexical candidates contribute a reciprocal-rank score 1/(rank+1)
// so the top lexical hit contributes 1.0 regardless of its raw index score;
// vector candidates contribute their raw cosine similarity. A document on
// both lists gets both contributions.
func fuseResults(textResults, vectorResults []*core.SearchResult, textWeight, vectorWeight float64) []*core.SearchResult {
	type candidate struct {
		doc         *core.Document
		textScore   float64
		vectorScore float64
	}

	merged := make(map[string]*candidate, len(textResults)+len(vectorResults))

	for rank, result := range textResults {
		key := fusionKey(result.Document)
		merged[key] = &candidate{
			doc:       result.Document,
			textScore: 1.0 / float64(rank+1),
		}
	}
	for _, result := range vectorResults {
		key := fusionKey(result.Document)
		if existing, ok := merged[key]; ok {
			existing.vectorScore = result.Score
			continue
		}
		merged[key] = &candidate{
			doc:         result.Document,
			vectorScore: result.Score,
		}
	}

	fused := make([]*core.SearchResult, 0, len(merged))
	for _, cand := range merged {
		fused = append(fused, &core.SearchResult{
			Document: cand.doc,
			Score:    textWeight*cand.textScore + vectorWeight*cand.vectorScore,
			Source:   core.ScoreSourceHybrid,
		})
	}

	slices.SortFunc(fused, func(a, b *core.SearchResult) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		// Deterministic order for equal scores.
		if a.Document.Id < b.Document.Id {
			return -1
		}
		if a.Document.Id > b.Document.Id {
			return 1
		}
		return 0
	})

	return fused
}

// fusionKey identifies a document across both candidate lists. The URL is
// canonical; documents without one fall back to the content hash ID.
func fusionKey(doc *core.Document) string {
	if doc.URL != "" {
		return doc.URL
	}
	return strconv.FormatUint(uint64(doc.Id), 10)
}
