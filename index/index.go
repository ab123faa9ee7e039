package index

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/storage"
)

// Field weights for relevance scoring. A term hit in the title counts ten
// times a hit in the body; keyword hits sit in between.
const (
	titleWeight   = 10.0
	keywordWeight = 5.0
	contentWeight = 1.0
)

// Index is an in-memory inverted index over document title, keywords, and
// content. It is read-mostly: built once from the repository and updated
// incrementally as documents are ingested. Safe for concurrent use.
type Index struct {
	mu       sync.RWMutex
	postings map[string]map[core.ID]float64 // term -> doc -> field-weighted tf
	docs     map[core.ID]*core.Document
	ready    bool
	closed   bool
	logger   *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
	}
}

// New creates an empty lexical index. Call Build to load a corpus,
// or Add documents individually.
func New(opts ...Option) *Index {
	ix := &Index{
		postings: make(map[string]map[core.ID]float64),
		docs:     make(map[core.ID]*core.Document),
		logger:   slog.Default().With("component", "lexical-index"),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Build replaces the index contents with the full corpus from the repository.
func (ix *Index) Build(ctx context.Context, repo storage.DocumentRepository) error {
	docs, err := repo.GetAllDocuments(ctx, 0)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return ErrIndexUnavailable
	}

	ix.postings = make(map[string]map[core.ID]float64)
	ix.docs = make(map[core.ID]*core.Document, len(docs))
	for _, doc := range docs {
		ix.addLocked(doc)
	}
	ix.ready = true

	ix.logger.Info("lexical index built", "documents", len(docs), "terms", len(ix.postings))
	return nil
}

// Add indexes a single document, replacing any previous version of it.
func (ix *Index) Add(doc *core.Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return ErrIndexUnavailable
	}

	ix.removeLocked(doc.Id)
	ix.addLocked(doc)
	ix.ready = true
	return nil
}

// Remove drops a document from the index. Removing an unknown ID is a no-op.
func (ix *Index) Remove(id core.ID) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return ErrIndexUnavailable
	}

	ix.removeLocked(id)
	return nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Close marks the index unavailable. Subsequent calls fail with
// ErrIndexUnavailable; the caller decides on fallback.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.closed = true
	ix.postings = nil
	ix.docs = nil
	return nil
}

// Search returns up to limit documents ranked by field-weighted relevance
// to the free-text query. Matching is case- and diacritic-insensitive.
// Returns an empty slice (not an error) when no terms match; ties are
// broken by crawl recency, then content ID.
func (ix *Index) Search(query string, limit int) ([]*core.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.closed || !ix.ready {
		return nil, ErrIndexUnavailable
	}

	terms := uniqueTerms(query)
	if len(terms) == 0 {
		return []*core.SearchResult{}, nil
	}

	totalDocs := len(ix.docs)
	scores := make(map[core.ID]float64)
	for _, term := range terms {
		posting, ok := ix.postings[term]
		if !ok {
			continue
		}
		// Rarer terms carry more signal than ubiquitous ones.
		idf := math.Log(1 + float64(totalDocs)/float64(1+len(posting)))
		for id, weightedTF := range posting {
			scores[id] += weightedTF * idf
		}
	}

	if len(scores) == 0 {
		return []*core.SearchResult{}, nil
	}

	results := make([]*core.SearchResult, 0, len(scores))
	for id, score := range scores {
		results = append(results, &core.SearchResult{
			Document: ix.docs[id],
			Score:    score,
			Source:   core.ScoreSourceText,
		})
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		// Stable secondary key: newer crawls first
		if a.Document.CrawledAt.After(b.Document.CrawledAt) {
			return -1
		}
		if b.Document.CrawledAt.After(a.Document.CrawledAt) {
			return 1
		}
		if a.Document.Id < b.Document.Id {
			return -1
		}
		if a.Document.Id > b.Document.Id {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// addLocked indexes a document. Caller must hold the write lock.
func (ix *Index) addLocked(doc *core.Document) {
	ix.docs[doc.Id] = doc

	add := func(text string, weight float64) {
		for _, term := range tokenize(text) {
			posting, ok := ix.postings[term]
			if !ok {
				posting = make(map[core.ID]float64)
				ix.postings[term] = posting
			}
			posting[doc.Id] += weight
		}
	}

	add(doc.Title, titleWeight)
	for _, kw := range doc.Keywords {
		add(kw, keywordWeight)
	}
	add(doc.Content, contentWeight)
}

// removeLocked drops all postings for a document. Caller must hold the write lock.
func (ix *Index) removeLocked(id core.ID) {
	if _, ok := ix.docs[id]; !ok {
		return
	}
	delete(ix.docs, id)
	for term, posting := range ix.postings {
		if _, ok := posting[id]; ok {
			delete(posting, id)
			if len(posting) == 0 {
				delete(ix.postings, term)
			}
		}
	}
}
