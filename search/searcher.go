package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/askuni/kbase/ai"
	"github.com/askuni/kbase/cache"
	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/index"
	"github.com/askuni/kbase/storage"
)

const (
	// DefaultTextWeight and DefaultVectorWeight are the fusion weights for
	// hybrid search. They favor semantic relevance but don't have to sum
	// to 1; these defaults do by convention.
	DefaultTextWeight   = 0.3
	DefaultVectorWeight = 0.7

	// DefaultSimilarityThreshold filters standalone vector search results.
	DefaultSimilarityThreshold = 0.5

	// hybridSimilarityThreshold is the looser cut used for the vector leg
	// of hybrid search: fusion re-weights the candidates anyway.
	hybridSimilarityThreshold = 0.3

	// defaultEmbedTimeout bounds the query embedding call. A timed-out
	// embed is treated exactly like any other embedding failure.
	defaultEmbedTimeout = 10 * time.Second
)

// Searcher answers free-text queries over the document corpus by combining
// lexical and vector retrieval. Lexical search is the mandatory baseline:
// its failures abort a query. Vector-side failures never do; they degrade
// the query to lexical-only results.
type Searcher struct {
	repo         storage.DocumentRepository
	index        *index.Index
	embedder     ai.Embedder
	queryCache   *cache.QueryCache
	textWeight   float64
	vectorWeight float64
	embedTimeout time.Duration
	vectorOff    bool
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithWeights sets the hybrid fusion weights.
// Defaults are DefaultTextWeight and DefaultVectorWeight.
func WithWeights(textWeight, vectorWeight float64) Option {
	return func(s *Searcher) error {
		if textWeight < 0 || vectorWeight < 0 {
			return errors.New("fusion weights must be non-negative")
		}
		s.textWeight = textWeight
		s.vectorWeight = vectorWeight
		return nil
	}
}

// WithVectorSearchDisabled turns off the vector leg entirely. Vector and
// hybrid queries degrade to pure lexical search.
func WithVectorSearchDisabled() Option {
	return func(s *Searcher) error {
		s.vectorOff = true
		return nil
	}
}

// WithEmbedTimeout bounds the query embedding call.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout <= 0 {
			return errors.New("embed timeout must be positive")
		}
		s.embedTimeout = timeout
		return nil
	}
}

// WithQueryCacheTTL sets the TTL of the query result cache.
func WithQueryCacheTTL(ttl time.Duration) Option {
	return func(s *Searcher) error {
		s.queryCache = cache.NewQueryCache(ttl)
		return nil
	}
}

// NewSearcher creates a new searcher. A nil embedder disables vector
// search; hybrid queries then serve lexical results only.
func NewSearcher(
	repo storage.DocumentRepository,
	ix *index.Index,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if ix == nil {
		return nil, ErrIndexRequired
	}

	s := &Searcher{
		repo:         repo,
		index:        ix,
		embedder:     embedder,
		queryCache:   cache.NewQueryCache(cache.DefaultQueryTTL),
		textWeight:   DefaultTextWeight,
		vectorWeight: DefaultVectorWeight,
		embedTimeout: defaultEmbedTimeout,
		logger:       slog.Default(),
	}

	if embedder == nil {
		s.vectorOff = true
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.vectorOff {
		s.logger.Info("vector search disabled, serving lexical results only")
	}

	return s, nil
}

// TextSearch performs lexical search over the index.
// Returns an empty slice when nothing matches.
func (s *Searcher) TextSearch(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return s.index.Search(query, limit)
}

// VectorSearch performs semantic search by cosine similarity at the given
// threshold. When the vector leg is unavailable (disabled, provider error,
// empty result, or timeout) it falls back to lexical search instead of
// failing the query; the fallback is logged, never surfaced.
func (s *Searcher) VectorSearch(ctx context.Context, query string, limit int, threshold float64) ([]*core.SearchResult, error) {
	results, err := s.vectorSearch(ctx, query, limit, threshold)
	if err != nil {
		if errors.Is(err, ai.ErrEmbeddingFailed) || errors.Is(err, ErrVectorSearchDisabled) {
			s.logger.Warn("vector search unavailable, falling back to lexical search", "query", query, "err", err)
			return s.TextSearch(ctx, query, limit)
		}
		return nil, err
	}
	return results, nil
}

// HybridSearch fuses lexical and vector rankings using the configured weights.
func (s *Searcher) HybridSearch(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return s.HybridSearchWeighted(ctx, query, limit, s.textWeight, s.vectorWeight)
}

// HybridSearchWeighted fuses lexical and vector rankings. Both legs run
// concurrently and over-fetch 2×limit candidates; lexical candidates score
// by reciprocal rank, vector candidates by raw cosine similarity. If the
// vector leg fails, the query degrades to pure lexical results.
func (s *Searcher) HybridSearchWeighted(ctx context.Context, query string, limit int, textWeight, vectorWeight float64) ([]*core.SearchResult, error) {
	fetch := 2 * limit

	var textResults, vectorResults []*core.SearchResult
	var vectorErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Lexical search is the mandatory baseline: its failure aborts.
		results, err := s.index.Search(query, fetch)
		if err != nil {
			return err
		}
		textResults = results
		return nil
	})
	g.Go(func() error {
		results, err := s.vectorSearch(gctx, query, fetch, hybridSimilarityThreshold)
		if err != nil {
			// Vector failures never abort a hybrid query.
			vectorErr = err
			return nil
		}
		vectorResults = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if vectorErr != nil {
		if !errors.Is(vectorErr, ErrVectorSearchDisabled) {
			s.logger.Warn("hybrid search degrading to lexical only", "query", query, "err", vectorErr)
		}
		if len(textResults) > limit {
			textResults = textResults[:limit]
		}
		return textResults, nil
	}

	fused := fuseResults(textResults, vectorResults, textWeight, vectorWeight)
	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}

// vectorSearch is the exact vector leg: embed the query, then rank every
// embedded document by cosine similarity. All failure modes come back as
// typed errors so fallback is a visible branch in the caller.
func (s *Searcher) vectorSearch(ctx context.Context, query string, limit int, threshold float64) ([]*core.SearchResult, error) {
	if s.vectorOff {
		return nil, ErrVectorSearchDisabled
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	vector, err := s.embedder.EmbedText(embedCtx, query)
	if err != nil {
		if errors.Is(err, ai.ErrEmbeddingFailed) {
			return nil, err
		}
		// Timeouts and transport errors count as embedding failures too.
		return nil, errors.Join(ai.ErrEmbeddingFailed, err)
	}
	if len(vector) == 0 {
		return nil, ai.ErrEmbeddingFailed
	}

	return s.repo.FindSimilar(ctx, vector, threshold, limit)
}
