package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askuni/kbase/ai"
	"github.com/askuni/kbase/ai/mock"
	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/index"
	"github.com/askuni/kbase/storage"
	"github.com/askuni/kbase/storage/badger"
)

type fixture struct {
	repo     storage.DocumentRepository
	index    *index.Index
	embedder *mock.Embedder
	close    func()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return &fixture{
		repo:     repo,
		index:    index.New(),
		embedder: mock.NewEmbedder(),
	}
}

// addDocument stores and indexes a document in one step, the way the
// ingestion pipeline does.
func (f *fixture) addDocument(t *testing.T, doc *core.Document) {
	t.Helper()
	_, err := f.repo.UpsertDocument(context.Background(), doc)
	require.NoError(t, err)
	require.NoError(t, f.index.Add(doc))
}

func lexicalDoc(url, title string) *core.Document {
	return &core.Document{
		URL:       url,
		Title:     title,
		Content:   strings.Repeat("Nội dung trang thông tin của trường. ", 5),
		CrawledAt: time.Now().UTC().Add(-time.Hour),
	}
}

func TestNewSearcher(t *testing.T) {
	f := newFixture(t)

	t.Run("nil repository fails", func(t *testing.T) {
		_, err := NewSearcher(nil, f.index, f.embedder)
		assert.ErrorIs(t, err, ErrRepositoryRequired)
	})

	t.Run("nil index fails", func(t *testing.T) {
		_, err := NewSearcher(f.repo, nil, f.embedder)
		assert.ErrorIs(t, err, ErrIndexRequired)
	})

	t.Run("nil embedder is allowed", func(t *testing.T) {
		s, err := NewSearcher(f.repo, f.index, nil)
		require.NoError(t, err)
		assert.True(t, s.vectorOff)
	})

	t.Run("negative weights fail", func(t *testing.T) {
		_, err := NewSearcher(f.repo, f.index, f.embedder, WithWeights(-1, 0.5))
		assert.Error(t, err)
	})
}

func TestTextSearch(t *testing.T) {
	f := newFixture(t)
	f.addDocument(t, lexicalDoc("https://example.edu.vn/ts", "Thông báo tuyển sinh"))

	s, err := NewSearcher(f.repo, f.index, f.embedder)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("finds lexical matches", func(t *testing.T) {
		results, err := s.TextSearch(ctx, "tuyển sinh", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.ScoreSourceText, results[0].Source)
	})

	t.Run("no matches returns empty, not an error", func(t *testing.T) {
		results, err := s.TextSearch(ctx, "blockchain", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestVectorSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		f := newFixture(t)

		near := lexicalDoc("https://example.edu.vn/near", "Trang gần")
		near.Embedding = []float32{1, 0}
		far := lexicalDoc("https://example.edu.vn/far", "Trang xa")
		far.Embedding = []float32{0.6, 0.8}
		f.addDocument(t, near)
		f.addDocument(t, far)

		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}

		s, err := NewSearcher(f.repo, f.index, f.embedder)
		require.NoError(t, err)

		results, err := s.VectorSearch(ctx, "câu hỏi", 10, 0.5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "https://example.edu.vn/near", results[0].Document.URL)
		assert.Equal(t, core.ScoreSourceVector, results[0].Source)
	})

	t.Run("falls back to lexical when embedding fails", func(t *testing.T) {
		f := newFixture(t)
		f.addDocument(t, lexicalDoc("https://example.edu.vn/hb", "Học bổng khuyến khích"))

		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, ai.ErrEmbeddingFailed
		}

		s, err := NewSearcher(f.repo, f.index, f.embedder)
		require.NoError(t, err)

		results, err := s.VectorSearch(ctx, "học bổng", 10, 0.5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.ScoreSourceText, results[0].Source)
	})

	t.Run("falls back to lexical when disabled", func(t *testing.T) {
		f := newFixture(t)
		f.addDocument(t, lexicalDoc("https://example.edu.vn/hb", "Học bổng khuyến khích"))

		s, err := NewSearcher(f.repo, f.index, nil)
		require.NoError(t, err)

		results, err := s.VectorSearch(ctx, "học bổng", 10, 0.5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.ScoreSourceText, results[0].Source)
	})

	t.Run("wraps non-sentinel embed errors as embedding failure", func(t *testing.T) {
		f := newFixture(t)
		f.addDocument(t, lexicalDoc("https://example.edu.vn/hb", "Học bổng"))

		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("connection refused")
		}

		s, err := NewSearcher(f.repo, f.index, f.embedder)
		require.NoError(t, err)

		// Still falls back rather than surfacing the transport error.
		results, err := s.VectorSearch(ctx, "học bổng", 10, 0.5)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestHybridSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("fuses with default weights", func(t *testing.T) {
		f := newFixture(t)

		// Lexical-only doc: matches the query text, carries no vector.
		lex := lexicalDoc("https://example.edu.vn/lex", "Thông báo tuyển sinh")
		// Vector-only doc: cosine 1.0 against the query vector, no text match.
		vec := lexicalDoc("https://example.edu.vn/vec", "Trang khác")
		vec.Embedding = []float32{1, 0}
		f.addDocument(t, lex)
		f.addDocument(t, vec)

		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}

		s, err := NewSearcher(f.repo, f.index, f.embedder)
		require.NoError(t, err)

		results, err := s.HybridSearch(ctx, "tuyển sinh", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)

		// vec: 0.7 * 1.0 = 0.7 beats lex: 0.3 * (1/1) = 0.3
		assert.Equal(t, "https://example.edu.vn/vec", results[0].Document.URL)
		assert.InDelta(t, 0.7, results[0].Score, 1e-9)
		assert.Equal(t, "https://example.edu.vn/lex", results[1].Document.URL)
		assert.InDelta(t, 0.3, results[1].Score, 1e-9)
		for _, r := range results {
			assert.Equal(t, core.ScoreSourceHybrid, r.Source)
		}
	})

	t.Run("document in both legs accumulates both scores", func(t *testing.T) {
		f := newFixture(t)

		doc := lexicalDoc("https://example.edu.vn/both", "Thông báo tuyển sinh")
		doc.Embedding = []float32{1, 0}
		f.addDocument(t, doc)

		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}

		s, err := NewSearcher(f.repo, f.index, f.embedder)
		require.NoError(t, err)

		results, err := s.HybridSearch(ctx, "tuyển sinh", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.InDelta(t, 0.3*1.0+0.7*1.0, results[0].Score, 1e-9)
	})

	t.Run("degrades to lexical when the vector leg fails", func(t *testing.T) {
		f := newFixture(t)
		f.addDocument(t, lexicalDoc("https://example.edu.vn/lex", "Thông báo tuyển sinh"))

		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, ai.ErrEmbeddingFailed
		}

		s, err := NewSearcher(f.repo, f.index, f.embedder)
		require.NoError(t, err)

		results, err := s.HybridSearch(ctx, "tuyển sinh", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.ScoreSourceText, results[0].Source)
	})

	t.Run("serves lexical results with a nil embedder", func(t *testing.T) {
		f := newFixture(t)
		f.addDocument(t, lexicalDoc("https://example.edu.vn/lex", "Thông báo tuyển sinh"))

		s, err := NewSearcher(f.repo, f.index, nil)
		require.NoError(t, err)

		results, err := s.HybridSearch(ctx, "tuyển sinh", 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("custom weights change the ranking", func(t *testing.T) {
		f := newFixture(t)

		lex := lexicalDoc("https://example.edu.vn/lex", "Thông báo tuyển sinh")
		vec := lexicalDoc("https://example.edu.vn/vec", "Trang khác")
		vec.Embedding = []float32{1, 0}
		f.addDocument(t, lex)
		f.addDocument(t, vec)

		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}

		s, err := NewSearcher(f.repo, f.index, f.embedder)
		require.NoError(t, err)

		// Lexical-dominant weighting flips the order from the default.
		results, err := s.HybridSearchWeighted(ctx, "tuyển sinh", 10, 0.9, 0.1)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "https://example.edu.vn/lex", results[0].Document.URL)
	})

	t.Run("limit truncates fused results", func(t *testing.T) {
		f := newFixture(t)
		for _, url := range []string{
			"https://example.edu.vn/1",
			"https://example.edu.vn/2",
			"https://example.edu.vn/3",
		} {
			f.addDocument(t, lexicalDoc(url, "Thông báo tuyển sinh"))
		}

		s, err := NewSearcher(f.repo, f.index, nil)
		require.NoError(t, err)

		results, err := s.HybridSearch(ctx, "tuyển sinh", 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("lexical failure aborts the query", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.index.Close())

		s, err := NewSearcher(f.repo, f.index, nil)
		require.NoError(t, err)

		_, err = s.HybridSearch(ctx, "tuyển sinh", 10)
		assert.ErrorIs(t, err, index.ErrIndexUnavailable)
	})
}
