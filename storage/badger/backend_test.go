package badger

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askuni/kbase/core"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors score one", func(t *testing.T) {
		v := []float32{0.3, 0.4, 0.5}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
	})

	t.Run("orthogonal vectors score zero", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{0, 1}
		assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
	})

	t.Run("opposite vectors score minus one", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{-1, 0}
		assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-6)
	})

	t.Run("zero norm returns zero", func(t *testing.T) {
		a := []float32{0, 0, 0}
		b := []float32{1, 2, 3}
		assert.Equal(t, 0.0, CosineSimilarity(a, b))
		assert.Equal(t, 0.0, CosineSimilarity(b, a))
	})

	t.Run("similarity is scale invariant", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{2, 4, 6}
		assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)
	})
}

func embeddedDocument(url string, embedding []float32) *core.Document {
	return &core.Document{
		URL:       url,
		Title:     "Trang " + url,
		Content:   strings.Repeat("Nội dung trang web được thu thập về. ", 5),
		Category:  core.CategoryGeneral,
		Embedding: embedding,
		CrawledAt: time.Now().UTC().Add(-time.Hour),
	}
}

func TestFindSimilar(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	// Unit vectors at known angles to the query (1, 0)
	docs := []*core.Document{
		embeddedDocument("https://example.edu.vn/exact", []float32{1, 0}),
		embeddedDocument("https://example.edu.vn/close", []float32{float32(math.Cos(math.Pi / 6)), float32(math.Sin(math.Pi / 6))}), // cos 30° ≈ 0.866
		embeddedDocument("https://example.edu.vn/far", []float32{float32(math.Cos(math.Pi / 3)), float32(math.Sin(math.Pi / 3))}),   // cos 60° = 0.5
		embeddedDocument("https://example.edu.vn/orthogonal", []float32{0, 1}),
		embeddedDocument("https://example.edu.vn/no-vector", nil),
	}
	for _, doc := range docs {
		_, err := repo.UpsertDocument(ctx, doc)
		require.NoError(t, err)
	}

	query := []float32{1, 0}

	t.Run("ranks by similarity descending", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, query, 0.3, 10)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "https://example.edu.vn/exact", results[0].Document.URL)
		assert.Equal(t, "https://example.edu.vn/close", results[1].Document.URL)
		assert.Equal(t, "https://example.edu.vn/far", results[2].Document.URL)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
		for _, r := range results {
			assert.Equal(t, core.ScoreSourceVector, r.Source)
		}
	})

	t.Run("threshold filters weak matches", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, query, 0.7, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
	})

	t.Run("documents without embeddings are excluded", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, query, -1.0, 10)
		require.NoError(t, err)
		for _, r := range results {
			assert.NotEqual(t, "https://example.edu.vn/no-vector", r.Document.URL)
		}
	})

	t.Run("limit truncates results", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, query, 0.3, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "https://example.edu.vn/exact", results[0].Document.URL)
	})

	t.Run("no matches is empty, not an error", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, []float32{-1, 0}, 0.9, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestFindSimilarDeterministicTies(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	// Two documents with identical embeddings tie on score.
	a := embeddedDocument("https://example.edu.vn/tie-a", []float32{1, 0})
	b := embeddedDocument("https://example.edu.vn/tie-b", []float32{1, 0})
	_, err = repo.UpsertDocument(ctx, a)
	require.NoError(t, err)
	_, err = repo.UpsertDocument(ctx, b)
	require.NoError(t, err)

	first, err := backend.FindSimilar(ctx, []float32{1, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, first, 2)

	for i := 0; i < 5; i++ {
		again, err := backend.FindSimilar(ctx, []float32{1, 0}, 0.5, 10)
		require.NoError(t, err)
		require.Len(t, again, 2)
		assert.Equal(t, first[0].Document.Id, again[0].Document.Id)
		assert.Equal(t, first[1].Document.Id, again[1].Document.Id)
	}
	assert.Less(t, first[0].Document.Id, first[1].Document.Id)
}
