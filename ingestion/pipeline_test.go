package ingestion

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askuni/kbase/ai/mock"
	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/index"
	"github.com/askuni/kbase/storage"
	"github.com/askuni/kbase/storage/badger"
)

func setupTestPipeline(t *testing.T, embedDim int) (*Pipeline, storage.DocumentRepository, *index.Index) {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ix := index.New()

	embedder := mock.NewEmbedder()
	embedder.Dimensions = embedDim

	p, err := NewPipeline(repo, ix, embedder,
		WithEmbeddingDimensions(embedDim),
		WithPoolSize(1),
	)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return p, repo, ix
}

func crawledDoc(url, title string) *core.Document {
	return &core.Document{
		URL:       url,
		Title:     title,
		Content:   strings.Repeat("Nội dung trang web được thu thập về kho tri thức. ", 5),
		Category:  core.CategoryAdmissions,
		CrawledAt: time.Now().UTC().Add(-time.Hour),
	}
}

func TestNewPipeline(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	t.Run("nil repository fails", func(t *testing.T) {
		_, err := NewPipeline(nil, index.New(), mock.NewEmbedder())
		assert.ErrorIs(t, err, ErrRepositoryRequired)
	})

	t.Run("nil index fails", func(t *testing.T) {
		_, err := NewPipeline(repo, nil, mock.NewEmbedder())
		assert.ErrorIs(t, err, ErrIndexRequired)
	})

	t.Run("nil embedder is allowed", func(t *testing.T) {
		p, err := NewPipeline(repo, index.New(), nil)
		require.NoError(t, err)
		p.Release()
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and indexes valid documents", func(t *testing.T) {
		p, repo, ix := setupTestPipeline(t, 8)

		accepted, err := p.Ingest(ctx, crawledDoc("https://example.edu.vn/a", "Thông báo tuyển sinh"))
		require.NoError(t, err)
		assert.Equal(t, 1, accepted)

		stored, err := repo.GetDocumentByURL(ctx, "https://example.edu.vn/a")
		require.NoError(t, err)
		assert.Equal(t, "Thông báo tuyển sinh", stored.Title)

		results, err := ix.Search("tuyển sinh", 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("skips invalid documents and keeps the rest", func(t *testing.T) {
		p, repo, _ := setupTestPipeline(t, 8)

		invalid := crawledDoc("https://example.edu.vn/bad", "Trang lỗi")
		invalid.Content = "quá ngắn"

		accepted, err := p.Ingest(ctx,
			invalid,
			crawledDoc("https://example.edu.vn/good", "Trang hợp lệ"),
		)
		require.NoError(t, err)
		assert.Equal(t, 1, accepted)

		_, err = repo.GetDocumentByURL(ctx, "https://example.edu.vn/bad")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = repo.GetDocumentByURL(ctx, "https://example.edu.vn/good")
		assert.NoError(t, err)
	})

	t.Run("all invalid batch fails", func(t *testing.T) {
		p, _, _ := setupTestPipeline(t, 8)

		invalid := crawledDoc("https://example.edu.vn/bad", "Trang lỗi")
		invalid.Content = "quá ngắn"

		_, err := p.Ingest(ctx, invalid)
		assert.ErrorIs(t, err, ErrNoValidDocuments)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		p, _, _ := setupTestPipeline(t, 8)

		accepted, err := p.Ingest(ctx)
		require.NoError(t, err)
		assert.Zero(t, accepted)
	})

	t.Run("fills defaults before validation", func(t *testing.T) {
		p, repo, _ := setupTestPipeline(t, 8)

		doc := crawledDoc("https://example.edu.vn/defaults", "Trang mặc định")
		doc.Category = ""
		doc.CrawledAt = time.Time{}
		doc.WordCount = 0

		_, err := p.Ingest(ctx, doc)
		require.NoError(t, err)

		stored, err := repo.GetDocumentByURL(ctx, "https://example.edu.vn/defaults")
		require.NoError(t, err)
		assert.Equal(t, core.CategoryGeneral, stored.Category)
		assert.False(t, stored.CrawledAt.IsZero())
		assert.Equal(t, core.CountWords(doc.Content), stored.WordCount)
	})

	t.Run("generates embeddings asynchronously", func(t *testing.T) {
		p, repo, _ := setupTestPipeline(t, 8)

		doc := crawledDoc("https://example.edu.vn/embed", "Trang nhúng")
		_, err := p.Ingest(ctx, doc)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			stored, err := repo.GetDocumentByURL(ctx, "https://example.edu.vn/embed")
			if err != nil {
				return false
			}
			return len(stored.Embedding) == 8
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("wait drains pending embedding work", func(t *testing.T) {
		p, repo, _ := setupTestPipeline(t, 8)

		_, err := p.Ingest(ctx,
			crawledDoc("https://example.edu.vn/w1", "Trang một"),
			crawledDoc("https://example.edu.vn/w2", "Trang hai"),
		)
		require.NoError(t, err)

		// After Wait every accepted document carries a vector; no polling.
		p.Wait()

		for _, url := range []string{
			"https://example.edu.vn/w1",
			"https://example.edu.vn/w2",
		} {
			stored, err := repo.GetDocumentByURL(ctx, url)
			require.NoError(t, err)
			assert.Len(t, stored.Embedding, 8)
		}
	})

	t.Run("documents arriving with vectors are not re-embedded", func(t *testing.T) {
		p, repo, _ := setupTestPipeline(t, 2)

		doc := crawledDoc("https://example.edu.vn/prevec", "Trang có vector")
		doc.Embedding = []float32{0.6, 0.8}

		_, err := p.Ingest(ctx, doc)
		require.NoError(t, err)

		// Async workers would overwrite the vector if this doc were queued.
		p.Wait()

		stored, err := repo.GetDocumentByURL(ctx, "https://example.edu.vn/prevec")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.6, 0.8}, stored.Embedding)
	})

	t.Run("nil embedder stores documents without vectors", func(t *testing.T) {
		repo, backend, err := badger.NewMemoryRepository()
		require.NoError(t, err)
		defer backend.Close()

		p, err := NewPipeline(repo, index.New(), nil)
		require.NoError(t, err)
		defer p.Release()

		_, err = p.Ingest(ctx, crawledDoc("https://example.edu.vn/novec", "Trang không vector"))
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		stored, err := repo.GetDocumentByURL(ctx, "https://example.edu.vn/novec")
		require.NoError(t, err)
		assert.Empty(t, stored.Embedding)
	})

	t.Run("re-ingesting a URL replaces the record", func(t *testing.T) {
		p, repo, ix := setupTestPipeline(t, 8)

		first := crawledDoc("https://example.edu.vn/update", "Tiêu đề cũ")
		_, err := p.Ingest(ctx, first)
		require.NoError(t, err)

		second := crawledDoc("https://example.edu.vn/update", "Tiêu đề mới")
		_, err = p.Ingest(ctx, second)
		require.NoError(t, err)

		stored, err := repo.GetDocumentByURL(ctx, "https://example.edu.vn/update")
		require.NoError(t, err)
		assert.Equal(t, "Tiêu đề mới", stored.Title)

		count, err := repo.CountDocuments(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, ix.Len())
	})
}

func TestEmbeddingText(t *testing.T) {
	t.Run("combines title and content", func(t *testing.T) {
		doc := &core.Document{Title: "Thông báo", Content: "Nội dung."}
		assert.Equal(t, "Thông báo\n\nNội dung.", EmbeddingText(doc))
	})

	t.Run("untitled document embeds content only", func(t *testing.T) {
		doc := &core.Document{Content: "Nội dung."}
		assert.Equal(t, "Nội dung.", EmbeddingText(doc))
	})
}
