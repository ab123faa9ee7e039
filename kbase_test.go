package kbase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askuni/kbase/core"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("create new knowledge base", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		kb, err := Open(ctx, tmpDir, WithoutEmbedder())
		require.NoError(t, err)
		require.NotNil(t, kb)
		defer kb.Close()

		// Verify components are initialized
		assert.NotNil(t, kb.DocumentRepository())
		assert.NotNil(t, kb.Index())
		assert.NotNil(t, kb.ResponseCache())
		assert.NotNil(t, kb.backend)
		assert.NotNil(t, kb.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to open a knowledge base at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		kb, err := Open(ctx, tmpFile, WithoutEmbedder())
		assert.Error(t, err)
		assert.Nil(t, kb)
	})

	t.Run("in-memory storage needs no path", func(t *testing.T) {
		kb, err := Open(ctx, "", WithInMemoryStorage(), WithoutEmbedder())
		require.NoError(t, err)
		require.NotNil(t, kb)
		assert.NoError(t, kb.Close())
	})
}

func TestKnowledgeBase_Close(t *testing.T) {
	kb, err := Open(context.Background(), t.TempDir(), WithoutEmbedder())
	require.NoError(t, err)
	require.NotNil(t, kb)

	err = kb.Close()
	assert.NoError(t, err)
}

func TestKnowledgeBase_FactoryMethods(t *testing.T) {
	kb, err := Open(context.Background(), t.TempDir(), WithoutEmbedder())
	require.NoError(t, err)
	require.NotNil(t, kb)
	defer kb.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := kb.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := kb.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create backfiller", func(t *testing.T) {
		backfiller := kb.NewBackfiller(nil, os.Stderr)
		require.NotNil(t, backfiller)
	})
}

func TestKnowledgeBase_IndexRebuildOnOpen(t *testing.T) {
	ctx := context.Background()
	tmpDir := filepath.Join(t.TempDir(), "reopen_db")

	doc := &core.Document{
		URL:       "https://example.edu.vn/persist",
		Title:     "Thông báo tuyển sinh",
		Content:   strings.Repeat("Nội dung thông báo tuyển sinh của trường. ", 5),
		Category:  core.CategoryAdmissions,
		CrawledAt: time.Now().UTC().Add(-time.Hour),
	}

	// First session: ingest a document.
	kb, err := Open(ctx, tmpDir, WithoutEmbedder())
	require.NoError(t, err)

	pipeline, err := kb.NewIngestionPipeline()
	require.NoError(t, err)
	accepted, err := pipeline.Ingest(ctx, doc)
	require.NoError(t, err)
	require.Equal(t, 1, accepted)
	pipeline.Release()
	require.NoError(t, kb.Close())

	// Second session: the lexical index is rebuilt from storage.
	kb, err = Open(ctx, tmpDir, WithoutEmbedder())
	require.NoError(t, err)
	defer kb.Close()

	assert.Equal(t, 1, kb.Index().Len())

	searcher, err := kb.NewSearcher()
	require.NoError(t, err)
	results, err := searcher.TextSearch(ctx, "tuyển sinh", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
