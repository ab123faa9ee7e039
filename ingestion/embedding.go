package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/askuni/kbase/ai"
	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/storage"
)

// embeddingProcessor generates embeddings for stored documents.
type embeddingProcessor struct {
	repository storage.DocumentRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(repository storage.DocumentRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if repository == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		repository: repository,
		embedder:   embedder,
		logger:     logger.With("processor", "embeddings"),
	}, nil
}

// process generates embeddings for the specified documents and writes the
// vectors back to storage.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing documents for embeddings", "documents", len(ids))

	slices.Sort(ids)

	docs := make([]*core.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := ep.repository.GetDocument(ctx, id)
		if err != nil {
			ep.logger.Error("error retrieving document", "id", id, "err", err)
			return err
		}
		docs = append(docs, doc)
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = EmbeddingText(doc)
	}

	ep.logger.Debug("generating embeddings for documents", "documents", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(docs), len(embeddings))
	}

	for i := range embeddings {
		docs[i].Embedding = embeddings[i]
		if _, err := ep.repository.UpsertDocument(ctx, docs[i]); err != nil {
			return err
		}
	}

	return nil
}

// EmbeddingText composes the text a document is embedded from. Title and
// content are concatenated so short pages still carry their heading signal;
// length truncation happens in the embedding adapter.
func EmbeddingText(doc *core.Document) string {
	if doc.Title == "" {
		return doc.Content
	}
	return doc.Title + "\n\n" + strings.TrimSpace(doc.Content)
}
