// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package kbase

import (
	"context"
	"io"
	"log/slog"

	"github.com/askuni/kbase/ai"
	"github.com/askuni/kbase/ai/openai"
	"github.com/askuni/kbase/backfill"
	"github.com/askuni/kbase/cache"
	"github.com/askuni/kbase/index"
	"github.com/askuni/kbase/ingestion"
	"github.com/askuni/kbase/search"
	"github.com/askuni/kbase/storage"
	"github.com/askuni/kbase/storage/badger"
)

// KnowledgeBase bundles the storage backend, the lexical index, and the
// embedding provider behind one handle. The index is rebuilt from storage
// on open; callers get searchers and pipelines from here so every
// component shares the same repository and index.
type KnowledgeBase struct {
	backend       *badger.Backend
	docRepo       storage.DocumentRepository
	index         *index.Index
	embedder      ai.Embedder
	responseCache *cache.ResponseCache
	logger        *slog.Logger
}

// KnowledgeBaseOption configures a KnowledgeBase.
type KnowledgeBaseOption func(*knowledgeBaseOptions)

type knowledgeBaseOptions struct {
	aiConfig   *ai.Config
	noEmbedder bool
	inMemory   bool
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.aiConfig = config
	}
}

// WithoutEmbedder opens the knowledge base with no embedding provider.
// Ingestion stores documents without vectors and search serves lexical
// results only.
func WithoutEmbedder() KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.noEmbedder = true
	}
}

// WithInMemoryStorage keeps all data in memory. Intended for tests.
func WithInMemoryStorage() KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.inMemory = true
	}
}

// Open opens (or creates) a knowledge base at the given path and rebuilds
// the lexical index from the stored documents.
func Open(ctx context.Context, filePath string, opts ...KnowledgeBaseOption) (*KnowledgeBase, error) {
	// Apply options
	options := &knowledgeBaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create document repository
	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Rebuild the lexical index from storage
	ix := index.New()
	if err := ix.Build(ctx, docRepo); err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create embedder with configured settings
	var embedder ai.Embedder
	if !options.noEmbedder {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			docRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &KnowledgeBase{
		backend:       backend,
		docRepo:       docRepo,
		index:         ix,
		embedder:      embedder,
		responseCache: cache.NewResponseCache(cache.DefaultResponseCapacity),
		logger:        slog.Default(),
	}, nil
}

// Close releases the index, the repository, and the storage backend.
func (kb *KnowledgeBase) Close() error {
	if err := kb.index.Close(); err != nil {
		kb.logger.Error("error closing lexical index", "err", err)
	}

	if err := kb.docRepo.Close(); err != nil {
		kb.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := kb.backend.Close(); err != nil {
		kb.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (kb *KnowledgeBase) DocumentRepository() storage.DocumentRepository {
	return kb.docRepo
}

func (kb *KnowledgeBase) Index() *index.Index {
	return kb.index
}

// ResponseCache returns the shared cache of rendered answers.
func (kb *KnowledgeBase) ResponseCache() *cache.ResponseCache {
	return kb.responseCache
}

func (kb *KnowledgeBase) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(kb.docRepo, kb.index, kb.embedder, opts...)
}

func (kb *KnowledgeBase) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(kb.docRepo, kb.index, kb.embedder, opts...)
}

// NewBackfiller creates a backfiller over this knowledge base's documents.
func (kb *KnowledgeBase) NewBackfiller(config *backfill.Config, progress io.Writer) *backfill.Backfiller {
	return backfill.NewBackfiller(kb.docRepo, kb.embedder, config, progress)
}
