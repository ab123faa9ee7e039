package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/askuni/kbase/ai"
	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/index"
	"github.com/askuni/kbase/storage"
)

// Pipeline orchestrates the ingestion of crawled documents. Accepted
// documents are persisted and indexed synchronously; embedding generation
// runs on a worker pool so a slow or offline provider never blocks a crawl.
type Pipeline struct {
	repository    storage.DocumentRepository
	index         *index.Index
	embeddingPool *ants.Pool
	embeddingProc processor
	embeddingDim  int
	pending       sync.WaitGroup
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for embedding generation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithEmbeddingDimensions sets the expected embedding dimensionality used
// during document validation. Default is ai.DefaultEmbeddingDimensions.
func WithEmbeddingDimensions(dim int) Option {
	return func(p *Pipeline) error {
		if dim < 1 {
			return errors.New("embedding dimensions must be positive")
		}
		p.embeddingDim = dim
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. A nil embedder is allowed;
// documents are then stored and indexed without vectors and can be
// backfilled later.
func NewPipeline(
	repository storage.DocumentRepository,
	ix *index.Index,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if ix == nil {
		return nil, ErrIndexRequired
	}

	logger := slog.Default()

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository:    repository,
		index:         ix,
		embeddingPool: embeddingPool,
		embeddingDim:  ai.DefaultEmbeddingDimensions,
		logger:        logger,
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if embedder != nil {
		embeddingProc, err := newEmbeddingProcessor(repository, embedder, p.logger)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.embeddingProc = embeddingProc
	} else {
		p.logger.Info("no embedder configured, documents will be ingested without vectors")
	}

	return p, nil
}

// Ingest validates, stores, and indexes a batch of documents, then submits
// the accepted ones for asynchronous embedding generation. Documents that
// fail validation are skipped with a logged warning; the batch fails only
// when storage does or when nothing in it is valid. Returns the number of
// accepted documents.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.Document) (int, error) {
	now := time.Now().UTC()

	accepted := make([]*core.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.WordCount == 0 {
			doc.WordCount = core.CountWords(doc.Content)
		}
		if doc.Category == "" {
			doc.Category = core.CategoryGeneral
		}
		if doc.CrawledAt.IsZero() {
			doc.CrawledAt = now
		}

		if err := core.ValidateDocument(doc, p.embeddingDim); err != nil {
			p.logger.Warn("skipping invalid document", "url", doc.URL, "err", err)
			continue
		}
		accepted = append(accepted, doc)
	}

	if len(accepted) == 0 {
		if len(docs) > 0 {
			return 0, ErrNoValidDocuments
		}
		return 0, nil
	}

	ids := make([]core.ID, 0, len(accepted))
	for _, doc := range accepted {
		id, err := p.repository.UpsertDocument(ctx, doc)
		if err != nil {
			return len(ids), err
		}
		if err := p.index.Add(doc); err != nil {
			return len(ids), err
		}
		ids = append(ids, id)
	}

	p.logger.Info("ingested documents", "accepted", len(ids), "skipped", len(docs)-len(ids))

	if p.embeddingProc != nil {
		// Only embed documents that don't already carry a vector.
		pending := make([]core.ID, 0, len(accepted))
		for i, doc := range accepted {
			if len(doc.Embedding) == 0 {
				pending = append(pending, ids[i])
			}
		}
		if len(pending) > 0 {
			p.pending.Add(1)
			err := p.embeddingPool.Submit(func() {
				defer p.pending.Done()
				if err := p.embeddingProc.process(context.Background(), pending...); err != nil {
					p.logger.Error("error processing embeddings", "err", err)
				}
			})
			if err != nil {
				p.pending.Done()
				p.logger.Error("error submitting embedding work", "err", err)
			}
		}
	}

	return len(ids), nil
}

// Wait blocks until all submitted embedding work has finished. Callers that
// exit right after ingesting (the CLI, the seeder) use it so vectors are not
// lost to process shutdown.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
