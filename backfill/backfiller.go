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


package backfill

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/askuni/kbase/ai"
	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/storage"
)

// Config holds configuration for the backfill operation.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Force re-embeds every document, not just those missing a vector.
	// Needed after switching embedding models.
	Force bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Backfiller generates embeddings for stored documents that are missing
// them, typically after an ingest ran without a reachable provider.
type Backfiller struct {
	repo      storage.DocumentRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *DocumentIterator
}

// NewBackfiller creates a new backfiller.
// progress: where to write progress output (typically os.Stderr)
func NewBackfiller(repo storage.DocumentRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Backfiller {
	if config == nil {
		config = DefaultConfig()
	}

	var filter func(*core.Document) bool
	if !config.Force {
		filter = func(doc *core.Document) bool {
			return len(doc.Embedding) == 0
		}
	}

	processor := NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewDocumentIterator(repo, config.BatchSize, filter)

	return &Backfiller{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the backfill operation. Documents missing embeddings (or all
// documents when Force is set) are embedded with the configured embedder.
// Progress is reported to the configured writer.
func (b *Backfiller) Run(ctx context.Context) error {
	// First, count how many documents need work
	allDocs, err := b.repo.GetAllDocuments(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}

	totalDocs := 0
	for _, doc := range allDocs {
		if b.config.Force || len(doc.Embedding) == 0 {
			totalDocs++
		}
	}
	if totalDocs == 0 {
		fmt.Fprintf(b.progress, "No documents need embedding (0 documents)\n")
		return nil
	}

	fmt.Fprintf(b.progress, "Starting backfill of %d documents (batch size: %d)\n",
		totalDocs, b.config.BatchSize)

	// Initialize progress tracker
	tracker := NewProgressTracker(b.progress, totalDocs, b.config.ReportInterval)
	tracker.Start()

	processed := 0

	// Process the selected documents in batches
	err = b.iterator.ForEach(ctx, func(docs []*core.Document) error {
		// Process this batch
		if err := b.processor.Process(ctx, docs); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		// Update progress
		processed += len(docs)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	// Finish progress tracking
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(b.progress, "Backfill complete. Processed %d documents in %v (%.1f documents/sec)\n",
		totalDocs, elapsed.Round(time.Second), float64(totalDocs)/elapsed.Seconds())

	return nil
}
