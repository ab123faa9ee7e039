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

	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/storage"
)

const (
	// DefaultBatchSize is the default number of documents to process in each batch
	DefaultBatchSize = 100
)

// DocumentIterator iterates over stored documents in batches.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
	filter    func(*core.Document) bool
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents to process in each batch (must be > 0)
// filter: optional predicate; documents it rejects are skipped (nil = all)
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int, filter func(*core.Document) bool) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
		filter:    filter,
	}
}

// ForEach iterates over the selected documents, calling fn for each batch.
// Iteration stops on first error from fn or when all documents are processed.
// Context cancellation is checked between batches.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	docs, err := it.repo.GetAllDocuments(ctx, 0)
	if err != nil {
		return err
	}

	if it.filter != nil {
		selected := docs[:0]
		for _, doc := range docs {
			if it.filter(doc) {
				selected = append(selected, doc)
			}
		}
		docs = selected
	}

	if len(docs) == 0 {
		// No documents to process
		return nil
	}

	// Process documents in batches of batchSize
	for i := 0; i < len(docs); i += it.batchSize {
		end := i + it.batchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := docs[i:end]

		// Call user function with batch
		if err := fn(batch); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
