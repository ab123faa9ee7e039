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


package core

import (
	"fmt"
	"slices"
	"time"
)

const (
	// MinContentLength is the minimum content length for a document to be persisted.
	// Pages with less content than this are crawl noise and are rejected.
	MinContentLength = 100

	// MaxContentLength bounds stored document content.
	MaxContentLength = 10000
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - URL must not be empty
//   - Title must not be empty
//   - Content must be between MinContentLength and MaxContentLength
//   - Category, when set, must be a known category
//   - Embedding, when present, must have embeddingDim dimensions
//
// NOT validated (populated later):
//   - Embedding presence (empty until the embedding processor runs)
//   - ID (derived from the URL at ingestion time)
func ValidateDocument(doc *Document, embeddingDim int) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyURL)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if len(doc.Content) < MinContentLength {
		return fmt.Errorf("%w: %w (%d chars)", ErrInvalidDocument, ErrContentTooShort, len(doc.Content))
	}

	if len(doc.Content) > MaxContentLength {
		return fmt.Errorf("%w: %w (%d chars)", ErrInvalidDocument, ErrContentTooLong, len(doc.Content))
	}

	if doc.Category != "" && !slices.Contains(Categories, doc.Category) {
		return fmt.Errorf("%w: %w %q", ErrInvalidDocument, ErrInvalidCategory, doc.Category)
	}

	if len(doc.Embedding) > 0 && len(doc.Embedding) != embeddingDim {
		return fmt.Errorf("%w: %w (got %d, want %d)", ErrInvalidDocument, ErrInvalidEmbedding, len(doc.Embedding), embeddingDim)
	}

	if !IsValidTimestamp(doc.CrawledAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
