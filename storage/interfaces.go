package storage

import (
	"context"
	"time"

	"github.com/askuni/kbase/core"
)

// DocumentRepository provides operations for managing crawled documents.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// UpsertDocument creates or replaces a document keyed by its content ID.
	// The content ID is derived from the URL when not already set.
	// There is no partial-field merge: the stored record is replaced whole.
	// Sets UpdatedAt; sets CrawledAt if not already set.
	// Returns the content ID of the stored document.
	UpsertDocument(ctx context.Context, doc *core.Document) (core.ID, error)

	// GetDocument retrieves a single document by content ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocumentByURL retrieves a single document by its unique URL.
	// Returns ErrNotFound if no document has that URL.
	GetDocumentByURL(ctx context.Context, url string) (*core.Document, error)

	// GetDocumentsByCategory retrieves up to limit documents in a category.
	GetDocumentsByCategory(ctx context.Context, category string, limit int) ([]*core.Document, error)

	// GetDocumentsByDateRange retrieves documents crawled within [start, end),
	// ordered by crawl time ascending.
	GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error)

	// GetAllDocuments retrieves up to limit documents, in content ID order.
	// A limit <= 0 means no limit.
	GetAllDocuments(ctx context.Context, limit int) ([]*core.Document, error)

	// CountDocuments returns the total number of documents stored.
	CountDocuments(ctx context.Context) (int, error)

	// DeleteDocument removes a document by content ID.
	// Returns false (and no error) if the document didn't exist.
	DeleteDocument(ctx context.Context, id core.ID) (bool, error)

	// FindSimilar finds documents whose embedding is similar to the given vector.
	// Documents without an embedding are never returned. Returns documents with
	// cosine similarity >= minSimilarity, up to limit results, ordered by
	// similarity (highest first) with content ID as a deterministic tie-break.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float64, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}
