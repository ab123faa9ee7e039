package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/askuni/kbase/core"
	"github.com/askuni/kbase/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	return &DocumentRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *DocumentRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *DocumentRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float64, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertDocument creates or replaces a document keyed by content ID.
// Replacement is whole-record: no partial-field merge happens here.
func (r *DocumentRepository) UpsertDocument(ctx context.Context, doc *core.Document) (core.ID, error) {
	if doc.Id == 0 {
		doc.Id = core.IDFromContent(doc.URL)
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		if doc.CrawledAt.IsZero() {
			doc.CrawledAt = now
		}
		doc.UpdatedAt = now

		key := makeDocumentKey(doc.Id)

		// Read the old record so stale index entries can be cleaned up.
		old, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if old != nil && old.Category != doc.Category {
			if err := tx.Delete(makeCategoryKey(old.Category, old.Id)); err != nil {
				return err
			}
		}
		if old != nil && old.URL != doc.URL {
			if err := tx.Delete(makeURLKey(old.URL)); err != nil {
				return err
			}
		}
		if old != nil && !old.CrawledAt.Equal(doc.CrawledAt) {
			if err := tx.Delete(makeDateKey(old.CrawledAt, old.Id)); err != nil {
				return err
			}
		}

		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := tx.Set(makeURLKey(doc.URL), storage.MarshalID(doc.Id)); err != nil {
			return err
		}
		if err := tx.Set(makeCategoryKey(doc.Category, doc.Id), storage.MarshalID(doc.Id)); err != nil {
			return err
		}
		if err := tx.Set(makeDateKey(doc.CrawledAt, doc.Id), storage.MarshalID(doc.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return doc.Id, err
}

// GetDocument retrieves a single document by content ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentByURL retrieves a single document by its unique URL.
func (r *DocumentRepository) GetDocumentByURL(ctx context.Context, url string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeURLKey(url))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentsByCategory retrieves up to limit documents in a category.
func (r *DocumentRepository) GetDocumentsByCategory(ctx context.Context, category string, limit int) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialCategoryKey(category)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			doc, err := r.readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetDocumentsByDateRange retrieves documents crawled within a time range,
// ordered by crawl time ascending. The end bound is exclusive.
func (r *DocumentRepository) GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDateKey(start)
		endKey := makePartialDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if bytes.Compare(key, endKey) > 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			doc, err := r.readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetAllDocuments retrieves up to limit documents. A limit <= 0 means no limit.
func (r *DocumentRepository) GetAllDocuments(ctx context.Context, limit int) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var doc *core.Document
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			}); err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountDocuments returns the total number of documents stored.
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// DeleteDocument removes a document and its index entries by content ID.
// Returns false if the document didn't exist.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) (bool, error) {
	deleted := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}

		if err := tx.Delete(makeURLKey(doc.URL)); err != nil {
			return err
		}
		if err := tx.Delete(makeCategoryKey(doc.Category, doc.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeDateKey(doc.CrawledAt, doc.Id)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}

		deleted = true
		return tx.Commit()
	}, true)
	return deleted, err
}

// readDocument reads a document from the transaction.
// Returns nil (no error) when the key doesn't exist.
func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	// Guard against index keys sharing the record prefix.
	if !bytes.HasPrefix(item.Key(), []byte(documentPrefix+":")) {
		return nil, nil
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}
