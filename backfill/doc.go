// Package backfill provides functionality for embedding stored documents
// after the fact, either filling in vectors an offline provider skipped at
// ingest time or re-embedding everything for a new embedding model.
//
// This package supports batch processing of documents, progress tracking,
// retry logic with exponential backoff, and vector normalization to ensure
// compatibility with cosine similarity search.
package backfill
