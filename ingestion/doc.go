// Package ingestion provides pipeline orchestration for crawled documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Validating and normalizing incoming documents
//   - Adding documents to storage and the lexical index
//   - Generating embeddings asynchronously
//
// Embedding generation runs on a worker pool so provider latency never
// blocks ingestion. Errors during async processing are logged but do not
// fail the ingestion operation.
package ingestion
