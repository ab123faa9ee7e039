package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
//
// Implementations do not retry: retry policy belongs to the caller. Provider
// errors, empty results, and timeouts all surface as errors wrapping
// ErrEmbeddingFailed so that callers can branch on the failure explicitly.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Input longer than MaxEmbedChars is truncated deterministically
	// before submission; the call is never silently dropped.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
