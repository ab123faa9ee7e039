package ai

import "errors"

var (
	// ErrEmbeddingFailed indicates the embedding provider returned an error,
	// an empty result, or timed out. Callers recover from it by falling back
	// to lexical search; it is never surfaced as a user-facing error.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)
