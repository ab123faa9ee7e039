package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a document repository is not provided.
	ErrRepositoryRequired = errors.New("document repository required")

	// ErrIndexRequired is returned when a lexical index is not provided.
	ErrIndexRequired = errors.New("lexical index required")

	// ErrNoValidDocuments is returned when every document in a batch fails validation.
	ErrNoValidDocuments = errors.New("no valid documents in batch")
)
