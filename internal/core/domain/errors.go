package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFileType indicates an upload that is not a PDF.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidFolder indicates a folder other than uploads or downloads.
	ErrInvalidFolder = errors.New("invalid folder")

	// ErrNoDocuments indicates the index could not be built because
	// there are no documents, or none of them yielded any text.
	ErrNoDocuments = errors.New("no documents available")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Retrieval is impossible without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index backend is unreachable.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrExtractionFailed indicates text could not be extracted from a PDF.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrUnauthorized indicates missing or invalid admin credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
