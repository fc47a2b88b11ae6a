package core

import "errors"

// Failure kinds shared by both pipelines. Handlers match on these with
// errors.Is to pick a status code; everything else maps to a generic 500.
var (
	// ErrInvalidInput marks caller-correctable input problems, detected before
	// any collaborator is invoked.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionFailed means the PDF was unreadable, corrupt or unsupported.
	ErrExtractionFailed = errors.New("pdf text extraction failed")

	// ErrStorageFailed means the vector store was unavailable or rejected the
	// bulk write or the similarity query.
	ErrStorageFailed = errors.New("vector store operation failed")

	// ErrGenerationFailed means the language-model call failed.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrGenerationTimeout means the language-model call exceeded its deadline.
	ErrGenerationTimeout = errors.New("answer generation timed out")

	// ErrNotInitialized means a collaborator was used before startup
	// initialization completed, or the generator was never configured.
	ErrNotInitialized = errors.New("service not initialized")
)
