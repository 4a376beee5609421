package domain

import "errors"

var (
	// ErrInvalidQuery signals a retrieval query without any query vector.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidRequest signals a malformed request outside of the query vectors.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrVectorDimMismatch signals a query or stored vector whose width differs from its space.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRecordNotFound signals a PID with no case record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrEmbeddingProviderError signals a text embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrFaceProviderError signals a face embedding provider failure.
	ErrFaceProviderError = errors.New("face embedding provider error")
)
