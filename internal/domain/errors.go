package domain

import "errors"

var (
	// ErrInvalidInput signals a request that fails schema validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrBadImage signals an uploaded image that could not be decoded.
	ErrBadImage = errors.New("unparseable image")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrStoreUnavailable signals a vector store failure.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrBadFrame signals a binary point stream whose length is not a whole
	// number of records.
	ErrBadFrame = errors.New("truncated point record")
)
