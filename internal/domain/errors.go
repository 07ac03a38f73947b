package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank query or empty text passed to the embedder.
	ErrEmptyQuery = errors.New("empty query")
	// ErrCollectionUnknown signals a collection name this service does not own.
	ErrCollectionUnknown = errors.New("unknown collection")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrTransientProvider signals a retryable remote provider failure
	// (timeout, rate limit, 5xx). Callers retry with bounded backoff.
	ErrTransientProvider = errors.New("provider temporarily unavailable")
	// ErrProvider signals a permanent remote provider failure. Not retried.
	ErrProvider = errors.New("provider error")
	// ErrMalformedGeneration signals generation output that could not be
	// parsed into the expected structure, or a citation outside the
	// enumerated source list. Surfaced to the caller, never retried silently.
	ErrMalformedGeneration = errors.New("malformed generation output")
	// ErrIndexUnavailable signals an unreachable vector index. Fatal for the
	// current query.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
