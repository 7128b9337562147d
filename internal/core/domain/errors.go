package domain

import (
	"context"
	"errors"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates the configuration is malformed or incomplete.
	// Fatal at startup; no work begins with an invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAccess indicates repository content could not be read.
	// Fatal for the affected subtree.
	ErrAccess = errors.New("content not accessible")

	// ErrGeneration indicates the summarisation call failed after retries.
	// Fails the node and blocks its ancestors.
	ErrGeneration = errors.New("summary generation failed")

	// ErrTooLarge indicates content cannot be chunked within the model's
	// input budget even after minimum-size splitting.
	ErrTooLarge = errors.New("content exceeds model input budget")

	// ErrEmbedding indicates an embedding call failed after retries.
	// Scoped to a single chunk; other chunks are unaffected.
	ErrEmbedding = errors.New("embedding failed")

	// ErrRateLimited indicates the provider rejected a request for rate
	// limit reasons. Transient; subject to retry with backoff.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the provider was unreachable or returned a
	// server error. Transient; subject to retry with backoff.
	ErrUnavailable = errors.New("service unavailable")

	// ErrAuthInvalid indicates the provider credentials are invalid.
	// Fatal; the whole run is cancelled.
	ErrAuthInvalid = errors.New("credentials invalid")

	// ErrIncomplete indicates a run finished with failed or blocked nodes.
	// The error message lists the affected paths.
	ErrIncomplete = errors.New("summary tree incomplete")
)

// IsTransient reports whether an external-call error is worth retrying.
// Context cancellation is never transient.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}

// IsFatal reports whether an error should abort the entire run rather
// than fail a single node.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuthInvalid) || errors.Is(err, ErrInvalidConfig)
}
