// Package apperr defines the error taxonomy of the practice engine. Handlers
// map these sentinels to HTTP status codes; callers test with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound covers sessions, subjects, documents and questions that are
	// absent or not visible to the caller.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidState means the operation is not valid for the current
	// session status, e.g. answering a completed session.
	ErrInvalidState = errors.New("invalid session state")

	// ErrExhausted means the question quota is reached or no further question
	// can be produced.
	ErrExhausted = errors.New("no more questions available")

	// ErrRateLimited means admission was denied by the rate limiter. The
	// caller may retry after a short delay.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBackendUnavailable means a retrieval/LLM/OCR call failed or timed
	// out and no fallback remained.
	ErrBackendUnavailable = errors.New("retrieval backend unavailable")

	// ErrUngradable means no correct answer is known and no semantic grading
	// tier is available.
	ErrUngradable = errors.New("answer cannot be graded")
)
