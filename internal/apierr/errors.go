// Package apierr classifies transcription gateway failures into shared
// error sentinels and provides retry infrastructure for callers that
// want it.
//
// Non-2xx HTTP responses are mapped to sentinels by FromStatus; callers
// check with errors.Is(err, apierr.ErrRateLimit) etc.
package apierr

import "errors"

// Sentinel errors for gateway interaction failures.
var (
	// ErrRateLimit indicates the gateway rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the account quota was exhausted (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")

	// ErrServer indicates a server-side failure (5xx, retryable).
	ErrServer = errors.New("server error")
)
