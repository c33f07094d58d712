package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FromStatus maps a non-2xx gateway response to a sentinel error.
// msg is carried in the error text and must already be scrubbed of
// credentials by the caller.
func FromStatus(status int, msg string) error {
	sentinel := sentinelFor(status, msg)
	if msg == "" {
		return fmt.Errorf("API error %d: %w", status, sentinel)
	}
	return fmt.Errorf("API error %d: %s: %w", status, msg, sentinel)
}

// sentinelFor picks the sentinel for an HTTP status code.
func sentinelFor(status int, msg string) error {
	switch status {
	case http.StatusTooManyRequests:
		// Distinguish between temporary rate limit and quota exceeded (billing issue).
		// Quota exceeded should not be retried - it requires user action.
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") {
			return ErrQuotaExceeded
		}
		return ErrRateLimit
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusPaymentRequired:
		return ErrQuotaExceeded
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	default:
		if status >= http.StatusInternalServerError {
			return ErrServer
		}
		return ErrBadRequest
	}
}

// IsRetryable determines if an error is transient and should be retried.
// Rate limits, timeouts, and server errors are retryable. Context
// cancellation, auth failures, quota exhaustion, and bad requests are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServer)
}
