package allscreenshots

import (
	"time"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/api"
)

// RetryPolicy controls how many times a failed call is repeated and how
// long the client waits in between. It is an immutable value.
type RetryPolicy = api.RetryPolicy

// NewRetryPolicy builds a RetryPolicy. The delay before retry n (0-indexed)
// is min(baseDelay * multiplier^n, maxDelay). Responses with one of
// retryableStatusCodes are retried, as are transient transport failures.
func NewRetryPolicy(maxRetries int, baseDelay, maxDelay time.Duration, multiplier float64, retryableStatusCodes ...int) RetryPolicy {
	return api.NewRetryPolicy(maxRetries, baseDelay, maxDelay, multiplier, retryableStatusCodes...)
}

// DefaultRetryPolicy retries up to 3 times, waiting 1s, 2s, 4s (capped at
// 30s), on 408, 429, 500, 502, 503 and 504 responses.
func DefaultRetryPolicy() RetryPolicy {
	return api.DefaultRetryPolicy()
}

// NoRetryPolicy never retries.
func NoRetryPolicy() RetryPolicy {
	return api.NoRetryPolicy()
}
