// Package api provides the request execution engine for the AllScreenshots
// API. It builds authenticated requests, sends them with automatic retry and
// exponential backoff, decodes successful responses and classifies failures
// into [apierrors.Error] values.
//
// # Client Creation
//
// [NewClient] takes a [Config]. An API key and an absolute base URL are
// required; everything else has a default. The API key is sent via the
// X-API-Key header on every request.
//
// # Retry Behavior
//
// A request is attempted at most [RetryPolicy.MaxRetries]+1 times. With
// [DefaultRetryPolicy], responses with these statuses are retried:
//
//   - 408 Request Timeout
//   - 429 Too Many Requests
//   - 500 Internal Server Error
//   - 502 Bad Gateway
//   - 503 Service Unavailable
//   - 504 Gateway Timeout
//
// Transport failures are retried when they are timeouts, dropped
// connections or unreachable networks. Before retry number n (0-indexed) the
// client sleeps exactly [RetryPolicy.Delay](n), which doubles from 1s and is
// capped at 30s. A server Retry-After header is reported on the error but
// does not change the delay.
//
// Each attempt is bounded by [Config.Timeout]. There is no overall deadline
// beyond the caller's context; cancelling it aborts the call promptly with
// a cancellation error, whether the client is waiting on the network or
// sleeping between attempts.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. Multiple goroutines may call
// methods on a single Client simultaneously.
package api
