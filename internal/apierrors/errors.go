// Package apierrors provides the error taxonomy shared by the AllScreenshots
// execution engine and the public client package.
package apierrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"
)

// Kind identifies which case of the closed error taxonomy an *Error carries.
type Kind int

const (
	// KindUnknown is never produced by the client; it is the zero value.
	KindUnknown Kind = iota
	// KindValidation is a 400 response.
	KindValidation
	// KindUnauthorized is a 401 response.
	KindUnauthorized
	// KindNotFound is a 404 response.
	KindNotFound
	// KindRateLimited is a 429 response.
	KindRateLimited
	// KindServer is any other non-2xx response.
	KindServer
	// KindMissingCredential means no API key was passed or found in the environment.
	KindMissingCredential
	// KindInvalidEndpoint means the base URL or a computed request URL is malformed.
	KindInvalidEndpoint
	// KindInvalidRequest means a request payload failed client-side validation.
	KindInvalidRequest
	// KindEncoding means the request body could not be serialized.
	KindEncoding
	// KindDecoding means a successful response body could not be parsed.
	KindDecoding
	// KindNetwork means no HTTP response was obtained.
	KindNetwork
	// KindCancelled means the caller's context ended the call.
	KindCancelled
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindValidation:        "validation",
	KindUnauthorized:      "unauthorized",
	KindNotFound:          "not_found",
	KindRateLimited:       "rate_limited",
	KindServer:            "server",
	KindMissingCredential: "missing_credential",
	KindInvalidEndpoint:   "invalid_endpoint",
	KindInvalidRequest:    "invalid_request",
	KindEncoding:          "encoding",
	KindDecoding:          "decoding",
	KindNetwork:           "network",
	KindCancelled:         "cancelled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors for errors.Is() checks
var (
	// ErrValidation is matched by 400 responses.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized is matched when the API key is invalid or expired.
	ErrUnauthorized = errors.New("invalid or expired API key")

	// ErrNotFound is matched when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited is matched when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServer is matched by any other non-2xx response.
	ErrServer = errors.New("server error")

	// ErrMissingAPIKey is matched when no API key is provided.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrInvalidEndpoint is matched when a URL cannot be built or parsed.
	ErrInvalidEndpoint = errors.New("invalid URL")

	// ErrInvalidRequest is matched when a payload fails client-side validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEncoding is matched when a request body cannot be serialized.
	ErrEncoding = errors.New("failed to encode request")

	// ErrDecoding is matched when a response body cannot be parsed.
	ErrDecoding = errors.New("failed to decode response")

	// ErrNetwork is matched by transport-level failures.
	ErrNetwork = errors.New("network error")

	// ErrCancelled is matched when the caller's context ends the call.
	ErrCancelled = errors.New("request cancelled")
)

var sentinels = map[Kind]error{
	KindValidation:        ErrValidation,
	KindUnauthorized:      ErrUnauthorized,
	KindNotFound:          ErrNotFound,
	KindRateLimited:       ErrRateLimited,
	KindServer:            ErrServer,
	KindMissingCredential: ErrMissingAPIKey,
	KindInvalidEndpoint:   ErrInvalidEndpoint,
	KindInvalidRequest:    ErrInvalidRequest,
	KindEncoding:          ErrEncoding,
	KindDecoding:          ErrDecoding,
	KindNetwork:           ErrNetwork,
	KindCancelled:         ErrCancelled,
}

// Error is the single failure type surfaced by the client. Kind selects the
// case; the remaining fields are populated only where they apply to it.
type Error struct {
	Kind Kind

	// StatusCode is the HTTP status for response-derived kinds, 0 otherwise.
	StatusCode int
	// Message is the server-supplied (or validation) message, empty when absent.
	Message string
	// Code is the machine-readable error code from the response body.
	Code string
	// Details maps field names to validation messages.
	Details map[string]string
	// RetryAfter is the server's Retry-After hint; nil when not sent.
	RetryAfter *time.Duration
	// RequestID correlates the failure with server logs.
	RequestID string
	// Endpoint is the offending URL or path for KindInvalidEndpoint and KindNetwork.
	Endpoint string
	// Attempts is the number of network round trips made before giving up.
	Attempts int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.describe()
	if e.RequestID != "" {
		msg += fmt.Sprintf(" (request_id: %s)", e.RequestID)
	}
	return msg
}

func (e *Error) describe() string {
	switch e.Kind {
	case KindValidation:
		msg := e.Message
		if msg == "" {
			msg = "bad request"
		}
		if len(e.Details) > 0 {
			return fmt.Sprintf("validation error: %s (%s)", msg, formatDetails(e.Details))
		}
		return "validation error: " + msg
	case KindUnauthorized:
		if e.Message != "" {
			return "unauthorized: " + e.Message
		}
		return "unauthorized: check your API key"
	case KindNotFound:
		if e.Message != "" {
			return "not found: " + e.Message
		}
		return "resource not found"
	case KindRateLimited:
		if e.RetryAfter != nil {
			return fmt.Sprintf("rate limit exceeded, retry after %v", *e.RetryAfter)
		}
		return "rate limit exceeded"
	case KindServer:
		if e.Message != "" {
			return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("server error %d", e.StatusCode)
	case KindMissingCredential:
		return "API key is required: set ALLSCREENSHOTS_API_KEY or pass one explicitly"
	case KindInvalidEndpoint:
		if e.Err != nil {
			return fmt.Sprintf("invalid URL %q: %v", e.Endpoint, e.Err)
		}
		return fmt.Sprintf("invalid URL %q", e.Endpoint)
	case KindInvalidRequest:
		if len(e.Details) > 0 {
			return fmt.Sprintf("invalid request: %s (%s)", e.Message, formatDetails(e.Details))
		}
		return "invalid request: " + e.Message
	case KindEncoding:
		return fmt.Sprintf("failed to encode request: %v", e.Err)
	case KindDecoding:
		return fmt.Sprintf("failed to decode response: %v", e.Err)
	case KindNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	case KindCancelled:
		return fmt.Sprintf("request cancelled: %v", e.Err)
	}
	return "unknown error"
}

func formatDetails(details map[string]string) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+details[k])
	}
	return strings.Join(parts, ", ")
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && sentinel == target
}

// Retryable reports whether repeating the call unchanged may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindNetwork:
		return true
	case KindServer:
		switch e.StatusCode {
		case 408, 500, 502, 503, 504:
			return true
		}
	}
	return false
}

// Timeout reports whether the failure was a per-attempt timeout.
func (e *Error) Timeout() bool {
	if e.Kind != KindNetwork || e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}
