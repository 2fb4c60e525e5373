package allscreenshots

import (
	"errors"
	"fmt"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

// Error is returned by every Client operation that fails. Switch on Kind or
// use errors.Is with the sentinels below.
type Error = apierrors.Error

// ErrorKind identifies the case of an Error.
type ErrorKind = apierrors.Kind

// Error kinds.
const (
	KindValidation        = apierrors.KindValidation
	KindUnauthorized      = apierrors.KindUnauthorized
	KindNotFound          = apierrors.KindNotFound
	KindRateLimited       = apierrors.KindRateLimited
	KindServer            = apierrors.KindServer
	KindMissingCredential = apierrors.KindMissingCredential
	KindInvalidEndpoint   = apierrors.KindInvalidEndpoint
	KindInvalidRequest    = apierrors.KindInvalidRequest
	KindEncoding          = apierrors.KindEncoding
	KindDecoding          = apierrors.KindDecoding
	KindNetwork           = apierrors.KindNetwork
	KindCancelled         = apierrors.KindCancelled
)

// Sentinel errors for errors.Is() checks
var (
	// ErrValidation is matched when the API rejects a request with 400.
	ErrValidation = apierrors.ErrValidation

	// ErrUnauthorized is matched when the API key is invalid or expired.
	ErrUnauthorized = apierrors.ErrUnauthorized

	// ErrNotFound is matched when a job, bulk job or schedule does not exist.
	ErrNotFound = apierrors.ErrNotFound

	// ErrRateLimited is matched when the API rate limit is exceeded.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrServer is matched by any other non-2xx response.
	ErrServer = apierrors.ErrServer

	// ErrMissingAPIKey is matched when no API key is provided.
	ErrMissingAPIKey = apierrors.ErrMissingAPIKey

	// ErrInvalidEndpoint is matched when the base URL or a request URL is malformed.
	ErrInvalidEndpoint = apierrors.ErrInvalidEndpoint

	// ErrInvalidRequest is matched when a payload fails client-side validation.
	ErrInvalidRequest = apierrors.ErrInvalidRequest

	// ErrEncoding is matched when a request body cannot be serialized.
	ErrEncoding = apierrors.ErrEncoding

	// ErrDecoding is matched when a response body cannot be parsed.
	ErrDecoding = apierrors.ErrDecoding

	// ErrNetwork is matched by transport-level failures.
	ErrNetwork = apierrors.ErrNetwork

	// ErrCancelled is matched when the context ends a call.
	ErrCancelled = apierrors.ErrCancelled

	// ErrJobFailed is matched by a JobFailedError.
	ErrJobFailed = errors.New("job did not complete")
)

// KindOf returns the ErrorKind of err, or the zero kind if err is not an *Error.
func KindOf(err error) ErrorKind {
	return apierrors.KindOf(err)
}

// IsRetryable reports whether err is an *Error whose call may succeed if
// repeated unchanged.
func IsRetryable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

// JobFailedError is returned by WaitForJob when the job ends FAILED or
// CANCELLED. The final job record is returned alongside it.
type JobFailedError struct {
	JobID   string
	Status  JobStatus
	Code    string
	Message string
}

func (e *JobFailedError) Error() string {
	msg := fmt.Sprintf("job %s ended with status %s", e.JobID, e.Status)
	if e.Code != "" {
		msg += fmt.Sprintf(" [%s]", e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is implements errors.Is for sentinel error matching.
func (e *JobFailedError) Is(target error) bool {
	return target == ErrJobFailed
}
