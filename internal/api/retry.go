package api

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"slices"
	"syscall"
	"time"
)

// RetryPolicy decides whether a failed attempt is repeated and how long to
// wait first. Values are immutable once built and safe to share.
type RetryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	multiplier float64
	statuses   map[int]struct{}
}

// DefaultRetryableStatusCodes are the HTTP statuses retried by DefaultRetryPolicy.
var DefaultRetryableStatusCodes = []int{408, 429, 500, 502, 503, 504}

// NewRetryPolicy builds a policy. A negative maxRetries is treated as zero
// and a multiplier below 1 as 1, so delays never shrink between attempts.
func NewRetryPolicy(maxRetries int, baseDelay, maxDelay time.Duration, multiplier float64, retryableStatusCodes ...int) RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay < 0 {
		baseDelay = 0
	}
	if maxDelay < 0 {
		maxDelay = 0
	}
	if multiplier < 1 || math.IsNaN(multiplier) {
		multiplier = 1
	}

	statuses := make(map[int]struct{}, len(retryableStatusCodes))
	for _, code := range retryableStatusCodes {
		statuses[code] = struct{}{}
	}

	return RetryPolicy{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		multiplier: multiplier,
		statuses:   statuses,
	}
}

// DefaultRetryPolicy returns 3 retries starting at 1s, doubling up to 30s.
func DefaultRetryPolicy() RetryPolicy {
	return NewRetryPolicy(3, time.Second, 30*time.Second, 2.0, DefaultRetryableStatusCodes...)
}

// NoRetryPolicy returns a policy that never retries.
func NoRetryPolicy() RetryPolicy {
	return RetryPolicy{}
}

// MaxRetries returns the number of retries after the first attempt.
func (r RetryPolicy) MaxRetries() int { return r.maxRetries }

// BaseDelay returns the delay before the first retry.
func (r RetryPolicy) BaseDelay() time.Duration { return r.baseDelay }

// MaxDelay returns the upper bound on any single delay.
func (r RetryPolicy) MaxDelay() time.Duration { return r.maxDelay }

// Multiplier returns the growth factor between consecutive delays.
func (r RetryPolicy) Multiplier() float64 { return r.multiplier }

// RetryableStatusCodes returns the retried statuses in ascending order.
func (r RetryPolicy) RetryableStatusCodes() []int {
	codes := make([]int, 0, len(r.statuses))
	for code := range r.statuses {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Enabled reports whether the policy allows any retry at all.
func (r RetryPolicy) Enabled() bool {
	return r.maxRetries > 0
}

// Delay returns the wait before retry number attempt (0-indexed):
// min(base * multiplier^attempt, max).
func (r RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(r.baseDelay) * math.Pow(r.multiplier, float64(attempt))
	if math.IsNaN(delay) || delay > float64(r.maxDelay) {
		return r.maxDelay
	}
	return time.Duration(delay)
}

// ShouldRetryStatus reports whether a response with the given status is retried.
func (r RetryPolicy) ShouldRetryStatus(statusCode int) bool {
	if !r.Enabled() {
		return false
	}
	_, ok := r.statuses[statusCode]
	return ok
}

// ShouldRetryError reports whether a transport failure is transient: a
// timeout, a connection dropped mid-flight, or a network that is
// temporarily unreachable. Caller cancellation is never retried.
func (r RetryPolicy) ShouldRetryError(err error) bool {
	if !r.Enabled() || err == nil {
		return false
	}
	return isTransientTransportError(err)
}

// Wait sleeps for Delay(attempt) or until ctx is done.
func (r RetryPolicy) Wait(ctx context.Context, attempt int) error {
	return sleepContext(ctx, r.Delay(attempt))
}

var transientErrnos = []syscall.Errno{
	syscall.ECONNRESET,
	syscall.ECONNABORTED,
	syscall.EPIPE,
	syscall.ENETUNREACH,
	syscall.ENETDOWN,
	syscall.EHOSTUNREACH,
}

func isTransientTransportError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Sleeper blocks for d or until ctx is done, returning ctx's error in the
// latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
