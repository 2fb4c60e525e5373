package allscreenshots

import (
	"errors"
	"fmt"
	"testing"
)

func TestJobFailedError(t *testing.T) {
	tests := []struct {
		name string
		err  *JobFailedError
		want string
	}{
		{
			name: "with code and message",
			err:  &JobFailedError{JobID: "job-1", Status: JobStatusFailed, Code: "TIMEOUT", Message: "page did not load"},
			want: "job job-1 ended with status FAILED [TIMEOUT]: page did not load",
		},
		{
			name: "cancelled",
			err:  &JobFailedError{JobID: "job-2", Status: JobStatusCancelled},
			want: "job job-2 ended with status CANCELLED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, ErrJobFailed) {
				t.Error("errors.Is(err, ErrJobFailed) = false")
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{Kind: KindNotFound, StatusCode: 404})
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf() = %v, want KindNotFound", KindOf(err))
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false")
	}
	if KindOf(errors.New("plain")) == KindNotFound {
		t.Error("KindOf(plain error) should not be KindNotFound")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &Error{Kind: KindRateLimited, StatusCode: 429}, true},
		{"server 503", &Error{Kind: KindServer, StatusCode: 503}, true},
		{"server 501", &Error{Kind: KindServer, StatusCode: 501}, false},
		{"unauthorized", &Error{Kind: KindUnauthorized, StatusCode: 401}, false},
		{"network", &Error{Kind: KindNetwork, Err: errors.New("reset")}, true},
		{"wrapped", fmt.Errorf("ctx: %w", &Error{Kind: KindServer, StatusCode: 502}), true},
		{"plain", errors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
