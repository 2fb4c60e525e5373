package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

func TestClassifyResponse(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		status  int
		header  http.Header
		body    string
		kind    apierrors.Kind
		message string
	}{
		{"400 with message", 400, nil, `{"message":"url is invalid"}`, apierrors.KindValidation, "url is invalid"},
		{"400 falls back to error", 400, nil, `{"error":"Bad Request"}`, apierrors.KindValidation, "Bad Request"},
		{"400 without body", 400, nil, ``, apierrors.KindValidation, "bad request"},
		{"401", 401, nil, `{"error":"invalid key"}`, apierrors.KindUnauthorized, "invalid key"},
		{"401 unparsable body", 401, nil, `<html>nope</html>`, apierrors.KindUnauthorized, ""},
		{"404", 404, nil, `{"message":"job not found"}`, apierrors.KindNotFound, "job not found"},
		{"429", 429, nil, ``, apierrors.KindRateLimited, ""},
		{"500", 500, nil, `{"message":"boom"}`, apierrors.KindServer, "boom"},
		{"403 is server kind", 403, nil, `{"message":"forbidden"}`, apierrors.KindServer, "forbidden"},
		{"409 is server kind", 409, nil, ``, apierrors.KindServer, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := tt.header
			if header == nil {
				header = http.Header{}
			}

			err := classifyResponse(tt.status, header, []byte(tt.body), now)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.message, err.Message)
		})
	}
}

func TestClassifyResponse_ValidationDetails(t *testing.T) {
	body := `{
		"error": "Bad Request",
		"message": "Validation failed",
		"code": "VALIDATION_ERROR",
		"details": {"url": "must be a valid URL", "quality": 101, "tags": ["a", "b"]},
		"requestId": "req-body"
	}`

	err := classifyResponse(400, http.Header{}, []byte(body), time.Now())

	assert.Equal(t, apierrors.KindValidation, err.Kind)
	assert.Equal(t, "Validation failed", err.Message)
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, "req-body", err.RequestID)
	assert.Equal(t, map[string]string{
		"url":     "must be a valid URL",
		"quality": "101",
		"tags":    `["a","b"]`,
	}, err.Details)
}

func TestClassifyResponse_RequestIDHeaderWins(t *testing.T) {
	header := http.Header{}
	header.Set(HeaderRequestID, "req-header")

	err := classifyResponse(500, header, []byte(`{"requestId":"req-body"}`), time.Now())
	assert.Equal(t, "req-header", err.RequestID)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		value    string
		expected *time.Duration
	}{
		{"5", durationPtr(5 * time.Second)},
		{" 120 ", durationPtr(2 * time.Minute)},
		{"1.5", durationPtr(1500 * time.Millisecond)},
		{"0", durationPtr(0)},
		{now.Add(30 * time.Second).Format(http.TimeFormat), durationPtr(30 * time.Second)},
		{now.Add(-time.Minute).Format(http.TimeFormat), durationPtr(0)},
		{"", nil},
		{"-3", nil},
		{"soon", nil},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got := parseRetryAfter(tt.value, now)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestClassifyResponse_RateLimitedRetryAfter(t *testing.T) {
	header := http.Header{}
	header.Set(HeaderRetryAfter, "5")

	err := classifyResponse(429, header, nil, time.Now())
	require.NotNil(t, err.RetryAfter)
	assert.Equal(t, 5*time.Second, *err.RetryAfter)

	err = classifyResponse(429, http.Header{}, nil, time.Now())
	assert.Nil(t, err.RetryAfter)
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
