package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

// errorBody is the error envelope returned by the API. Every field is optional.
type errorBody struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Code      string         `json:"code"`
	Details   map[string]any `json:"details"`
	RequestID string         `json:"requestId"`
}

// classifyResponse maps a non-2xx response onto the error taxonomy. The body
// is parsed best effort; an unparsable body just yields no message.
func classifyResponse(statusCode int, header http.Header, body []byte, now time.Time) *apierrors.Error {
	var parsed errorBody
	if len(body) > 0 {
		if err := json.Unmarshal(body, &parsed); err != nil {
			parsed = errorBody{}
		}
	}

	message := parsed.Message
	if message == "" {
		message = parsed.Error
	}

	requestID := header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = parsed.RequestID
	}

	apiErr := &apierrors.Error{
		StatusCode: statusCode,
		Message:    message,
		Code:       parsed.Code,
		RequestID:  requestID,
	}

	switch statusCode {
	case http.StatusBadRequest:
		apiErr.Kind = apierrors.KindValidation
		if apiErr.Message == "" {
			apiErr.Message = "bad request"
		}
		apiErr.Details = flattenDetails(parsed.Details)
	case http.StatusUnauthorized:
		apiErr.Kind = apierrors.KindUnauthorized
	case http.StatusNotFound:
		apiErr.Kind = apierrors.KindNotFound
	case http.StatusTooManyRequests:
		apiErr.Kind = apierrors.KindRateLimited
		apiErr.RetryAfter = parseRetryAfter(header.Get(HeaderRetryAfter), now)
	default:
		apiErr.Kind = apierrors.KindServer
	}
	return apiErr
}

// flattenDetails keeps string values as they are and re-encodes anything
// else as compact JSON, so one odd value does not discard the whole map.
func flattenDetails(details map[string]any) map[string]string {
	if len(details) == 0 {
		return nil
	}

	out := make(map[string]string, len(details))
	for k, v := range details {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}

// parseRetryAfter accepts delta-seconds (fractions allowed) or an HTTP-date.
// It returns nil for a missing or malformed value.
func parseRetryAfter(value string, now time.Time) *time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return nil
		}
		d := time.Duration(seconds * float64(time.Second))
		return &d
	}

	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now)
		if d < 0 {
			d = 0
		}
		return &d
	}
	return nil
}
