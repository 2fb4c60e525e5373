package api

import (
	"bytes"
	"encoding/json"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

// NoContent is the result type for operations whose success response
// carries no meaningful body.
type NoContent struct{}

// decodeJSON unmarshals body into result. An empty body, a nil result or a
// *NoContent result is success without decoding.
func decodeJSON(body []byte, result any, requestID string) error {
	if result == nil {
		return nil
	}
	if _, ok := result.(*NoContent); ok {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &apierrors.Error{Kind: apierrors.KindDecoding, RequestID: requestID, Err: err}
	}
	return nil
}
