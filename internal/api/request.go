package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

// Header names sent on every request.
const (
	HeaderAPIKey      = "X-API-Key"
	HeaderRequestID   = "X-Request-ID"
	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
	HeaderRetryAfter  = "Retry-After"
)

const (
	contentTypeJSON = "application/json"
	acceptAny       = "*/*"
)

// ResponseKind selects how a successful response body is handed back.
type ResponseKind int

const (
	// ResponseJSON decodes the body into a caller-supplied value.
	ResponseJSON ResponseKind = iota
	// ResponseBinary returns the raw body bytes.
	ResponseBinary
)

// QueryParam is a single query string pair.
type QueryParam struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters. Keys are encoded in the
// order they were added.
type Query []QueryParam

// Add appends key=value.
func (q Query) Add(key, value string) Query {
	return append(q, QueryParam{Key: key, Value: value})
}

// AddString appends key=*value unless value is nil.
func (q Query) AddString(key string, value *string) Query {
	if value == nil {
		return q
	}
	return q.Add(key, *value)
}

// AddInt appends key=*value unless value is nil.
func (q Query) AddInt(key string, value *int) Query {
	if value == nil {
		return q
	}
	return q.Add(key, strconv.Itoa(*value))
}

// AddFloat appends key=*value unless value is nil.
func (q Query) AddFloat(key string, value *float64) Query {
	if value == nil {
		return q
	}
	return q.Add(key, strconv.FormatFloat(*value, 'f', -1, 64))
}

// AddBool appends key=*value unless value is nil.
func (q Query) AddBool(key string, value *bool) Query {
	if value == nil {
		return q
	}
	return q.Add(key, strconv.FormatBool(*value))
}

// Encode renders the query in insertion order.
func (q Query) Encode() string {
	var sb strings.Builder
	for i, p := range q {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// OutboundRequest is a fully built request. It is constructed once per
// logical call and replayed unchanged on every attempt.
type OutboundRequest struct {
	Method string
	// Path is the request path as passed by the caller, used for logging and spans.
	Path   string
	URL    string
	Header http.Header
	Body   []byte
	Kind   ResponseKind
}

// RequestID returns the correlation ID attached to the request.
func (r *OutboundRequest) RequestID() string {
	return r.Header.Get(HeaderRequestID)
}

// httpRequest materializes a fresh *http.Request bound to ctx.
func (r *OutboundRequest) httpRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header.Clone()
	return req, nil
}

// BuildRequest composes the absolute URL, encodes body as JSON when non-nil
// and sets the authentication and content negotiation headers. query is
// appended after any query string already present in path.
func (c *Client) BuildRequest(method, path string, query Query, body any, kind ResponseKind) (*OutboundRequest, error) {
	endpoint, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		if endpoint.RawQuery != "" {
			endpoint.RawQuery += "&" + query.Encode()
		} else {
			endpoint.RawQuery = query.Encode()
		}
	}

	header := make(http.Header, 6)
	header.Set(HeaderAPIKey, c.apiKey)
	header.Set(HeaderUserAgent, c.userAgent)
	header.Set(HeaderRequestID, uuid.NewString())
	if kind == ResponseBinary {
		header.Set(HeaderAccept, acceptAny)
	} else {
		header.Set(HeaderAccept, contentTypeJSON)
	}

	var encoded []byte
	if body != nil {
		encoded, err = json.Marshal(body)
		if err != nil {
			return nil, &apierrors.Error{Kind: apierrors.KindEncoding, Endpoint: path, Err: err}
		}
		header.Set(HeaderContentType, contentTypeJSON)
	}

	return &OutboundRequest{
		Method: method,
		Path:   path,
		URL:    endpoint.String(),
		Header: header,
		Body:   encoded,
		Kind:   kind,
	}, nil
}

// resolve joins path onto the base URL and validates the result.
func (c *Client) resolve(path string) (*url.URL, error) {
	raw := c.baseURL + "/" + strings.TrimLeft(path, "/")

	u, err := url.Parse(raw)
	if err != nil {
		return nil, &apierrors.Error{Kind: apierrors.KindInvalidEndpoint, Endpoint: path, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &apierrors.Error{Kind: apierrors.KindInvalidEndpoint, Endpoint: path}
	}
	return u, nil
}
