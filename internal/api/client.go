package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

// Default values for client configuration.
const (
	DefaultBaseURL = "https://api.allscreenshots.com"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the API client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.allscreenshots.com. Required.
	BaseURL string
	// APIKey is sent as X-API-Key on every request. Required.
	APIKey string
	// UserAgent is sent as User-Agent on every request.
	UserAgent string
	// Timeout bounds each individual attempt, including reading the body.
	// Zero or negative means DefaultTimeout.
	Timeout time.Duration
	// Retry is the retry policy. The zero value never retries.
	Retry RetryPolicy
	// HTTPClient is the transport. Defaults to a plain *http.Client; its own
	// Timeout field is left alone and should normally be zero.
	HTTPClient *http.Client
	// Logger receives debug events about attempts. Defaults to a no-op logger.
	Logger *zerolog.Logger
	// Sleeper waits between attempts. Defaults to a timer honoring ctx.
	Sleeper Sleeper
	// Limiter, when set, is waited on before every attempt.
	Limiter *rate.Limiter
	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	// Now is the clock used for HTTP-date Retry-After values.
	Now func() time.Time
}

// Client executes requests against the AllScreenshots API. It holds no
// mutable state after construction and is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	retry      RetryPolicy
	httpClient *http.Client
	logger     zerolog.Logger
	sleep      Sleeper
	limiter    *rate.Limiter
	telemetry  *telemetry
	now        func() time.Time
}

// NewClient creates a new API client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &apierrors.Error{Kind: apierrors.KindMissingCredential}
	}
	if cfg.BaseURL == "" {
		return nil, &apierrors.Error{Kind: apierrors.KindInvalidEndpoint, Endpoint: cfg.BaseURL}
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, &apierrors.Error{Kind: apierrors.KindInvalidEndpoint, Endpoint: cfg.BaseURL, Err: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &apierrors.Error{Kind: apierrors.KindInvalidEndpoint, Endpoint: cfg.BaseURL}
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		retry:      cfg.Retry,
		httpClient: cfg.HTTPClient,
		sleep:      cfg.Sleeper,
		limiter:    cfg.Limiter,
		telemetry:  newTelemetry(cfg.TracerProvider, cfg.MeterProvider),
		now:        cfg.Now,
	}

	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.now == nil {
		c.now = time.Now
	}
	if cfg.Logger != nil {
		c.logger = *cfg.Logger
	} else {
		c.logger = zerolog.Nop()
	}

	return c, nil
}

// RetryPolicy returns the policy the client retries with.
func (c *Client) RetryPolicy() RetryPolicy {
	return c.retry
}

// Do sends a request and decodes a JSON response into result. result may be
// nil or a *NoContent when the response body is of no interest.
//
// Retries resend the identical request, including non-idempotent methods
// such as POST. The X-Request-ID header is kept across attempts so the
// server can recognize repeats.
func (c *Client) Do(ctx context.Context, method, path string, query Query, body, result any) error {
	req, err := c.BuildRequest(method, path, query, body, ResponseJSON)
	if err != nil {
		return err
	}

	_, err = c.execute(ctx, req, func(res *response) error {
		return decodeJSON(res.body, result, res.requestID(req))
	})
	return err
}

// DoBinary sends a request and returns the raw response body.
func (c *Client) DoBinary(ctx context.Context, method, path string, query Query, body any) ([]byte, error) {
	req, err := c.BuildRequest(method, path, query, body, ResponseBinary)
	if err != nil {
		return nil, err
	}

	res, err := c.execute(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	return res.body, nil
}

// Execute is Do with the result type as a type parameter.
func Execute[T any](ctx context.Context, c *Client, method, path string, query Query, body any) (T, error) {
	var result T
	if err := c.Do(ctx, method, path, query, body, &result); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// response is a fully read HTTP response.
type response struct {
	statusCode int
	header     http.Header
	body       []byte
}

func (r *response) requestID(req *OutboundRequest) string {
	if id := r.header.Get(HeaderRequestID); id != "" {
		return id
	}
	return req.RequestID()
}

// execute runs the attempt loop for req and, on a 2xx response, decode.
// The span and duration cover both, so a decoding failure is recorded
// like any other error. It returns either a response or an error, never
// both.
func (c *Client) execute(ctx context.Context, req *OutboundRequest, decode func(*response) error) (*response, error) {
	ctx, span := c.telemetry.start(ctx, req)
	start := time.Now()

	res, attempts, err := c.attemptLoop(ctx, req)
	if err == nil && decode != nil {
		err = decode(res)
	}

	status := 0
	if res != nil {
		status = res.statusCode
	} else if apiErr, ok := err.(*apierrors.Error); ok {
		status = apiErr.StatusCode
	}
	c.telemetry.finish(ctx, span, req, status, attempts, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return res, nil
}

// attemptLoop sends req until it gets a 2xx response, a non-retryable
// failure or runs out of retries. It reports the attempts made.
func (c *Client) attemptLoop(ctx context.Context, req *OutboundRequest) (*response, int, error) {
	attempts := 0

	log := c.logger.With().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("request_id", req.RequestID()).
		Logger()

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, attempts, c.cancelled(req, attempts, err)
			}
		}

		attempts++
		log.Debug().Int("attempt", attempts).Msg("sending request")

		res, sendErr := c.send(ctx, req)
		if sendErr != nil {
			c.telemetry.attempt(ctx, req, 0)

			if ctx.Err() != nil {
				return nil, attempts, c.cancelled(req, attempts, ctx.Err())
			}
			if attempt < c.retry.MaxRetries() && c.retry.ShouldRetryError(sendErr) {
				delay := c.retry.Delay(attempt)
				log.Debug().Err(sendErr).Int("attempt", attempts).Dur("delay", delay).Msg("retrying request")
				if err := c.sleep(ctx, delay); err != nil {
					return nil, attempts, c.cancelled(req, attempts, err)
				}
				continue
			}

			log.Debug().Err(sendErr).Int("attempts", attempts).Msg("request failed")
			return nil, attempts, &apierrors.Error{
				Kind:      apierrors.KindNetwork,
				Endpoint:  req.URL,
				RequestID: req.RequestID(),
				Attempts:  attempts,
				Err:       sendErr,
			}
		}

		c.telemetry.attempt(ctx, req, res.statusCode)
		if res.statusCode >= 200 && res.statusCode < 300 {
			return res, attempts, nil
		}

		apiErr := classifyResponse(res.statusCode, res.header, res.body, c.now())
		apiErr.Attempts = attempts

		if attempt < c.retry.MaxRetries() && c.retry.ShouldRetryStatus(res.statusCode) {
			delay := c.retry.Delay(attempt)
			log.Debug().Int("status", res.statusCode).Int("attempt", attempts).Dur("delay", delay).Msg("retrying request")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, attempts, c.cancelled(req, attempts, err)
			}
			continue
		}

		log.Debug().Int("status", res.statusCode).Int("attempts", attempts).Msg("request failed")
		return nil, attempts, apiErr
	}
}

// send performs a single attempt bounded by the per-attempt timeout.
func (c *Client) send(ctx context.Context, req *OutboundRequest) (*response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := req.httpRequest(attemptCtx)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &response{
		statusCode: resp.StatusCode,
		header:     resp.Header,
		body:       body,
	}, nil
}

func (c *Client) cancelled(req *OutboundRequest, attempts int, cause error) *apierrors.Error {
	return &apierrors.Error{
		Kind:      apierrors.KindCancelled,
		Endpoint:  req.URL,
		RequestID: req.RequestID(),
		Attempts:  attempts,
		Err:       cause,
	}
}
