package allscreenshots

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	defaultWaitTimeout  = 5 * time.Minute
	defaultPollInterval = 2 * time.Second
)

// clientConfig collects everything options can set. The first group feeds
// the immutable Configuration; the rest only affects the Client runtime.
type clientConfig struct {
	apiKey    string
	baseURL   string
	endpoint  *url.URL
	timeout   time.Duration
	retry     *RetryPolicy
	userAgent string

	httpClient     *http.Client
	logger         *zerolog.Logger
	sleeper        func(ctx context.Context, d time.Duration) error
	limiter        *rate.Limiter
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func newClientConfig(opts []Option) *clientConfig {
	cfg := &clientConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// waitConfig holds configuration for waiting on jobs.
type waitConfig struct {
	timeout         time.Duration
	pollInterval    time.Duration
	maxPollInterval time.Duration
	sleep           func(ctx context.Context, d time.Duration) error
}

// Option configures a Configuration or a Client.
type Option func(*clientConfig)

// WaitOption configures WaitForJob.
type WaitOption func(*waitConfig)

// WithAPIKey sets the API key. An empty key is ignored and the
// ALLSCREENSHOTS_API_KEY environment variable is used instead.
func WithAPIKey(apiKey string) Option {
	return func(c *clientConfig) {
		c.apiKey = apiKey
	}
}

// WithBaseURL sets the API base URL from a string. It is validated when the
// configuration is built.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.baseURL = baseURL
		c.endpoint = nil
	}
}

// WithEndpoint sets the API base URL. The URL is copied.
func WithEndpoint(endpoint *url.URL) Option {
	return func(c *clientConfig) {
		c.baseURL = ""
		c.endpoint = nil
		if endpoint != nil {
			u := *endpoint
			c.endpoint = &u
		}
	}
}

// WithTimeout sets the per-attempt timeout. Non-positive values keep the
// default of 60 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetryPolicy sets the retry policy.
// Default: DefaultRetryPolicy()
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *clientConfig) {
		c.retry = &policy
	}
}

// WithNoRetry disables retries.
func WithNoRetry() Option {
	return WithRetryPolicy(NoRetryPolicy())
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *clientConfig) {
		c.userAgent = userAgent
	}
}

// WithHTTPClient sets a custom HTTP client. Its Timeout field should be
// zero; the per-attempt timeout is applied by the client itself.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithLogger sets the logger for request debug events. The API key is
// never logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = &logger
	}
}

// WithRateLimit limits outgoing attempts to r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *clientConfig) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// WithSleeper replaces the wait between retry attempts. It is mainly
// useful in tests to observe delays without sleeping.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *clientConfig) {
		c.sleeper = sleep
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *clientConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider.
// Default: the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *clientConfig) {
		c.meterProvider = mp
	}
}

// WithWaitTimeout bounds the total time WaitForJob spends polling.
// Default: 5 minutes
func WithWaitTimeout(timeout time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.timeout = timeout
	}
}

// WithPollInterval sets the initial interval between job status checks.
// Default: 2 seconds
func WithPollInterval(interval time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.pollInterval = interval
	}
}

// WithMaxPollInterval caps the interval between job status checks.
// Default: 30 seconds
func WithMaxPollInterval(interval time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.maxPollInterval = interval
	}
}
