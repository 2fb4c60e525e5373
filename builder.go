package allscreenshots

import (
	"net/url"
	"time"
)

// Builder assembles a Configuration step by step. Chained calls never fail;
// every problem surfaces from Build. A Builder is not safe for concurrent use.
//
//	cfg, err := allscreenshots.NewBuilder().
//	    APIKey(key).
//	    Timeout(30 * time.Second).
//	    Build()
type Builder struct {
	opts []Option
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// APIKey sets the API key.
func (b *Builder) APIKey(apiKey string) *Builder {
	return b.with(WithAPIKey(apiKey))
}

// BaseURL sets the base URL.
func (b *Builder) BaseURL(endpoint *url.URL) *Builder {
	return b.with(WithEndpoint(endpoint))
}

// BaseURLString sets the base URL from a string. A malformed value is
// reported by Build.
func (b *Builder) BaseURLString(baseURL string) *Builder {
	return b.with(WithBaseURL(baseURL))
}

// Timeout sets the per-attempt timeout.
func (b *Builder) Timeout(timeout time.Duration) *Builder {
	return b.with(WithTimeout(timeout))
}

// RetryPolicy sets the retry policy.
func (b *Builder) RetryPolicy(policy RetryPolicy) *Builder {
	return b.with(WithRetryPolicy(policy))
}

// NoRetry disables retries.
func (b *Builder) NoRetry() *Builder {
	return b.with(WithNoRetry())
}

// UserAgent sets the User-Agent header.
func (b *Builder) UserAgent(userAgent string) *Builder {
	return b.with(WithUserAgent(userAgent))
}

// Build validates the accumulated settings and returns the Configuration.
func (b *Builder) Build() (*Configuration, error) {
	return NewConfiguration(b.opts...)
}

// Client builds the configuration and a Client from it. opts may add
// runtime options such as WithLogger or WithHTTPClient.
func (b *Builder) Client(opts ...Option) (*Client, error) {
	all := make([]Option, 0, len(b.opts)+len(opts))
	all = append(all, b.opts...)
	all = append(all, opts...)
	return New(all...)
}

func (b *Builder) with(opt Option) *Builder {
	b.opts = append(b.opts, opt)
	return b
}
