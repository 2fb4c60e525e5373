package allscreenshots

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/api"
	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
	"github.com/allscreenshots/allscreenshots-sdk-go/internal/logging"
	"github.com/allscreenshots/allscreenshots-sdk-go/internal/settings"
)

// Defaults applied when an option is not given.
const (
	DefaultBaseURL = api.DefaultBaseURL
	DefaultTimeout = api.DefaultTimeout
)

// EnvAPIKey is the environment variable consulted when no API key is passed.
const EnvAPIKey = settings.EnvAPIKey

// Configuration is the resolved, immutable client configuration. Build one
// with NewConfiguration or a Builder; it is safe to share between clients.
type Configuration struct {
	apiKey    string
	baseURL   *url.URL
	timeout   time.Duration
	retry     RetryPolicy
	userAgent string
}

// NewConfiguration resolves a Configuration from opts. Only the options that
// describe the configuration are consulted; runtime options such as
// WithLogger are ignored here.
//
// The API key comes from WithAPIKey, then ALLSCREENSHOTS_API_KEY. If neither
// yields a non-empty key, an error matching ErrMissingAPIKey is returned.
func NewConfiguration(opts ...Option) (*Configuration, error) {
	return resolveConfiguration(newClientConfig(opts))
}

func resolveConfiguration(cfg *clientConfig) (*Configuration, error) {
	apiKey := strings.TrimSpace(cfg.apiKey)
	if apiKey == "" {
		fromEnv, err := settings.APIKeyFromEnv()
		if err != nil {
			return nil, &apierrors.Error{Kind: apierrors.KindMissingCredential, Err: err}
		}
		apiKey = fromEnv
	}
	if apiKey == "" {
		return nil, &apierrors.Error{Kind: apierrors.KindMissingCredential}
	}

	baseURL, err := resolveBaseURL(cfg)
	if err != nil {
		return nil, err
	}

	conf := &Configuration{
		apiKey:    apiKey,
		baseURL:   baseURL,
		timeout:   cfg.timeout,
		retry:     DefaultRetryPolicy(),
		userAgent: cfg.userAgent,
	}
	if conf.timeout <= 0 {
		conf.timeout = DefaultTimeout
	}
	if cfg.retry != nil {
		conf.retry = *cfg.retry
	}
	if conf.userAgent == "" {
		conf.userAgent = DefaultUserAgent
	}
	return conf, nil
}

func resolveBaseURL(cfg *clientConfig) (*url.URL, error) {
	if cfg.endpoint != nil {
		u := *cfg.endpoint
		if err := validateEndpoint(&u); err != nil {
			return nil, &apierrors.Error{Kind: apierrors.KindInvalidEndpoint, Endpoint: u.String(), Err: err}
		}
		return &u, nil
	}

	raw := strings.TrimSpace(cfg.baseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, &apierrors.Error{Kind: apierrors.KindInvalidEndpoint, Endpoint: raw, Err: err}
	}
	if err := validateEndpoint(u); err != nil {
		return nil, &apierrors.Error{Kind: apierrors.KindInvalidEndpoint, Endpoint: raw, Err: err}
	}
	return u, nil
}

func validateEndpoint(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("base URL must not carry a query or fragment")
	}
	return nil
}

// APIKey returns the API key.
func (c *Configuration) APIKey() string { return c.apiKey }

// BaseURL returns a copy of the API base URL.
func (c *Configuration) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Timeout returns the per-attempt timeout.
func (c *Configuration) Timeout() time.Duration { return c.timeout }

// RetryPolicy returns the retry policy.
func (c *Configuration) RetryPolicy() RetryPolicy { return c.retry }

// UserAgent returns the User-Agent header value.
func (c *Configuration) UserAgent() string { return c.userAgent }

// String describes the configuration with the API key masked.
func (c *Configuration) String() string {
	return fmt.Sprintf("Configuration{baseURL: %s, apiKey: %s, timeout: %v, maxRetries: %d, userAgent: %q}",
		c.baseURL, logging.MaskSecret(c.apiKey), c.timeout, c.retry.MaxRetries(), c.userAgent)
}
