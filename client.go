package allscreenshots

import (
	"context"
	"net/url"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/api"
	"github.com/allscreenshots/allscreenshots-sdk-go/internal/apierrors"
)

// Query is an ordered list of query parameters for Client.Do.
type Query = api.Query

// NoContent is the result type for calls whose response body is ignored.
type NoContent = api.NoContent

// Client is the AllScreenshots API client. It is safe for concurrent use;
// create one and share it.
type Client struct {
	config    *Configuration
	apiClient *api.Client
}

// New creates a client. The API key comes from WithAPIKey or the
// ALLSCREENSHOTS_API_KEY environment variable:
//
//	client, err := allscreenshots.New(allscreenshots.WithAPIKey("your-api-key"))
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig(opts)

	conf, err := resolveConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return newClient(conf, cfg)
}

// NewWithConfiguration creates a client from a resolved Configuration.
// opts may only add runtime options such as WithLogger or WithHTTPClient;
// configuration options are ignored.
func NewWithConfiguration(conf *Configuration, opts ...Option) (*Client, error) {
	if conf == nil || conf.apiKey == "" {
		return nil, &apierrors.Error{Kind: apierrors.KindMissingCredential}
	}
	if conf.baseURL == nil {
		return nil, &apierrors.Error{Kind: apierrors.KindInvalidEndpoint}
	}
	return newClient(conf, newClientConfig(opts))
}

// buildAPIClient creates and configures an API client from the given
// configuration and runtime options.
func buildAPIClient(conf *Configuration, cfg *clientConfig) (*api.Client, error) {
	apiCfg := api.Config{
		BaseURL:        conf.baseURL.String(),
		APIKey:         conf.apiKey,
		UserAgent:      conf.userAgent,
		Timeout:        conf.timeout,
		Retry:          conf.retry,
		HTTPClient:     cfg.httpClient,
		Logger:         cfg.logger,
		Sleeper:        cfg.sleeper,
		Limiter:        cfg.limiter,
		TracerProvider: cfg.tracerProvider,
		MeterProvider:  cfg.meterProvider,
	}
	return api.NewClient(apiCfg)
}

func newClient(conf *Configuration, cfg *clientConfig) (*Client, error) {
	apiClient, err := buildAPIClient(conf, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{config: conf, apiClient: apiClient}, nil
}

// Configuration returns the configuration the client was built with.
func (c *Client) Configuration() *Configuration {
	return c.config
}

// Do calls an arbitrary API path and decodes the JSON response into result,
// which may be nil. It is the escape hatch for endpoints without a typed
// method and shares the retry, error and telemetry behavior of every other
// call. Retries resend the same request even for non-idempotent methods.
func (c *Client) Do(ctx context.Context, method, path string, query Query, body, result any) error {
	return c.apiClient.Do(ctx, method, path, query, body, result)
}

// DoBinary is like Do but returns the raw response body.
func (c *Client) DoBinary(ctx context.Context, method, path string, query Query, body any) ([]byte, error) {
	return c.apiClient.DoBinary(ctx, method, path, query, body)
}

// pathf joins segments onto prefix, escaping each one.
func pathf(prefix string, segments ...string) string {
	p := prefix
	for _, s := range segments {
		p += "/" + url.PathEscape(s)
	}
	return p
}

// requireID rejects an empty path identifier before any request is made.
func requireID(name, id string) error {
	if id == "" {
		return &apierrors.Error{
			Kind:    apierrors.KindInvalidRequest,
			Message: name + " is required",
		}
	}
	return nil
}
