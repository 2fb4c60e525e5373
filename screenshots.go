package allscreenshots

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/api"
	"github.com/allscreenshots/allscreenshots-sdk-go/internal/jobwait"
)

// ImageFormat is the output format of a capture.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
	FormatJPG  ImageFormat = "jpg"
	FormatWebP ImageFormat = "webp"
	FormatPDF  ImageFormat = "pdf"
)

// WaitUntil is the page load event to wait for before capturing.
type WaitUntil string

const (
	WaitUntilLoad             WaitUntil = "load"
	WaitUntilDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitUntilNetworkIdle      WaitUntil = "networkidle"
	WaitUntilCommit           WaitUntil = "commit"
)

// BlockLevel is how aggressively ads and trackers are blocked.
type BlockLevel string

const (
	BlockLevelNone     BlockLevel = "none"
	BlockLevelLight    BlockLevel = "light"
	BlockLevelNormal   BlockLevel = "normal"
	BlockLevelPro      BlockLevel = "pro"
	BlockLevelProPlus  BlockLevel = "pro_plus"
	BlockLevelUltimate BlockLevel = "ultimate"
)

// ResponseType selects whether a synchronous capture returns the image
// bytes or a JSON description.
type ResponseType string

const (
	ResponseTypeBinary ResponseType = "BINARY"
	ResponseTypeJSON   ResponseType = "JSON"
)

// JobStatus is the lifecycle state of an asynchronous job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "QUEUED"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// ViewportConfig sets the browser viewport.
type ViewportConfig struct {
	// Width in pixels (100-4096).
	Width *int `json:"width,omitempty" validate:"omitempty,min=100,max=4096"`
	// Height in pixels (100-4096).
	Height *int `json:"height,omitempty" validate:"omitempty,min=100,max=4096"`
	// DeviceScaleFactor (1-3).
	DeviceScaleFactor *int `json:"deviceScaleFactor,omitempty" validate:"omitempty,min=1,max=3"`
}

// ScreenshotRequest describes a single capture. Only URL is required; nil
// fields are omitted from the request and take the server's defaults.
type ScreenshotRequest struct {
	URL      string          `json:"url" validate:"required,url"`
	Viewport *ViewportConfig `json:"viewport,omitempty"`
	// Device is a preset name such as "Desktop HD", "iPhone 14" or "iPad".
	Device   *string      `json:"device,omitempty"`
	Format   *ImageFormat `json:"format,omitempty" validate:"omitempty,oneof=png jpeg jpg webp pdf"`
	FullPage *bool        `json:"fullPage,omitempty"`
	// Quality applies to JPEG and WebP (1-100).
	Quality *int `json:"quality,omitempty" validate:"omitempty,min=1,max=100"`
	// Delay before capture in milliseconds (0-30000).
	Delay *int `json:"delay,omitempty" validate:"omitempty,min=0,max=30000"`
	// WaitFor is a CSS selector to wait for.
	WaitFor   *string    `json:"waitFor,omitempty"`
	WaitUntil *WaitUntil `json:"waitUntil,omitempty" validate:"omitempty,oneof=load domcontentloaded networkidle commit"`
	// Timeout in milliseconds (1000-60000).
	Timeout            *int          `json:"timeout,omitempty" validate:"omitempty,min=1000,max=60000"`
	DarkMode           *bool         `json:"darkMode,omitempty"`
	CustomCSS          *string       `json:"customCss,omitempty" validate:"omitempty,max=10000"`
	HideSelectors      []string      `json:"hideSelectors,omitempty" validate:"omitempty,max=50"`
	Selector           *string       `json:"selector,omitempty" validate:"omitempty,max=500"`
	BlockAds           *bool         `json:"blockAds,omitempty"`
	BlockCookieBanners *bool         `json:"blockCookieBanners,omitempty"`
	BlockLevel         *BlockLevel   `json:"blockLevel,omitempty" validate:"omitempty,oneof=none light normal pro pro_plus ultimate"`
	WebhookURL         *string       `json:"webhookUrl,omitempty" validate:"omitempty,url"`
	WebhookSecret      *string       `json:"webhookSecret,omitempty"`
	ResponseType       *ResponseType `json:"responseType,omitempty" validate:"omitempty,oneof=BINARY JSON"`
}

// AsyncJobCreatedResponse acknowledges an asynchronous capture.
type AsyncJobCreatedResponse struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	StatusURL *string   `json:"statusUrl,omitempty"`
	CreatedAt *string   `json:"createdAt,omitempty"`
}

// JobResponse is the state of an asynchronous capture.
type JobResponse struct {
	ID           string                     `json:"id"`
	Status       JobStatus                  `json:"status"`
	URL          *string                    `json:"url,omitempty"`
	ResultURL    *string                    `json:"resultUrl,omitempty"`
	ErrorCode    *string                    `json:"errorCode,omitempty"`
	ErrorMessage *string                    `json:"errorMessage,omitempty"`
	CreatedAt    *string                    `json:"createdAt,omitempty"`
	StartedAt    *string                    `json:"startedAt,omitempty"`
	CompletedAt  *string                    `json:"completedAt,omitempty"`
	ExpiresAt    *string                    `json:"expiresAt,omitempty"`
	Metadata     map[string]json.RawMessage `json:"metadata,omitempty"`
}

// TakeScreenshot captures a page synchronously and returns the image bytes.
func (c *Client) TakeScreenshot(ctx context.Context, req *ScreenshotRequest) ([]byte, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return c.apiClient.DoBinary(ctx, http.MethodPost, "/v1/screenshots", nil, req)
}

// TakeScreenshotAsync queues a capture and returns immediately. Poll it with
// GetJob or WaitForJob.
func (c *Client) TakeScreenshotAsync(ctx context.Context, req *ScreenshotRequest) (*AsyncJobCreatedResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return execute[AsyncJobCreatedResponse](ctx, c, http.MethodPost, "/v1/screenshots/async", nil, req)
}

// ListJobs returns recent asynchronous capture jobs.
func (c *Client) ListJobs(ctx context.Context) ([]JobResponse, error) {
	return api.Execute[[]JobResponse](ctx, c.apiClient, http.MethodGet, "/v1/screenshots/jobs", nil, nil)
}

// GetJob returns the current state of a job.
func (c *Client) GetJob(ctx context.Context, id string) (*JobResponse, error) {
	if err := requireID("job ID", id); err != nil {
		return nil, err
	}
	return execute[JobResponse](ctx, c, http.MethodGet, pathf("/v1/screenshots/jobs", id), nil, nil)
}

// GetJobResult downloads the image of a completed job.
func (c *Client) GetJobResult(ctx context.Context, id string) ([]byte, error) {
	if err := requireID("job ID", id); err != nil {
		return nil, err
	}
	return c.apiClient.DoBinary(ctx, http.MethodGet, pathf("/v1/screenshots/jobs", id, "result"), nil, nil)
}

// CancelJob cancels a queued or running job.
func (c *Client) CancelJob(ctx context.Context, id string) (*JobResponse, error) {
	if err := requireID("job ID", id); err != nil {
		return nil, err
	}
	return execute[JobResponse](ctx, c, http.MethodPost, pathf("/v1/screenshots/jobs", id, "cancel"), nil, nil)
}

// WaitForJob polls a job until it is COMPLETED, FAILED or CANCELLED. The
// interval starts at 2s and grows while the status is unchanged. A job that
// ends FAILED or CANCELLED is returned together with a *JobFailedError.
// Polling stops with a KindCancelled error when ctx is done or the wait
// timeout (5 minutes by default) elapses.
func (c *Client) WaitForJob(ctx context.Context, id string, opts ...WaitOption) (*JobResponse, error) {
	if err := requireID("job ID", id); err != nil {
		return nil, err
	}

	cfg := &waitConfig{
		timeout:      defaultWaitTimeout,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	var job *JobResponse
	err := jobwait.Poll(ctx, jobwait.Options{
		InitialInterval: cfg.pollInterval,
		MaxInterval:     cfg.maxPollInterval,
		Sleep:           cfg.sleep,
	}, func(ctx context.Context) (string, bool, error) {
		current, err := c.GetJob(ctx, id)
		if err != nil {
			return "", false, err
		}
		job = current
		return string(current.Status), current.Status.Terminal(), nil
	})
	if err != nil {
		return job, asCancelled(err)
	}

	if job.Status != JobStatusCompleted {
		return job, &JobFailedError{
			JobID:   job.ID,
			Status:  job.Status,
			Code:    deref(job.ErrorCode),
			Message: deref(job.ErrorMessage),
		}
	}
	return job, nil
}

// execute runs a JSON call and returns a pointer to the decoded value.
func execute[T any](ctx context.Context, c *Client, method, path string, query Query, body any) (*T, error) {
	result, err := api.Execute[T](ctx, c.apiClient, method, path, query, body)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// asCancelled wraps a bare context error from the poll loop so callers see
// the same error type as every other call.
func asCancelled(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindCancelled, Err: err}
	}
	return err
}
