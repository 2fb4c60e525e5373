package allscreenshots

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/api"
)

// DefaultBulkDownloadConcurrency bounds DownloadBulkResults when a
// non-positive concurrency is passed.
const DefaultBulkDownloadConcurrency = 4

// BulkURLOptions overrides the bulk defaults for one URL.
type BulkURLOptions struct {
	Viewport           *ViewportConfig `json:"viewport,omitempty"`
	Device             *string         `json:"device,omitempty"`
	Format             *ImageFormat    `json:"format,omitempty" validate:"omitempty,oneof=png jpeg jpg webp pdf"`
	FullPage           *bool           `json:"fullPage,omitempty"`
	Quality            *int            `json:"quality,omitempty" validate:"omitempty,min=1,max=100"`
	Delay              *int            `json:"delay,omitempty" validate:"omitempty,min=0,max=30000"`
	WaitFor            *string         `json:"waitFor,omitempty"`
	WaitUntil          *WaitUntil      `json:"waitUntil,omitempty" validate:"omitempty,oneof=load domcontentloaded networkidle commit"`
	Timeout            *int            `json:"timeout,omitempty" validate:"omitempty,min=1000,max=60000"`
	DarkMode           *bool           `json:"darkMode,omitempty"`
	CustomCSS          *string         `json:"customCss,omitempty" validate:"omitempty,max=10000"`
	HideSelectors      []string        `json:"hideSelectors,omitempty" validate:"omitempty,max=50"`
	Selector           *string         `json:"selector,omitempty" validate:"omitempty,max=500"`
	BlockAds           *bool           `json:"blockAds,omitempty"`
	BlockCookieBanners *bool           `json:"blockCookieBanners,omitempty"`
	BlockLevel         *BlockLevel     `json:"blockLevel,omitempty" validate:"omitempty,oneof=none light normal pro pro_plus ultimate"`
}

// BulkURLRequest is one URL of a bulk job.
type BulkURLRequest struct {
	URL     string          `json:"url" validate:"required,url"`
	Options *BulkURLOptions `json:"options,omitempty"`
}

// BulkDefaults applies to every URL of a bulk job unless overridden.
type BulkDefaults struct {
	Viewport           *ViewportConfig `json:"viewport,omitempty"`
	Device             *string         `json:"device,omitempty"`
	Format             *ImageFormat    `json:"format,omitempty" validate:"omitempty,oneof=png jpeg jpg webp pdf"`
	FullPage           *bool           `json:"fullPage,omitempty"`
	Quality            *int            `json:"quality,omitempty" validate:"omitempty,min=1,max=100"`
	Delay              *int            `json:"delay,omitempty" validate:"omitempty,min=0,max=30000"`
	WaitFor            *string         `json:"waitFor,omitempty"`
	WaitUntil          *WaitUntil      `json:"waitUntil,omitempty" validate:"omitempty,oneof=load domcontentloaded networkidle commit"`
	Timeout            *int            `json:"timeout,omitempty" validate:"omitempty,min=1000,max=60000"`
	DarkMode           *bool           `json:"darkMode,omitempty"`
	CustomCSS          *string         `json:"customCss,omitempty" validate:"omitempty,max=10000"`
	BlockAds           *bool           `json:"blockAds,omitempty"`
	BlockCookieBanners *bool           `json:"blockCookieBanners,omitempty"`
	BlockLevel         *BlockLevel     `json:"blockLevel,omitempty" validate:"omitempty,oneof=none light normal pro pro_plus ultimate"`
}

// BulkRequest captures many URLs in one job.
type BulkRequest struct {
	URLs          []BulkURLRequest `json:"urls" validate:"required,min=1,dive"`
	Defaults      *BulkDefaults    `json:"defaults,omitempty"`
	WebhookURL    *string          `json:"webhookUrl,omitempty" validate:"omitempty,url"`
	WebhookSecret *string          `json:"webhookSecret,omitempty"`
}

// BulkJobInfo is a child job as reported at creation.
type BulkJobInfo struct {
	ID     string  `json:"id"`
	URL    *string `json:"url,omitempty"`
	Status *string `json:"status,omitempty"`
}

// BulkResponse acknowledges a bulk job.
type BulkResponse struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	TotalJobs     int           `json:"totalJobs"`
	CompletedJobs int           `json:"completedJobs"`
	FailedJobs    int           `json:"failedJobs"`
	Progress      int           `json:"progress"`
	Jobs          []BulkJobInfo `json:"jobs,omitempty"`
	CreatedAt     *string       `json:"createdAt,omitempty"`
	CompletedAt   *string       `json:"completedAt,omitempty"`
}

// BulkJobSummary is a bulk job without its children.
type BulkJobSummary struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	TotalJobs     int     `json:"totalJobs"`
	CompletedJobs int     `json:"completedJobs"`
	FailedJobs    int     `json:"failedJobs"`
	Progress      int     `json:"progress"`
	CreatedAt     *string `json:"createdAt,omitempty"`
	CompletedAt   *string `json:"completedAt,omitempty"`
}

// BulkJobDetailInfo is a child job with its result.
type BulkJobDetailInfo struct {
	ID           string  `json:"id"`
	URL          *string `json:"url,omitempty"`
	Status       *string `json:"status,omitempty"`
	ResultURL    *string `json:"resultUrl,omitempty"`
	StorageURL   *string `json:"storageUrl,omitempty"`
	Format       *string `json:"format,omitempty"`
	Width        *int    `json:"width,omitempty"`
	Height       *int    `json:"height,omitempty"`
	FileSize     *int64  `json:"fileSize,omitempty"`
	RenderTimeMs *int64  `json:"renderTimeMs,omitempty"`
	ErrorCode    *string `json:"errorCode,omitempty"`
	ErrorMessage *string `json:"errorMessage,omitempty"`
	CreatedAt    *string `json:"createdAt,omitempty"`
	CompletedAt  *string `json:"completedAt,omitempty"`
}

// BulkStatusResponse is a bulk job with per-URL detail.
type BulkStatusResponse struct {
	ID            string              `json:"id"`
	Status        string              `json:"status"`
	TotalJobs     int                 `json:"totalJobs"`
	CompletedJobs int                 `json:"completedJobs"`
	FailedJobs    int                 `json:"failedJobs"`
	Progress      int                 `json:"progress"`
	Jobs          []BulkJobDetailInfo `json:"jobs,omitempty"`
	CreatedAt     *string             `json:"createdAt,omitempty"`
	CompletedAt   *string             `json:"completedAt,omitempty"`
}

// CreateBulkJob starts a bulk capture.
func (c *Client) CreateBulkJob(ctx context.Context, req *BulkRequest) (*BulkResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return execute[BulkResponse](ctx, c, http.MethodPost, "/v1/screenshots/bulk", nil, req)
}

// ListBulkJobs returns recent bulk jobs.
func (c *Client) ListBulkJobs(ctx context.Context) ([]BulkJobSummary, error) {
	return api.Execute[[]BulkJobSummary](ctx, c.apiClient, http.MethodGet, "/v1/screenshots/bulk", nil, nil)
}

// GetBulkJob returns a bulk job and its children.
func (c *Client) GetBulkJob(ctx context.Context, id string) (*BulkStatusResponse, error) {
	if err := requireID("bulk job ID", id); err != nil {
		return nil, err
	}
	return execute[BulkStatusResponse](ctx, c, http.MethodGet, pathf("/v1/screenshots/bulk", id), nil, nil)
}

// CancelBulkJob cancels every pending child of a bulk job.
func (c *Client) CancelBulkJob(ctx context.Context, id string) (*BulkJobSummary, error) {
	if err := requireID("bulk job ID", id); err != nil {
		return nil, err
	}
	return execute[BulkJobSummary](ctx, c, http.MethodPost, pathf("/v1/screenshots/bulk", id, "cancel"), nil, nil)
}

// DownloadBulkResults fetches the image of every completed child of a bulk
// job, at most concurrency at a time, keyed by child job ID. The first
// failure cancels the remaining downloads and is returned.
func (c *Client) DownloadBulkResults(ctx context.Context, id string, concurrency int) (map[string][]byte, error) {
	status, err := c.GetBulkJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = DefaultBulkDownloadConcurrency
	}

	var mu sync.Mutex
	results := make(map[string][]byte, len(status.Jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, job := range status.Jobs {
		if deref(job.Status) != string(JobStatusCompleted) {
			continue
		}
		jobID := job.ID
		g.Go(func() error {
			data, err := c.GetJobResult(gctx, jobID)
			if err != nil {
				return err
			}
			mu.Lock()
			results[jobID] = data
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
