package allscreenshots

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/allscreenshots/allscreenshots-sdk-go/internal/api"
)

// LayoutType arranges the images of a composition.
type LayoutType string

const (
	LayoutGrid         LayoutType = "GRID"
	LayoutHorizontal   LayoutType = "HORIZONTAL"
	LayoutVertical     LayoutType = "VERTICAL"
	LayoutMasonry      LayoutType = "MASONRY"
	LayoutMondrian     LayoutType = "MONDRIAN"
	LayoutPartitioning LayoutType = "PARTITIONING"
	LayoutAuto         LayoutType = "AUTO"
)

// Alignment is the vertical alignment of images in a row.
type Alignment string

const (
	AlignTop    Alignment = "top"
	AlignCenter Alignment = "center"
	AlignBottom Alignment = "bottom"
)

// CaptureItem is one page of a composition.
type CaptureItem struct {
	URL      string          `json:"url" validate:"required,url"`
	ID       *string         `json:"id,omitempty"`
	Label    *string         `json:"label,omitempty"`
	Viewport *ViewportConfig `json:"viewport,omitempty"`
	Device   *string         `json:"device,omitempty"`
	FullPage *bool           `json:"fullPage,omitempty"`
	DarkMode *bool           `json:"darkMode,omitempty"`
	Delay    *int            `json:"delay,omitempty" validate:"omitempty,min=0,max=30000"`
}

// VariantConfig is one rendering of the single URL of a variants composition.
type VariantConfig struct {
	ID        *string         `json:"id,omitempty"`
	Label     *string         `json:"label,omitempty"`
	Viewport  *ViewportConfig `json:"viewport,omitempty"`
	Device    *string         `json:"device,omitempty"`
	FullPage  *bool           `json:"fullPage,omitempty"`
	DarkMode  *bool           `json:"darkMode,omitempty"`
	Delay     *int            `json:"delay,omitempty" validate:"omitempty,min=0,max=30000"`
	CustomCSS *string         `json:"customCss,omitempty" validate:"omitempty,max=10000"`
}

// CaptureDefaults applies to every capture of a composition.
type CaptureDefaults struct {
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
	BlockAds           *bool           `json:"blockAds,omitempty"`
	BlockCookieBanners *bool           `json:"blockCookieBanners,omitempty"`
	BlockLevel         *BlockLevel     `json:"blockLevel,omitempty" validate:"omitempty,oneof=none light normal pro pro_plus ultimate"`
}

// LabelConfig draws a caption on each image.
type LabelConfig struct {
	Enabled         *bool   `json:"enabled,omitempty"`
	Position        *string `json:"position,omitempty"`
	FontSize        *int    `json:"fontSize,omitempty"`
	FontColor       *string `json:"fontColor,omitempty"`
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	Padding         *int    `json:"padding,omitempty"`
}

// BorderConfig draws a border around each image.
type BorderConfig struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Width   *int    `json:"width,omitempty"`
	Color   *string `json:"color,omitempty"`
	Radius  *int    `json:"radius,omitempty"`
}

// ShadowConfig draws a drop shadow behind each image.
type ShadowConfig struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Blur    *int    `json:"blur,omitempty"`
	Spread  *int    `json:"spread,omitempty"`
	Color   *string `json:"color,omitempty"`
	OffsetX *int    `json:"offsetX,omitempty"`
	OffsetY *int    `json:"offsetY,omitempty"`
}

// ComposeOutputConfig controls the composed image.
type ComposeOutputConfig struct {
	Layout         *LayoutType   `json:"layout,omitempty" validate:"omitempty,oneof=GRID HORIZONTAL VERTICAL MASONRY MONDRIAN PARTITIONING AUTO"`
	Format         *ImageFormat  `json:"format,omitempty" validate:"omitempty,oneof=png jpeg jpg webp pdf"`
	Quality        *int          `json:"quality,omitempty" validate:"omitempty,min=1,max=100"`
	Columns        *int          `json:"columns,omitempty" validate:"omitempty,min=1"`
	Spacing        *int          `json:"spacing,omitempty" validate:"omitempty,min=0"`
	Padding        *int          `json:"padding,omitempty" validate:"omitempty,min=0"`
	Background     *string       `json:"background,omitempty"`
	Alignment      *Alignment    `json:"alignment,omitempty" validate:"omitempty,oneof=top center bottom"`
	MaxWidth       *int          `json:"maxWidth,omitempty"`
	MaxHeight      *int          `json:"maxHeight,omitempty"`
	ThumbnailWidth *int          `json:"thumbnailWidth,omitempty"`
	Labels         *LabelConfig  `json:"labels,omitempty"`
	Border         *BorderConfig `json:"border,omitempty"`
	Shadow         *ShadowConfig `json:"shadow,omitempty"`
}

// ComposeRequest combines several captures into one image. Set either
// Captures (different pages) or URL with Variants (one page rendered
// several ways).
type ComposeRequest struct {
	Captures      []CaptureItem        `json:"captures,omitempty" validate:"required_without=URL,dive"`
	URL           *string              `json:"url,omitempty" validate:"omitempty,url"`
	Variants      []VariantConfig      `json:"variants,omitempty" validate:"dive"`
	Defaults      *CaptureDefaults     `json:"defaults,omitempty"`
	Output        *ComposeOutputConfig `json:"output,omitempty"`
	Async         *bool                `json:"async,omitempty"`
	WebhookURL    *string              `json:"webhookUrl,omitempty" validate:"omitempty,url"`
	WebhookSecret *string              `json:"webhookSecret,omitempty"`
	CapturesMode  *bool                `json:"capturesMode,omitempty"`
	VariantsMode  *bool                `json:"variantsMode,omitempty"`
}

// CaptureMetadata describes one image placed in a composition.
type CaptureMetadata struct {
	ID     *string `json:"id,omitempty"`
	URL    *string `json:"url,omitempty"`
	Label  *string `json:"label,omitempty"`
	Width  *int    `json:"width,omitempty"`
	Height *int    `json:"height,omitempty"`
}

// ComposeMetadata lists the images of a composition.
type ComposeMetadata struct {
	Captures []CaptureMetadata `json:"captures,omitempty"`
}

// ComposeResponse is a finished composition.
type ComposeResponse struct {
	URL          *string          `json:"url,omitempty"`
	StorageURL   *string          `json:"storageUrl,omitempty"`
	ExpiresAt    *string          `json:"expiresAt,omitempty"`
	Width        *int             `json:"width,omitempty"`
	Height       *int             `json:"height,omitempty"`
	Format       *string          `json:"format,omitempty"`
	FileSize     *int64           `json:"fileSize,omitempty"`
	RenderTimeMs *int64           `json:"renderTimeMs,omitempty"`
	Layout       *string          `json:"layout,omitempty"`
	Metadata     *ComposeMetadata `json:"metadata,omitempty"`
}

// ComposeJobStatusResponse is the state of a composition job.
type ComposeJobStatusResponse struct {
	JobID             string           `json:"jobId"`
	Status            string           `json:"status"`
	Progress          *int             `json:"progress,omitempty"`
	TotalCaptures     *int             `json:"totalCaptures,omitempty"`
	CompletedCaptures *int             `json:"completedCaptures,omitempty"`
	Result            *ComposeResponse `json:"result,omitempty"`
	ErrorCode         *string          `json:"errorCode,omitempty"`
	ErrorMessage      *string          `json:"errorMessage,omitempty"`
	CreatedAt         *string          `json:"createdAt,omitempty"`
	CompletedAt       *string          `json:"completedAt,omitempty"`
}

// ComposeJobSummaryResponse is a composition job in a listing.
type ComposeJobSummaryResponse struct {
	JobID             string  `json:"jobId"`
	Status            string  `json:"status"`
	TotalCaptures     *int    `json:"totalCaptures,omitempty"`
	CompletedCaptures *int    `json:"completedCaptures,omitempty"`
	FailedCaptures    *int    `json:"failedCaptures,omitempty"`
	Progress          *int    `json:"progress,omitempty"`
	LayoutType        *string `json:"layoutType,omitempty"`
	CreatedAt         *string `json:"createdAt,omitempty"`
	CompletedAt       *string `json:"completedAt,omitempty"`
}

// PlacementPreview is where one image would land on the canvas.
type PlacementPreview struct {
	Index  int     `json:"index"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Label  *string `json:"label,omitempty"`
}

// LayoutPreviewResponse is a dry run of a layout.
type LayoutPreviewResponse struct {
	Layout         string             `json:"layout"`
	ResolvedLayout *string            `json:"resolvedLayout,omitempty"`
	CanvasWidth    int                `json:"canvasWidth"`
	CanvasHeight   int                `json:"canvasHeight"`
	Placements     []PlacementPreview `json:"placements"`
	Metadata       map[string]any     `json:"metadata,omitempty"`
}

// LayoutPreview holds the optional parameters of PreviewLayout.
type LayoutPreview struct {
	CanvasWidth  *int
	CanvasHeight *int
	AspectRatios []float64
}

// Compose starts a composition.
func (c *Client) Compose(ctx context.Context, req *ComposeRequest) (*ComposeJobStatusResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return execute[ComposeJobStatusResponse](ctx, c, http.MethodPost, "/v1/screenshots/compose", nil, req)
}

// PreviewLayout computes image placements for a layout without capturing
// anything. preview may be nil.
func (c *Client) PreviewLayout(ctx context.Context, layout LayoutType, imageCount int, preview *LayoutPreview) (*LayoutPreviewResponse, error) {
	query := Query{}.
		Add("layout", string(layout)).
		Add("image_count", strconv.Itoa(imageCount))
	if preview != nil {
		query = query.
			AddInt("canvas_width", preview.CanvasWidth).
			AddInt("canvas_height", preview.CanvasHeight)
		if len(preview.AspectRatios) > 0 {
			ratios := make([]string, len(preview.AspectRatios))
			for i, r := range preview.AspectRatios {
				ratios[i] = strconv.FormatFloat(r, 'f', -1, 64)
			}
			query = query.Add("aspect_ratios", strings.Join(ratios, ","))
		}
	}
	return execute[LayoutPreviewResponse](ctx, c, http.MethodGet, "/v1/screenshots/compose/preview", query, nil)
}

// ListComposeJobs returns recent composition jobs.
func (c *Client) ListComposeJobs(ctx context.Context) ([]ComposeJobSummaryResponse, error) {
	return api.Execute[[]ComposeJobSummaryResponse](ctx, c.apiClient, http.MethodGet, "/v1/screenshots/compose/jobs", nil, nil)
}

// GetComposeJob returns the state of a composition job.
func (c *Client) GetComposeJob(ctx context.Context, jobID string) (*ComposeJobStatusResponse, error) {
	if err := requireID("compose job ID", jobID); err != nil {
		return nil, err
	}
	return execute[ComposeJobStatusResponse](ctx, c, http.MethodGet, pathf("/v1/screenshots/compose/jobs", jobID), nil, nil)
}
