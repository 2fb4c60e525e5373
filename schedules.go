package allscreenshots

import (
	"context"
	"net/http"
)

// ScheduleScreenshotOptions are the capture settings of a schedule.
type ScheduleScreenshotOptions struct {
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

// CreateScheduleRequest defines a recurring capture.
type CreateScheduleRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	URL  string `json:"url" validate:"required,url"`
	// Schedule is a cron expression or an interval such as "every 1h".
	Schedule      string                     `json:"schedule" validate:"required"`
	Timezone      *string                    `json:"timezone,omitempty"`
	Options       *ScheduleScreenshotOptions `json:"options,omitempty"`
	WebhookURL    *string                    `json:"webhookUrl,omitempty" validate:"omitempty,url"`
	WebhookSecret *string                    `json:"webhookSecret,omitempty"`
	RetentionDays *int                       `json:"retentionDays,omitempty" validate:"omitempty,min=1"`
	StartsAt      *string                    `json:"startsAt,omitempty"`
	EndsAt        *string                    `json:"endsAt,omitempty"`
}

// UpdateScheduleRequest changes the fields that are set and leaves the rest.
type UpdateScheduleRequest struct {
	Name          *string                    `json:"name,omitempty" validate:"omitempty,max=255"`
	URL           *string                    `json:"url,omitempty" validate:"omitempty,url"`
	Schedule      *string                    `json:"schedule,omitempty"`
	Timezone      *string                    `json:"timezone,omitempty"`
	Options       *ScheduleScreenshotOptions `json:"options,omitempty"`
	WebhookURL    *string                    `json:"webhookUrl,omitempty" validate:"omitempty,url"`
	WebhookSecret *string                    `json:"webhookSecret,omitempty"`
	RetentionDays *int                       `json:"retentionDays,omitempty" validate:"omitempty,min=1"`
	StartsAt      *string                    `json:"startsAt,omitempty"`
	EndsAt        *string                    `json:"endsAt,omitempty"`
}

// ScheduleResponse is a schedule and its execution counters.
type ScheduleResponse struct {
	ID                  string                     `json:"id"`
	Name                string                     `json:"name"`
	URL                 string                     `json:"url"`
	Schedule            string                     `json:"schedule"`
	ScheduleDescription *string                    `json:"scheduleDescription,omitempty"`
	Timezone            *string                    `json:"timezone,omitempty"`
	Status              *string                    `json:"status,omitempty"`
	Options             *ScheduleScreenshotOptions `json:"options,omitempty"`
	WebhookURL          *string                    `json:"webhookUrl,omitempty"`
	RetentionDays       *int                       `json:"retentionDays,omitempty"`
	StartsAt            *string                    `json:"startsAt,omitempty"`
	EndsAt              *string                    `json:"endsAt,omitempty"`
	LastExecutedAt      *string                    `json:"lastExecutedAt,omitempty"`
	NextExecutionAt     *string                    `json:"nextExecutionAt,omitempty"`
	ExecutionCount      *int                       `json:"executionCount,omitempty"`
	SuccessCount        *int                       `json:"successCount,omitempty"`
	FailureCount        *int                       `json:"failureCount,omitempty"`
	CreatedAt           *string                    `json:"createdAt,omitempty"`
	UpdatedAt           *string                    `json:"updatedAt,omitempty"`
}

// ScheduleListResponse is a page of schedules.
type ScheduleListResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	Total     int                `json:"total"`
}

// ScheduleExecutionResponse is one run of a schedule.
type ScheduleExecutionResponse struct {
	ID           string  `json:"id"`
	ExecutedAt   *string `json:"executedAt,omitempty"`
	Status       *string `json:"status,omitempty"`
	ResultURL    *string `json:"resultUrl,omitempty"`
	StorageURL   *string `json:"storageUrl,omitempty"`
	FileSize     *int64  `json:"fileSize,omitempty"`
	RenderTimeMs *int64  `json:"renderTimeMs,omitempty"`
	ErrorCode    *string `json:"errorCode,omitempty"`
	ErrorMessage *string `json:"errorMessage,omitempty"`
	ExpiresAt    *string `json:"expiresAt,omitempty"`
}

// ScheduleHistoryResponse lists past runs, newest first.
type ScheduleHistoryResponse struct {
	ScheduleID      string                      `json:"scheduleId"`
	TotalExecutions int64                       `json:"totalExecutions"`
	Executions      []ScheduleExecutionResponse `json:"executions"`
}

const schedulesPath = "/v1/schedules"

// CreateSchedule creates a recurring capture.
func (c *Client) CreateSchedule(ctx context.Context, req *CreateScheduleRequest) (*ScheduleResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return execute[ScheduleResponse](ctx, c, http.MethodPost, schedulesPath, nil, req)
}

// ListSchedules returns all schedules.
func (c *Client) ListSchedules(ctx context.Context) (*ScheduleListResponse, error) {
	return execute[ScheduleListResponse](ctx, c, http.MethodGet, schedulesPath, nil, nil)
}

// GetSchedule returns one schedule.
func (c *Client) GetSchedule(ctx context.Context, id string) (*ScheduleResponse, error) {
	return c.scheduleCall(ctx, http.MethodGet, id, "", nil)
}

// UpdateSchedule replaces the fields set in req.
func (c *Client) UpdateSchedule(ctx context.Context, id string, req *UpdateScheduleRequest) (*ScheduleResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return c.scheduleCall(ctx, http.MethodPut, id, "", req)
}

// DeleteSchedule deletes a schedule. Its past captures expire on their own
// retention.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	if err := requireID("schedule ID", id); err != nil {
		return err
	}
	return c.apiClient.Do(ctx, http.MethodDelete, pathf(schedulesPath, id), nil, nil, &NoContent{})
}

// PauseSchedule stops a schedule from running until it is resumed.
func (c *Client) PauseSchedule(ctx context.Context, id string) (*ScheduleResponse, error) {
	return c.scheduleCall(ctx, http.MethodPost, id, "pause", nil)
}

// ResumeSchedule restarts a paused schedule.
func (c *Client) ResumeSchedule(ctx context.Context, id string) (*ScheduleResponse, error) {
	return c.scheduleCall(ctx, http.MethodPost, id, "resume", nil)
}

// TriggerSchedule runs a schedule now, outside its cadence.
func (c *Client) TriggerSchedule(ctx context.Context, id string) (*ScheduleResponse, error) {
	return c.scheduleCall(ctx, http.MethodPost, id, "trigger", nil)
}

// GetScheduleHistory returns past runs of a schedule. limit may be nil for
// the server default.
func (c *Client) GetScheduleHistory(ctx context.Context, id string, limit *int) (*ScheduleHistoryResponse, error) {
	if err := requireID("schedule ID", id); err != nil {
		return nil, err
	}
	query := Query{}.AddInt("limit", limit)
	return execute[ScheduleHistoryResponse](ctx, c, http.MethodGet, pathf(schedulesPath, id, "history"), query, nil)
}

func (c *Client) scheduleCall(ctx context.Context, method, id, action string, body any) (*ScheduleResponse, error) {
	if err := requireID("schedule ID", id); err != nil {
		return nil, err
	}
	path := pathf(schedulesPath, id)
	if action != "" {
		path = pathf(path, action)
	}
	return execute[ScheduleResponse](ctx, c, method, path, nil, body)
}
