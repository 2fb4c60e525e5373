package allscreenshots

import (
	"context"
	"net/http"
)

// QuotaDetailResponse is the screenshot allowance of the current period.
type QuotaDetailResponse struct {
	Limit       int `json:"limit"`
	Used        int `json:"used"`
	Remaining   int `json:"remaining"`
	PercentUsed int `json:"percentUsed"`
}

// BandwidthQuotaResponse is the bandwidth allowance of the current period.
type BandwidthQuotaResponse struct {
	LimitBytes         int64  `json:"limitBytes"`
	LimitFormatted     string `json:"limitFormatted"`
	UsedBytes          int64  `json:"usedBytes"`
	UsedFormatted      string `json:"usedFormatted"`
	RemainingBytes     int64  `json:"remainingBytes"`
	RemainingFormatted string `json:"remainingFormatted"`
	PercentUsed        int    `json:"percentUsed"`
}

// QuotaStatusResponse summarizes what is left of the current period.
type QuotaStatusResponse struct {
	Tier        string                 `json:"tier"`
	Screenshots QuotaDetailResponse    `json:"screenshots"`
	Bandwidth   BandwidthQuotaResponse `json:"bandwidth"`
	PeriodEnds  *string                `json:"periodEnds,omitempty"`
}

// QuotaResponse is the plan allowance.
type QuotaResponse struct {
	Screenshots *int   `json:"screenshots,omitempty"`
	Bandwidth   *int64 `json:"bandwidth,omitempty"`
}

// PeriodUsageResponse is usage in one billing period.
type PeriodUsageResponse struct {
	PeriodStart        string `json:"periodStart"`
	PeriodEnd          string `json:"periodEnd"`
	ScreenshotsCount   int    `json:"screenshotsCount"`
	BandwidthBytes     int64  `json:"bandwidthBytes"`
	BandwidthFormatted string `json:"bandwidthFormatted"`
}

// TotalsResponse is lifetime usage.
type TotalsResponse struct {
	ScreenshotsCount   int64  `json:"screenshotsCount"`
	BandwidthBytes     int64  `json:"bandwidthBytes"`
	BandwidthFormatted string `json:"bandwidthFormatted"`
}

// UsageResponse is account usage with history.
type UsageResponse struct {
	Tier          string                `json:"tier"`
	CurrentPeriod PeriodUsageResponse   `json:"currentPeriod"`
	Quota         *QuotaResponse        `json:"quota,omitempty"`
	History       []PeriodUsageResponse `json:"history,omitempty"`
	Totals        *TotalsResponse       `json:"totals,omitempty"`
}

// GetUsage returns account usage.
func (c *Client) GetUsage(ctx context.Context) (*UsageResponse, error) {
	return execute[UsageResponse](ctx, c, http.MethodGet, "/v1/usage", nil, nil)
}

// GetQuotaStatus returns the remaining quota of the current period.
func (c *Client) GetQuotaStatus(ctx context.Context) (*QuotaStatusResponse, error) {
	return execute[QuotaStatusResponse](ctx, c, http.MethodGet, "/v1/usage/quota", nil, nil)
}
