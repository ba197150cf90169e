package drip

import (
	"context"
	"net/http"
)

// TrackUsageParams records a metered quantity without charging.
type TrackUsageParams struct {
	CustomerID     string            `json:"customerId"`
	Meter          string            `json:"meter"`
	Quantity       float64           `json:"quantity"`
	Units          string            `json:"units,omitempty"`
	Description    string            `json:"description,omitempty"`
	IdempotencyKey string            `json:"idempotencyKey,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// UsageResult is returned by TrackUsage.
type UsageResult struct {
	Success      bool    `json:"success"`
	UsageEventID string  `json:"usageEventId"`
	CustomerID   string  `json:"customerId"`
	Meter        string  `json:"usageType"`
	Quantity     float64 `json:"quantity"`
	IsDuplicate  bool    `json:"isDuplicate"`
}

// TrackUsage posts a usage event. Repeating a call with the same
// IdempotencyKey is expected to return the original event.
func (c *Client) TrackUsage(ctx context.Context, p TrackUsageParams) (*UsageResult, error) {
	var out UsageResult
	if err := c.call(ctx, http.MethodPost, "/usage", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
