package drip

import (
	"context"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Health is the result of a Ping.
type Health struct {
	OK      bool
	Status  string
	Version string
	Latency time.Duration
}

// Ping probes GET /health. The request carries the bearer token, so a
// successful ping also proves the key is accepted. A 503 is reported as an
// unhealthy Health rather than an error.
func (c *Client) Ping(ctx context.Context) (*Health, error) {
	start := time.Now()
	status, body, err := c.do(ctx, http.MethodGet, "/health", nil, http.StatusServiceUnavailable)
	latency := time.Since(start)
	if err != nil {
		return nil, err
	}

	h := &Health{
		Status:  gjson.GetBytes(body, "status").String(),
		Version: gjson.GetBytes(body, "version").String(),
		Latency: latency,
	}
	if h.Status == "" {
		h.Status = "ok"
		if status >= 300 {
			h.Status = "unhealthy"
		}
	}
	h.OK = status < 300 && (h.Status == "healthy" || h.Status == "ok")
	return h, nil
}
