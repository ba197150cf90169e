package drip

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// RunStatus is the terminal (or current) state of a run.
type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
	RunCancelled RunStatus = "CANCELLED"
)

// CostUnits is a decimal amount the API sends either as a JSON number or as
// a string. It keeps the API's own formatting.
type CostUnits string

// UnmarshalJSON accepts both 0.05 and "0.05".
func (c *CostUnits) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*c = ""
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*c = CostUnits(s)
	return nil
}

func (c CostUnits) String() string {
	if c == "" {
		return "0"
	}
	return string(c)
}

// Float parses the amount, returning 0 when it is empty or malformed.
func (c CostUnits) Float() float64 {
	f, _ := strconv.ParseFloat(string(c), 64)
	return f
}

// RecordRunEvent is one event inside a RecordRun batch.
type RecordRunEvent struct {
	EventType   string            `json:"eventType"`
	Quantity    float64           `json:"quantity,omitempty"`
	Units       string            `json:"units,omitempty"`
	Description string            `json:"description,omitempty"`
	CostUnits   float64           `json:"costUnits,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// RecordRunParams records a complete run in one call. The workflow is
// referenced by slug and created on first use.
type RecordRunParams struct {
	CustomerID    string            `json:"customerId"`
	Workflow      string            `json:"workflow"`
	ExternalRunID string            `json:"externalRunId,omitempty"`
	Status        RunStatus         `json:"status"`
	ErrorMessage  string            `json:"errorMessage,omitempty"`
	ErrorCode     string            `json:"errorCode,omitempty"`
	Events        []RecordRunEvent  `json:"events"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Run describes a workflow run.
type Run struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	WorkflowID    string    `json:"workflowId"`
	WorkflowName  string    `json:"workflowName"`
	Status        RunStatus `json:"status"`
	CorrelationID string    `json:"correlationId,omitempty"`
	DurationMs    int64     `json:"durationMs,omitempty"`
}

// EventCounts reports how many events a RecordRun created.
type EventCounts struct {
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
}

// RecordRunResult is returned by RecordRun.
type RecordRunResult struct {
	Run            Run         `json:"run"`
	Events         EventCounts `json:"events"`
	TotalCostUnits CostUnits   `json:"totalCostUnits"`
	Summary        string      `json:"summary"`
}

// RecordRun posts a run with all of its events.
func (c *Client) RecordRun(ctx context.Context, p RecordRunParams) (*RecordRunResult, error) {
	if p.Status == "" {
		p.Status = RunCompleted
	}
	if p.Events == nil {
		p.Events = []RecordRunEvent{}
	}

	var out RecordRunResult
	if err := c.call(ctx, http.MethodPost, "/runs/record", p, &out); err != nil {
		return nil, err
	}
	if out.Summary == "" {
		out.Summary = fmt.Sprintf("Run %s (%s): %d events recorded", out.Run.ID, out.Run.Status, out.Events.Created)
	}
	return &out, nil
}

// StartRunParams opens a run on an existing workflow.
type StartRunParams struct {
	CustomerID    string            `json:"customerId"`
	WorkflowID    string            `json:"workflowId"`
	ExternalRunID string            `json:"externalRunId,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// StartRun creates a run in RUNNING state.
func (c *Client) StartRun(ctx context.Context, p StartRunParams) (*Run, error) {
	var out Run
	if err := c.call(ctx, http.MethodPost, "/runs", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmitEventParams appends one event to an open run.
type EmitEventParams struct {
	RunID          string            `json:"runId"`
	EventType      string            `json:"eventType"`
	Quantity       float64           `json:"quantity,omitempty"`
	Units          string            `json:"units,omitempty"`
	Description    string            `json:"description,omitempty"`
	CostUnits      float64           `json:"costUnits,omitempty"`
	IdempotencyKey string            `json:"idempotencyKey,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// EventResult is returned by EmitEvent.
type EventResult struct {
	ID          string `json:"id"`
	RunID       string `json:"runId"`
	EventType   string `json:"eventType"`
	IsDuplicate bool   `json:"isDuplicate"`
}

// EmitEvent records an event against a running run.
func (c *Client) EmitEvent(ctx context.Context, p EmitEventParams) (*EventResult, error) {
	var out EventResult
	if err := c.call(ctx, http.MethodPost, "/events", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EndRunParams closes a run.
type EndRunParams struct {
	Status       RunStatus         `json:"status"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	ErrorCode    string            `json:"errorCode,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// EndRunResult is returned by EndRun.
type EndRunResult struct {
	ID             string    `json:"id"`
	Status         RunStatus `json:"status"`
	DurationMs     int64     `json:"durationMs"`
	EventCount     int       `json:"eventCount"`
	TotalCostUnits CostUnits `json:"totalCostUnits"`
}

// EndRun moves a run to its terminal status.
func (c *Client) EndRun(ctx context.Context, runID string, p EndRunParams) (*EndRunResult, error) {
	if runID == "" {
		return nil, &Error{Message: "run ID is required"}
	}
	if p.Status == "" {
		p.Status = RunCompleted
	}

	var out EndRunResult
	if err := c.call(ctx, http.MethodPatch, "/runs/"+url.PathEscape(runID), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
