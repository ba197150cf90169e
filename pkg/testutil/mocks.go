package testutil

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/vertti/dripcheck/pkg/drip"
)

// MockHTTPClient is a test double for HTTP clients.
type MockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

// MockResponse creates an http.Response with given status and body.
func MockResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

// MockClient is a test double for the Drip API client. Unset funcs return
// zero-value successes so tests only stub what they care about.
type MockClient struct {
	PingFunc       func(ctx context.Context) (*drip.Health, error)
	KeyTypeValue   drip.KeyType
	TrackUsageFunc func(ctx context.Context, p drip.TrackUsageParams) (*drip.UsageResult, error)
	RecordRunFunc  func(ctx context.Context, p drip.RecordRunParams) (*drip.RecordRunResult, error)
	StartRunFunc   func(ctx context.Context, p drip.StartRunParams) (*drip.Run, error)
	EmitEventFunc  func(ctx context.Context, p drip.EmitEventParams) (*drip.EventResult, error)
	EndRunFunc     func(ctx context.Context, runID string, p drip.EndRunParams) (*drip.EndRunResult, error)

	Calls []string // method names in call order
}

func (m *MockClient) Ping(ctx context.Context) (*drip.Health, error) {
	m.Calls = append(m.Calls, "Ping")
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return &drip.Health{OK: true, Status: "healthy"}, nil
}

func (m *MockClient) KeyType() drip.KeyType {
	return m.KeyTypeValue
}

func (m *MockClient) TrackUsage(ctx context.Context, p drip.TrackUsageParams) (*drip.UsageResult, error) {
	m.Calls = append(m.Calls, "TrackUsage")
	if m.TrackUsageFunc != nil {
		return m.TrackUsageFunc(ctx, p)
	}
	return &drip.UsageResult{Success: true, UsageEventID: "evt_1"}, nil
}

func (m *MockClient) RecordRun(ctx context.Context, p drip.RecordRunParams) (*drip.RecordRunResult, error) {
	m.Calls = append(m.Calls, "RecordRun")
	if m.RecordRunFunc != nil {
		return m.RecordRunFunc(ctx, p)
	}
	return &drip.RecordRunResult{
		Run:    drip.Run{ID: "run_1", WorkflowID: "wf_1", WorkflowName: p.Workflow, Status: p.Status},
		Events: drip.EventCounts{Created: len(p.Events)},
	}, nil
}

func (m *MockClient) StartRun(ctx context.Context, p drip.StartRunParams) (*drip.Run, error) {
	m.Calls = append(m.Calls, "StartRun")
	if m.StartRunFunc != nil {
		return m.StartRunFunc(ctx, p)
	}
	return &drip.Run{ID: "run_live", WorkflowID: p.WorkflowID, Status: drip.RunRunning}, nil
}

func (m *MockClient) EmitEvent(ctx context.Context, p drip.EmitEventParams) (*drip.EventResult, error) {
	m.Calls = append(m.Calls, "EmitEvent")
	if m.EmitEventFunc != nil {
		return m.EmitEventFunc(ctx, p)
	}
	return &drip.EventResult{ID: "evt_" + p.EventType, RunID: p.RunID, EventType: p.EventType}, nil
}

func (m *MockClient) EndRun(ctx context.Context, runID string, p drip.EndRunParams) (*drip.EndRunResult, error) {
	m.Calls = append(m.Calls, "EndRun")
	if m.EndRunFunc != nil {
		return m.EndRunFunc(ctx, runID, p)
	}
	return &drip.EndRunResult{ID: runID, Status: p.Status}, nil
}

// Count returns how many times method was called.
func (m *MockClient) Count(method string) int {
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// ContainsDetail checks if any detail string contains the given substring.
func ContainsDetail(details []string, substr string) bool {
	for _, d := range details {
		if strings.Contains(d, substr) {
			return true
		}
	}
	return false
}
