// Package healthcheck verifies that the Drip API is reachable, accepts the
// configured key and can record usage and runs.
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/drip"
)

// Client is the part of drip.Client the health checks use.
type Client interface {
	Ping(ctx context.Context) (*drip.Health, error)
	KeyType() drip.KeyType
	TrackUsage(ctx context.Context, p drip.TrackUsageParams) (*drip.UsageResult, error)
	RecordRun(ctx context.Context, p drip.RecordRunParams) (*drip.RecordRunResult, error)
}

// Connectivity pings the API and requires a healthy status.
type Connectivity struct {
	Client Client
}

func (c *Connectivity) Name() string { return "Connectivity" }

// Run executes the connectivity check.
func (c *Connectivity) Run(ctx context.Context) (check.Result, error) {
	result := check.Result{Name: c.Name()}

	health, err := c.Client.Ping(ctx)
	if err != nil {
		return result.FromError(err)
	}
	if !health.OK {
		return result.Failf("API returned unhealthy status: %s", health.Status), nil
	}
	if health.Version != "" {
		result.AddDetailf("API version: %s", health.Version)
	}
	return result.Passf("API healthy (%dms latency)", health.Latency.Milliseconds()), nil
}

// Authentication pings the API with the bearer token and reports the key type.
type Authentication struct {
	Client Client
}

func (c *Authentication) Name() string { return "Authentication" }

// Run executes the authentication check.
func (c *Authentication) Run(ctx context.Context) (check.Result, error) {
	result := check.Result{Name: c.Name()}

	_, err := c.Client.Ping(ctx)
	if err != nil {
		var apiErr *drip.Error
		if errors.As(err, &apiErr) && apiErr.IsAuthentication() {
			result.AddDetail(apiErr.Error())
			return result.Fail("Authentication failed", err), nil
		}
		return result.FromError(err)
	}
	return result.Pass("Authenticated with " + c.Client.KeyType().String()), nil
}

// TrackUsage records one unit on the health check meter.
type TrackUsage struct {
	Client     Client
	CustomerID string
}

func (c *TrackUsage) Name() string { return "Track Usage" }

// Run executes the usage tracking check.
func (c *TrackUsage) Run(ctx context.Context) (check.Result, error) {
	result := check.Result{Name: c.Name()}

	usage, err := c.Client.TrackUsage(ctx, drip.TrackUsageParams{
		CustomerID:  c.CustomerID,
		Meter:       "sdk_health_check",
		Quantity:    1,
		Units:       "checks",
		Description: "Go SDK health check",
		Metadata: map[string]string{
			"sdk":     "go",
			"version": drip.Version,
		},
	})
	if err != nil {
		return result.FromError(err)
	}
	if !usage.Success {
		return result.Fail("trackUsage returned success=false", nil), nil
	}
	result.AddDetailf("customer: %s", c.CustomerID)
	return result.Pass("Event recorded: " + usage.UsageEventID), nil
}

// RecordRun records a completed two-event run on the health check workflow.
type RecordRun struct {
	Client     Client
	CustomerID string
}

func (c *RecordRun) Name() string { return "Record Run" }

// Run executes the run recording check.
func (c *RecordRun) Run(ctx context.Context) (check.Result, error) {
	result := check.Result{Name: c.Name()}

	run, err := c.Client.RecordRun(ctx, drip.RecordRunParams{
		CustomerID:    c.CustomerID,
		Workflow:      "go-health-check",
		ExternalRunID: "health-" + uuid.NewString(),
		Status:        drip.RunCompleted,
		Events: []drip.RecordRunEvent{
			{EventType: "health_check.start", Quantity: 1},
			{EventType: "health_check.end", Quantity: 1},
		},
	})
	if err != nil {
		return result.FromError(err)
	}
	result.AddDetailf("Run ID: %s, Cost: %s", run.Run.ID, run.TotalCostUnits)
	return result.Pass(run.Summary), nil
}

// Suite returns the checks to run in order. Quick mode keeps only the
// read-only checks.
func Suite(client Client, customerID string, quick bool) []check.Checker {
	checks := []check.Checker{
		&Connectivity{Client: client},
		&Authentication{Client: client},
	}
	if quick {
		return checks
	}
	return append(checks,
		&TrackUsage{Client: client, CustomerID: customerID},
		&RecordRun{Client: client, CustomerID: customerID},
	)
}

// ErrNoMatchingChecks is returned by Only when no name matches.
var ErrNoMatchingChecks = errors.New("no matching checks found")

type named interface {
	Name() string
}

// Only picks the checks whose name contains one of names, ignoring case.
// Checks come back in the order their names are given, each at most once.
func Only(checks []check.Checker, names []string) ([]check.Checker, error) {
	var kept []check.Checker
	seen := make(map[check.Checker]bool)
	for _, want := range names {
		want = strings.ToLower(strings.TrimSpace(want))
		if want == "" {
			continue
		}
		for _, c := range checks {
			n, ok := c.(named)
			if !ok || seen[c] || !strings.Contains(strings.ToLower(n.Name()), want) {
				continue
			}
			seen[c] = true
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		var available []string
		for _, c := range checks {
			if n, ok := c.(named); ok {
				available = append(available, n.Name())
			}
		}
		return nil, fmt.Errorf("%w (available: %s)", ErrNoMatchingChecks, strings.Join(available, ", "))
	}
	return kept, nil
}
