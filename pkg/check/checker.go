package check

import "context"

// Checker is implemented by all check types.
// Each check exercises one part of the Drip API and returns a Result
// indicating success or failure. A non-nil error means something went wrong
// outside the API client and the run must stop.
//
// Implementations:
//   - healthcheck.Connectivity, healthcheck.Authentication
//   - healthcheck.TrackUsage, healthcheck.RecordRun
//   - scenario.Scenario: one simulated ML workflow
type Checker interface {
	Run(ctx context.Context) (Result, error)
}
