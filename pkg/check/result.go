package check

import "time"

// Status represents the outcome of a check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Result holds the outcome of a single check or scenario.
type Result struct {
	Number   int           // scenario number, 0 for health checks
	Name     string        // e.g., "Connectivity", "Hyperparameter Sweep"
	Status   Status        // PASS or FAIL
	Duration time.Duration // wall time of the Run call
	Message  string        // one-line summary
	Details  []string      // extra lines, shown only in verbose mode
	Err      error         // underlying error for failures
}

// OK returns true if the check passed.
func (r Result) OK() bool {
	return r.Status == StatusPass
}

// Summary counts passed and failed results.
func Summary(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.OK() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	_, failed := Summary(results)
	return failed == 0
}
