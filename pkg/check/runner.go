package check

import (
	"context"
	"time"
)

// RunAll executes checks in order and stamps each result with its elapsed
// time. A failed result does not stop the sequence; an error does, and the
// results gathered so far are returned alongside it.
func RunAll(ctx context.Context, checks []Checker) ([]Result, error) {
	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		start := time.Now()
		result, err := c.Run(ctx)
		if err != nil {
			return results, err
		}
		result.Duration = time.Since(start)
		results = append(results, result)
	}
	return results, nil
}
