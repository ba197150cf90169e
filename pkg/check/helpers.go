package check

import (
	"errors"
	"fmt"

	"github.com/vertti/dripcheck/pkg/drip"
)

// Pass sets the result to passed status with a message.
func (r *Result) Pass(message string) Result {
	r.Status = StatusPass
	r.Message = message
	return *r
}

// Passf sets the result to passed status with a formatted message.
func (r *Result) Passf(format string, args ...interface{}) Result {
	return r.Pass(fmt.Sprintf(format, args...))
}

// Fail sets the result to failed status with a message.
func (r *Result) Fail(message string, err error) Result {
	r.Status = StatusFail
	r.Message = message
	r.Err = err
	return *r
}

// Failf sets the result to failed status with a formatted message.
func (r *Result) Failf(format string, args ...interface{}) Result {
	return r.Fail(fmt.Sprintf(format, args...), fmt.Errorf(format, args...))
}

// AddDetail appends a detail line to the result.
func (r *Result) AddDetail(detail string) *Result {
	r.Details = append(r.Details, detail)
	return r
}

// AddDetailf appends a formatted detail line to the result.
func (r *Result) AddDetailf(format string, args ...interface{}) *Result {
	return r.AddDetail(fmt.Sprintf(format, args...))
}

// FromError turns a Drip API error into a failed result. Any other error is
// returned unchanged so the caller can abort the run.
func (r *Result) FromError(err error) (Result, error) {
	var apiErr *drip.Error
	if errors.As(err, &apiErr) {
		return r.Fail("Failed: "+apiErr.Error(), err), nil
	}
	return *r, err
}
