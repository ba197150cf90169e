package drip

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	// ErrAuthentication matches any Error caused by a rejected API key.
	ErrAuthentication = errors.New("authentication failed")
	// ErrMissingAPIKey matches the Error NewClient returns for a blank key.
	ErrMissingAPIKey = errors.New("missing API key")
)

const codeMissingAPIKey = "MISSING_API_KEY"

// Error is returned by every Client operation that fails, whether the API
// answered with an error status or the request never completed.
type Error struct {
	StatusCode int    // HTTP status, 0 when no response was received
	Code       string // API error code, if any
	Message    string
	Err        error // underlying transport error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.StatusCode == 0:
		return e.Message
	case e.Code != "":
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
	default:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports authentication failures as ErrAuthentication and a blank key
// as ErrMissingAPIKey.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.IsAuthentication()
	case ErrMissingAPIKey:
		return e.Code == codeMissingAPIKey
	}
	return false
}

// IsAuthentication returns true for 401 and 403 responses.
func (e *Error) IsAuthentication() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// newStatusError builds an Error from a non-2xx response body. The API is not
// consistent about where it puts the message, so several paths are tried.
func newStatusError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}

	for _, path := range []string{"error.message", "message", "error"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String {
			e.Message = v.String()
			break
		}
	}
	for _, path := range []string{"error.code", "code"} {
		if v := gjson.GetBytes(body, path); v.Exists() {
			e.Code = v.String()
			break
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
