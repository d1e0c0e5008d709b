package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrSubmitInFlight is returned when an experiment submission is attempted
// while another one is still pending on the same client. The policy is
// reject, not cancel: the UI disables its submit control while pending,
// so a second call indicates a bug or a race worth surfacing.
var ErrSubmitInFlight = errors.New("insight: experiment submission already in flight")

// ValidationError is a local, pre-network, user-correctable failure.
// It is never retried automatically and never reaches the backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// TimeoutError classifies an experiment submission that exceeded its
// deadline. It gets a distinct user-facing message ("the experiment may
// be taking longer than expected") rather than a generic failure.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s: the experiment may be taking longer than expected", e.Op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// NetworkError is a transport-level failure (DNS, connection refused).
// The raw error text is surfaced.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx HTTP response from the backend. Detail carries
// the backend-provided message, or the status line when the body is not
// parseable. The status code is kept so the UI can surface it directly.
type ServerError struct {
	Op         string
	StatusCode int
	Detail     string
	RawBody    []byte
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Detail)
}

// parseServerError builds a ServerError from a non-2xx response body.
// The backend error contract is inconsistent across endpoints: some return
// {"detail": ...}, some {"message": ...}, some plain text. Precedence is
// detail, then message, then the HTTP status line.
func parseServerError(op string, statusCode int, body []byte) *ServerError {
	detail := ""
	var envelope struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Detail != "" {
			detail = envelope.Detail
		} else if envelope.Message != "" {
			detail = envelope.Message
		}
	}
	if detail == "" {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "{") {
			detail = text
		} else {
			detail = fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode))
		}
	}
	return &ServerError{Op: op, StatusCode: statusCode, Detail: detail, RawBody: body}
}
