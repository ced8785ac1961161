package dataapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/containerd/errdefs/pkg/errhttp"
)

// errConnectionFailed is returned when the client failed to reach the Data
// API endpoint at all. No HTTP exchange took place.
type errConnectionFailed struct {
	host string
	err  error
}

func (e errConnectionFailed) Error() string {
	if e.host == "" {
		return "cannot connect to the Data API: " + e.err.Error()
	}
	return "cannot connect to the Data API at " + e.host + ": " + e.err.Error()
}

func (e errConnectionFailed) Unwrap() error {
	return e.err
}

func (e errConnectionFailed) Is(target error) bool {
	return target == cerrdefs.ErrUnavailable
}

// IsErrConnectionFailed reports whether err was caused by a failure to reach
// the endpoint.
func IsErrConnectionFailed(err error) bool {
	return errors.As(err, &errConnectionFailed{})
}

// TimeoutKind identifies which time budget fired. The three budgets are
// independent; only the one that actually expired is reported.
type TimeoutKind int

const (
	// TimeoutConnect is the connection-establishment budget.
	TimeoutConnect TimeoutKind = iota + 1
	// TimeoutRequest is the single HTTP exchange budget.
	TimeoutRequest
	// TimeoutBulk is the whole-bulk-operation budget spanning every chunk
	// or page of one logical bulk call.
	TimeoutBulk
)

func (k TimeoutKind) String() string {
	switch k {
	case TimeoutConnect:
		return "connect"
	case TimeoutRequest:
		return "request"
	case TimeoutBulk:
		return "bulk operation"
	default:
		return "unknown"
	}
}

// TimeoutError reports that one of the configured time budgets expired.
type TimeoutError struct {
	Kind TimeoutKind
}

func (e *TimeoutError) Error() string {
	return e.Kind.String() + " timeout exceeded"
}

// Timeout implements net.Error-style timeout detection.
func (e *TimeoutError) Timeout() bool {
	return true
}

func (e *TimeoutError) Is(target error) bool {
	return target == context.DeadlineExceeded
}

// Singleton causes attached to derived contexts so the classifier can tell
// which budget fired (first-to-fire wins).
var (
	errRequestTimeout = &TimeoutError{Kind: TimeoutRequest}
	errBulkTimeout    = &TimeoutError{Kind: TimeoutBulk}
	errConnectTimeout = &TimeoutError{Kind: TimeoutConnect}
)

// TimeoutKindOf returns the timeout kind carried by err, or zero when err is
// not a timeout error.
func TimeoutKindOf(err error) TimeoutKind {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// ErrorDescriptor is one entry of a command response's errors array.
type ErrorDescriptor struct {
	Message        string `json:"message"`
	ErrorCode      string `json:"errorCode,omitempty"`
	ExceptionClass string `json:"exceptionClass,omitempty"`
	Family         string `json:"family,omitempty"`
	Scope          string `json:"scope,omitempty"`
	Title          string `json:"title,omitempty"`
	ID             string `json:"id,omitempty"`
}

// APIError is raised when the HTTP exchange succeeded but the response
// envelope carried a non-empty errors array: the remote operation itself
// failed. Every entry is preserved.
type APIError struct {
	Errors []ErrorDescriptor
}

func (e *APIError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		m := d.Message
		if d.ErrorCode != "" {
			m = d.ErrorCode + ": " + m
		}
		msgs = append(msgs, m)
	}
	if len(msgs) == 1 {
		return "command failed: " + msgs[0]
	}
	return fmt.Sprintf("command failed with %d errors: %s", len(msgs), strings.Join(msgs, "; "))
}

// BulkError wraps a failure raised mid-way through a bulk operation. Partial
// holds the accumulator contents at failure time (*InsertManyResult,
// *DeleteManyResult or *UpdateManyResult) so callers can recover the part
// that succeeded.
type BulkError struct {
	Partial any
	err     error
}

func (e *BulkError) Error() string {
	return "bulk operation failed: " + e.err.Error()
}

func (e *BulkError) Unwrap() error {
	return e.err
}

func invalidParameterf(format string, args ...any) error {
	return fmt.Errorf(fmt.Sprintf(format, args...)+": %w", cerrdefs.ErrInvalidArgument)
}

// httpError classifies a non-success HTTP status before generic handling:
// request/gateway timeouts become timeout errors, unauthorized becomes an
// authentication error, everything else maps through errhttp and keeps the
// status and body.
func httpError(statusCode int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("server reported %d (%s): %w", statusCode, http.StatusText(statusCode), errRequestTimeout)
	case http.StatusUnauthorized:
		if msg == "" {
			msg = "check the access token"
		}
		return fmt.Errorf("authentication failed: %s: %w", msg, cerrdefs.ErrUnauthenticated)
	default:
		if msg == "" {
			msg = http.StatusText(statusCode)
		}
		return fmt.Errorf("unexpected response (status %d): %s: %w", statusCode, msg, errhttp.ToNative(statusCode))
	}
}
