package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

var (
	ErrTransport    = errors.New("transport failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Kind classifies a failed call.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindUnauthorized
	KindClient
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is returned for any non-2xx response.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	// Detail is the backend's "detail" message when the body carries one.
	Detail string
}

func newError(method, path string, statusCode int, body []byte) *Error {
	e := &Error{
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Body:       string(body),
	}

	var detail struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &detail) == nil && len(detail.Detail) > 0 {
		var s string
		if json.Unmarshal(detail.Detail, &s) == nil {
			e.Detail = s
		} else {
			// Validation errors come back as a list of objects
			e.Detail = string(detail.Detail)
		}
	}
	return e
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Body
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed (status %d): %s", e.Method, e.Path, e.StatusCode, msg)
}

// Kind returns the error class derived from the status code.
func (e *Error) Kind() Kind {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return KindUnauthorized
	case e.StatusCode >= 500:
		return KindServer
	case e.StatusCode >= 400:
		return KindClient
	default:
		return KindUnknown
	}
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.op, e.err)
}

func (e *transportError) Unwrap() []error {
	return []error{ErrTransport, e.err}
}

// isReadFailure reports whether a body read stopped because of the connection
// rather than the content: timeouts, cancellation, truncation.
func isReadFailure(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// KindOf classifies any error returned by the client.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	if errors.Is(err, ErrTransport) {
		return KindTransport
	}
	return KindUnknown
}

// IsAuthFailure reports whether the backend rejected the credentials (401 or 403).
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}
